package schedule

import (
	"context"
	"fmt"
	"testing"

	"github.com/Dosada05/football-tournament-system/models"
)

func TestKnockoutEvenTeams(t *testing.T) {
	tests := []struct {
		numTeams    int
		wantMatches int
	}{
		{numTeams: 2, wantMatches: 1},
		{numTeams: 4, wantMatches: 2},
		{numTeams: 8, wantMatches: 4},
		{numTeams: 16, wantMatches: 8},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_teams", tt.numTeams), func(t *testing.T) {
			gen := NewKnockoutGenerator()
			drafts, err := gen.GenerateFixtures(context.Background(), GenerateFixturesParams{
				Tournament: &models.Tournament{ID: 5, Format: models.FormatKnockout},
				Teams:      makeTeams(tt.numTeams),
			})
			if err != nil {
				t.Fatalf("GenerateFixtures: %v", err)
			}
			if len(drafts) != tt.wantMatches {
				t.Fatalf("got %d matches, want %d", len(drafts), tt.wantMatches)
			}

			// Каждая команда участвует ровно в одном матче первого раунда.
			seen := make(map[int]bool)
			for _, d := range drafts {
				if d.IsBye {
					t.Fatalf("unexpected bye draft %s with even team count", d.UID)
				}
				for _, teamID := range []int{d.HomeTeamID, *d.AwayTeamID} {
					if seen[teamID] {
						t.Fatalf("team %d appears in more than one match", teamID)
					}
					seen[teamID] = true
				}
			}
			if len(seen) != tt.numTeams {
				t.Fatalf("%d teams scheduled, want %d", len(seen), tt.numTeams)
			}
		})
	}
}

func TestKnockoutOddTeamsGetsBye(t *testing.T) {
	gen := NewKnockoutGenerator()
	drafts, err := gen.GenerateFixtures(context.Background(), GenerateFixturesParams{
		Tournament: &models.Tournament{ID: 5, Format: models.FormatKnockout},
		Teams:      makeTeams(7),
	})
	if err != nil {
		t.Fatalf("GenerateFixtures: %v", err)
	}
	// Три полные пары плюс одна заготовка bye.
	if len(drafts) != 4 {
		t.Fatalf("got %d drafts, want 4", len(drafts))
	}

	var byes int
	seen := make(map[int]bool)
	for _, d := range drafts {
		if d.IsBye {
			byes++
			if d.AwayTeamID != nil {
				t.Errorf("bye draft %s has away team set", d.UID)
			}
			seen[d.HomeTeamID] = true
			continue
		}
		seen[d.HomeTeamID] = true
		seen[*d.AwayTeamID] = true
	}
	if byes != 1 {
		t.Fatalf("got %d bye drafts, want 1", byes)
	}
	if len(seen) != 7 {
		t.Fatalf("%d teams covered, want 7", len(seen))
	}
}
