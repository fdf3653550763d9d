package schedule

import (
	"context"
	"fmt"

	"github.com/Dosada05/football-tournament-system/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() FixtureGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateFixtures creates matches for a league tournament.
// Every unordered pair of teams plays once; with face_to_face_matches = "2"
// every ordered pair plays, so both home and away legs are generated.
func (g *RoundRobinGenerator) GenerateFixtures(ctx context.Context, params GenerateFixturesParams) ([]*MatchDraft, error) {
	tournament := params.Tournament
	ids := shuffledTeamIDs(params.Teams)
	if len(ids) == 0 {
		return []*MatchDraft{}, nil
	}

	doubleLeg := tournament.FaceToFaceMatches == models.FaceToFaceDouble

	firstLegCount := len(ids) * (len(ids) - 1) / 2
	drafts := make([]*MatchDraft, 0, firstLegCount)
	order := 0

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			home, away := ids[i], ids[j]

			order++
			awayID := away
			drafts = append(drafts, &MatchDraft{
				UID:        fmt.Sprintf("T%d_L_M%d", tournament.ID, order),
				Round:      1,
				Order:      order,
				HomeTeamID: home,
				AwayTeamID: &awayID,
			})

			if doubleLeg {
				// Ответный матч: хозяева и гости меняются местами.
				homeID := home
				drafts = append(drafts, &MatchDraft{
					UID:        fmt.Sprintf("T%d_L_M%d", tournament.ID, order+firstLegCount),
					Round:      1,
					Order:      order + firstLegCount,
					HomeTeamID: away,
					AwayTeamID: &homeID,
				})
			}
		}
	}

	return drafts, nil
}
