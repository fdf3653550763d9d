package schedule

import (
	"context"
	"fmt"
)

type KnockoutGenerator struct{}

func NewKnockoutGenerator() FixtureGenerator {
	return &KnockoutGenerator{}
}

func (g *KnockoutGenerator) GetName() string {
	return "Knockout"
}

// GenerateFixtures pairs the shuffled teams sequentially into first-round
// single-elimination matches. With an odd team count the last team gets an
// explicit bye draft (AwayTeamID nil, IsBye set) instead of an opponent.
// Advancement beyond round one is not generated here.
func (g *KnockoutGenerator) GenerateFixtures(ctx context.Context, params GenerateFixturesParams) ([]*MatchDraft, error) {
	tournament := params.Tournament
	ids := shuffledTeamIDs(params.Teams)
	if len(ids) == 0 {
		return []*MatchDraft{}, nil
	}

	drafts := make([]*MatchDraft, 0, (len(ids)+1)/2)
	order := 0

	for i := 0; i+1 < len(ids); i += 2 {
		order++
		awayID := ids[i+1]
		drafts = append(drafts, &MatchDraft{
			UID:        fmt.Sprintf("T%d_R1_M%d", tournament.ID, order),
			Round:      1,
			Order:      order,
			HomeTeamID: ids[i],
			AwayTeamID: &awayID,
		})
	}

	if len(ids)%2 == 1 {
		order++
		drafts = append(drafts, &MatchDraft{
			UID:        fmt.Sprintf("T%d_R1_BYE", tournament.ID),
			Round:      1,
			Order:      order,
			HomeTeamID: ids[len(ids)-1],
			IsBye:      true,
		})
	}

	return drafts, nil
}
