package schedule

import (
	"context"
	"fmt"
)

// groupSize - фиксированный размер группы. Остаток меньше группы молча
// исключается из расписания, это не ошибка.
const groupSize = 4

type GroupStageGenerator struct{}

func NewGroupStageGenerator() FixtureGenerator {
	return &GroupStageGenerator{}
}

func (g *GroupStageGenerator) GetName() string {
	return "GroupStage"
}

// GenerateFixtures partitions the shuffled teams into groups of exactly four
// and plays a single round-robin inside each group. There are no cross-group
// matches; a trailing remainder smaller than a full group is dropped.
func (g *GroupStageGenerator) GenerateFixtures(ctx context.Context, params GenerateFixturesParams) ([]*MatchDraft, error) {
	tournament := params.Tournament
	ids := shuffledTeamIDs(params.Teams)

	numGroups := len(ids) / groupSize
	drafts := make([]*MatchDraft, 0, numGroups*groupSize*(groupSize-1)/2)
	order := 0

	for gi := 0; gi < numGroups; gi++ {
		groupName := fmt.Sprintf("Group %c", 'A'+gi)
		members := ids[gi*groupSize : (gi+1)*groupSize]

		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				order++
				awayID := members[j]
				drafts = append(drafts, &MatchDraft{
					UID:        fmt.Sprintf("T%d_G%d_M%d", tournament.ID, gi+1, order),
					Round:      1,
					Order:      order,
					Group:      groupName,
					HomeTeamID: members[i],
					AwayTeamID: &awayID,
				})
			}
		}
	}

	return drafts, nil
}
