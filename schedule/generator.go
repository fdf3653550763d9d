package schedule

import (
	"context"
	"math/rand"

	"github.com/Dosada05/football-tournament-system/models"
)

// MatchDraft - сгенерированная, ещё не сохранённая пара. Для матча с bye
// AwayTeamID равен nil и IsBye = true; такие заготовки в БД не сохраняются,
// команда просто проходит дальше.
type MatchDraft struct {
	UID        string
	Round      int
	Order      int
	Group      string
	HomeTeamID int
	AwayTeamID *int

	IsBye bool
}

type GenerateFixturesParams struct {
	Tournament *models.Tournament
	Teams      []*models.Team
}

type FixtureGenerator interface {
	GenerateFixtures(ctx context.Context, params GenerateFixturesParams) ([]*MatchDraft, error)

	GetName() string
}

// ForFormat подбирает генератор под формат турнира.
func ForFormat(format models.TournamentFormat) (FixtureGenerator, bool) {
	switch format {
	case models.FormatLeague:
		return NewRoundRobinGenerator(), true
	case models.FormatGroup:
		return NewGroupStageGenerator(), true
	case models.FormatKnockout:
		return NewKnockoutGenerator(), true
	}
	return nil, false
}

// shuffledTeamIDs копирует список команд и применяет равномерную случайную
// перестановку, чтобы порядок расписания не зависел от порядка регистрации.
// Тесты должны проверять состав множества пар, а не их порядок.
func shuffledTeamIDs(teams []*models.Team) []int {
	ids := make([]int, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return ids
}
