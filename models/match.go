package models

import "time"

type MatchStatus string

const (
	MatchStatusUpcoming  MatchStatus = "upcoming"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusCompleted MatchStatus = "completed"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusUpcoming, MatchStatusLive, MatchStatusCompleted:
		return true
	}
	return false
}

type GoalType string

const (
	GoalRegular GoalType = "regular"
	GoalPenalty GoalType = "penalty"
	GoalOwnGoal GoalType = "ownGoal"
)

func (t GoalType) Valid() bool {
	switch t {
	case GoalRegular, GoalPenalty, GoalOwnGoal:
		return true
	}
	return false
}

type CardColor string

const (
	CardYellow CardColor = "yellow"
	CardRed    CardColor = "red"
)

// GoalEvent - гол в матче. Team - команда, к которой относится событие
// (для автогола это команда самого автора автогола, счёт получает соперник).
type GoalEvent struct {
	PlayerID int      `json:"player_id"`
	TeamID   int      `json:"team_id"`
	Minute   int      `json:"minute"`
	Type     GoalType `json:"type"`
	AssistID *int     `json:"assist_id,omitempty"`
}

type CardEvent struct {
	PlayerID int `json:"player_id"`
	TeamID   int `json:"team_id"`
	Minute   int `json:"minute"`
}

type SubstitutionEvent struct {
	PlayerOutID int `json:"player_out_id"`
	PlayerInID  int `json:"player_in_id"`
	TeamID      int `json:"team_id"`
	Minute      int `json:"minute"`
}

// Match - матч турнира. Журналы событий append-only: записанное событие
// никогда не редактируется и не удаляется. Version используется для
// оптимистичной блокировки при конкурентной записи событий.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	HomeTeamID   int         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   int         `json:"away_team_id" db:"away_team_id"`
	Date         time.Time   `json:"date" db:"date"`
	Status       MatchStatus `json:"status" db:"status"`
	HomeScore    int         `json:"home_score" db:"home_score"`
	AwayScore    int         `json:"away_score" db:"away_score"`

	Goals         []GoalEvent         `json:"goals" db:"goals"`
	YellowCards   []CardEvent         `json:"yellow_cards" db:"yellow_cards"`
	RedCards      []CardEvent         `json:"red_cards" db:"red_cards"`
	Substitutions []SubstitutionEvent `json:"substitutions" db:"substitutions"`

	// Игроки, уже засчитанные в matches_played по этому матчу.
	// Делает отправку состава идемпотентной.
	PlayedPlayerIDs []int `json:"played_player_ids" db:"played_player_ids"`

	Version   int       `json:"-" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasPlayed сообщает, засчитан ли уже игрок в matches_played этого матча.
func (m *Match) HasPlayed(playerID int) bool {
	for _, id := range m.PlayedPlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}
