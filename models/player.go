package models

type PlayerPosition string

const (
	PositionForward    PlayerPosition = "Forward"
	PositionMidfielder PlayerPosition = "Midfielder"
	PositionDefender   PlayerPosition = "Defender"
	PositionGoalkeeper PlayerPosition = "Goalkeeper"
)

func (p PlayerPosition) Valid() bool {
	switch p {
	case PositionForward, PositionMidfielder, PositionDefender, PositionGoalkeeper:
		return true
	}
	return false
}

// Player - игрок в заявке команды. Счётчики goals/assists/yellow_cards/red_cards
// изменяются только через запись событий матча, matches_played - через
// отдельную отправку состава на матч.
type Player struct {
	ID            int            `json:"id" db:"id"`
	TeamID        int            `json:"team_id" db:"team_id"`
	Name          string         `json:"name" db:"name"`
	JerseyNumber  int            `json:"jersey_number" db:"jersey_number"`
	Position      PlayerPosition `json:"position" db:"position"`
	IsCaptain     bool           `json:"is_captain" db:"is_captain"`
	IsViceCaptain bool           `json:"is_vice_captain" db:"is_vice_captain"`
	MatchesPlayed int            `json:"matches_played" db:"matches_played"`
	Goals         int            `json:"goals" db:"goals"`
	Assists       int            `json:"assists" db:"assists"`
	YellowCards   int            `json:"yellow_cards" db:"yellow_cards"`
	RedCards      int            `json:"red_cards" db:"red_cards"`
}

// PlayerStatDeltas - инкременты счётчиков, применяемые одной операцией
// репозитория внутри транзакции записи события.
type PlayerStatDeltas struct {
	MatchesPlayed int
	Goals         int
	Assists       int
	YellowCards   int
	RedCards      int
}
