package models

import "time"

// TournamentFormat представляет формат турнира, соответствующий ENUM в БД.
type TournamentFormat string

const (
	FormatLeague   TournamentFormat = "League"
	FormatKnockout TournamentFormat = "Knockout"
	FormatGroup    TournamentFormat = "Group"
)

func (f TournamentFormat) Valid() bool {
	switch f {
	case FormatLeague, FormatKnockout, FormatGroup:
		return true
	}
	return false
}

type VenueMode string

const (
	VenueSingle      VenueMode = "SingleVenue"
	VenueHomeAndAway VenueMode = "HomeAndAway"
)

func (v VenueMode) Valid() bool {
	return v == VenueSingle || v == VenueHomeAndAway
}

// FaceToFaceCount хранится как строка ("1" или "2"), как приходит от клиента.
type FaceToFaceCount string

const (
	FaceToFaceSingle FaceToFaceCount = "1"
	FaceToFaceDouble FaceToFaceCount = "2"
)

func (c FaceToFaceCount) Valid() bool {
	return c == FaceToFaceSingle || c == FaceToFaceDouble
}

// Tournament представляет турнир.
type Tournament struct {
	ID                int              `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	Format            TournamentFormat `json:"format" db:"format"`
	FaceToFaceMatches FaceToFaceCount  `json:"face_to_face_matches" db:"face_to_face_matches"`
	NumPlayers        int              `json:"num_players" db:"num_players"`
	NumSubs           int              `json:"num_subs" db:"num_subs"`
	NumTeams          int              `json:"num_teams" db:"num_teams"`
	VenueMode         VenueMode        `json:"venue_mode" db:"venue_mode"`
	Location          *string          `json:"location,omitempty" db:"location"`
	RegistrationStart time.Time        `json:"registration_start" db:"registration_start"`
	RegistrationClose time.Time        `json:"registration_close" db:"registration_close"`
	StartDate         time.Time        `json:"start_date" db:"start_date"`
	OrganizerID       int              `json:"organizer_id" db:"organizer_id"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Organizer *User   `json:"organizer,omitempty" db:"-"`
	Teams     []Team  `json:"teams,omitempty" db:"-"`
	Matches   []Match `json:"matches,omitempty" db:"-"`
}

// MaxRosterSize - максимальный размер заявки команды.
func (t *Tournament) MaxRosterSize() int {
	return t.NumPlayers + t.NumSubs
}
