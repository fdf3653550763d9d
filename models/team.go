package models

import "time"

type Team struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Manager      string    `json:"manager" db:"manager"`
	Contact      *string   `json:"contact,omitempty" db:"contact"`
	Email        *string   `json:"email,omitempty" db:"email"`
	CreatedBy    int       `json:"created_by" db:"created_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Players []Player `json:"players,omitempty" db:"-"`

	CrestKey *string `json:"-" db:"crest_key"`
	CrestURL *string `json:"crest_url,omitempty" db:"-"`
}
