package models

import "strings"

// Client is an organization submitting feature requests.
type Client struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	// NextRank is the number of requests linked to the client plus one.
	// It is only a hint for pre-filling forms and is not enforced on create.
	NextRank int `db:"next_rank" json:"client_priority"`
}

// NameDraft is the input for creating or renaming a client or product area.
type NameDraft struct {
	Name string `json:"name" validate:"required,max=60"`
}

// Validate trims the name and checks it is present and fits the column.
func (d *NameDraft) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	return check(d)
}
