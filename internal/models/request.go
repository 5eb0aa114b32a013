package models

import (
	"strings"
	"time"
)

// Request is a feature request ranked within its client.
type Request struct {
	ID            int64     `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	ClientID      int64     `db:"client_id" json:"client_id"`
	ProductAreaID int64     `db:"product_area_id" json:"product_area_id"`
	Rank          int       `db:"rank" json:"client_priority"`
	TargetDate    Date      `db:"target_date" json:"target_date"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	// Populated by list queries.
	Client      *Client      `db:"-" json:"client,omitempty"`
	ProductArea *ProductArea `db:"-" json:"product_area,omitempty"`
}

// IsOverdue returns true if the request is still open past its target date.
func (r *Request) IsOverdue(now time.Time) bool {
	if !r.IsActive || r.TargetDate.IsZero() {
		return false
	}
	y, m, d := now.Date()
	return r.TargetDate.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// MaxRank is the largest rank a request can hold. Ranks are stored as 32-bit integers.
const MaxRank = 2147483647

// RequestDraft holds the caller-editable fields of a request.
type RequestDraft struct {
	Title         string `json:"title" validate:"required,max=120"`
	Description   string `json:"description" validate:"required"`
	ClientID      int64  `json:"client" validate:"required,gt=0"`
	ProductAreaID int64  `json:"product_area" validate:"required,gt=0"`
	Rank          int    `json:"client_priority" validate:"required,gt=0,lte=2147483646"`
	TargetDate    Date   `json:"target_date"`
}

// Validate trims free text and checks every field of the draft.
func (d *RequestDraft) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)

	if err := check(d); err != nil {
		return err
	}
	if d.TargetDate.IsZero() {
		return Invalid("target_date", "target_date is a required field")
	}
	return nil
}
