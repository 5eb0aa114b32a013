package models

import "strings"

const (
	DefaultUserStatus = 3
	DefaultUserRole   = "user"
)

// User is an account allowed to call the API.
type User struct {
	ID        int64  `db:"id" json:"uid"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Hash      string `db:"hash" json:"-"`
	IsActive  bool   `db:"is_active" json:"-"`
	Status    int    `db:"status" json:"status"`
	Role      string `db:"role" json:"role"`
}

// UserDraft is the registration input.
type UserDraft struct {
	Email     string `json:"email" validate:"required,email,max=45"`
	FirstName string `json:"first_name" validate:"required,max=60"`
	LastName  string `json:"last_name" validate:"required,max=60"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// Validate normalizes the email and checks the draft.
func (d *UserDraft) Validate() error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	return check(d)
}
