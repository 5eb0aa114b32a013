package models

// ProductArea is the part of the product a request targets.
type ProductArea struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
