package handlers

import (
	"time"

	"backlog/internal/models"
)

type clientView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	NextRank int    `json:"client_priority"`
}

type productAreaView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// requestView is the list item shape. client_priority at the top level is the
// request's own rank, the nested one is the client's next rank hint.
type requestView struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Client      clientView      `json:"client"`
	Rank        int             `json:"client_priority"`
	TargetDate  models.Date     `json:"target_date"`
	ProductArea productAreaView `json:"product_area"`
	Overdue     bool            `json:"overdue"`
}

func newClientView(c models.Client) clientView {
	return clientView{ID: c.ID, Name: c.Name, NextRank: c.NextRank}
}

func newProductAreaView(a models.ProductArea) productAreaView {
	return productAreaView{ID: a.ID, Name: a.Name}
}

func newRequestView(r models.Request, now time.Time) requestView {
	v := requestView{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Client:      clientView{ID: r.ClientID},
		Rank:        r.Rank,
		TargetDate:  r.TargetDate,
		ProductArea: productAreaView{ID: r.ProductAreaID},
		Overdue:     r.IsOverdue(now),
	}
	if r.Client != nil {
		v.Client = newClientView(*r.Client)
	}
	if r.ProductArea != nil {
		v.ProductArea = newProductAreaView(*r.ProductArea)
	}
	return v
}

func requestViews(list []models.Request) []requestView {
	now := time.Now()
	views := make([]requestView, 0, len(list))
	for _, r := range list {
		views = append(views, newRequestView(r, now))
	}
	return views
}

func clientViews(list []models.Client) []clientView {
	views := make([]clientView, 0, len(list))
	for _, c := range list {
		views = append(views, newClientView(c))
	}
	return views
}

func productAreaViews(list []models.ProductArea) []productAreaView {
	views := make([]productAreaView, 0, len(list))
	for _, a := range list {
		views = append(views, newProductAreaView(a))
	}
	return views
}
