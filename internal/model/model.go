package model

import "time"

type Board struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// List is a column of cards. Order is the dense zero-based rank among the board's lists.
type List struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"boardId"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`

	// Cards is only populated when a whole board is loaded.
	Cards []Card `json:"cards,omitempty"`
}

type Card struct {
	ID        string    `json:"id"`
	ListID    string    `json:"listId"`
	BoardID   string    `json:"boardId"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}
