package model

import "time"

// ShelfItem is a loose task parked by the user while a timer runs.
type ShelfItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
