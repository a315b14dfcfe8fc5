package models

import (
	"time"
)

// FishMap is a curated fishing-spot entry. Same ownership pattern as Post but
// it carries no media, so deleting one is a plain document delete.
type FishMap struct {
	ID        string    `firestore:"-" json:"id"`
	UserID    string    `firestore:"userId" json:"userId"`
	Title     string    `firestore:"title" json:"title"`
	Area      string    `firestore:"area" json:"area"`
	Season    string    `firestore:"season" json:"season"`
	Latitude  float64   `firestore:"latitude" json:"latitude"`
	Longitude float64   `firestore:"longitude" json:"longitude"`
	Content   string    `firestore:"content" json:"content"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}
