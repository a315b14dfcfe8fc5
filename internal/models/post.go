package models

import (
	"time"
)

// ExifData is per-image geolocation captured from the photo's EXIF block.
// Only the map view consumes it; posts without location data carry none.
type ExifData struct {
	Latitude  float64 `firestore:"latitude" json:"latitude"`
	Longitude float64 `firestore:"longitude" json:"longitude"`
	DateTime  string  `firestore:"dateTime" json:"dateTime,omitempty"`
}

// Post is a single catch record. UserName and UserImage are snapshots of the
// author's profile taken when the post is created; they are not re-joined on
// read and go stale if the profile changes later.
type Post struct {
	ID        string     `firestore:"-" json:"id"`
	UserID    string     `firestore:"userId" json:"userId"`
	UserName  string     `firestore:"userName" json:"userName"`
	UserImage string     `firestore:"userImage" json:"userImage"`
	Title     string     `firestore:"title" json:"title"`
	Images    []string   `firestore:"images" json:"images"`
	ExifData  []ExifData `firestore:"exifData" json:"exifData,omitempty"`
	Content   string     `firestore:"content" json:"content"`
	Weather   string     `firestore:"weather" json:"weather"`
	Lure      string     `firestore:"lure" json:"lure"`
	LureColor string     `firestore:"lureColor" json:"lureColor"`
	Length    float64    `firestore:"length" json:"length"`
	Weight    float64    `firestore:"weight" json:"weight"`
	CatchFish int        `firestore:"catchFish" json:"catchFish"`
	Area      string     `firestore:"area" json:"area,omitempty"`
	FishArea  string     `firestore:"fishArea" json:"fishArea"`
	UpdatedAt time.Time  `firestore:"updatedAt" json:"updatedAt"`
}
