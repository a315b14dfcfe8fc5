package models

import (
	"time"
)

type User struct {
	ID            string    `firestore:"-" json:"id"`
	UserName      string    `firestore:"userName" json:"userName"`
	Email         string    `firestore:"email" json:"email"`
	Profile       string    `firestore:"profile" json:"profile"`
	UserImage     string    `firestore:"userImage" json:"userImage"`
	UserYoutube   string    `firestore:"userYoutube" json:"userYoutube,omitempty"`
	UserTiktok    string    `firestore:"userTiktok" json:"userTiktok,omitempty"`
	UserInstagram string    `firestore:"userInstagram" json:"userInstagram,omitempty"`
	UserX         string    `firestore:"userX" json:"userX,omitempty"`
	Followed      []string  `firestore:"followed" json:"followed"`
	UpdatedAt     time.Time `firestore:"updatedAt" json:"updatedAt"`
}
