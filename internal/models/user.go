package models

import "time"

// User represents an authenticated principal. A row is created the first time
// the identity provider vouches for an external subject; users are never hard
// deleted.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"size:191;uniqueIndex;not null" json:"external_id"`
	Email      string    `gorm:"size:255" json:"email"`
	Name       string    `gorm:"size:255" json:"name"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
