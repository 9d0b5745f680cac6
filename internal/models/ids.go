// Package models contains the persisted documents, read views and API envelopes.
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// NewID returns a fresh 24-character hex document id.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed 24-character hex document id.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(strings.TrimSpace(id))
}

// Document carries the id and timestamps shared by every collection.
type Document struct {
	ID        string    `gorm:"primaryKey;type:varchar(24)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns an id when the caller did not supply one.
func (d *Document) BeforeCreate(*gorm.DB) error {
	if d.ID == "" {
		d.ID = NewID()
	}
	return nil
}
