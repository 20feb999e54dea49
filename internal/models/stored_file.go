package models

import "time"

// StoredFile is a content-addressed upload shared by every event that references it.
type StoredFile struct {
	Hash      string    `gorm:"primaryKey;size:64" json:"hash"`
	Reference string    `gorm:"not null;default:''" json:"reference"`
	RefCount  int       `gorm:"not null;default:0" json:"ref_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
