// Package model defines database models for persistence layer.
package model

import "time"

// StorageEntryModel represents the storage_entries table: one serialized
// document per key. Revision increases on every write and guards updates.
type StorageEntryModel struct {
	Key       string    `gorm:"column:storage_key;type:varchar(128);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	Revision  int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the StorageEntryModel.
func (StorageEntryModel) TableName() string {
	return "storage_entries"
}
