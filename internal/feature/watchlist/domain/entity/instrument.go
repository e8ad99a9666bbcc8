// Package entity defines the domain models for the watchlist feature.
package entity

import "time"

// Instrument is a tracked security. Code is exchange-qualified ("700.HK") and
// Market is derived from its suffix.
type Instrument struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:32;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Market    string    `gorm:"size:16;not null;index"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName keeps the table name stable across entity renames.
func (Instrument) TableName() string {
	return "instruments"
}
