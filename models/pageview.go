package models

import "time"

// PageView aggregates daily views per path for the stats endpoints.
type PageView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"type:date;uniqueIndex:idx_pv_date_path;not null" json:"date"`
	Path      string    `gorm:"size:255;uniqueIndex:idx_pv_date_path;not null" json:"path"`
	Count     int64     `gorm:"default:0;not null" json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}
