package models

import "time"

// Session adalah satu baris key/value pada penyimpanan lokal.
// Dipakai untuk mengingat token dan identitas antar restart aplikasi.
type Session struct {
	Key       string `gorm:"primaryKey;type:varchar(50)"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}
