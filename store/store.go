package store

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-client/models"
)

// Key yang dipakai untuk session
const (
	KeyToken  = "token"
	KeyUserID = "user_id"
	KeyRole   = "role"
)

// Store adalah penyimpanan key/value lokal untuk session, ditopang
// sqlite. Isinya hanya kenyamanan (tidak perlu login ulang), bukan
// sumber kebenaran.
type Store struct {
	db *gorm.DB
}

// Open membuka (atau membuat) file sqlite di path yang diberikan.
// ":memory:" bisa dipakai untuk test.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Get mengembalikan value untuk satu key, false kalau tidak ada.
func (s *Store) Get(key string) (string, bool) {
	var rec models.Session
	err := s.db.First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false
	}
	if err != nil {
		return "", false
	}
	return rec.Value, true
}

// Set menyimpan (upsert) satu pasangan key/value.
func (s *Store) Set(key, value string) error {
	rec := models.Session{Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}

// Clear menghapus seluruh session, dipakai saat logout.
func (s *Store) Clear() error {
	return s.db.Where("1 = 1").Delete(&models.Session{}).Error
}

// SaveSession menyimpan token plus identitas sekali jalan.
func (s *Store) SaveSession(token, userID, role string) error {
	if err := s.Set(KeyToken, token); err != nil {
		return err
	}
	if err := s.Set(KeyUserID, userID); err != nil {
		return err
	}
	return s.Set(KeyRole, role)
}

// LoadSession membaca session tersimpan; ok bernilai false kalau
// salah satu bagian identitas tidak ada.
func (s *Store) LoadSession() (token, userID, role string, ok bool) {
	token, ok1 := s.Get(KeyToken)
	userID, ok2 := s.Get(KeyUserID)
	role, ok3 := s.Get(KeyRole)
	return token, userID, role, ok1 && ok2 && ok3
}
