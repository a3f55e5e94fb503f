package models

// Profile adalah identitas yang dikembalikan server saat login.
type Profile struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}
