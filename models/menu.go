package models

// MenuItem adalah snapshot satu item menu dari server.
// Bersifat read-only setelah di-fetch; cart tidak pernah mengubahnya.
type MenuItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}
