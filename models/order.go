package models

// OrderLine adalah satu baris pesanan di dalam cart.
// Maksimal satu baris per item; quantity selalu >= 1.
type OrderLine struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order adalah pesanan yang sudah dikonfirmasi server.
type Order struct {
	TableNumber int         `json:"table_number"`
	Items       []OrderLine `json:"items"`
	Total       float64     `json:"total"`
	Ready       bool        `json:"ready"`
}
