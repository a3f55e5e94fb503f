package models

// TableState adalah cermin lokal dari status meja di server.
// Dua dimensi statusnya independen: meja bisa ditempati customer
// tanpa punya waiter, dan sebaliknya.
type TableState struct {
	TableNumber int    `json:"table_number"`
	Occupied    bool   `json:"occupied"`
	WaiterID    string `json:"waiter_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}
