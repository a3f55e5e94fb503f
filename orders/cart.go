package orders

import (
	"sync"

	"github.com/yeremiapane/restaurant-client/models"
	"github.com/yeremiapane/restaurant-client/utils"
)

// Cart adalah pesanan yang sedang disusun customer, belum dikirim.
// Satu item maksimal satu baris; menambah item yang sudah ada hanya
// menaikkan quantity, urutan baris mengikuti urutan pertama kali
// item ditambahkan.
type Cart struct {
	mu    sync.Mutex
	lines []models.OrderLine
}

func NewCart() *Cart {
	return &Cart{}
}

// AddItem menambah satu porsi item ke cart.
func (c *Cart) AddItem(item models.MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == item.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, models.OrderLine{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: 1,
	})
}

// RemoveItem mengurangi satu porsi; baris dihapus saat quantity
// menyentuh nol, dan no-op kalau item tidak ada di cart.
func (c *Cart) RemoveItem(item models.MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID != item.ID {
			continue
		}
		if c.lines[i].Quantity > 1 {
			c.lines[i].Quantity--
		} else {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
		return
	}
}

// Lines mengembalikan salinan baris sesuai urutan tampil.
func (c *Cart) Lines() []models.OrderLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.OrderLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Total menghitung Σ(quantity × price), dibulatkan 2 desimal.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sum float64
	for _, line := range c.lines {
		sum += float64(line.Quantity) * line.Price
	}
	return utils.RoundAmount(sum)
}

// FormatTotal menampilkan total dengan tepat 2 digit desimal.
func (c *Cart) FormatTotal() string {
	return utils.FormatAmount(c.Total())
}

// Clear mengosongkan cart. Hanya dipanggil setelah server
// mengkonfirmasi pesanan.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}
