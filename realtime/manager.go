package realtime

import (
	"context"
	"net/url"
	"sync"

	"github.com/yeremiapane/restaurant-client/utils"
)

// Manager memegang maksimal satu channel hidup untuk seluruh proses.
// Hanya Connect yang boleh mengganti handle; komponen lain membacanya
// lewat Channel() dan harus siap menerima "belum ada".
type Manager struct {
	mu      sync.RWMutex
	channel *Channel
	baseURL string
}

func NewManager(baseURL string) *Manager {
	return &Manager{baseURL: baseURL}
}

// Channel mengembalikan handle yang sedang dipegang, atau false kalau
// belum ada koneksi.
func (m *Manager) Channel() (*Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.channel == nil {
		return nil, false
	}
	return m.channel, true
}

// SetChannel mengganti handle yang dipegang. Channel lama (jika ada)
// ditutup dulu supaya tidak ada dua socket hidup sekaligus.
func (m *Manager) SetChannel(ch *Channel) {
	m.mu.Lock()
	old := m.channel
	m.channel = ch
	m.mu.Unlock()

	if old != nil && old != ch {
		old.Close()
	}
}

// Connect melakukan handshake ke server dengan identitas user dan
// role sebagai query parameter, lalu menyimpan handle hasilnya.
// Kegagalan handshake mengembalikan ConnectionError dan tidak
// mengubah handle yang sudah ada; caller boleh retry.
func (m *Manager) Connect(ctx context.Context, userID, role string) (*Channel, error) {
	if userID == "" {
		return nil, utils.ErrNoIdentity
	}
	if role != RoleUser && role != RoleWaiter {
		return nil, utils.ErrUnknownRole
	}

	u, err := url.Parse(m.baseURL)
	if err != nil {
		return nil, &utils.ConnectionError{Err: err}
	}
	u.Path = "/ws"
	q := u.Query()
	q.Set("user_id", userID)
	q.Set("role", role)
	u.RawQuery = q.Encode()

	ch, err := Dial(ctx, u.String(), true)
	if err != nil {
		return nil, err
	}

	m.SetChannel(ch)
	if utils.InfoLogger != nil {
		utils.InfoLogger.Printf("Channel connected as %s (role=%s)", userID, role)
	}
	return ch, nil
}
