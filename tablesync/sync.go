package tablesync

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/yeremiapane/restaurant-client/models"
	"github.com/yeremiapane/restaurant-client/realtime"
	"github.com/yeremiapane/restaurant-client/utils"
)

// Synchronizer memelihara cermin lokal status meja dan pesanan per
// meja. Cermin hanya berubah dari reply/push server, tidak pernah
// ditebak optimistik di sisi client; reply yang membawa daftar meja
// selalu MENGGANTI seluruh cermin (snapshot replace), bukan merge.
type Synchronizer struct {
	manager *realtime.Manager

	mu     sync.RWMutex
	tables map[int]models.TableState
	orders map[int]models.Order
}

func NewSynchronizer(manager *realtime.Manager) *Synchronizer {
	return &Synchronizer{
		manager: manager,
		tables:  make(map[int]models.TableState),
		orders:  make(map[int]models.Order),
	}
}

type connectPayload struct {
	SessionID string              `json:"session_id"`
	IsOK      bool                `json:"is_ok"`
	Tables    []models.TableState `json:"tables"`
}

// Start mendaftarkan handler push di channel yang sedang aktif.
// Dipanggil ulang setiap kali Manager.Connect mengganti channel.
func (s *Synchronizer) Start() error {
	ch, ok := s.manager.Channel()
	if !ok {
		return utils.ErrChannelNotReady
	}

	ch.On(realtime.EventConnectNotification, func(data json.RawMessage) {
		var payload connectPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			if utils.ErrorLogger != nil {
				utils.ErrorLogger.Printf("Bad connect notification: %v", err)
			}
			return
		}
		s.replaceTables(payload.Tables)
		if utils.InfoLogger != nil {
			utils.InfoLogger.Printf("Session %s established, %d tables",
				payload.SessionID, len(payload.Tables))
		}
	})
	return nil
}

// Stop melepas handler push dari channel aktif, dipanggil saat layar
// di-unmount supaya tidak ada update setelah disposal.
func (s *Synchronizer) Stop() {
	if ch, ok := s.manager.Channel(); ok {
		ch.Off(realtime.EventConnectNotification)
	}
}

func (s *Synchronizer) channel() (*realtime.Channel, error) {
	ch, ok := s.manager.Channel()
	if !ok {
		return nil, utils.ErrChannelNotReady
	}
	return ch, nil
}

// replaceTables mengganti seluruh cermin dengan daftar dari server.
// Meja yang tidak ada di daftar ikut hilang.
func (s *Synchronizer) replaceTables(list []models.TableState) {
	next := make(map[int]models.TableState, len(list))
	for _, t := range list {
		next[t.TableNumber] = t
	}
	s.mu.Lock()
	s.tables = next
	s.mu.Unlock()
}

type assignUserRequest struct {
	UserID      string `json:"user_id"`
	TableNumber int    `json:"table_number"`
}

type assignUserReply struct {
	Message     string `json:"message"`
	IsOK        bool   `json:"is_ok"`
	TableNumber int    `json:"table_number"`
	UserID      string `json:"user_id"`
}

// AssignUserToTable meminta server menempatkan customer di satu meja.
// Server satu-satunya penentu sah-tidaknya; kalau ditolak (misal meja
// sudah ditempati) cermin tidak berubah dan pesan server diteruskan.
func (s *Synchronizer) AssignUserToTable(ctx context.Context, userID string, tableNumber int) error {
	if userID == "" {
		return utils.ErrNoIdentity
	}
	if tableNumber <= 0 {
		return utils.ErrNoTable
	}
	ch, err := s.channel()
	if err != nil {
		return err
	}

	raw, err := ch.Request(ctx, realtime.EventAssignUserToTable,
		assignUserRequest{UserID: userID, TableNumber: tableNumber},
		realtime.EventReceiveTableMessage)
	if err != nil {
		return err
	}

	var reply assignUserReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return err
	}
	if !reply.IsOK {
		return &utils.ServerRejected{Message: reply.Message}
	}

	s.mu.Lock()
	t := s.tables[reply.TableNumber]
	t.TableNumber = reply.TableNumber
	t.Occupied = true
	t.UserID = reply.UserID
	s.tables[reply.TableNumber] = t
	s.mu.Unlock()
	return nil
}

type waiterRequest struct {
	WaiterID    string `json:"waiter_id,omitempty"`
	TableNumber int    `json:"table_number"`
}

type waiterAssignReply struct {
	Message string              `json:"message"`
	Tables  []models.TableState `json:"tables"`
}

// AssignWaiterToTable meminta server menugaskan waiter ke satu meja.
// Reply selalu membawa daftar meja lengkap dan cermin diganti utuh.
func (s *Synchronizer) AssignWaiterToTable(ctx context.Context, waiterID string, tableNumber int) (string, error) {
	if waiterID == "" {
		return "", utils.ErrNoIdentity
	}
	if tableNumber <= 0 {
		return "", utils.ErrNoTable
	}
	ch, err := s.channel()
	if err != nil {
		return "", err
	}

	raw, err := ch.Request(ctx, realtime.EventAssignWaiterToTable,
		waiterRequest{WaiterID: waiterID, TableNumber: tableNumber},
		realtime.EventReceiveWaiterAssign)
	if err != nil {
		return "", err
	}

	var reply waiterAssignReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", err
	}
	s.replaceTables(reply.Tables)
	return reply.Message, nil
}

type tableLeaveReply struct {
	Tables []models.TableState `json:"tables"`
}

// StopWaitingTable melepas penugasan waiter dari satu meja. Cermin
// diganti dengan daftar dari server, sama seperti assign.
func (s *Synchronizer) StopWaitingTable(ctx context.Context, tableNumber int) error {
	if tableNumber <= 0 {
		return utils.ErrNoTable
	}
	ch, err := s.channel()
	if err != nil {
		return err
	}

	raw, err := ch.Request(ctx, realtime.EventStopWaitingTable,
		waiterRequest{TableNumber: tableNumber},
		realtime.EventReceiveTableLeave)
	if err != nil {
		return err
	}

	var reply tableLeaveReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return err
	}
	s.replaceTables(reply.Tables)
	return nil
}

type orderReply struct {
	Order       models.Order `json:"order"`
	TableNumber int          `json:"table_number"`
}

// PeekOrder mengambil pesanan berjalan satu meja. Listener reply
// hanya hidup selama request ini (one-shot), jadi panggilan beruntun
// tidak saling mencuri jawaban.
func (s *Synchronizer) PeekOrder(ctx context.Context, tableNumber int) (models.Order, error) {
	if tableNumber <= 0 {
		return models.Order{}, utils.ErrNoTable
	}
	ch, err := s.channel()
	if err != nil {
		return models.Order{}, err
	}

	raw, err := ch.Request(ctx, realtime.EventPeekOrder,
		waiterRequest{TableNumber: tableNumber},
		realtime.EventSendOrder)
	if err != nil {
		return models.Order{}, err
	}

	var reply orderReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return models.Order{}, err
	}

	s.mu.Lock()
	s.orders[tableNumber] = reply.Order
	s.mu.Unlock()
	return reply.Order, nil
}

// MarkOrderReady menandai pesanan satu meja selesai dimasak dan
// memperbarui cermin pesanan pada meja yang dikembalikan server.
func (s *Synchronizer) MarkOrderReady(ctx context.Context, tableNumber int) (models.Order, error) {
	if tableNumber <= 0 {
		return models.Order{}, utils.ErrNoTable
	}
	ch, err := s.channel()
	if err != nil {
		return models.Order{}, err
	}

	raw, err := ch.Request(ctx, realtime.EventMarkOrderAsReady,
		waiterRequest{TableNumber: tableNumber},
		realtime.EventReceiveOrderReady)
	if err != nil {
		return models.Order{}, err
	}

	var reply orderReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return models.Order{}, err
	}

	s.mu.Lock()
	s.orders[reply.TableNumber] = reply.Order
	s.mu.Unlock()
	return reply.Order, nil
}

// Tables mengembalikan salinan cermin, urut nomor meja supaya stabil
// untuk ditampilkan.
func (s *Synchronizer) Tables() []models.TableState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TableState, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TableNumber < out[j].TableNumber
	})
	return out
}

// Table mengembalikan status satu meja.
func (s *Synchronizer) Table(tableNumber int) (models.TableState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[tableNumber]
	return t, ok
}

// OrderFor mengembalikan pesanan terakhir yang diketahui untuk satu meja.
func (s *Synchronizer) OrderFor(tableNumber int) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[tableNumber]
	return o, ok
}
