package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-client/utils"
)

// DefaultRequestTimeout adalah batas waktu round-trip kalau context
// caller tidak membawa deadline sendiri.
const DefaultRequestTimeout = 8 * time.Second

// State channel: Disconnected -> Connecting -> Connected ->
// (Disconnected | Reconnecting -> Connected)
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Handler menerima payload mentah satu event.
// Handler dipanggil dari goroutine read pump; jangan memanggil
// Request dari dalam handler karena read pump akan terblokir.
type Handler func(data json.RawMessage)

// waiter adalah listener one-shot untuk satu reply. Ref kosong berarti
// cocok dengan kemunculan event berikutnya apa pun ref-nya.
type waiter struct {
	ref string
	ch  chan json.RawMessage
}

// Channel adalah koneksi realtime dua arah ke server. Satu goroutine
// read pump men-dispatch frame masuk ke waiter (one-shot) atau handler
// (persisten); waiter selalu dilepas begitu terpakai supaya tidak ada
// listener bocor antar request.
type Channel struct {
	url string

	mu       sync.Mutex
	conn     *websocket.Conn
	state    State
	handlers map[string]Handler
	waiters  map[string][]*waiter

	writeMu sync.Mutex

	reconnect bool
	closed    chan struct{}
	closeOnce sync.Once
}

// Dial membuka koneksi websocket dan memulai read pump. Kalau
// handshake gagal, tidak ada goroutine yang tersisa dan caller boleh
// retry.
func Dial(ctx context.Context, url string, autoReconnect bool) (*Channel, error) {
	c := &Channel{
		url:       url,
		state:     Connecting,
		handlers:  make(map[string]Handler),
		waiters:   make(map[string][]*waiter),
		reconnect: autoReconnect,
		closed:    make(chan struct{}),
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		c.setState(Disconnected)
		return nil, &utils.ConnectionError{Err: err}
	}

	c.mu.Lock()
	c.conn = conn
	c.state = Connected
	c.mu.Unlock()

	go c.readPump()
	return c, nil
}

// State mengembalikan status channel saat ini.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// On mendaftarkan handler persisten untuk satu event, menggantikan
// handler sebelumnya kalau ada.
func (c *Channel) On(event string, fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = fn
}

// Off melepas handler persisten untuk satu event.
func (c *Channel) Off(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, event)
}

// Once mendaftarkan listener yang otomatis dilepas setelah event
// pertama kali diterima.
func (c *Channel) Once(event string, fn Handler) {
	w := &waiter{ch: make(chan json.RawMessage, 1)}
	c.addWaiter(event, w)
	go func() {
		select {
		case data := <-w.ch:
			fn(data)
		case <-c.closed:
			c.removeWaiter(event, w)
		}
	}()
}

// Send mengirim satu frame fire-and-forget. Ditolak dengan
// ErrChannelNotReady kalau channel belum/sedang tidak Connected.
func (c *Channel) Send(event string, payload interface{}) error {
	return c.write(event, "", payload)
}

func (c *Channel) write(event, ref string, payload interface{}) error {
	c.mu.Lock()
	conn, state := c.conn, c.state
	c.mu.Unlock()

	if state != Connected || conn == nil {
		return utils.ErrChannelNotReady
	}

	msg, err := NewMessage(event, ref, payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		return &utils.ConnectionError{Err: err}
	}
	return nil
}

// Request mengirim satu request dan menunggu reply-nya. Listener
// didaftarkan sebelum frame keluar supaya reply yang datang cepat
// tidak hilang, dan dilepas tepat saat reply pertama cocok atau saat
// deadline habis.
func (c *Channel) Request(ctx context.Context, event string, payload interface{}, replyEvent string) (json.RawMessage, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultRequestTimeout)
		defer cancel()
	}

	w := &waiter{ref: uuid.NewString(), ch: make(chan json.RawMessage, 1)}
	c.addWaiter(replyEvent, w)

	if err := c.write(event, w.ref, payload); err != nil {
		c.removeWaiter(replyEvent, w)
		return nil, err
	}

	select {
	case data := <-w.ch:
		return data, nil
	case <-ctx.Done():
		c.removeWaiter(replyEvent, w)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, utils.ErrRequestTimedOut
		}
		return nil, ctx.Err()
	case <-c.closed:
		c.removeWaiter(replyEvent, w)
		return nil, utils.ErrChannelNotReady
	}
}

// Close menutup channel dan menghentikan read pump. Idempotent.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.mu.Lock()
		conn := c.conn
		c.state = Disconnected
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
	})
	return nil
}

func (c *Channel) addWaiter(event string, w *waiter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waiters[event] = append(c.waiters[event], w)
}

func (c *Channel) removeWaiter(event string, w *waiter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.waiters[event]
	for i, cand := range list {
		if cand == w {
			c.waiters[event] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(c.waiters[event]) == 0 {
		delete(c.waiters, event)
	}
}

// readPump membaca frame sampai koneksi putus, lalu redial kalau
// auto-reconnect aktif.
func (c *Channel) readPump() {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
				return
			default:
			}
			// Koneksi mati tidak terpakai lagi, lepas fd-nya
			conn.Close()
			if !c.reconnect || !c.redial() {
				c.setState(Disconnected)
				return
			}
			continue
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			if utils.ErrorLogger != nil {
				utils.ErrorLogger.Printf("Dropping malformed frame: %v", err)
			}
			continue
		}
		c.dispatch(msg)
	}
}

// dispatch menyerahkan frame ke waiter yang cocok, atau ke handler
// persisten kalau tidak ada waiter. Waiter dengan ref cocok menang;
// reply tanpa ref (server lama) diserahkan ke waiter tertua.
func (c *Channel) dispatch(msg Message) {
	c.mu.Lock()
	var matched *waiter
	list := c.waiters[msg.Event]
	for i, w := range list {
		if w.ref == "" || msg.Ref == "" || w.ref == msg.Ref {
			matched = w
			c.waiters[msg.Event] = append(list[:i], list[i+1:]...)
			if len(c.waiters[msg.Event]) == 0 {
				delete(c.waiters, msg.Event)
			}
			break
		}
	}
	handler := c.handlers[msg.Event]
	c.mu.Unlock()

	if matched != nil {
		matched.ch <- msg.Data
		return
	}
	if handler != nil {
		handler(msg.Data)
		return
	}
	if utils.InfoLogger != nil {
		utils.InfoLogger.Printf("No listener for event %s, frame dropped", msg.Event)
	}
}

// redial mencoba menyambung ulang dengan backoff sampai berhasil atau
// channel ditutup.
func (c *Channel) redial() bool {
	c.setState(Reconnecting)
	wait := time.Second

	for {
		select {
		case <-c.closed:
			return false
		case <-time.After(wait):
		}

		conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err == nil {
			c.mu.Lock()
			c.conn = conn
			c.state = Connected
			c.mu.Unlock()
			if utils.InfoLogger != nil {
				utils.InfoLogger.Printf("Channel reconnected to %s", c.url)
			}
			return true
		}

		if utils.ErrorLogger != nil {
			utils.ErrorLogger.Printf("Reconnect failed, retrying in %s: %v", wait, err)
		}
		if wait < 30*time.Second {
			wait *= 2
		}
	}
}
