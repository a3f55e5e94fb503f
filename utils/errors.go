package utils

import (
	"errors"
	"fmt"
)

// Kesalahan lokal yang ditolak sebelum ada frame yang dikirim ke server.
var (
	ErrChannelNotReady = errors.New("channel is not connected")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNoTable         = errors.New("table number is required")
	ErrNoIdentity      = errors.New("user id is required")
	ErrUnknownRole     = errors.New("role must be user or waiter")
	ErrRequestTimedOut = errors.New("request timed out")
)

// ConnectionError menandakan handshake transport gagal atau putus
// tanpa auto-recovery. Caller boleh retry.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ServerRejected membawa pesan penolakan dari server apa adanya,
// misalnya meja sudah ditempati customer lain.
type ServerRejected struct {
	Message string
}

func (e *ServerRejected) Error() string { return e.Message }
