package tablesync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-client/models"
	"github.com/yeremiapane/restaurant-client/realtime"
	"github.com/yeremiapane/restaurant-client/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	m.Run()
}

func mustRaw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// newTableServer menjalankan server palsu yang menjawab protokol meja.
// handle menerima frame request dan mengembalikan reply (atau nil
// untuk diam).
func newTableServer(handle func(t *testing.T, msg realtime.Message) *realtime.Message) func(*testing.T) *realtime.Manager {
	return func(t *testing.T) *realtime.Manager {
		upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()
			for {
				var msg realtime.Message
				if err := conn.ReadJSON(&msg); err != nil {
					return
				}
				if reply := handle(t, msg); reply != nil {
					reply.Ref = msg.Ref
					conn.WriteJSON(reply)
				}
			}
		}))
		t.Cleanup(srv.Close)

		manager := realtime.NewManager("ws" + strings.TrimPrefix(srv.URL, "http"))
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err := manager.Connect(ctx, "u1", realtime.RoleUser)
		require.NoError(t, err)
		t.Cleanup(func() {
			if ch, ok := manager.Channel(); ok {
				ch.Close()
			}
		})
		return manager
	}
}

func TestAssignUserToTableSuccess(t *testing.T) {
	setup := newTableServer(func(t *testing.T, msg realtime.Message) *realtime.Message {
		require.Equal(t, realtime.EventAssignUserToTable, msg.Event)
		return &realtime.Message{
			Event: realtime.EventReceiveTableMessage,
			Data: mustRaw(t, map[string]interface{}{
				"message": "ok", "is_ok": true, "table_number": 5, "user_id": "u1",
			}),
		}
	})
	s := NewSynchronizer(setup(t))

	err := s.AssignUserToTable(context.Background(), "u1", 5)
	require.NoError(t, err)

	table, ok := s.Table(5)
	require.True(t, ok)
	assert.True(t, table.Occupied)
	assert.Equal(t, "u1", table.UserID)
	assert.Empty(t, table.WaiterID)
}

func TestAssignUserToTableConflict(t *testing.T) {
	setup := newTableServer(func(t *testing.T, msg realtime.Message) *realtime.Message {
		return &realtime.Message{
			Event: realtime.EventReceiveTableMessage,
			Data: mustRaw(t, map[string]interface{}{
				"message": "table 5 is already occupied", "is_ok": false,
				"table_number": 5, "user_id": "u2",
			}),
		}
	})
	s := NewSynchronizer(setup(t))

	err := s.AssignUserToTable(context.Background(), "u1", 5)

	var rejected *utils.ServerRejected
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "table 5 is already occupied", rejected.Message)

	// Penolakan server tidak boleh mengubah cermin
	_, ok := s.Table(5)
	assert.False(t, ok)
}

func TestAssignWaiterReplacesWholeProjection(t *testing.T) {
	setup := newTableServer(func(t *testing.T, msg realtime.Message) *realtime.Message {
		switch msg.Event {
		case realtime.EventAssignUserToTable:
			return &realtime.Message{
				Event: realtime.EventReceiveTableMessage,
				Data: mustRaw(t, map[string]interface{}{
					"message": "ok", "is_ok": true, "table_number": 9, "user_id": "u1",
				}),
			}
		case realtime.EventAssignWaiterToTable:
			// Snapshot baru tidak memuat meja 9: harus ikut hilang
			return &realtime.Message{
				Event: realtime.EventReceiveWaiterAssign,
				Data: mustRaw(t, map[string]interface{}{
					"message": "waiter assigned",
					"tables": []models.TableState{
						{TableNumber: 2, WaiterID: "w1"},
						{TableNumber: 3},
					},
				}),
			}
		}
		return nil
	})
	s := NewSynchronizer(setup(t))

	require.NoError(t, s.AssignUserToTable(context.Background(), "u1", 9))
	_, ok := s.Table(9)
	require.True(t, ok)

	message, err := s.AssignWaiterToTable(context.Background(), "w1", 2)
	require.NoError(t, err)
	assert.Equal(t, "waiter assigned", message)

	_, ok = s.Table(9)
	assert.False(t, ok, "stale table must be dropped on snapshot replace")

	tables := s.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, 2, tables[0].TableNumber)
	assert.Equal(t, "w1", tables[0].WaiterID)
	assert.Equal(t, 3, tables[1].TableNumber)
}

func TestStopWaitingTableReplacesProjection(t *testing.T) {
	setup := newTableServer(func(t *testing.T, msg realtime.Message) *realtime.Message {
		if msg.Event != realtime.EventStopWaitingTable {
			return nil
		}
		return &realtime.Message{
			Event: realtime.EventReceiveTableLeave,
			Data: mustRaw(t, map[string]interface{}{
				"tables": []models.TableState{{TableNumber: 4}},
			}),
		}
	})
	s := NewSynchronizer(setup(t))

	require.NoError(t, s.StopWaitingTable(context.Background(), 4))

	tables := s.Tables()
	require.Len(t, tables, 1)
	assert.Empty(t, tables[0].WaiterID)
}

func TestPeekOrder(t *testing.T) {
	order := models.Order{
		TableNumber: 6,
		Items:       []models.OrderLine{{ItemID: "m1", Name: "Nasi Goreng", Price: 10.5, Quantity: 2}},
		Total:       21.00,
	}
	setup := newTableServer(func(t *testing.T, msg realtime.Message) *realtime.Message {
		if msg.Event != realtime.EventPeekOrder {
			return nil
		}
		return &realtime.Message{
			Event: realtime.EventSendOrder,
			Data:  mustRaw(t, map[string]interface{}{"order": order}),
		}
	})
	s := NewSynchronizer(setup(t))

	got, err := s.PeekOrder(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, order, got)

	cached, ok := s.OrderFor(6)
	require.True(t, ok)
	assert.Equal(t, order, cached)
}

func TestMarkOrderReady(t *testing.T) {
	setup := newTableServer(func(t *testing.T, msg realtime.Message) *realtime.Message {
		if msg.Event != realtime.EventMarkOrderAsReady {
			return nil
		}
		return &realtime.Message{
			Event: realtime.EventReceiveOrderReady,
			Data: mustRaw(t, map[string]interface{}{
				"order":        models.Order{TableNumber: 8, Total: 12.00, Ready: true},
				"table_number": 8,
			}),
		}
	})
	s := NewSynchronizer(setup(t))

	order, err := s.MarkOrderReady(context.Background(), 8)
	require.NoError(t, err)
	assert.True(t, order.Ready)

	cached, ok := s.OrderFor(8)
	require.True(t, ok)
	assert.True(t, cached.Ready)
}

func TestConnectNotificationSeedsProjection(t *testing.T) {
	setup := newTableServer(func(t *testing.T, msg realtime.Message) *realtime.Message {
		if msg.Event != "hello" {
			return nil
		}
		// Push tanpa ref, seperti notifikasi connect dari server
		return &realtime.Message{
			Event: realtime.EventConnectNotification,
			Data: mustRaw(t, map[string]interface{}{
				"session_id": "s1",
				"is_ok":      true,
				"tables": []models.TableState{
					{TableNumber: 1},
					{TableNumber: 2, Occupied: true, UserID: "u7"},
				},
			}),
		}
	})
	manager := setup(t)
	s := NewSynchronizer(manager)
	require.NoError(t, s.Start())

	ch, ok := manager.Channel()
	require.True(t, ok)
	require.NoError(t, ch.Send("hello", nil))

	assert.Eventually(t, func() bool {
		return len(s.Tables()) == 2
	}, 2*time.Second, 20*time.Millisecond)

	table, ok := s.Table(2)
	require.True(t, ok)
	assert.True(t, table.Occupied)
	assert.Equal(t, "u7", table.UserID)
}

func TestOperationsRequireChannel(t *testing.T) {
	s := NewSynchronizer(realtime.NewManager("ws://unused"))

	assert.ErrorIs(t, s.AssignUserToTable(context.Background(), "u1", 1), utils.ErrChannelNotReady)
	_, err := s.AssignWaiterToTable(context.Background(), "w1", 1)
	assert.ErrorIs(t, err, utils.ErrChannelNotReady)
	assert.ErrorIs(t, s.StopWaitingTable(context.Background(), 1), utils.ErrChannelNotReady)
	_, err = s.PeekOrder(context.Background(), 1)
	assert.ErrorIs(t, err, utils.ErrChannelNotReady)
	assert.ErrorIs(t, s.Start(), utils.ErrChannelNotReady)
}
