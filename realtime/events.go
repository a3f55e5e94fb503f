package realtime

import "encoding/json"

// Role yang dikenal server pada handshake connect.
const (
	RoleUser   = "user"
	RoleWaiter = "waiter"
)

// Event types: request (client -> server)
const (
	EventAssignUserToTable   = "AssignUserToTable"
	EventOrderMeal           = "OrderMeal"
	EventAssignWaiterToTable = "AssignWaiterToTable"
	EventStopWaitingTable    = "StopWaitingTable"
	EventPeekOrder           = "PeekOrder"
	EventMarkOrderAsReady    = "MarkOrderAsReady"
)

// Event types: reply/push (server -> client)
const (
	EventReceiveTableMessage = "ReceiveTableMessage"
	EventReceiveOrderSuccess = "ReceiveOrderSuccessMessage"
	EventReceiveWaiterAssign = "ReceiveWaiterAssignMessage"
	EventReceiveTableLeave   = "ReceiveTableLeaveMessage"
	EventSendOrder           = "SendOrder"
	EventReceiveOrderReady   = "ReceiveOrderReadyMessage"
	EventConnectNotification = "ConnectNotification"
)

// Message adalah satu frame di atas websocket. Ref diisi client pada
// request dan di-echo server pada reply supaya reply bisa dicocokkan
// ke request-nya; server lama yang tidak meng-echo ref tetap didukung
// (lihat pencocokan waiter di channel.go).
type Message struct {
	Event string          `json:"event"`
	Ref   string          `json:"ref,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewMessage membungkus payload menjadi frame siap kirim.
func NewMessage(event, ref string, payload interface{}) (Message, error) {
	msg := Message{Event: event, Ref: ref}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Message{}, err
		}
		msg.Data = data
	}
	return msg, nil
}
