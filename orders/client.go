package orders

import (
	"context"
	"encoding/json"

	"github.com/yeremiapane/restaurant-client/models"
	"github.com/yeremiapane/restaurant-client/realtime"
	"github.com/yeremiapane/restaurant-client/utils"
)

// Client mengirim cart sebagai satu pesanan atomik lewat channel.
type Client struct {
	manager *realtime.Manager
}

func NewClient(manager *realtime.Manager) *Client {
	return &Client{manager: manager}
}

type orderAck struct {
	IsOK  bool         `json:"is_ok"`
	Order models.Order `json:"order"`
}

// Submit memvalidasi cart lalu mengirimnya sebagai frame OrderMeal dan
// menunggu konfirmasi server. Validasi lokal (meja 0, cart kosong)
// dan channel yang belum Connected menolak sebelum ada frame yang
// keluar, jadi cart tidak pernah hilang diam-diam: gagal kirim berarti
// cart masih utuh.
func (oc *Client) Submit(ctx context.Context, tableNumber int, cart *Cart) (models.Order, error) {
	if tableNumber <= 0 {
		return models.Order{}, utils.ErrNoTable
	}
	if cart.Empty() {
		return models.Order{}, utils.ErrEmptyCart
	}

	ch, ok := oc.manager.Channel()
	if !ok {
		return models.Order{}, utils.ErrChannelNotReady
	}

	order := models.Order{
		TableNumber: tableNumber,
		Items:       cart.Lines(),
		Total:       cart.Total(),
		Ready:       false,
	}

	raw, err := ch.Request(ctx, realtime.EventOrderMeal, order, realtime.EventReceiveOrderSuccess)
	if err != nil {
		return models.Order{}, err
	}

	var ack orderAck
	if err := json.Unmarshal(raw, &ack); err != nil {
		return models.Order{}, err
	}
	if !ack.IsOK {
		// Cart dibiarkan utuh supaya customer bisa coba lagi
		return models.Order{}, &utils.ServerRejected{Message: "order was rejected by the server"}
	}

	cart.Clear()
	if utils.InfoLogger != nil {
		utils.InfoLogger.Printf("Order confirmed for table %d, total %s",
			ack.Order.TableNumber, utils.FormatAmount(ack.Order.Total))
	}
	return ack.Order, nil
}
