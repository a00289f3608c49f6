package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"averix/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	feedBuffer   = 256
	clientBuffer = 64
)

// TradeEvent is the public view of an executed trade. It carries no user id.
type TradeEvent struct {
	Symbol   string    `json:"symbol"`
	Side     string    `json:"side"`
	Amount   float64   `json:"amount"`
	Price    float64   `json:"price"`
	PnL      float64   `json:"pnl"`
	ClosedAt time.Time `json:"closed_at"`
}

// TradeFeed fans executed trades out to websocket subscribers. All client
// bookkeeping happens on the Run goroutine.
type TradeFeed struct {
	clients    map[*FeedClient]bool
	broadcast  chan TradeEvent
	register   chan *FeedClient
	unregister chan *FeedClient
	done       chan struct{}
	connected  atomic.Int64
	logger     *slog.Logger
}

type FeedClient struct {
	feed *TradeFeed
	conn *websocket.Conn
	send chan []byte
}

func NewTradeFeed(logger *slog.Logger) *TradeFeed {
	return &TradeFeed{
		clients:    make(map[*FeedClient]bool),
		broadcast:  make(chan TradeEvent, feedBuffer),
		register:   make(chan *FeedClient),
		unregister: make(chan *FeedClient),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves the feed until ctx is cancelled, then closes every client.
func (h *TradeFeed) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.connected.Add(1)
			h.logger.Debug("feed client connected", slog.Int64("clients", h.connected.Load()))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug("feed client disconnected", slog.Int64("clients", h.connected.Load()))
			}

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("marshal trade event", slog.Any("error", err))
				continue
			}

			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.drop(client)
				}
			}
		}
	}
}

func (h *TradeFeed) drop(client *FeedClient) {
	delete(h.clients, client)
	close(client.send)
	h.connected.Add(-1)
}

// ClientCount reports the number of registered subscribers.
func (h *TradeFeed) ClientCount() int {
	return int(h.connected.Load())
}

// PublishTrade queues the trade for broadcast. It never blocks: when the
// buffer is full or the feed has stopped the event is dropped.
func (h *TradeFeed) PublishTrade(t models.Trade) {
	event := TradeEvent{
		Symbol: t.Symbol,
		Side:   t.Side,
		Amount: t.Amount,
		Price:  t.Price,
		PnL:    t.PnL,
	}
	if t.ClosedAt != nil {
		event.ClosedAt = *t.ClosedAt
	}

	select {
	case <-h.done:
	case h.broadcast <- event:
	default:
		h.logger.Warn("trade feed full, dropping event", slog.String("trade_id", t.ID))
	}
}

// Register subscribes conn and starts its pumps. It returns false when the
// feed is no longer running; conn is closed in that case.
func (h *TradeFeed) Register(conn *websocket.Conn) bool {
	client := &FeedClient{
		feed: h,
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return false
	}

	go client.writePump()
	go client.readPump()
	return true
}

func (c *FeedClient) readPump() {
	defer func() {
		select {
		case c.feed.unregister <- c:
		case <-c.feed.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.feed.logger.Debug("feed read error", slog.Any("error", err))
			}
			return
		}
	}
}

func (c *FeedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
