package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	drepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Stream implements a PriceStream backed by the pricing gateway's
// WebSocket feed.
type Stream struct {
	apiToken       string
	websocketURL   string
	accountID      string
	pairs          []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a new pricing stream.
func NewStream(apiToken, websocketURL, accountID string, pairs []string, reconnectDelay, pingInterval time.Duration) drepo.PriceStream {
	return &Stream{
		apiToken:       apiToken,
		websocketURL:   websocketURL,
		accountID:      accountID,
		pairs:          pairs,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	header := map[string][]string{"Authorization": {"Bearer " + s.apiToken}}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, header)
	if err != nil {
		return fmt.Errorf("oanda connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	return nil
}

// Subscribe subscribes to configured instruments.
func (s *Stream) Subscribe(ctx context.Context) error {
	if s.conn == nil || !s.connected {
		return fmt.Errorf("oanda not connected")
	}
	msg := map[string]interface{}{
		"type":        "subscribe",
		"account_id":  s.accountID,
		"instruments": strings.Join(s.pairs, ","),
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

type priceFrame struct {
	Type       string `json:"type"`
	Instrument string `json:"instrument"`
	Time       string `json:"time"` // RFC3339 or unix float
	Bids       []struct {
		Price string `json:"price"`
	} `json:"bids"`
	Asks []struct {
		Price string `json:"price"`
	} `json:"asks"`
}

// Read streams Tick events and errors.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("oanda conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("oanda read: %w", err)
					return
				}
				var f priceFrame
				if err := json.Unmarshal(b, &f); err != nil {
					// ignore non-price frames
					continue
				}
				if f.Type != "PRICE" || len(f.Bids) == 0 || len(f.Asks) == 0 {
					continue
				}
				tick := toTick(f)
				if tick == nil {
					continue
				}
				select {
				case ticks <- tick:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

func toTick(f priceFrame) *models.Tick {
	bid, err := strconv.ParseFloat(f.Bids[0].Price, 64)
	if err != nil {
		return nil
	}
	ask, err := strconv.ParseFloat(f.Asks[0].Price, 64)
	if err != nil {
		return nil
	}
	ts := time.Now().Unix()
	if t, err := time.Parse(time.RFC3339Nano, f.Time); err == nil {
		ts = t.Unix()
	}
	return &models.Tick{
		Pair:      strings.ReplaceAll(f.Instrument, "_", ""),
		Timestamp: ts,
		Bid:       bid,
		Ask:       ask,
	}
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool { return s.connected }
