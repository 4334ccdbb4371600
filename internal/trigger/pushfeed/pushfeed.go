// internal/trigger/pushfeed/pushfeed.go
package pushfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	conf "github.com/bartek5186/www2pdv/internal/config"
	"github.com/bartek5186/www2pdv/internal/store"
	"github.com/bartek5186/www2pdv/internal/trigger"
	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"
)

const reconnectCooldown = 5 * time.Second

// Client – klient kanału push nowych zamówień. Łączy się ponownie bez
// końca; żaden błąd połączenia ani treści nie kończy go na stałe.
type Client struct {
	log zerolog.Logger
	eng trigger.Engine
	url string

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	ws *websocket.Conn
}

// message – rozpoznawane warianty komunikatu z kanału.
type message struct {
	Action  string          `json:"action"`
	OrderID int64           `json:"order_id"`
	Order   json.RawMessage `json:"order"`
}

func (c *Client) Name() string { return "pushfeed" }

func (c *Client) Start(ctx context.Context) error {
	if c.url == "" {
		return errors.New("pushfeed: pusty URL")
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.log.Info().Str("url", c.url).Msg("start")

	for {
		if c.ctx.Err() != nil {
			c.log.Info().Msg("stop")
			return nil
		}
		if err := c.connectAndRead(); err != nil {
			c.log.Warn().Err(err).Msg("WS erro")
		}
		select {
		case <-c.ctx.Done():
			c.log.Info().Msg("stop")
			return nil
		case <-time.After(reconnectCooldown):
		}
	}
}

func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Lock()
	if c.ws != nil {
		_ = c.ws.Close()
	}
	c.mu.Unlock()
}

func (c *Client) connectAndRead() error {
	ws, err := websocket.Dial(c.url, "", "http://localhost/")
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.ws = nil
		c.mu.Unlock()
		_ = ws.Close()
	}()

	c.log.Info().Msg("WS conectado")

	for {
		var raw []byte
		if err := websocket.Message.Receive(ws, &raw); err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("WS fechado")
			}
			return fmt.Errorf("receive: %w", err)
		}
		// zła wiadomość nie zrywa połączenia
		c.handle(raw)
	}
}

// handle rozpoznaje wariant komunikatu; nieznane i zepsute loguje i pomija.
func (c *Client) handle(raw []byte) {
	var msg message
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.log.Warn().Str("raw", string(raw)).Msg("WS mensagem inválida")
		return
	}
	switch {
	case msg.Action == "new_order" && msg.OrderID != 0:
		c.log.Info().Int64("order_id", msg.OrderID).Msg("WS new_order")
		c.eng.TryStartSync()
	case msg.Action == "order_payload" && len(msg.Order) > 0:
		var p store.OrderPayload
		if err := json.Unmarshal(msg.Order, &p); err != nil {
			c.log.Warn().Err(err).Msg("WS order_payload: zły ładunek")
			return
		}
		c.log.Info().Int64("order_id", p.OrderID).Msg("WS order_payload recebido")
		if err := c.eng.ExportSingle(p); err != nil {
			c.log.Error().Err(err).Int64("order_id", p.OrderID).Msg("Falha ao processar payload")
		}
	default:
		c.log.Warn().Str("raw", string(raw)).Msg("WS mensagem inválida")
	}
}

func factory(log zerolog.Logger, eng trigger.Engine, cfg *conf.Config) (trigger.Source, error) {
	return &Client{log: log, eng: eng, url: cfg.PushFeedURL}, nil
}

func init() {
	trigger.Register("pushfeed", factory)
}
