package wire

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is the strategy side of the protocol: a single websocket
// connection with a buffered inbound queue so receives never block the
// caller longer than the timeout it supplies.
type Client struct {
	identity string
	target   string

	mu   sync.Mutex // guards writes and seq
	conn *websocket.Conn
	seq  uint64

	inbox     chan *Envelope
	done      chan struct{}
	closeOnce sync.Once
	log       *zap.Logger
}

// Dial connects to the execution server. identity names this client in
// every envelope it sends; target names the server.
func Dial(url, identity, target string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("wire dial %s: %w", url, err)
	}
	c := &Client{
		identity: identity,
		target:   target,
		conn:     conn,
		inbox:    make(chan *Envelope, 256),
		done:     make(chan struct{}),
		log:      log,
	}
	go c.readLoop()
	return c, nil
}

// Send stamps the envelope with sender, target, sequence and send time,
// then writes it. It returns the assigned sequence so callers can
// correlate replies. Safe for concurrent use.
func (c *Client) Send(env *Envelope) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	env.Sender = c.identity
	env.Target = c.target
	env.Seq = c.seq
	env.SentAt = time.Now().UTC()

	data, err := json.Marshal(env)
	if err != nil {
		return 0, fmt.Errorf("wire send: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return 0, fmt.Errorf("wire send: %w", err)
	}
	return c.seq, nil
}

// Recv attempts one receive, waiting at most timeout. It returns nil when
// nothing arrived in time, never an error; a missed window only delays
// observation of the message.
func (c *Client) Recv(timeout time.Duration) *Envelope {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case env := <-c.inbox:
		return env
	case <-timer.C:
		return nil
	case <-c.done:
		// Drain anything decoded before the connection dropped.
		select {
		case env := <-c.inbox:
			return env
		default:
			return nil
		}
	}
}

func (c *Client) Close() error {
	c.shutdown()
	return c.conn.Close()
}

// shutdown closes done exactly once. Close and the read loop's error path
// can race; both funnel through here.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.log.Warn("wire read failed", zap.Error(err))
			}
			c.shutdown()
			return
		}
		env := &Envelope{}
		if err := json.Unmarshal(data, env); err != nil {
			c.log.Warn("wire: dropping undecodable message", zap.Error(err))
			continue
		}
		select {
		case c.inbox <- env:
		case <-c.done:
			return
		}
	}
}
