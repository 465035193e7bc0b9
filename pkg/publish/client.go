package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/router"
)

// DefaultTimeout bounds one publish round trip.
const DefaultTimeout = 10 * time.Second

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the write and read deadline for each publish.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHeader sets headers sent with the websocket handshake.
func WithHeader(h http.Header) ClientOption {
	return func(c *Client) {
		c.header = h
	}
}

// WithDialer sets the websocket dialer.
func WithDialer(d *websocket.Dialer) ClientOption {
	return func(c *Client) {
		c.dialer = d
	}
}

// Client publishes events to a remote Handler. Publishes are serialized:
// one request is in flight at a time. A transport failure drops the
// connection and the next Publish dials again.
type Client struct {
	mu      sync.Mutex
	url     string
	conn    *websocket.Conn
	nextID  uint64
	timeout time.Duration
	header  http.Header
	dialer  *websocket.Dialer
}

// Dial connects to a publish endpoint such as "ws://host/events".
func Dial(ctx context.Context, url string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		url:     url,
		timeout: DefaultTimeout,
		dialer:  websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect(ctx context.Context) error {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return errors.New("R020").WithDetailf("dial %s", c.url).Wrap(err)
	}
	c.conn = conn
	return nil
}

// drop closes a connection left unusable by a failed read or write.
func (c *Client) drop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Publish sends event with ctx and waits for the reply. Transport failures
// are R020; an error reported by the remote subscriber is R021 with the
// remote message as detail. The decoded JSON result is returned as any.
//
// Publish has the signature of router.PublishFunc.
func (c *Client) Publish(event string, ctx router.Context) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		dialCtx, cancel := context.WithTimeout(context.Background(), c.timeout)
		err := c.connect(dialCtx)
		cancel()
		if err != nil {
			return nil, err
		}
	}

	c.nextID++
	req := Request{ID: c.nextID, Event: event, Params: paramsFromContext(ctx)}

	c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := c.conn.WriteJSON(req); err != nil {
		c.drop()
		return nil, errors.New("R020").WithDetailf("send %q", event).Wrap(err)
	}

	c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	var reply Reply
	if err := c.conn.ReadJSON(&reply); err != nil {
		c.drop()
		return nil, errors.New("R020").WithDetailf("await reply to %q", event).Wrap(err)
	}
	if reply.ID != req.ID {
		c.drop()
		return nil, errors.New("R020").WithDetailf("reply to %q has id %d, want %d", event, reply.ID, req.ID)
	}
	if reply.Error != "" {
		return nil, errors.New("R021").WithDetailf("event %q: %s", event, reply.Error)
	}
	return decodeResult(reply.Result)
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := c.conn.Close()
	c.conn = nil
	return err
}

func decodeResult(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.New("R020").WithDetail("invalid result").Wrap(err)
	}
	return v, nil
}
