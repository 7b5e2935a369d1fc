package server

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
	"github.com/zeusync/trackenv/internal/core/env"
)

// Client drives one remote session. It is safe for concurrent use, but
// requests are serialized because a session steps one environment.
type Client struct {
	mu    sync.Mutex
	send  func([]byte) error
	recv  func() ([]byte, error)
	close func() error
	token string
}

// DialWebSocket opens a session over WebSocket. url is the ws:// or wss://
// address of the /ws endpoint.
func DialWebSocket(ctx context.Context, url, token string) (*Client, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, errors.Wrap(err, "dial websocket")
	}
	return &Client{
		send: func(b []byte) error { return conn.WriteMessage(websocket.TextMessage, b) },
		recv: func() ([]byte, error) {
			_, data, err := conn.ReadMessage()
			return data, err
		},
		close: func() error {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return conn.Close()
		},
		token: token,
	}, nil
}

// DialQUIC opens a session on a new stream of a new QUIC connection. A nil
// tlsConfig accepts any certificate, which only suits self-signed
// development servers.
func DialQUIC(ctx context.Context, addr string, tlsConfig *tls.Config, token string) (*Client, error) {
	if tlsConfig == nil {
		tlsConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	tlsConfig = tlsConfig.Clone()
	if len(tlsConfig.NextProtos) == 0 {
		tlsConfig.NextProtos = []string{NextProto}
	}

	conn, err := quic.DialAddr(ctx, addr, tlsConfig, &quic.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "dial quic")
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "")
		return nil, errors.Wrap(err, "open stream")
	}

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	return &Client{
		send: func(b []byte) error {
			_, err := stream.Write(append(b, '\n'))
			return err
		},
		recv: func() ([]byte, error) {
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return nil, err
				}
				return nil, errors.New("stream closed")
			}
			return scanner.Bytes(), nil
		},
		close: func() error {
			_ = stream.Close()
			return conn.CloseWithError(0, "client closed")
		},
		token: token,
	}, nil
}

// Do sends one request and waits for its response. A response carrying an
// error is returned together with ErrRemote.
func (c *Client) Do(req Request) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req.Token == "" {
		req.Token = c.token
	}
	data, err := json.Marshal(req)
	if err != nil {
		return Response{}, err
	}
	if err = c.send(data); err != nil {
		return Response{}, errors.Wrap(err, "send")
	}
	raw, err := c.recv()
	if err != nil {
		return Response{}, errors.Wrap(err, "receive")
	}
	var resp Response
	if err = json.Unmarshal(raw, &resp); err != nil {
		return Response{}, errors.Wrap(ErrInvalidMessage, err.Error())
	}
	if resp.Error != "" {
		return resp, errors.Wrap(ErrRemote, resp.Error)
	}
	return resp, nil
}

func (c *Client) Spec() (Response, error) { return c.Do(Request{Op: OpSpec}) }

func (c *Client) Reset(seed int64) (Response, error) { return c.Do(Request{Op: OpReset, Seed: seed}) }

func (c *Client) Step(a env.Action) (Response, error) { return c.Do(Request{Op: OpStep, Action: a}) }

func (c *Client) Snapshot() (Response, error) { return c.Do(Request{Op: OpSnapshot}) }

// Raw sends an arbitrary payload and returns the decoded reply.
func (c *Client) Raw(payload []byte) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.send(payload); err != nil {
		return Response{}, err
	}
	raw, err := c.recv()
	if err != nil {
		return Response{}, err
	}
	var resp Response
	err = json.Unmarshal(raw, &resp)
	return resp, err
}

func (c *Client) Close() error { return c.close() }
