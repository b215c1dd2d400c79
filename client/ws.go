package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/websocket"
)

// TxEvent is one transaction delivered by a websocket subscription.
type TxEvent struct {
	Hash   string
	Value  json.RawMessage
	Events map[string][]string
}

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type eventResult struct {
	Query string `json:"query"`
	Data  struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	} `json:"data"`
	Events map[string][]string `json:"events"`
}

// EventStream subscribes to node events over the CometBFT JSON-RPC websocket.
type EventStream struct {
	url     string
	dialer  *websocket.Dialer
	timeout time.Duration
	logger  log.Logger
	nextID  atomic.Int64
}

func NewEventStream(url string, logger log.Logger) *EventStream {
	return &EventStream{
		url:     url,
		dialer:  websocket.DefaultDialer,
		timeout: DefaultTimeout,
		logger:  logger,
	}
}

// Subscribe opens a connection, subscribes to query and waits for the empty
// confirmation result. Events are delivered until ctx is done or the
// connection drops; the channel is closed in both cases.
func (s *EventStream) Subscribe(ctx context.Context, query string) (<-chan TxEvent, error) {
	dialCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conn, _, err := s.dialer.DialContext(dialCtx, s.url, http.Header{})
	if err != nil {
		return nil, ErrTransport.Wrapf("dial %s: %s", s.url, err)
	}

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      s.nextID.Add(1),
		Method:  "subscribe",
		Params:  map[string]any{"query": query},
	}
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		return nil, ErrTransport.Wrapf("subscribe %q: %s", query, err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(s.timeout))
	var confirm rpcResponse
	if err := conn.ReadJSON(&confirm); err != nil {
		conn.Close()
		return nil, ErrTimeout.Wrapf("subscribe %q: %s", query, err)
	}
	if confirm.Error != nil {
		conn.Close()
		return nil, ErrSubscription.Wrapf("%s: %s", confirm.Error.Message, confirm.Error.Data)
	}
	if !isEmptyResult(confirm.Result) {
		conn.Close()
		return nil, ErrSubscription.Wrapf("unexpected confirmation %s", string(confirm.Result))
	}
	_ = conn.SetReadDeadline(time.Time{})

	s.logger.Info("subscribed", "url", s.url, "query", query)

	out := make(chan TxEvent)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go s.readLoop(ctx, conn, out)
	return out, nil
}

func (s *EventStream) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- TxEvent) {
	defer close(out)
	defer conn.Close()

	for {
		var resp rpcResponse
		if err := conn.ReadJSON(&resp); err != nil {
			if ctx.Err() == nil {
				s.logger.Error("event stream closed", "url", s.url, "err", err)
			}
			return
		}
		if resp.Error != nil {
			s.logger.Error("event stream error", "code", resp.Error.Code, "message", resp.Error.Message)
			continue
		}
		if isEmptyResult(resp.Result) {
			continue
		}

		var res eventResult
		if err := json.Unmarshal(resp.Result, &res); err != nil {
			s.logger.Error("undecodable event", "err", err)
			continue
		}

		ev := TxEvent{Value: res.Data.Value, Events: res.Events}
		if hashes := res.Events["tx.hash"]; len(hashes) > 0 {
			ev.Hash = hashes[0]
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func isEmptyResult(raw json.RawMessage) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil && len(m) == 0
}
