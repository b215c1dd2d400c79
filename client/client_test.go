package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/encoding/protowire"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
)

// ========== Timeout wrapper ==========

func TestCallTimesOutOnHungCall(t *testing.T) {
	start := time.Now()
	_, err := Call(context.Background(), 20*time.Millisecond, "test.Hang", func(ctx context.Context) (int, error) {
		// ignores ctx on purpose
		time.Sleep(time.Second)
		return 1, nil
	})
	require.ErrorIs(t, err, ErrTimeout)
	require.True(t, IsRetryable(err))
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestCallClassifiesGRPCErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), ErrTimeout},
		{"unavailable", status.Error(codes.Unavailable, "down"), ErrTransport},
		{"canceled", status.Error(codes.Canceled, "bye"), context.Canceled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Call(context.Background(), time.Second, "test.Call", func(context.Context) (struct{}, error) {
				return struct{}{}, tc.err
			})
			require.ErrorIs(t, err, tc.want)
		})
	}

	appErr := errors.New("insufficient funds")
	_, err := Call(context.Background(), time.Second, "test.Call", func(context.Context) (int, error) {
		return 0, appErr
	})
	require.ErrorIs(t, err, appErr)
	require.False(t, IsRetryable(err))
}

// ========== gRPC client ==========

type fakeTxService struct {
	txtypes.UnimplementedServiceServer

	lastSearch *txtypes.GetTxsEventRequest
}

func (f *fakeTxService) GetTxsEvent(_ context.Context, req *txtypes.GetTxsEventRequest) (*txtypes.GetTxsEventResponse, error) {
	f.lastSearch = req
	return &txtypes.GetTxsEventResponse{
		TxResponses: []*sdk.TxResponse{{TxHash: "AA", Height: 10}},
		Total:       1,
		//nolint:staticcheck
		Pagination: &query.PageResponse{NextKey: []byte("next")},
	}, nil
}

func (f *fakeTxService) BroadcastTx(_ context.Context, req *txtypes.BroadcastTxRequest) (*txtypes.BroadcastTxResponse, error) {
	return &txtypes.BroadcastTxResponse{TxResponse: &sdk.TxResponse{TxHash: "BB", Code: 5, RawLog: "insufficient fees"}}, nil
}

func dialBufconn(t *testing.T, register func(*grpc.Server), opts ...grpc.ServerOption) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(opts...)
	register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSearchTxsBuildsQuery(t *testing.T) {
	svc := &fakeTxService{}
	conn := dialBufconn(t, func(s *grpc.Server) { txtypes.RegisterServiceServer(s, svc) })
	c := NewClient(conn, codectypes.NewInterfaceRegistry())

	page, err := c.SearchTxs(context.Background(), TxSearchRequest{
		Events: []string{"message.sender='secret1abc'", "message.module='bank'"},
		Limit:  50,
		Offset: 100,
	})
	require.NoError(t, err)
	require.Len(t, page.Txs, 1)
	require.Equal(t, []byte("next"), page.NextKey)
	require.Equal(t, uint64(1), page.Total)

	require.Equal(t, "message.sender='secret1abc' AND message.module='bank'", svc.lastSearch.Query)
	require.Equal(t, uint64(3), svc.lastSearch.Page)
	require.Equal(t, txtypes.OrderBy_ORDER_BY_DESC, svc.lastSearch.OrderBy)
}

func TestBroadcastReturnsChainCode(t *testing.T) {
	conn := dialBufconn(t, func(s *grpc.Server) { txtypes.RegisterServiceServer(s, &fakeTxService{}) })
	c := NewClient(conn, codectypes.NewInterfaceRegistry())

	resp, err := c.BroadcastTx(context.Background(), []byte{1}, txtypes.BroadcastMode_BROADCAST_MODE_SYNC)
	require.NoError(t, err)
	require.Equal(t, uint32(5), resp.Code)
	require.Equal(t, "insufficient fees", resp.RawLog)
}

func TestConfidentialQueriesUseRawBodies(t *testing.T) {
	handler := func(_ any, stream grpc.ServerStream) error {
		method, _ := grpc.MethodFromServerStream(stream)
		in := &rawMessage{}
		if err := stream.RecvMsg(in); err != nil {
			return err
		}
		switch method {
		case methodRegistrationTxKey:
			return stream.SendMsg(&rawMessage{bz: appendBytesField(nil, 1, []byte{0x02, 0x03})})
		case methodQueryContract:
			query, err := bytesField(in.bz, 2)
			if err != nil {
				return err
			}
			return stream.SendMsg(&rawMessage{bz: appendBytesField(nil, 1, append([]byte("echo:"), query...))})
		default:
			return status.Error(codes.Unimplemented, method)
		}
	}
	conn := dialBufconn(t, func(*grpc.Server) {},
		grpc.UnknownServiceHandler(handler),
		grpc.ForceServerCodec(rawCodec{}),
	)
	c := NewClient(conn, codectypes.NewInterfaceRegistry())

	key, err := c.ConsensusIOKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x03}, key)

	out, err := c.QueryContract(context.Background(), "secret1contract", []byte("cipher"))
	require.NoError(t, err)
	require.Equal(t, []byte("echo:cipher"), out)
}

func TestBytesFieldSkipsOtherFields(t *testing.T) {
	bz := protowire.AppendTag(nil, 2, protowire.VarintType)
	bz = protowire.AppendVarint(bz, 7)
	bz = appendBytesField(bz, 1, []byte("x"))

	v, err := bytesField(bz, 1)
	require.NoError(t, err)
	require.Equal(t, []byte("x"), v)

	_, err = bytesField([]byte{0x0a, 0x05, 'a'}, 1)
	require.ErrorIs(t, err, ErrMalformedReply)
}

// ========== Websocket stream ==========

func TestEventStreamSubscribe(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req rpcRequest
		if err := conn.ReadJSON(&req); err != nil || req.Method != "subscribe" {
			return
		}
		_ = conn.WriteJSON(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": map[string]any{}})
		_ = conn.WriteJSON(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]any{
				"query":  req.Params["query"],
				"data":   map[string]any{"type": "tendermint/event/Tx", "value": map[string]any{"TxResult": map[string]any{"height": "12"}}},
				"events": map[string][]string{"tx.hash": {"ABCDEF"}},
			},
		})
		// keep the connection open until the client goes away
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	stream := NewEventStream("ws"+strings.TrimPrefix(srv.URL, "http"), log.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := stream.Subscribe(ctx, "tm.event='Tx'")
	require.NoError(t, err)

	select {
	case ev := <-events:
		require.Equal(t, "ABCDEF", ev.Hash)
		require.Contains(t, string(ev.Value), "TxResult")
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	cancel()
	for range events {
	}
}

func TestEventStreamRejectsSubscribeError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var req rpcRequest
		_ = conn.ReadJSON(&req)
		_ = conn.WriteJSON(map[string]any{"jsonrpc": "2.0", "id": req.ID, "error": map[string]any{"code": -32603, "message": "max subscriptions"}})
	}))
	defer srv.Close()

	stream := NewEventStream("ws"+strings.TrimPrefix(srv.URL, "http"), log.NewNopLogger())
	_, err := stream.Subscribe(context.Background(), "tm.event='Tx'")
	require.ErrorIs(t, err, ErrSubscription)
}
