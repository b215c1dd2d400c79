package keeper_test

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/stretchr/testify/require"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/cosmos/cosmos-sdk/types/query"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	"github.com/TrustedSmartChain/walletcore/client"
	"github.com/TrustedSmartChain/walletcore/x/incidents/keeper"
	"github.com/TrustedSmartChain/walletcore/x/incidents/types"
	msgskeeper "github.com/TrustedSmartChain/walletcore/x/msgs/keeper"
	msgtypes "github.com/TrustedSmartChain/walletcore/x/msgs/types"
)

// ========== Test helpers ==========

type mockChain struct {
	mu       sync.Mutex
	tip      int64
	txs      []*sdk.TxResponse // newest first
	failAt   map[uint64]error
	requests []client.TxSearchRequest

	// keyed pages continue from NextKey and report no total
	keyed    bool
	nextKeys [][]byte
	// before runs ahead of every search, outside the lock
	before func(ctx context.Context, req client.TxSearchRequest) error
}

func (m *mockChain) LatestHeight(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tip, nil
}

func (m *mockChain) SearchTxs(ctx context.Context, req client.TxSearchRequest) (*client.TxSearchPage, error) {
	if m.before != nil {
		if err := m.before(ctx, req); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if err, ok := m.failAt[req.Offset]; ok {
		return nil, err
	}

	if m.keyed {
		var start uint64
		if len(req.Key) == 8 {
			start = binary.BigEndian.Uint64(req.Key)
		}
		start = min(start, uint64(len(m.txs)))
		end := min(start+req.Limit, uint64(len(m.txs)))
		page := &client.TxSearchPage{Txs: m.txs[start:end]}
		if end < uint64(len(m.txs)) {
			page.NextKey = binary.BigEndian.AppendUint64(nil, end)
			m.nextKeys = append(m.nextKeys, page.NextKey)
		}
		return page, nil
	}

	start := min(req.Offset, uint64(len(m.txs)))
	end := min(start+req.Limit, uint64(len(m.txs)))
	return &client.TxSearchPage{
		Txs:   m.txs[start:end],
		Total: uint64(len(m.txs)),
	}, nil
}

// push adds a transaction at the top of the result list.
func (m *mockChain) push(txs ...*sdk.TxResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append(append([]*sdk.TxResponse{}, txs...), m.txs...)
}

type recordingHooks struct {
	batches [][]types.Incident
}

func (h *recordingHooks) AfterIncidentsSynced(_ context.Context, incidents []types.Incident) {
	h.batches = append(h.batches, incidents)
}

var testChain = client.ChainInfo{
	ChainID:      "secret-4",
	Bech32Prefix: "secret",
	FeeDenom:     "uscrt",
	GasPrice:     math.LegacyMustNewDecFromStr("0.25"),
}

const testAccount = "secret1account"

func newKeeper(chain *mockChain) (*keeper.Keeper, dbm.DB) {
	db := dbm.NewMemDB()
	converter := msgskeeper.NewKeeper(msgtypes.NewDefaultRegistry(), log.NewNopLogger())
	return keeper.NewKeeper(db, chain, converter, log.NewNopLogger()), db
}

func outRequest(limit uint64) types.SyncRequest {
	return types.SyncRequest{
		Chain:     testChain,
		Account:   testAccount,
		Type:      types.TypeTxOut,
		Events:    []string{types.EventFilter(types.EventMessageSender, testAccount)},
		PageLimit: limit,
	}
}

func txAt(height int64) *sdk.TxResponse {
	return &sdk.TxResponse{
		Height: height,
		TxHash: fmt.Sprintf("%064X", height),
	}
}

// descending returns n transactions from height top downwards.
func descending(top int64, n int) []*sdk.TxResponse {
	txs := make([]*sdk.TxResponse, 0, n)
	for i := 0; i < n; i++ {
		txs = append(txs, txAt(top-int64(i)))
	}
	return txs
}

func encodedTx(t *testing.T, memo string, msgs ...*codectypes.Any) *codectypes.Any {
	t.Helper()
	tx := txtypes.Tx{
		Body: &txtypes.TxBody{Messages: msgs, Memo: memo},
		AuthInfo: &txtypes.AuthInfo{
			Fee: &txtypes.Fee{Amount: sdk.NewCoins(sdk.NewInt64Coin("uscrt", 2500)), GasLimit: 100000},
		},
	}
	bz, err := tx.Marshal()
	require.NoError(t, err)
	return &codectypes.Any{TypeUrl: "/cosmos.tx.v1beta1.Tx", Value: bz}
}

func bech(t *testing.T, seed byte) string {
	t.Helper()
	bz := make([]byte, 20)
	bz[19] = seed
	s, err := bech32.ConvertAndEncode(testChain.Bech32Prefix, bz)
	require.NoError(t, err)
	return s
}

// ========== Sync tests ==========

func TestSyncPagesUntilExhausted(t *testing.T) {
	chain := &mockChain{tip: 1000, txs: descending(1000, 100)}
	k, _ := newKeeper(chain)
	hooks := &recordingHooks{}
	k.SetHooks(hooks)
	req := outRequest(50)

	emitted, err := k.Sync(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, emitted, 100)
	require.Len(t, chain.requests, 2)
	require.Equal(t, uint64(50), chain.requests[1].Offset)

	// discovery order follows the node order
	require.Equal(t, int64(1000), emitted[0].Height)
	require.Equal(t, int64(901), emitted[99].Height)
	for _, inc := range emitted {
		require.Equal(t, types.StageSynced, inc.Stage)
		require.Equal(t, types.TypeTxOut, inc.Type)
	}

	cursor, err := k.GetCursor(req)
	require.NoError(t, err)
	require.Equal(t, int64(1000), cursor.Height)
	require.Equal(t, "cosmos:secret-4", cursor.ChainPath)

	require.Len(t, hooks.batches, 1)
	require.Len(t, hooks.batches[0], 100)
}

func TestSyncSecondPassEmitsNothing(t *testing.T) {
	chain := &mockChain{tip: 1000, txs: descending(1000, 100)}
	k, _ := newKeeper(chain)
	hooks := &recordingHooks{}
	k.SetHooks(hooks)
	req := outRequest(50)

	_, err := k.Sync(context.Background(), req)
	require.NoError(t, err)

	chain.tip = 1005
	chain.requests = nil
	emitted, err := k.Sync(context.Background(), req)
	require.NoError(t, err)
	require.Empty(t, emitted)
	// the first result is already at the watermark
	require.Len(t, chain.requests, 1)

	cursor, err := k.GetCursor(req)
	require.NoError(t, err)
	require.Equal(t, int64(1005), cursor.Height)

	// hooks only see non-empty batches
	require.Len(t, hooks.batches, 1)
}

func TestSyncEmitsOnlyNewTransactions(t *testing.T) {
	chain := &mockChain{tip: 1000, txs: descending(1000, 10)}
	k, _ := newKeeper(chain)
	req := outRequest(50)

	_, err := k.Sync(context.Background(), req)
	require.NoError(t, err)

	chain.push(txAt(1004), txAt(1002))
	chain.tip = 1004

	emitted, err := k.Sync(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, emitted, 2)
	require.Equal(t, int64(1004), emitted[0].Height)
	require.Equal(t, int64(1002), emitted[1].Height)
}

func TestSyncRecordsLateTransactionAtWatermark(t *testing.T) {
	chain := &mockChain{tip: 1000, txs: descending(999, 5)}
	k, _ := newKeeper(chain)
	req := outRequest(50)

	emitted, err := k.Sync(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, emitted, 5)

	// block 1000 was the tip of the first pass but its tx was indexed later
	late := txAt(1000)
	chain.push(late)

	emitted, err = k.Sync(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, emitted, 1)
	require.Equal(t, late.TxHash, emitted[0].ID)
	require.Len(t, chain.requests, 2)

	synced, err := k.HasSynced(testChain.ChainID, testAccount, types.TypeTxOut, late.TxHash)
	require.NoError(t, err)
	require.True(t, synced)

	// nothing is emitted twice
	emitted, err = k.Sync(context.Background(), req)
	require.NoError(t, err)
	require.Empty(t, emitted)
}

func TestSyncFollowsContinuationKeys(t *testing.T) {
	chain := &mockChain{tip: 2000, txs: descending(2000, 120), keyed: true}
	k, _ := newKeeper(chain)

	emitted, err := k.Sync(context.Background(), outRequest(50))
	require.NoError(t, err)
	require.Len(t, emitted, 120)
	require.Equal(t, int64(1881), emitted[119].Height)

	require.Len(t, chain.requests, 3)
	require.Len(t, chain.nextKeys, 2)
	require.Empty(t, chain.requests[0].Key)
	for i, key := range chain.nextKeys {
		require.Equal(t, key, chain.requests[i+1].Key)
	}
}

func TestSyncSkipsDuplicatesAcrossPages(t *testing.T) {
	txs := descending(1000, 4)
	// a new block shifted the window so the last entry repeats
	txs = append(txs, txAt(997))
	chain := &mockChain{tip: 1000, txs: txs}
	k, _ := newKeeper(chain)

	emitted, err := k.Sync(context.Background(), outRequest(2))
	require.NoError(t, err)
	require.Len(t, emitted, 4)
}

func TestSyncPageFailureKeepsWatermark(t *testing.T) {
	chain := &mockChain{
		tip:    1000,
		txs:    descending(1000, 100),
		failAt: map[uint64]error{50: client.ErrTransport.Wrap("connection reset")},
	}
	k, _ := newKeeper(chain)
	hooks := &recordingHooks{}
	k.SetHooks(hooks)
	req := outRequest(50)

	emitted, err := k.Sync(context.Background(), req)
	require.ErrorIs(t, err, types.ErrPageFailed)
	require.ErrorIs(t, err, client.ErrTransport)
	require.Len(t, emitted, 50)
	require.Empty(t, hooks.batches)

	cursor, err := k.GetCursor(req)
	require.NoError(t, err)
	require.Zero(t, cursor.Height)

	// records of the first page survive and are not emitted again
	chain.failAt = nil
	emitted, err = k.Sync(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, emitted, 50)
	require.Equal(t, int64(950), emitted[0].Height)

	cursor, err = k.GetCursor(req)
	require.NoError(t, err)
	require.Equal(t, int64(1000), cursor.Height)
}

func TestSyncRejectsInvalidTip(t *testing.T) {
	chain := &mockChain{tip: 0, txs: descending(10, 5)}
	k, _ := newKeeper(chain)

	_, err := k.Sync(context.Background(), outRequest(50))
	require.ErrorIs(t, err, types.ErrInvalidTip)
	require.Empty(t, chain.requests)
}

func TestSyncRejectsInvalidRequest(t *testing.T) {
	k, _ := newKeeper(&mockChain{tip: 10})

	req := outRequest(50)
	req.Events = nil
	_, err := k.Sync(context.Background(), req)
	require.ErrorIs(t, err, types.ErrInvalidSyncRequest)

	req = outRequest(50)
	req.Type = "swap"
	_, err = k.Sync(context.Background(), req)
	require.ErrorIs(t, err, types.ErrInvalidIncident)
}

func TestWatermarkNeverDecreases(t *testing.T) {
	k, _ := newKeeper(&mockChain{})
	req := outRequest(50)

	cursor, err := k.AdvanceWatermark(req, 500)
	require.NoError(t, err)
	require.Equal(t, int64(500), cursor.Height)

	cursor, err = k.AdvanceWatermark(req, 300)
	require.NoError(t, err)
	require.Equal(t, int64(500), cursor.Height)

	stored, err := k.GetCursor(req)
	require.NoError(t, err)
	require.Equal(t, int64(500), stored.Height)
}

func TestSyncKeysAreIndependent(t *testing.T) {
	chain := &mockChain{tip: 100, txs: descending(100, 3)}
	k, _ := newKeeper(chain)

	in := types.DefaultSyncRequests(testChain, testAccount)
	require.Len(t, in, 2)
	require.NotEqual(t, in[0].SyncKey(), in[1].SyncKey())

	results, err := k.SyncAll(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// same hashes, different incident types
	require.Len(t, results[0], 3)
	require.Len(t, results[1], 3)
	require.Equal(t, types.TypeTxOut, results[0][0].Type)
	require.Equal(t, types.TypeTxIn, results[1][0].Type)
}

func TestSyncAllFailureDoesNotCancelOtherKeys(t *testing.T) {
	reqs := types.DefaultSyncRequests(testChain, testAccount)
	outQuery, inQuery := reqs[0].Query(), reqs[1].Query()

	chain := &mockChain{tip: 100, txs: descending(100, 3)}
	chain.before = func(ctx context.Context, req client.TxSearchRequest) error {
		switch strings.Join(req.Events, " AND ") {
		case inQuery:
			return client.ErrTransport.Wrap("connection reset")
		case outQuery:
			// give a cancelled context the chance to show up
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
		}
		return nil
	}
	k, _ := newKeeper(chain)

	results, err := k.SyncAll(context.Background(), reqs)
	require.ErrorIs(t, err, client.ErrTransport)
	require.Len(t, results[0], 3)
	require.Empty(t, results[1])

	out, err := k.GetCursor(reqs[0])
	require.NoError(t, err)
	require.Equal(t, int64(100), out.Height)
	in, err := k.GetCursor(reqs[1])
	require.NoError(t, err)
	require.Zero(t, in.Height)
}

func TestSyncDecodesTransactionPayload(t *testing.T) {
	send := banktypes.MsgSend{
		FromAddress: bech(t, 1),
		ToAddress:   bech(t, 2),
		Amount:      sdk.NewCoins(sdk.NewInt64Coin("uscrt", 1000)),
	}
	sendBz, err := send.Marshal()
	require.NoError(t, err)

	tx := txAt(42)
	tx.GasUsed = 81234
	tx.Tx = encodedTx(t, "rent",
		&codectypes.Any{TypeUrl: msgtypes.TypeURLMsgSend, Value: sendBz},
		&codectypes.Any{TypeUrl: "/example.unknown.v1.MsgFrobnicate", Value: []byte{0x0a, 0x01, 'x'}},
	)
	chain := &mockChain{tip: 42, txs: []*sdk.TxResponse{tx}}
	k, _ := newKeeper(chain)

	emitted, err := k.Sync(context.Background(), outRequest(50))
	require.NoError(t, err)
	require.Len(t, emitted, 1)

	var payload struct {
		Memo    string           `json:"memo"`
		Msgs    []map[string]any `json:"msgs"`
		Fee     sdk.Coins        `json:"fee"`
		GasUsed int64            `json:"gas_used"`
	}
	require.NoError(t, json.Unmarshal(emitted[0].Payload, &payload))
	require.Equal(t, "rent", payload.Memo)
	require.Equal(t, int64(81234), payload.GasUsed)
	require.Equal(t, "2500uscrt", payload.Fee.String())
	require.Len(t, payload.Msgs, 2)
	require.Equal(t, msgtypes.AminoMsgSend, payload.Msgs[0]["type"])
	require.Equal(t, "/example.unknown.v1.MsgFrobnicate", payload.Msgs[1]["type_url"])
	require.Equal(t, true, payload.Msgs[1]["undecoded"])
}

// ========== Store tests ==========

func TestPendingReplacedBySynced(t *testing.T) {
	tx := txAt(77)
	chain := &mockChain{tip: 77}
	k, _ := newKeeper(chain)
	ctx := context.Background()

	require.NoError(t, k.RecordPending(ctx, testChain.ChainID, testAccount, tx.TxHash, json.RawMessage(`{"memo":"rent"}`)))
	// a second broadcast report does not clobber the first
	require.NoError(t, k.RecordPending(ctx, testChain.ChainID, testAccount, tx.TxHash, json.RawMessage(`{}`)))

	inc, found, err := k.GetIncident(testChain.ChainID, testAccount, types.TypeTxOut, tx.TxHash)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, types.StagePending, inc.Stage)
	require.JSONEq(t, `{"memo":"rent"}`, string(inc.Payload))

	chain.push(tx)
	emitted, err := k.Sync(ctx, outRequest(50))
	require.NoError(t, err)
	require.Len(t, emitted, 1)

	inc, found, err = k.GetIncident(testChain.ChainID, testAccount, types.TypeTxOut, tx.TxHash)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, types.StageSynced, inc.Stage)
	require.Equal(t, int64(77), inc.Height)

	resp, err := k.Incidents(ctx, &types.IncidentsRequest{ChainID: testChain.ChainID, Account: testAccount})
	require.NoError(t, err)
	require.Len(t, resp.Incidents, 1)

	// a synced record is never downgraded
	require.NoError(t, k.RecordPending(ctx, testChain.ChainID, testAccount, tx.TxHash, nil))
	synced, err := k.HasSynced(testChain.ChainID, testAccount, types.TypeTxOut, tx.TxHash)
	require.NoError(t, err)
	require.True(t, synced)
}

func TestSetIncidentsValidates(t *testing.T) {
	k, _ := newKeeper(&mockChain{})

	err := k.SetIncidents(types.Incident{Type: types.TypeTxIn, ChainID: testChain.ChainID, Account: testAccount, Stage: types.StageSynced})
	require.ErrorIs(t, err, types.ErrInvalidIncident)

	err = k.SetIncidents(types.Incident{Type: types.TypeTxIn, ID: "A", ChainID: testChain.ChainID, Account: testAccount, Stage: "done"})
	require.ErrorIs(t, err, types.ErrInvalidIncident)
}

func TestDeleteIncident(t *testing.T) {
	k, _ := newKeeper(&mockChain{})
	inc := types.Incident{Type: types.TypeTxIn, ID: "AB", ChainID: testChain.ChainID, Account: testAccount, Stage: types.StageSynced, Height: 5}
	require.NoError(t, k.SetIncidents(inc))

	require.NoError(t, k.DeleteIncident(testChain.ChainID, testAccount, types.TypeTxIn, "AB"))
	_, found, err := k.GetIncident(testChain.ChainID, testAccount, types.TypeTxIn, "AB")
	require.NoError(t, err)
	require.False(t, found)

	resp, err := k.Incidents(context.Background(), &types.IncidentsRequest{ChainID: testChain.ChainID, Account: testAccount})
	require.NoError(t, err)
	require.Empty(t, resp.Incidents)

	err = k.DeleteIncident(testChain.ChainID, testAccount, types.TypeTxIn, "AB")
	require.ErrorIs(t, err, types.ErrIncidentNotFound)
}

// ========== Query tests ==========

func seedLedger(t *testing.T, k *keeper.Keeper) {
	t.Helper()
	var incs []types.Incident
	for h := int64(1); h <= 5; h++ {
		typ := types.TypeTxIn
		if h%2 == 0 {
			typ = types.TypeTxOut
		}
		incs = append(incs, types.Incident{
			Type:    typ,
			ID:      fmt.Sprintf("H%d", h),
			ChainID: testChain.ChainID,
			Account: testAccount,
			Stage:   types.StageSynced,
			Height:  h,
		})
	}
	require.NoError(t, k.SetIncidents(incs...))
	require.NoError(t, k.RecordPending(context.Background(), testChain.ChainID, testAccount, "P1", nil))

	// another account on the same chain stays out of the listing
	require.NoError(t, k.SetIncidents(types.Incident{
		Type: types.TypeTxIn, ID: "X", ChainID: testChain.ChainID, Account: "secret1other", Stage: types.StageSynced, Height: 9,
	}))
}

func ids(incs []types.Incident) []string {
	out := make([]string, 0, len(incs))
	for _, inc := range incs {
		out = append(out, inc.ID)
	}
	return out
}

func TestIncidentsNewestFirstWithKeyPagination(t *testing.T) {
	k, _ := newKeeper(&mockChain{})
	seedLedger(t, k)
	ctx := context.Background()

	resp, err := k.Incidents(ctx, &types.IncidentsRequest{
		ChainID:    testChain.ChainID,
		Account:    testAccount,
		Pagination: &query.PageRequest{Limit: 4, CountTotal: true},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"P1", "H5", "H4", "H3"}, ids(resp.Incidents))
	require.Equal(t, uint64(6), resp.Pagination.Total)
	require.NotEmpty(t, resp.Pagination.NextKey)

	resp, err = k.Incidents(ctx, &types.IncidentsRequest{
		ChainID:    testChain.ChainID,
		Account:    testAccount,
		Pagination: &query.PageRequest{Limit: 4, Key: resp.Pagination.NextKey},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"H2", "H1"}, ids(resp.Incidents))
	require.Empty(t, resp.Pagination.NextKey)
}

func TestIncidentsReverseOffsetAndType(t *testing.T) {
	k, _ := newKeeper(&mockChain{})
	seedLedger(t, k)
	ctx := context.Background()

	resp, err := k.Incidents(ctx, &types.IncidentsRequest{
		ChainID:    testChain.ChainID,
		Account:    testAccount,
		Pagination: &query.PageRequest{Reverse: true, Offset: 1, Limit: 2},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"H2", "H3"}, ids(resp.Incidents))

	next, err := k.Incidents(ctx, &types.IncidentsRequest{
		ChainID:    testChain.ChainID,
		Account:    testAccount,
		Pagination: &query.PageRequest{Reverse: true, Limit: 2, Key: resp.Pagination.NextKey},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"H4", "H5"}, ids(next.Incidents))

	resp, err = k.Incidents(ctx, &types.IncidentsRequest{
		ChainID: testChain.ChainID,
		Account: testAccount,
		Type:    types.TypeTxIn,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"H5", "H3", "H1"}, ids(resp.Incidents))

	_, err = k.Incidents(ctx, &types.IncidentsRequest{ChainID: testChain.ChainID})
	require.ErrorIs(t, err, types.ErrInvalidSyncRequest)
}

// ========== Subscription tests ==========

type fakeSource struct {
	mu     sync.Mutex
	events []client.TxEvent
	err    error
	query  string
}

func (s *fakeSource) Subscribe(_ context.Context, query string) (<-chan client.TxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.query = query
	ch := make(chan client.TxEvent, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func TestSubscribeSyncsOnEvents(t *testing.T) {
	chain := &mockChain{tip: 10, txs: descending(10, 2)}
	k, _ := newKeeper(chain)
	hooks := &recordingHooks{}
	k.SetHooks(hooks)
	source := &fakeSource{events: []client.TxEvent{{Hash: "A"}, {Hash: "B"}}}
	req := outRequest(50)

	err := k.Subscribe(context.Background(), source, req)
	require.ErrorIs(t, err, client.ErrSubscription)
	require.Equal(t, "tm.event='Tx' AND message.sender='secret1account'", source.query)

	// one pass per event, only the first finds anything
	require.Len(t, chain.requests, 2)
	require.Len(t, hooks.batches, 1)
	require.Len(t, hooks.batches[0], 2)
}

func TestSubscribeFailsWhenSourceRejects(t *testing.T) {
	k, _ := newKeeper(&mockChain{tip: 10})
	source := &fakeSource{err: client.ErrSubscription.Wrap("bad query")}

	err := k.Subscribe(context.Background(), source, outRequest(50))
	require.ErrorIs(t, err, client.ErrSubscription)
}

func TestSubscribeStopsOnCancel(t *testing.T) {
	k, _ := newKeeper(&mockChain{tip: 10})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := k.SubscribeAll(ctx, &fakeSource{}, types.DefaultSyncRequests(testChain, testAccount))
	require.True(t, errors.Is(err, context.Canceled))
}
