package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/TrustedSmartChain/walletcore/client"
	computetypes "github.com/TrustedSmartChain/walletcore/x/compute/types"
)

// Kind selects which history query of a token contract is cached.
type Kind string

const (
	KindTransfer    Kind = "transfer"
	KindTransaction Kind = "transaction"
)

func (k Kind) Validate() error {
	switch k {
	case KindTransfer, KindTransaction:
		return nil
	default:
		return ErrInvalidKind.Wrapf("%q", string(k))
	}
}

// queryName is the key of both the query and its answer.
func (k Kind) queryName() string {
	return string(k) + "_history"
}

// Entry is one cached history record. Index is its insertion position and
// never changes once assigned.
type Entry struct {
	Hash   string          `json:"hash"`
	Index  uint64          `json:"index"`
	Record json.RawMessage `json:"record"`
}

// CacheState is the ordered list of entry hashes plus the entries by hash.
type CacheState struct {
	Hashes  []string
	Entries map[string]Entry
}

func NewCacheState() *CacheState {
	return &CacheState{Entries: make(map[string]Entry)}
}

func (s *CacheState) Len() int { return len(s.Hashes) }

func (s *CacheState) Has(hash string) bool {
	_, ok := s.Entries[hash]
	return ok
}

// Add appends record unless an identical record is cached. It reports the
// entry and whether it is new.
func (s *CacheState) Add(record json.RawMessage) (Entry, bool, error) {
	hash, err := ContentHash(record)
	if err != nil {
		return Entry{}, false, err
	}
	if e, ok := s.Entries[hash]; ok {
		return e, false, nil
	}
	e := Entry{Hash: hash, Index: uint64(len(s.Hashes)), Record: record}
	s.Hashes = append(s.Hashes, hash)
	s.Entries[hash] = e
	return e, true, nil
}

// Ordered returns the entries in insertion order.
func (s *CacheState) Ordered() []Entry {
	out := make([]Entry, 0, len(s.Hashes))
	for _, h := range s.Hashes {
		out = append(out, s.Entries[h])
	}
	return out
}

// ContentHash is the hex sha256 of the key-sorted JSON of record.
func ContentHash(record json.RawMessage) (string, error) {
	sorted, err := sdk.SortJSON(record)
	if err != nil {
		return "", ErrMalformedPage.Wrapf("record: %s", err)
	}
	sum := sha256.Sum256(sorted)
	return hex.EncodeToString(sum[:]), nil
}

// RefreshRequest selects the history of Account on one token contract.
type RefreshRequest struct {
	Chain    client.ChainInfo
	Account  string
	Contract string
	CodeHash string
	Kind     Kind
	PageSize uint32
	Signer   computetypes.Signer
}

func (r RefreshRequest) Validate() error {
	if r.Chain.ChainID == "" {
		return ErrInvalidRefreshRequest.Wrap("missing chain id")
	}
	if r.Account == "" || r.Contract == "" {
		return ErrInvalidRefreshRequest.Wrap("account and contract are required")
	}
	if r.Signer == nil {
		return ErrInvalidRefreshRequest.Wrap("missing signer")
	}
	return r.Kind.Validate()
}

type historyParams struct {
	Address  string `json:"address"`
	Key      string `json:"key"`
	Page     uint32 `json:"page"`
	PageSize uint32 `json:"page_size"`
}

// HistoryQuery renders the token query for one page.
func HistoryQuery(kind Kind, account, viewingKey string, page, pageSize uint32) (json.RawMessage, error) {
	return json.Marshal(map[string]historyParams{
		kind.queryName(): {Address: account, Key: viewingKey, Page: page, PageSize: pageSize},
	})
}

// HistoryPage is one decoded page. Total is nil when the contract does not
// report it.
type HistoryPage struct {
	Txs   []json.RawMessage `json:"txs"`
	Total *uint64           `json:"total,omitempty"`
}

// ParseHistoryPage decodes the answer to HistoryQuery.
func ParseHistoryPage(kind Kind, bz []byte) (HistoryPage, error) {
	var answer map[string]json.RawMessage
	if err := json.Unmarshal(bz, &answer); err != nil {
		return HistoryPage{}, ErrMalformedPage.Wrap(err.Error())
	}
	raw, ok := answer[kind.queryName()]
	if !ok {
		if vkErr, ok := answer["viewing_key_error"]; ok {
			return HistoryPage{}, computetypes.ErrInvalidViewingKey.Wrap(string(vkErr))
		}
		return HistoryPage{}, ErrMalformedPage.Wrapf("missing %s", kind.queryName())
	}

	var page HistoryPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return HistoryPage{}, ErrMalformedPage.Wrap(err.Error())
	}
	return page, nil
}

type coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type transferAction struct {
	From      string `json:"from"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
}

type mintAction struct {
	Minter    string `json:"minter"`
	Recipient string `json:"recipient"`
}

type burnAction struct {
	Burner string `json:"burner"`
	Owner  string `json:"owner"`
}

type historyRecord struct {
	From        string `json:"from"`
	Sender      string `json:"sender"`
	Receiver    string `json:"receiver"`
	Coins       coin   `json:"coins"`
	Memo        string `json:"memo"`
	BlockTime   int64  `json:"block_time"`
	BlockHeight int64  `json:"block_height"`
	Action      *struct {
		Transfer *transferAction `json:"transfer"`
		Mint     *mintAction     `json:"mint"`
		Burn     *burnAction     `json:"burn"`
	} `json:"action"`
}

type Direction int

const (
	DirectionNone Direction = iota
	DirectionIn
	DirectionOut
)

// Movement is the part of a record that concerns the cache owner.
type Movement struct {
	Direction    Direction
	Counterparty string
	Amount       string
	Denom        string
	Memo         string
	Height       int64
	Time         time.Time
}

// ClassifyRecord tells whether record moved tokens to or from account.
// Self transfers count as incoming.
func ClassifyRecord(record json.RawMessage, account string) (Movement, error) {
	var r historyRecord
	if err := json.Unmarshal(record, &r); err != nil {
		return Movement{}, ErrMalformedPage.Wrapf("record: %s", err)
	}

	m := Movement{
		Amount: r.Coins.Amount,
		Denom:  r.Coins.Denom,
		Memo:   r.Memo,
		Height: r.BlockHeight,
	}
	if r.BlockTime > 0 {
		m.Time = time.Unix(r.BlockTime, 0).UTC()
	}

	from, to := r.From, r.Receiver
	if r.Action != nil {
		switch {
		case r.Action.Transfer != nil:
			from, to = r.Action.Transfer.From, r.Action.Transfer.Recipient
		case r.Action.Mint != nil:
			from, to = r.Action.Mint.Minter, r.Action.Mint.Recipient
		case r.Action.Burn != nil:
			from, to = r.Action.Burn.Owner, ""
		}
	}

	switch account {
	case to:
		m.Direction, m.Counterparty = DirectionIn, from
	case from:
		m.Direction, m.Counterparty = DirectionOut, to
	}
	return m, nil
}

func (m Movement) Timestamp() string {
	if m.Time.IsZero() {
		return ""
	}
	return m.Time.Format(time.RFC3339)
}

func (m Movement) String() string {
	s := m.Amount + m.Denom
	if m.Counterparty != "" {
		if m.Direction == DirectionIn {
			s += " from " + m.Counterparty
		} else {
			s += " to " + m.Counterparty
		}
	}
	if m.Height > 0 {
		s += " at height " + strconv.FormatInt(m.Height, 10)
	}
	return s
}
