package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	cmtservice "github.com/cosmos/cosmos-sdk/client/grpc/cmtservice"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
)

const (
	methodRegistrationTxKey  = "/secret.registration.v1beta1.Query/TxKey"
	methodCodeHashByContract = "/secret.compute.v1beta1.Query/CodeHashByContractAddress"
	methodQueryContract      = "/secret.compute.v1beta1.Query/QuerySecretContract"
)

// TxSearchRequest selects a page of transactions matching every event filter.
// Key, once known, takes precedence over Offset.
type TxSearchRequest struct {
	Events []string
	Limit  uint64
	Offset uint64
	Key    []byte
}

// TxSearchPage is one newest-first page of search results.
type TxSearchPage struct {
	Txs     []*sdk.TxResponse
	Total   uint64
	NextKey []byte
}

// Client talks to a node over the standard Cosmos gRPC services plus the
// confidential compute queries.
type Client struct {
	conn     *grpc.ClientConn
	registry codectypes.InterfaceRegistry
	timeout  time.Duration
	logger   log.Logger

	tx   txtypes.ServiceClient
	auth authtypes.QueryClient
	bank banktypes.QueryClient
	cmt  cmtservice.ServiceClient
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(logger log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Dial connects to a node gRPC endpoint. The connection is plaintext; put TLS
// termination in front of remote nodes.
func Dial(target string, registry codectypes.InterfaceRegistry, opts ...Option) (*Client, error) {
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(gogoCodec{})),
	)
	if err != nil {
		return nil, fmt.Errorf("chain client: dial %s: %w", target, err)
	}
	return NewClient(conn, registry, opts...), nil
}

func NewClient(conn *grpc.ClientConn, registry codectypes.InterfaceRegistry, opts ...Option) *Client {
	c := &Client{
		conn:     conn,
		registry: registry,
		timeout:  DefaultTimeout,
		logger:   log.NewNopLogger(),
		tx:       txtypes.NewServiceClient(conn),
		auth:     authtypes.NewQueryClient(conn),
		bank:     banktypes.NewQueryClient(conn),
		cmt:      cmtservice.NewServiceClient(conn),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Account reads the live account number and sequence.
func (c *Client) Account(ctx context.Context, address string) (AccountInfo, error) {
	resp, err := Call(ctx, c.timeout, "auth.Account", func(ctx context.Context) (*authtypes.QueryAccountResponse, error) {
		return c.auth.Account(ctx, &authtypes.QueryAccountRequest{Address: address})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return AccountInfo{}, ErrAccountNotFound.Wrapf("%s: %s", address, err)
		}
		return AccountInfo{}, err
	}

	var acc sdk.AccountI
	if err := c.registry.UnpackAny(resp.Account, &acc); err != nil {
		return AccountInfo{}, ErrMalformedReply.Wrapf("account %s: %s", address, err)
	}
	return AccountInfo{
		Address:       address,
		AccountNumber: acc.GetAccountNumber(),
		Sequence:      acc.GetSequence(),
	}, nil
}

func (c *Client) Balance(ctx context.Context, address, denom string) (sdk.Coin, error) {
	resp, err := Call(ctx, c.timeout, "bank.Balance", func(ctx context.Context) (*banktypes.QueryBalanceResponse, error) {
		return c.bank.Balance(ctx, &banktypes.QueryBalanceRequest{Address: address, Denom: denom})
	})
	if err != nil {
		return sdk.Coin{}, err
	}
	if resp.Balance == nil {
		return sdk.Coin{Denom: denom, Amount: math.ZeroInt()}, nil
	}
	return *resp.Balance, nil
}

func (c *Client) BroadcastTx(ctx context.Context, txBytes []byte, mode txtypes.BroadcastMode) (*sdk.TxResponse, error) {
	resp, err := Call(ctx, c.timeout, "tx.BroadcastTx", func(ctx context.Context) (*txtypes.BroadcastTxResponse, error) {
		return c.tx.BroadcastTx(ctx, &txtypes.BroadcastTxRequest{TxBytes: txBytes, Mode: mode})
	})
	if err != nil {
		return nil, err
	}
	if resp.TxResponse == nil {
		return nil, ErrMalformedReply.Wrap("broadcast: empty tx response")
	}
	return resp.TxResponse, nil
}

func (c *Client) Simulate(ctx context.Context, txBytes []byte) (*sdk.GasInfo, error) {
	resp, err := Call(ctx, c.timeout, "tx.Simulate", func(ctx context.Context) (*txtypes.SimulateResponse, error) {
		return c.tx.Simulate(ctx, &txtypes.SimulateRequest{TxBytes: txBytes})
	})
	if err != nil {
		return nil, err
	}
	if resp.GasInfo == nil {
		return nil, ErrMalformedReply.Wrap("simulate: empty gas info")
	}
	return resp.GasInfo, nil
}

// SearchTxs runs GetTxsEvent newest-first. Both the page/limit fields and the
// legacy pagination request are set so older nodes honor the key.
func (c *Client) SearchTxs(ctx context.Context, req TxSearchRequest) (*TxSearchPage, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 100
	}
	//nolint:staticcheck // Events and Pagination are still read by pre-0.50 nodes
	in := &txtypes.GetTxsEventRequest{
		Events:  req.Events,
		Query:   strings.Join(req.Events, " AND "),
		OrderBy: txtypes.OrderBy_ORDER_BY_DESC,
		Limit:   limit,
		Page:    req.Offset/limit + 1,
		Pagination: &query.PageRequest{
			Key:        req.Key,
			Offset:     req.Offset,
			Limit:      limit,
			CountTotal: true,
			Reverse:    true,
		},
	}
	if len(req.Key) > 0 {
		in.Pagination.Offset = 0
	}

	c.logger.Debug("search txs", "query", in.Query, "page", in.Page, "limit", limit, "has_key", len(req.Key) > 0)
	resp, err := Call(ctx, c.timeout, "tx.GetTxsEvent", func(ctx context.Context) (*txtypes.GetTxsEventResponse, error) {
		return c.tx.GetTxsEvent(ctx, in)
	})
	if err != nil {
		return nil, err
	}

	page := &TxSearchPage{Txs: resp.TxResponses, Total: resp.Total}
	//nolint:staticcheck
	if resp.Pagination != nil {
		page.NextKey = resp.Pagination.NextKey
		if page.Total == 0 {
			page.Total = resp.Pagination.Total
		}
	}
	return page, nil
}

// LatestHeight returns the current chain tip.
func (c *Client) LatestHeight(ctx context.Context) (int64, error) {
	resp, err := Call(ctx, c.timeout, "cmt.GetLatestBlock", func(ctx context.Context) (*cmtservice.GetLatestBlockResponse, error) {
		return c.cmt.GetLatestBlock(ctx, &cmtservice.GetLatestBlockRequest{})
	})
	if err != nil {
		return 0, err
	}
	if resp.SdkBlock != nil {
		return resp.SdkBlock.Header.Height, nil
	}
	//nolint:staticcheck
	if resp.Block != nil {
		return resp.Block.Header.Height, nil
	}
	return 0, ErrMalformedReply.Wrap("latest block: empty response")
}

// ConsensusIOKey returns the chain-wide public key used for contract encryption.
func (c *Client) ConsensusIOKey(ctx context.Context) ([]byte, error) {
	out, err := c.invokeRaw(ctx, methodRegistrationTxKey, nil)
	if err != nil {
		return nil, err
	}
	return bytesField(out, 1)
}

// CodeHashByContract returns the hex code hash of a contract.
func (c *Client) CodeHashByContract(ctx context.Context, contract string) (string, error) {
	out, err := c.invokeRaw(ctx, methodCodeHashByContract, appendStringField(nil, 1, contract))
	if err != nil {
		return "", err
	}
	hash, err := bytesField(out, 1)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// QueryContract sends an encrypted query and returns the encrypted result.
func (c *Client) QueryContract(ctx context.Context, contract string, encryptedQuery []byte) ([]byte, error) {
	body := appendStringField(nil, 1, contract)
	body = appendBytesField(body, 2, encryptedQuery)
	out, err := c.invokeRaw(ctx, methodQueryContract, body)
	if err != nil {
		return nil, err
	}
	return bytesField(out, 1)
}

func (c *Client) invokeRaw(ctx context.Context, method string, body []byte) ([]byte, error) {
	return Call(ctx, c.timeout, method, func(ctx context.Context) ([]byte, error) {
		in := &rawMessage{bz: body}
		out := &rawMessage{}
		if err := c.conn.Invoke(ctx, method, in, out, grpc.ForceCodec(rawCodec{})); err != nil {
			return nil, err
		}
		return out.bz, nil
	})
}
