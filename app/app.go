package app

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
	"github.com/spf13/cast"

	"github.com/TrustedSmartChain/walletcore/client"
	"github.com/TrustedSmartChain/walletcore/notify"
	computekeeper "github.com/TrustedSmartChain/walletcore/x/compute/keeper"
	computetypes "github.com/TrustedSmartChain/walletcore/x/compute/types"
	incidentskeeper "github.com/TrustedSmartChain/walletcore/x/incidents/keeper"
	incidenttypes "github.com/TrustedSmartChain/walletcore/x/incidents/types"
	msgskeeper "github.com/TrustedSmartChain/walletcore/x/msgs/keeper"
	msgtypes "github.com/TrustedSmartChain/walletcore/x/msgs/types"
	tokenhistorykeeper "github.com/TrustedSmartChain/walletcore/x/tokenhistory/keeper"
	tokenhistorytypes "github.com/TrustedSmartChain/walletcore/x/tokenhistory/types"
	txpipekeeper "github.com/TrustedSmartChain/walletcore/x/txpipe/keeper"
	txpipetypes "github.com/TrustedSmartChain/walletcore/x/txpipe/types"
)

const appName = "walletd"

// AppOptions is the loose option source the app reads tunables from. A
// *viper.Viper satisfies it.
type AppOptions interface {
	Get(string) interface{}
}

// ChainClient is every chain endpoint the modules use. *client.Client
// implements it.
type ChainClient interface {
	Account(ctx context.Context, address string) (client.AccountInfo, error)
	Balance(ctx context.Context, address, denom string) (sdk.Coin, error)
	BroadcastTx(ctx context.Context, txBytes []byte, mode txtypes.BroadcastMode) (*sdk.TxResponse, error)
	Simulate(ctx context.Context, txBytes []byte) (*sdk.GasInfo, error)
	SearchTxs(ctx context.Context, req client.TxSearchRequest) (*client.TxSearchPage, error)
	LatestHeight(ctx context.Context) (int64, error)
	ConsensusIOKey(ctx context.Context) ([]byte, error)
	CodeHashByContract(ctx context.Context, contract string) (string, error)
	QueryContract(ctx context.Context, contract string, encryptedQuery []byte) ([]byte, error)
}

var _ ChainClient = (*client.Client)(nil)

// WalletApp wires the modules of one wallet process around a shared store,
// chain client and notification dispatcher.
type WalletApp struct {
	logger log.Logger
	db     dbm.DB
	chain  client.ChainInfo
	client ChainClient

	interfaceRegistry codectypes.InterfaceRegistry
	dispatcher        *notify.Dispatcher

	syncPageLimit   uint64
	historyPageSize uint32

	// keepers
	MsgsKeeper         msgskeeper.Keeper
	TxPipeKeeper       txpipekeeper.Keeper
	ComputeKeeper      computekeeper.Keeper
	IncidentsKeeper    *incidentskeeper.Keeper
	TokenHistoryKeeper tokenhistorykeeper.Keeper
}

// NewWalletApp returns a reference to an initialized WalletApp. notifier may
// be nil, in which case notifications are dropped.
func NewWalletApp(
	logger log.Logger,
	db dbm.DB,
	chainClient ChainClient,
	chain client.ChainInfo,
	secrets computetypes.SecretStore,
	notifier notify.Notifier,
	appOpts AppOptions,
) (*WalletApp, error) {
	if secrets == nil {
		return nil, fmt.Errorf("%s: secret store is required", appName)
	}

	app := &WalletApp{
		logger:            logger.With(log.ModuleKey, appName),
		db:                db,
		chain:             chain,
		client:            chainClient,
		interfaceRegistry: MakeInterfaceRegistry(),
		syncPageLimit:     cast.ToUint64(appOpts.Get(FlagSyncPageLimit)),
		historyPageSize:   cast.ToUint32(appOpts.Get(FlagHistoryPageSize)),
	}
	app.dispatcher = notify.NewDispatcher(notifier, cast.ToInt(appOpts.Get(FlagNotifyQueueSize)), logger)

	app.MsgsKeeper = msgskeeper.NewKeeper(msgtypes.NewDefaultRegistry(), logger)

	app.IncidentsKeeper = incidentskeeper.NewKeeper(db, chainClient, app.MsgsKeeper, logger)
	app.IncidentsKeeper.SetHooks(NewNotifyHooks(app.dispatcher, app.logger))

	app.TxPipeKeeper = txpipekeeper.NewKeeper(app.MsgsKeeper, chainClient, app.IncidentsKeeper, logger)

	app.ComputeKeeper = computekeeper.NewKeeper(chainClient, secrets, logger)

	app.TokenHistoryKeeper = tokenhistorykeeper.NewKeeper(
		db,
		app.ComputeKeeper,
		app.IncidentsKeeper,
		app.dispatcher,
		logger,
	)

	return app, nil
}

func (app *WalletApp) Logger() log.Logger { return app.logger }

func (app *WalletApp) Chain() client.ChainInfo { return app.chain }

func (app *WalletApp) InterfaceRegistry() codectypes.InterfaceRegistry { return app.interfaceRegistry }

// SyncRequests returns the default tx_in/tx_out requests for account with the
// configured page limit.
func (app *WalletApp) SyncRequests(account string) []incidenttypes.SyncRequest {
	reqs := incidenttypes.DefaultSyncRequests(app.chain, account)
	for i := range reqs {
		reqs[i].PageLimit = app.syncPageLimit
	}
	return reqs
}

// SyncAccount runs one sync pass over the default requests of account.
func (app *WalletApp) SyncAccount(ctx context.Context, account string) ([]incidenttypes.Incident, error) {
	results, err := app.IncidentsKeeper.SyncAll(ctx, app.SyncRequests(account))
	var all []incidenttypes.Incident
	for _, emitted := range results {
		all = append(all, emitted...)
	}
	return all, err
}

// Watch keeps the incidents of account current from the websocket stream
// until ctx is done. A full pass runs first to cover the time the process was
// down.
func (app *WalletApp) Watch(ctx context.Context, events incidenttypes.EventSource, account string) error {
	if _, err := app.SyncAccount(ctx, account); err != nil {
		app.logger.Error("initial sync failed", "account", account, "err", err)
	}
	return app.IncidentsKeeper.SubscribeAll(ctx, events, app.SyncRequests(account))
}

// Send transfers amount from signer to recipient.
func (app *WalletApp) Send(
	ctx context.Context,
	signer txpipetypes.Signer,
	recipient string,
	amount sdk.Coins,
	memo string,
	gasLimit uint64,
	mode txtypes.BroadcastMode,
) (*txpipetypes.BroadcastResult, error) {
	from, err := sdk.Bech32ifyAddressBytes(app.chain.Bech32Prefix, signer.Address())
	if err != nil {
		return nil, err
	}

	coins := make([]any, 0, len(amount))
	for _, c := range amount {
		coins = append(coins, map[string]any{"denom": c.Denom, "amount": c.Amount.String()})
	}

	result, _, err := app.TxPipeKeeper.Broadcast(ctx, txpipetypes.BroadcastRequest{
		Chain:  app.chain,
		Signer: signer,
		Messages: []msgtypes.AminoMsg{{
			Type: msgtypes.AminoMsgSend,
			Value: map[string]any{
				"from_address": from,
				"to_address":   recipient,
				"amount":       coins,
			},
		}},
		Memo:     memo,
		GasLimit: gasLimit,
		Fee:      txpipetypes.PriceFee(app.chain.GasPrice, app.chain.FeeDenom),
		Mode:     mode,
	})
	return result, err
}

// RefreshHistory merges the transfer history of the signer's account on
// contract into the cache.
func (app *WalletApp) RefreshHistory(
	ctx context.Context,
	signer txpipetypes.Signer,
	contract, codeHash string,
	kind tokenhistorytypes.Kind,
) ([]tokenhistorytypes.Entry, error) {
	account, err := sdk.Bech32ifyAddressBytes(app.chain.Bech32Prefix, signer.Address())
	if err != nil {
		return nil, err
	}
	return app.TokenHistoryKeeper.Refresh(ctx, tokenhistorytypes.RefreshRequest{
		Chain:    app.chain,
		Account:  account,
		Contract: contract,
		CodeHash: codeHash,
		Kind:     kind,
		PageSize: app.historyPageSize,
		Signer:   signer,
	})
}

// Close flushes queued notifications and closes the store.
func (app *WalletApp) Close() error {
	done := make(chan struct{})
	go func() {
		app.dispatcher.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		app.logger.Error("timed out flushing notifications")
	}
	return app.db.Close()
}
