package app

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"cosmossdk.io/log"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/TrustedSmartChain/walletcore/client"
	"github.com/TrustedSmartChain/walletcore/notify"
	computetypes "github.com/TrustedSmartChain/walletcore/x/compute/types"
	txpipetypes "github.com/TrustedSmartChain/walletcore/x/txpipe/types"
)

type commandContextKey struct{}

// CommandContext is what module commands run against.
type CommandContext struct {
	Config Config
	App    *WalletApp
	Events *client.EventStream
	// Signer is nil unless keys.secret is configured.
	Signer *txpipetypes.LocalSigner

	closers []func() error
}

// NewCommandContext opens the store, dials the node and wires the app as
// configured by cfg.
func NewCommandContext(cfg Config, appOpts AppOptions, logger log.Logger) (*CommandContext, error) {
	cc := &CommandContext{Config: cfg}

	signer, err := parseSigner(cfg.Keys.Secret)
	if err != nil {
		return nil, err
	}
	cc.Signer = signer

	db, err := OpenDB(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var secrets computetypes.SecretStore
	if cfg.Keys.Passphrase != "" {
		if secrets, err = NewDBSecretStore(db, []byte(cfg.Keys.Passphrase)); err != nil {
			_ = db.Close()
			return nil, err
		}
	} else {
		logger.Info("no keys.passphrase set, viewing keys are kept in memory only")
		secrets = computetypes.NewMemSecretStore()
	}

	chainClient, err := client.Dial(cfg.Chain.GRPC, MakeInterfaceRegistry(),
		client.WithTimeout(cfg.Sync.Timeout),
		client.WithLogger(logger),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	cc.closers = append(cc.closers, chainClient.Close)

	var notifier notify.Notifier
	if cfg.NATS.Enabled {
		publisher, err := notify.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, cfg.Sync.Timeout, logger)
		if err != nil {
			_ = chainClient.Close()
			_ = db.Close()
			return nil, err
		}
		notifier = publisher
		cc.closers = append(cc.closers, func() error { publisher.Close(); return nil })
	}

	wapp, err := NewWalletApp(logger, db, chainClient, cfg.ChainInfo(), secrets, notifier, appOpts)
	if err != nil {
		_ = cc.Close()
		_ = db.Close()
		return nil, err
	}
	// the app flushes notifications before the publisher goes away
	cc.closers = append([]func() error{wapp.Close}, cc.closers...)
	cc.App = wapp
	cc.Events = client.NewEventStream(cfg.Chain.Websocket, logger)

	if cfg.Keys.UtilitySeed != "" && signer != nil {
		if err := cc.seedUtilityKey(secrets, cfg.Keys.UtilitySeed); err != nil {
			_ = cc.Close()
			return nil, err
		}
	}
	return cc, nil
}

func parseSigner(secret string) (*txpipetypes.LocalSigner, error) {
	if secret == "" {
		return nil, nil
	}
	bz, err := hex.DecodeString(secret)
	if err != nil || len(bz) != secp256k1.PrivKeySize {
		return nil, errors.New("keys.secret must be a hex encoded 32 byte secp256k1 key")
	}
	return txpipetypes.NewLocalSigner(&secp256k1.PrivKey{Key: bz})
}

func (cc *CommandContext) seedUtilityKey(secrets computetypes.SecretStore, seedHex string) error {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return fmt.Errorf("keys.utility_seed: %w", err)
	}
	defer clear(seed)
	account, err := cc.Account()
	if err != nil {
		return err
	}
	return secrets.Put(computetypes.UtilityKeyPath(account), seed)
}

// Account is the bech32 address of the configured signer.
func (cc *CommandContext) Account() (string, error) {
	if cc.Signer == nil {
		return "", errors.New("no signing key configured, set keys.secret or WALLETD_KEYS_SECRET")
	}
	return sdk.Bech32ifyAddressBytes(cc.Config.Chain.Bech32Prefix, cc.Signer.Address())
}

// RequireSigner returns the configured signer or an error naming the setting.
func (cc *CommandContext) RequireSigner() (*txpipetypes.LocalSigner, error) {
	if _, err := cc.Account(); err != nil {
		return nil, err
	}
	return cc.Signer, nil
}

// AddCloser registers fn to run on Close, before everything registered so far.
func (cc *CommandContext) AddCloser(fn func() error) {
	cc.closers = append([]func() error{fn}, cc.closers...)
}

func (cc *CommandContext) Close() error {
	var errs []error
	for _, c := range cc.closers {
		errs = append(errs, c())
	}
	cc.closers = nil
	return errors.Join(errs...)
}

// SetCommandContext attaches cc to cmd and all of its children.
func SetCommandContext(cmd *cobra.Command, cc *CommandContext) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, commandContextKey{}, cc))
}

// GetCommandContext returns the context set up by the root command.
func GetCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	if ctx := cmd.Context(); ctx != nil {
		if cc, ok := ctx.Value(commandContextKey{}).(*CommandContext); ok {
			return cc, nil
		}
	}
	return nil, errors.New("command context is not initialized")
}

// PrintJSON writes v as indented JSON to the command output.
func PrintJSON(cmd *cobra.Command, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}
