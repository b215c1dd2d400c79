package keeper

import (
	"context"
	"crypto/rand"
	"io"

	"cosmossdk.io/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/TrustedSmartChain/walletcore/client"
	"github.com/TrustedSmartChain/walletcore/x/compute/types"
)

const (
	consensusKeyCacheSize = 16
	codeHashCacheSize     = 512
)

type Keeper struct {
	logger log.Logger

	client  types.ComputeClient
	secrets types.SecretStore

	// public material only
	consensusKeys *lru.Cache[string, []byte]
	codeHashes    *lru.Cache[string, string]

	rand io.Reader
}

// NewKeeper creates a new Keeper instance
func NewKeeper(
	client types.ComputeClient,
	secrets types.SecretStore,
	logger log.Logger,
) Keeper {
	logger = logger.With(log.ModuleKey, "x/"+types.ModuleName)

	consensusKeys, err := lru.New[string, []byte](consensusKeyCacheSize)
	if err != nil {
		panic(err)
	}
	codeHashes, err := lru.New[string, string](codeHashCacheSize)
	if err != nil {
		panic(err)
	}

	return Keeper{
		logger:        logger,
		client:        client,
		secrets:       secrets,
		consensusKeys: consensusKeys,
		codeHashes:    codeHashes,
		rand:          rand.Reader,
	}
}

func (k Keeper) Logger() log.Logger {
	return k.logger
}

// WithRand returns a copy of the keeper reading nonces from r.
func (k Keeper) WithRand(r io.Reader) Keeper {
	k.rand = r
	return k
}

// ConsensusKey returns the chain's registered consensus IO public key.
func (k Keeper) ConsensusKey(ctx context.Context, chain client.ChainInfo) ([]byte, error) {
	if key, ok := k.consensusKeys.Get(chain.ChainID); ok {
		return key, nil
	}

	key, err := k.client.ConsensusIOKey(ctx)
	if err != nil {
		return nil, types.ErrMissingConsensusKey.Wrapf("chain %s: %s", chain.ChainID, err)
	}
	if len(key) != types.PubKeySize {
		return nil, types.ErrMissingConsensusKey.Wrapf("chain %s: key length %d", chain.ChainID, len(key))
	}
	k.consensusKeys.Add(chain.ChainID, key)
	return key, nil
}

// CodeHash returns codeHash normalized, or resolves it from the chain when empty.
func (k Keeper) CodeHash(ctx context.Context, chain client.ChainInfo, contract, codeHash string) (string, error) {
	if codeHash != "" {
		return types.NormalizeCodeHash(codeHash)
	}

	cacheKey := chain.ChainID + "/" + contract
	if h, ok := k.codeHashes.Get(cacheKey); ok {
		return h, nil
	}

	h, err := k.client.CodeHashByContract(ctx, contract)
	if err != nil {
		return "", err
	}
	h, err = types.NormalizeCodeHash(h)
	if err != nil {
		return "", err
	}
	k.codeHashes.Add(cacheKey, h)
	return h, nil
}
