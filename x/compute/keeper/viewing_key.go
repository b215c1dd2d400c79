package keeper

import (
	"context"
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/TrustedSmartChain/walletcore/client"
	"github.com/TrustedSmartChain/walletcore/x/compute/types"
)

// DeriveViewingKey derives the viewing key of account for a token contract
// from the account utility key. The seed is only visible inside the borrow
// callback.
func (k Keeper) DeriveViewingKey(
	_ context.Context,
	account string,
	chain client.ChainInfo,
	contract string,
	policy types.NoncePolicy,
) (types.ViewingKeyMaterial, error) {
	nonce, err := policy.Nonce()
	if err != nil {
		return types.ViewingKeyMaterial{}, err
	}

	var vk types.ViewingKeyMaterial
	err = k.secrets.BorrowPlaintext(types.UtilityKeyPath(account), func(seed []byte) error {
		var derr error
		vk, derr = types.DeriveViewingKey(seed, chain, contract, nonce)
		return derr
	})
	if errorsmod.IsOf(err, types.ErrSecretNotFound) {
		return types.ViewingKeyMaterial{}, types.ErrMissingUtilityKey.Wrapf("account %s", account)
	}
	if err != nil {
		return types.ViewingKeyMaterial{}, err
	}
	return vk, nil
}

// StoreViewingKey makes vk the active key of account for contract,
// replacing any previous one.
func (k Keeper) StoreViewingKey(chain client.ChainInfo, account, contract string, vk types.ViewingKeyMaterial) error {
	return k.secrets.Put(types.ViewingKeyPath(chain.ChainID, account, contract), []byte(vk.String()))
}

func (k Keeper) ActiveViewingKey(chain client.ChainInfo, account, contract string) (types.ViewingKeyMaterial, error) {
	raw, ok, err := k.secrets.Get(types.ViewingKeyPath(chain.ChainID, account, contract))
	if err != nil {
		return types.ViewingKeyMaterial{}, err
	}
	if !ok {
		return types.ViewingKeyMaterial{}, types.ErrMissingViewingKey.Wrapf("account %s contract %s", account, contract)
	}
	defer clear(raw)
	return types.ParseViewingKey(string(raw))
}

// RotateViewingKey derives the successor of the active key (or a random key
// when none is active) and stores it.
func (k Keeper) RotateViewingKey(ctx context.Context, account string, chain client.ChainInfo, contract string) (types.ViewingKeyMaterial, error) {
	policy := types.NoncePolicy{Rand: k.rand}
	if prev, err := k.ActiveViewingKey(chain, account, contract); err == nil {
		policy.Previous = prev.String()
		prev.Wipe()
	}

	vk, err := k.DeriveViewingKey(ctx, account, chain, contract, policy)
	if err != nil {
		return types.ViewingKeyMaterial{}, err
	}
	if err := k.StoreViewingKey(chain, account, contract, vk); err != nil {
		return types.ViewingKeyMaterial{}, err
	}
	k.logger.Info("viewing key rotated", "account", account, "contract", contract)
	return vk, nil
}

// ViewingKeyContracts lists the contracts account holds a viewing key for.
func (k Keeper) ViewingKeyContracts(chain client.ChainInfo, account string) ([]string, error) {
	prefix := types.ViewingKeyPath(chain.ChainID, account, "")
	paths, err := k.secrets.Filter(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, strings.TrimPrefix(p, prefix))
	}
	return out, nil
}
