package keeper_test

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/TrustedSmartChain/walletcore/client"
	"github.com/TrustedSmartChain/walletcore/x/compute/keeper"
	"github.com/TrustedSmartChain/walletcore/x/compute/types"
	msgskeeper "github.com/TrustedSmartChain/walletcore/x/msgs/keeper"
	msgtypes "github.com/TrustedSmartChain/walletcore/x/msgs/types"
	txtypes "github.com/TrustedSmartChain/walletcore/x/txpipe/types"
)

// ========== Test helpers ==========

var (
	chain = client.ChainInfo{ChainID: "secret-4", Bech32Prefix: "secret", FeeDenom: "uscrt"}

	codeHash = strings.Repeat("ab", 32)
	contract = sdk.MustBech32ifyAddressBytes("secret", bytes.Repeat([]byte{0x42}, 20))
)

// fakeEnclave plays the chain side of the confidential compute protocol.
type fakeEnclave struct {
	key    *txtypes.LocalSigner
	handle func(codeHash string, msg []byte) ([]byte, error)

	keyErr        error
	keyCalls      atomic.Int32
	codeHashCalls atomic.Int32
	queries       atomic.Int32
}

func newEnclave() *fakeEnclave {
	return &fakeEnclave{
		key: txtypes.LocalSignerFromSecret([]byte("consensus")),
		handle: func(_ string, msg []byte) ([]byte, error) {
			return append([]byte("echo:"), msg...), nil
		},
	}
}

func (f *fakeEnclave) ConsensusIOKey(context.Context) ([]byte, error) {
	f.keyCalls.Add(1)
	if f.keyErr != nil {
		return nil, f.keyErr
	}
	return f.key.PubKey().Bytes(), nil
}

func (f *fakeEnclave) CodeHashByContract(context.Context, string) (string, error) {
	f.codeHashCalls.Add(1)
	return strings.ToUpper(codeHash), nil
}

func (f *fakeEnclave) gcm(nonce, pub []byte) (cipher.AEAD, []byte) {
	shared, err := f.key.ECDH(pub)
	if err != nil {
		panic(err)
	}
	key, iv, err := types.DeriveTxKey(shared, nonce, chain.ChainID)
	if err != nil {
		panic(err)
	}
	block, _ := aes.NewCipher(key)
	gcm, _ := cipher.NewGCM(block)
	return gcm, iv
}

func (f *fakeEnclave) open(sealed []byte) (cipher.AEAD, []byte, string, []byte, error) {
	nonce, pub, ct, err := types.SplitEnvelope(sealed)
	if err != nil {
		return nil, nil, "", nil, err
	}
	gcm, iv := f.gcm(nonce[:], pub)
	pt, err := gcm.Open(nil, iv, ct, nil)
	if err != nil {
		return nil, nil, "", nil, err
	}
	return gcm, iv, string(pt[:64]), pt[64:], nil
}

func (f *fakeEnclave) QueryContract(_ context.Context, _ string, sealed []byte) ([]byte, error) {
	f.queries.Add(1)
	gcm, iv, hash, msg, err := f.open(sealed)
	if err != nil {
		return nil, err
	}
	out, qerr := f.handle(hash, msg)
	if qerr != nil {
		enc := gcm.Seal(nil, iv, []byte(qerr.Error()), nil)
		return nil, fmt.Errorf("query contract failed: encrypted: %s", base64.StdEncoding.EncodeToString(enc))
	}
	return gcm.Seal(nil, iv, out, nil), nil
}

func newKeeper(enclave *fakeEnclave, secrets types.SecretStore) keeper.Keeper {
	if secrets == nil {
		secrets = types.NewMemSecretStore()
	}
	return keeper.NewKeeper(enclave, secrets, log.NewNopLogger())
}

func nonce4(n uint32) [4]byte {
	return [4]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}

// ========== Viewing keys ==========

func TestViewingKeyDerivationIsStableAndRotates(t *testing.T) {
	secrets := types.NewMemSecretStore()
	require.NoError(t, secrets.Put(types.UtilityKeyPath("alice"), bytes.Repeat([]byte{7}, 32)))
	k := newKeeper(newEnclave(), secrets)
	ctx := context.Background()

	first, err := k.DeriveViewingKey(ctx, "alice", chain, contract, types.ExplicitNonce(nonce4(1)))
	require.NoError(t, err)
	again, err := k.DeriveViewingKey(ctx, "alice", chain, contract, types.ExplicitNonce(nonce4(1)))
	require.NoError(t, err)
	require.Equal(t, first.String(), again.String())
	require.True(t, strings.HasPrefix(first.String(), types.ViewingKeyPreamble))

	next, err := k.DeriveViewingKey(ctx, "alice", chain, contract, types.IncrementNonce(first.String()))
	require.NoError(t, err)
	parsed, err := types.ParseViewingKey(next.String())
	require.NoError(t, err)
	require.Equal(t, "00000002", hex.EncodeToString(parsed.Nonce[:]))
	require.NotEqual(t, first.Key, next.Key)

	other, err := k.DeriveViewingKey(ctx, "alice", chain, "secret1other", types.ExplicitNonce(nonce4(1)))
	require.NoError(t, err)
	require.NotEqual(t, first.Key, other.Key)
}

func TestViewingKeyMissingUtilityKey(t *testing.T) {
	k := newKeeper(newEnclave(), nil)
	_, err := k.DeriveViewingKey(context.Background(), "bob", chain, contract, types.ExplicitNonce(nonce4(1)))
	require.ErrorIs(t, err, types.ErrMissingUtilityKey)
	require.Contains(t, err.Error(), "bob")
}

func TestNoncePolicy(t *testing.T) {
	maxKey := types.ViewingKeyMaterial{Nonce: nonce4(0xffffffff)}
	garbageSum := sha256.Sum256([]byte("not-a-viewing-key"))

	cases := []struct {
		name   string
		policy types.NoncePolicy
		want   [4]byte
	}{
		{"explicit wins", types.NoncePolicy{Explicit: &[4]byte{9, 9, 9, 9}, Previous: maxKey.String()}, [4]byte{9, 9, 9, 9}},
		{"increment wraps", types.IncrementNonce(maxKey.String()), nonce4(0)},
		{"hash of foreign key", types.IncrementNonce("not-a-viewing-key"), [4]byte(garbageSum[:4])},
		{"random", types.NoncePolicy{Rand: bytes.NewReader([]byte{1, 2, 3, 4})}, [4]byte{1, 2, 3, 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.policy.Nonce()
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestActiveViewingKeyLifecycle(t *testing.T) {
	secrets := types.NewMemSecretStore()
	require.NoError(t, secrets.Put(types.UtilityKeyPath("alice"), []byte("seed")))
	k := newKeeper(newEnclave(), secrets).WithRand(bytes.NewReader([]byte{0, 0, 0, 5}))

	_, err := k.ActiveViewingKey(chain, "alice", contract)
	require.ErrorIs(t, err, types.ErrMissingViewingKey)

	first, err := k.RotateViewingKey(context.Background(), "alice", chain, contract)
	require.NoError(t, err)
	require.Equal(t, nonce4(5), first.Nonce)

	second, err := k.RotateViewingKey(context.Background(), "alice", chain, contract)
	require.NoError(t, err)
	require.Equal(t, nonce4(6), second.Nonce)

	active, err := k.ActiveViewingKey(chain, "alice", contract)
	require.NoError(t, err)
	require.Equal(t, second.String(), active.String())

	contracts, err := k.ViewingKeyContracts(chain, "alice")
	require.NoError(t, err)
	require.Equal(t, []string{contract}, contracts)
}

func TestBorrowPlaintextWipesSecret(t *testing.T) {
	secrets := types.NewMemSecretStore()
	require.NoError(t, secrets.Put("utility/alice", []byte("seed material")))

	var held []byte
	require.NoError(t, secrets.BorrowPlaintext("utility/alice", func(seed []byte) error {
		held = seed
		return nil
	}))
	require.Equal(t, make([]byte, len("seed material")), held)

	stored, ok, err := secrets.Get("utility/alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("seed material"), stored)
}

// ========== Envelope ==========

func TestEnvelopeRoundTrip(t *testing.T) {
	enclave := newEnclave()
	signer := txtypes.LocalSignerFromSecret([]byte("alice"))

	env := types.NewEnvelope(signer, chain.ChainID, enclave.key.PubKey().Bytes(), [32]byte{1})
	require.Equal(t, types.StateNoKey, env.State())

	sealed, err := env.Encrypt(strings.ToUpper(codeHash), []byte(`{"balance":{}}`))
	require.NoError(t, err)
	require.Equal(t, types.StateEncrypted, env.State())
	require.Equal(t, byte(1), sealed[0])
	require.Equal(t, signer.PubKey().Bytes(), sealed[32:65])

	gcm, iv, hash, msg, err := enclave.open(sealed)
	require.NoError(t, err)
	require.Equal(t, codeHash, hash)
	require.Equal(t, `{"balance":{}}`, string(msg))

	env.MarkSent()
	require.Equal(t, types.StateSent, env.State())

	out, err := env.Decrypt(gcm.Seal(nil, iv, []byte(`{"amount":"5"}`), nil))
	require.NoError(t, err)
	require.Equal(t, `{"amount":"5"}`, string(out))

	_, err = env.Decrypt(gcm.Seal(nil, iv, []byte(`{}`), nil))
	require.ErrorIs(t, err, types.ErrNonceConsumed)

	_, err = env.Encrypt(codeHash, []byte(`{}`))
	require.ErrorIs(t, err, types.ErrInvalidEnvelope)
}

func TestEnvelopeRejectsBadCodeHash(t *testing.T) {
	env := types.NewEnvelope(txtypes.LocalSignerFromSecret([]byte("alice")), chain.ChainID, newEnclave().key.PubKey().Bytes(), [32]byte{})
	_, err := env.Encrypt("abcd", []byte(`{}`))
	require.ErrorIs(t, err, types.ErrInvalidCodeHash)
	require.Equal(t, types.StateNoKey, env.State())
}

// ========== Contract calls ==========

func TestQueryContract(t *testing.T) {
	enclave := newEnclave()
	k := newKeeper(enclave, nil)
	signer := txtypes.LocalSignerFromSecret([]byte("alice"))

	out, err := k.QueryContract(context.Background(), signer, chain, contract, "", json.RawMessage(`{"token_info":{}}`))
	require.NoError(t, err)
	require.Equal(t, `echo:{"token_info":{}}`, string(out))

	_, err = k.QueryContract(context.Background(), signer, chain, contract, "", json.RawMessage(`{"token_info":{}}`))
	require.NoError(t, err)
	require.Equal(t, int32(1), enclave.keyCalls.Load())
	require.Equal(t, int32(1), enclave.codeHashCalls.Load())
}

func TestQueryContractRecoversEncryptedError(t *testing.T) {
	enclave := newEnclave()
	enclave.handle = func(string, []byte) ([]byte, error) {
		return nil, errors.New(`{"generic_err":{"msg":"Wrong viewing key for this address or viewing key not set"}}`)
	}
	k := newKeeper(enclave, nil)

	_, err := k.QueryContract(context.Background(), txtypes.LocalSignerFromSecret([]byte("alice")), chain, contract, codeHash, json.RawMessage(`{}`))
	require.ErrorIs(t, err, types.ErrContractQuery)
	require.Contains(t, err.Error(), "Wrong viewing key")
}

type failingCompute struct {
	*fakeEnclave
	err error
}

func (f failingCompute) QueryContract(context.Context, string, []byte) ([]byte, error) {
	return nil, f.err
}

func TestQueryContractUndecryptableError(t *testing.T) {
	bogus := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xee}, 40))
	fc := failingCompute{fakeEnclave: newEnclave(), err: fmt.Errorf("query failed: encrypted: %s", bogus)}
	k := keeper.NewKeeper(fc, types.NewMemSecretStore(), log.NewNopLogger())

	_, err := k.QueryContract(context.Background(), txtypes.LocalSignerFromSecret([]byte("alice")), chain, contract, codeHash, json.RawMessage(`{}`))
	require.ErrorIs(t, err, types.ErrContractQuery)
	require.NotContains(t, err.Error(), bogus)

	fc.err = client.ErrTimeout
	k = keeper.NewKeeper(fc, types.NewMemSecretStore(), log.NewNopLogger())
	_, err = k.QueryContract(context.Background(), txtypes.LocalSignerFromSecret([]byte("alice")), chain, contract, codeHash, json.RawMessage(`{}`))
	require.ErrorIs(t, err, client.ErrTimeout)
}

func TestMissingConsensusKeyAborts(t *testing.T) {
	enclave := newEnclave()
	enclave.keyErr = errors.New("registration unavailable")
	k := newKeeper(enclave, nil)

	_, err := k.QueryContract(context.Background(), txtypes.LocalSignerFromSecret([]byte("alice")), chain, contract, codeHash, json.RawMessage(`{}`))
	require.ErrorIs(t, err, types.ErrMissingConsensusKey)
	require.Contains(t, err.Error(), chain.ChainID)
	require.Zero(t, enclave.queries.Load())
}

func TestExecuteMsgConvertsToProto(t *testing.T) {
	enclave := newEnclave()
	k := newKeeper(enclave, nil)
	signer := txtypes.LocalSignerFromSecret([]byte("alice"))

	msg, env, err := k.ExecuteMsg(context.Background(), signer, chain, contract, codeHash,
		json.RawMessage(`{"transfer":{"amount":"1"}}`), sdk.NewCoins(sdk.NewInt64Coin("uscrt", 10)))
	require.NoError(t, err)
	require.Equal(t, types.StateEncrypted, env.State())
	require.Equal(t, msgtypes.AminoMsgExecuteContract, msg.Type)

	codec := msgskeeper.NewKeeper(msgtypes.NewDefaultRegistry(), log.NewNopLogger())
	cm, err := codec.AminoToProto(msg)
	require.NoError(t, err)
	require.Equal(t, msgtypes.TypeURLExecuteContract, cm.ID)

	signerAddr, ok := cm.Signer()
	require.True(t, ok)
	require.Equal(t, []byte(signer.Address()), signerAddr)

	sealed, ok := cm.Data["msg"].([]byte)
	require.True(t, ok)
	_, _, hash, plain, err := enclave.open(sealed)
	require.NoError(t, err)
	require.Equal(t, codeHash, hash)
	require.Equal(t, `{"transfer":{"amount":"1"}}`, string(plain))
}

func TestExecuteMsgWithoutFundsRoundTrips(t *testing.T) {
	k := newKeeper(newEnclave(), nil)
	signer := txtypes.LocalSignerFromSecret([]byte("alice"))

	msg, _, err := k.ExecuteMsg(context.Background(), signer, chain, contract, codeHash,
		json.RawMessage(`{"set_viewing_key":{"key":"x"}}`), nil)
	require.NoError(t, err)
	require.Equal(t, []any{}, msg.Value["sent_funds"])

	codec := msgskeeper.NewKeeper(msgtypes.NewDefaultRegistry(), log.NewNopLogger())
	cm, err := codec.AminoToProto(msg)
	require.NoError(t, err)
	packed, err := cm.Encode()
	require.NoError(t, err)

	back, err := codec.ProtoToAmino(packed, chain.Bech32Prefix)
	require.NoError(t, err)
	require.Equal(t, msg, back)
}
