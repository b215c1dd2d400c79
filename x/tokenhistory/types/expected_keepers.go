package types

import (
	"context"
	"encoding/json"

	"github.com/TrustedSmartChain/walletcore/client"
	"github.com/TrustedSmartChain/walletcore/notify"
	computetypes "github.com/TrustedSmartChain/walletcore/x/compute/types"
	incidenttypes "github.com/TrustedSmartChain/walletcore/x/incidents/types"
)

// ComputeKeeper defines the expected interface for the compute module.
type ComputeKeeper interface {
	QueryContract(
		ctx context.Context,
		signer computetypes.Signer,
		chain client.ChainInfo,
		contract, codeHash string,
		query json.RawMessage,
	) ([]byte, error)
	ActiveViewingKey(chain client.ChainInfo, account, contract string) (computetypes.ViewingKeyMaterial, error)
}

// IncidentsKeeper defines the expected interface for the incidents module.
type IncidentsKeeper interface {
	SetIncidents(incidents ...incidenttypes.Incident) error
}

// Notifier accepts notifications without blocking.
type Notifier interface {
	Enqueue(n notify.Notification) bool
}
