package app

import (
	"context"
	"time"

	"cosmossdk.io/log"

	"github.com/TrustedSmartChain/walletcore/notify"
	incidenttypes "github.com/TrustedSmartChain/walletcore/x/incidents/types"
)

var _ incidenttypes.IncidentHooks = NotifyHooks{}

// NotifyHooks announces incoming transactions found by sync.
type NotifyHooks struct {
	dispatcher *notify.Dispatcher
	logger     log.Logger
}

func NewNotifyHooks(dispatcher *notify.Dispatcher, logger log.Logger) NotifyHooks {
	return NotifyHooks{dispatcher: dispatcher, logger: logger}
}

func (h NotifyHooks) AfterIncidentsSynced(_ context.Context, incidents []incidenttypes.Incident) {
	for _, inc := range incidents {
		if inc.Type != incidenttypes.TypeTxIn {
			continue
		}

		ts, err := time.Parse(time.RFC3339, inc.Timestamp)
		if err != nil {
			ts = time.Now().UTC()
		}
		n := notify.Notification{
			Chain:     inc.ChainID,
			Account:   inc.Account,
			Kind:      string(inc.Type),
			Title:     "Incoming transaction",
			Body:      "Transaction " + inc.ID + " was received",
			Reference: inc.ID,
			Timestamp: ts,
		}
		if !h.dispatcher.Enqueue(n) {
			h.logger.Error("transaction notification not queued", "hash", inc.ID)
		}
	}
}
