package types

import "fmt"

const (
	EventMessageSender     = "message.sender"
	EventTransferRecipient = "transfer.recipient"
	EventTxHeight          = "tx.height"

	// SubscribeTxQuery matches every committed transaction.
	SubscribeTxQuery = "tm.event='Tx'"
)

// EventFilter renders one key='value' condition of a tx search query.
func EventFilter(key, value string) string {
	return fmt.Sprintf("%s='%s'", key, value)
}
