package bridge

import (
	"log"

	"gostablebridge/types"
)

// LogNotifier is the default Notifier when no delivery backend is wired.
// The real mechanism (email, push) lives outside this process.
type LogNotifier struct{}

var _ Notifier = LogNotifier{}

func (LogNotifier) SendBridgeCompletion(tx *types.BridgeTransaction) error {
	log.Printf("Bridge transaction %s completed: %s %s -> %s", tx.ID, tx.Amount, tx.SourceChain, tx.DestinationChain)
	return nil
}

func (LogNotifier) SendBridgeFailure(tx *types.BridgeTransaction, reason string) error {
	log.Printf("Bridge transaction %s failed: %s", tx.ID, reason)
	return nil
}
