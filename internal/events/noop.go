// Package events provides event publisher implementations for the ledger.
package events

import "github.com/accountio/ledger-service/internal/interfaces"

// NoopPublisher discards every event. It is the default when no brokers are
// configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(topic string, event any) error { return nil }

var _ interfaces.EventPublisher = NoopPublisher{}
