package interfaces

// EventPublisher delivers a committed ledger event to a topic. Publish
// failures must not affect the command that produced the event.
type EventPublisher interface {
	Publish(topic string, event any) error
}
