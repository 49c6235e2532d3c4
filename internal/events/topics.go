package events

// Topic constants for domain events.
const (
	TopicQuoteSaved = "quote.saved"
)

// DefaultTopics returns the topics delivered to webhooks.
func DefaultTopics() []string {
	return []string{TopicQuoteSaved}
}
