package domain

import "time"

// ProcessingOutcome is the terminal result recorded for an admitted delivery.
type ProcessingOutcome string

const (
	// OutcomeAccepted means side effects completed.
	OutcomeAccepted ProcessingOutcome = "accepted"
	// OutcomeAlreadyProcessed means the identity had been admitted before.
	OutcomeAlreadyProcessed ProcessingOutcome = "already_processed"
	// OutcomeDeferred means durable side effects committed but the
	// notification send did not, so the message sits in the outbox. The
	// retry worker owns the send; redeliveries must not attempt it again.
	OutcomeDeferred ProcessingOutcome = "deferred"
	// OutcomeFailed means the delivery was admitted but a step before
	// dispatch failed. No message was sent, so a redelivery may reprocess.
	OutcomeFailed ProcessingOutcome = "failed"
)

// ProcessingRecord is the idempotency guard's append-only record of one
// admitted event identity. Retained for at least the platform's maximum
// redelivery window.
type ProcessingRecord struct {
	EventID     string
	Topic       string
	Outcome     ProcessingOutcome
	LastError   *string
	ProcessedAt time.Time
}
