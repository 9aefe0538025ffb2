// Package domain defines the core notification domain entities and types.
package domain

// Status is the terminal state of one dispatch attempt.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Message is a fully rendered outbound email, ready for the provider.
type Message struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
}

// Outcome records the result of a single dispatch attempt. It is created per
// attempt and terminal once the provider call returns or times out.
type Outcome struct {
	Recipient string
	Subject   string
	Status    Status
	Error     string
}

// Sent reports whether the attempt reached the provider successfully.
func (o Outcome) Sent() bool {
	return o.Status == StatusSent
}
