package domain

// Submission is the canonical form of one inbound form notification.
// Email and Phone are always non-empty once a Submission exists.
type Submission struct {
	Email     string
	Phone     string
	Name      string // sanitized, may be empty
	Timestamp string // ISO-8601 as received, or server time when absent
}

// ChannelOutcome is the result of one channel invocation for one request.
type ChannelOutcome struct {
	Attempted bool   `json:"attempted"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}
