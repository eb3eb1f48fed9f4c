// Package events provides the transactional outbox for domain events.
// Events are appended in the request path and relayed to Kafka by a
// background worker, so a broker outage never fails a request.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeStackSuggested = "stack.suggested"
)

// Event is one outbox row. Payload is the JSON-encoded domain payload;
// PublishedAt is nil until the relay has delivered the event.
type Event struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

// StackSuggestedPayload describes a stack suggestion served to a client.
type StackSuggestedPayload struct {
	RequestID        string   `json:"request_id,omitempty"`
	ProfileID        int64    `json:"profile_id,omitempty"`
	CountryCode      string   `json:"country_code"`
	ProgramIDs       []int64  `json:"program_ids"`
	StackValueUSD    float64  `json:"stack_value_usd"`
	CoverageRatio    float64  `json:"coverage_ratio"`
	ConstraintsHit   []string `json:"constraints_hit,omitempty"`
	CandidatesScored int      `json:"candidates_scored"`
}
