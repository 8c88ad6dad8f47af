// Package queue defines the audit events exchanged over the message
// broker and the background consumer that records them.
package queue

// AuditQueueName is the durable queue carrying audit events.
const AuditQueueName = "portal.audit"

// AuditEvent records an auth or device mutation.  Action is
// "<entity>.<verb>", e.g. "user.registered" or "device.deleted".
// ActorID is the acting user's id, zero for anonymous actions such as
// registration.  Timestamps are RFC3339 UTC strings so consumers need
// no shared time handling.
type AuditEvent struct {
	Action     string `json:"action"`
	Entity     string `json:"entity"`
	EntityID   string `json:"entity_id"`
	ActorID    uint64 `json:"actor_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
