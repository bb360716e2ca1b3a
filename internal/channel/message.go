// Package channel implements the store-and-forward negotiation exchange that
// records transfer intent, confirmation, and execution outcome as auditable
// messages, independent of chain finality.
package channel

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies a negotiation message.
type Type string

const (
	// TypeNegotiation records a pre-transfer intent.
	TypeNegotiation Type = "negotiation"
	// TypeConfirmation is the reply to a negotiation, carrying the approval
	// decision and the original message ID.
	TypeConfirmation Type = "confirmation"
	// TypeExecution records the final chain outcome of a transfer.
	TypeExecution Type = "execution"
)

// Broadcast is the wildcard recipient identity.
const Broadcast = "all"

// Content keys shared between message producers and consumers.
const (
	ContentOriginalMessageID = "originalMessageId"
	ContentStatus            = "status"
	ContentRecipient         = "recipient"
	ContentAmount            = "amount"
	ContentMessage           = "message"
	ContentAction            = "action"
)

// Confirmation status values.
const (
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

// Message is one envelope on the negotiation exchange. Messages are immutable
// once created and keyed by unique, generation-ordered ID.
type Message struct {
	ID        string         `json:"id"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Type      Type           `json:"type"`
	Content   map[string]any `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewMessage builds a fresh envelope with a generated ID and current timestamp.
func NewMessage(from, to string, typ Type, content map[string]any) Message {
	if content == nil {
		content = map[string]any{}
	}
	return Message{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Type:      typ,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// AddressedTo reports whether the message targets the given identity,
// honoring the broadcast wildcard.
func (m Message) AddressedTo(identity string) bool {
	return m.To == identity || m.To == Broadcast
}

// ContentString reads a string value from the content payload.
func (m Message) ContentString(key string) string {
	if v, ok := m.Content[key].(string); ok {
		return v
	}
	return ""
}
