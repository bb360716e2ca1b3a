package channel

import (
	"context"
	"sync"
	"time"

	"cosmossdk.io/log"
)

// confirmWait bounds how long Negotiate waits for the confirmation reply.
// Delivery is synchronous today, so this only matters for remote transports.
const confirmWait = 5 * time.Second

// Transport is the boundary to the external topic-addressed message log.
// Publish failures never break the channel: the message degrades to a local
// echo that is still stored and observed.
type Transport interface {
	// Connect establishes the transport session.
	Connect(ctx context.Context) error

	// Publish appends the message to the external log.
	Publish(ctx context.Context, msg Message) error
}

// LoopbackTransport is the no-op transport used when no external message log
// is configured. Messages are only echoed locally.
type LoopbackTransport struct{}

// Connect implements Transport.
func (LoopbackTransport) Connect(context.Context) error { return nil }

// Publish implements Transport.
func (LoopbackTransport) Publish(context.Context, Message) error { return nil }

// NegotiationResult is what Negotiate hands back to the pipeline. A result is
// always produced, even when the transport degraded, so the caller always has
// a message ID to key subsequent steps on.
type NegotiationResult struct {
	Status    string // "negotiated", "rejected", or "unavailable"
	MessageID string
	Recipient string
	Amount    string
}

// Negotiated reports whether the intent was confirmed.
func (r *NegotiationResult) Negotiated() bool {
	return r != nil && r.Status == "negotiated"
}

// Channel is one identity's handle on the negotiation exchange.
type Channel struct {
	identity  string
	transport Transport
	store     Store
	approver  Approver
	logger    log.Logger

	mu        sync.Mutex
	opened    bool
	degraded  bool
	observers []func(Message)
	waiters   map[string]chan Message
}

// Option configures a Channel.
type Option func(*Channel)

// WithTransport sets the external transport.
func WithTransport(t Transport) Option {
	return func(c *Channel) { c.transport = t }
}

// WithStore sets the backing message store.
func WithStore(s Store) Option {
	return func(c *Channel) { c.store = s }
}

// WithApprover sets the negotiation approval policy.
func WithApprover(a Approver) Option {
	return func(c *Channel) { c.approver = a }
}

// WithLogger sets the structured logger.
func WithLogger(l log.Logger) Option {
	return func(c *Channel) { c.logger = l }
}

// New builds a channel for the given identity. Defaults: loopback transport,
// in-memory store, auto-approval, no logging.
func New(identity string, opts ...Option) *Channel {
	c := &Channel{
		identity:  identity,
		transport: LoopbackTransport{},
		store:     NewMemoryStore(),
		approver:  AutoApprover{},
		logger:    log.NewNopLogger(),
		waiters:   make(map[string]chan Message),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identity returns the channel's own identity.
func (c *Channel) Identity() string { return c.identity }

// Open establishes the transport session. Idempotent: reopening an open
// channel is a no-op. Open never fails fatally; a transport failure degrades
// the handle so subsequent sends become local echoes that still produce
// auditable messages.
func (c *Channel) Open(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opened {
		return
	}
	c.opened = true
	if err := c.transport.Connect(ctx); err != nil {
		c.degraded = true
		c.logger.Warn("negotiation transport unavailable, degrading to local echo", "err", err)
	}
}

// Degraded reports whether the transport is disabled.
func (c *Channel) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

// Subscribe registers an observer notified exactly once per message, in
// arrival order. Observers run synchronously on the delivering goroutine.
func (c *Channel) Subscribe(fn func(Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Messages returns the full audit log in arrival order.
func (c *Channel) Messages(ctx context.Context) ([]Message, error) {
	return c.store.All(ctx)
}

// Send appends a generic message to the exchange. The returned message is
// valid even when dispatch to the transport degraded.
func (c *Channel) Send(ctx context.Context, to string, typ Type, content map[string]any) (Message, error) {
	msg := NewMessage(c.identity, to, typ, content)
	if err := c.dispatch(ctx, msg); err != nil {
		return msg, err
	}
	return msg, nil
}

// Negotiate records a pre-transfer intent and waits for the confirmation
// reply produced by the receiving side's approval policy.
func (c *Channel) Negotiate(ctx context.Context, recipient, amount, message string) (*NegotiationResult, error) {
	msg := NewMessage(c.identity, c.identity, TypeNegotiation, map[string]any{
		ContentRecipient: recipient,
		ContentAmount:    amount,
		ContentMessage:   message,
		ContentAction:    "transfer_request",
	})

	result := &NegotiationResult{
		Status:    "unavailable",
		MessageID: msg.ID,
		Recipient: recipient,
		Amount:    amount,
	}

	reply := c.addWaiter(msg.ID)
	defer c.removeWaiter(msg.ID)

	if err := c.dispatch(ctx, msg); err != nil {
		return result, err
	}

	select {
	case confirmation := <-reply:
		if confirmation.ContentString(ContentStatus) == StatusConfirmed {
			result.Status = "negotiated"
		} else {
			result.Status = "rejected"
		}
	case <-time.After(confirmWait):
		// No reply: leave the result indeterminate ("unavailable").
	case <-ctx.Done():
		return result, ctx.Err()
	}

	return result, nil
}

// dispatch publishes the message (best effort) and always delivers it
// locally: store append, observer notification, and incoming handling.
func (c *Channel) dispatch(ctx context.Context, msg Message) error {
	c.mu.Lock()
	degraded := c.degraded || !c.opened
	c.mu.Unlock()

	if !degraded {
		if err := c.transport.Publish(ctx, msg); err != nil {
			c.logger.Warn("publish failed, degrading to local echo", "id", msg.ID, "err", err)
			c.mu.Lock()
			c.degraded = true
			c.mu.Unlock()
		}
	}

	return c.deliver(ctx, msg)
}

// deliver is the single entry point for received or locally-echoed messages.
func (c *Channel) deliver(ctx context.Context, msg Message) error {
	if err := c.store.Append(ctx, msg); err != nil {
		return err
	}

	c.mu.Lock()
	observers := make([]func(Message), len(c.observers))
	copy(observers, c.observers)
	waiter := c.resolveWaiter(msg)
	c.mu.Unlock()

	for _, observe := range observers {
		observe(msg)
	}
	if waiter != nil {
		select {
		case waiter <- msg:
		default:
		}
	}

	return c.handleIncoming(ctx, msg)
}

// handleIncoming reacts to messages addressed to this identity. A negotiation
// triggers the approval policy and an immediate confirmation reply.
func (c *Channel) handleIncoming(ctx context.Context, msg Message) error {
	if msg.Type != TypeNegotiation || !msg.AddressedTo(c.identity) {
		return nil
	}

	approved, err := c.approver.Approve(ctx, ApprovalRequest{
		From:      msg.From,
		Recipient: msg.ContentString(ContentRecipient),
		Amount:    msg.ContentString(ContentAmount),
		Message:   msg.ContentString(ContentMessage),
	})
	if err != nil {
		c.logger.Warn("approval policy failed", "id", msg.ID, "err", err)
		approved = false
	}

	status := StatusConfirmed
	if !approved {
		status = StatusRejected
	}

	reply := NewMessage(c.identity, msg.From, TypeConfirmation, map[string]any{
		ContentOriginalMessageID: msg.ID,
		ContentStatus:            status,
		ContentRecipient:         msg.ContentString(ContentRecipient),
		ContentAmount:            msg.ContentString(ContentAmount),
	})
	return c.dispatch(ctx, reply)
}

// addWaiter registers a buffered reply slot for a negotiation ID. Must not be
// called with the channel mutex held.
func (c *Channel) addWaiter(originalID string) chan Message {
	ch := make(chan Message, 1)
	c.mu.Lock()
	c.waiters[originalID] = ch
	c.mu.Unlock()
	return ch
}

func (c *Channel) removeWaiter(originalID string) {
	c.mu.Lock()
	delete(c.waiters, originalID)
	c.mu.Unlock()
}

// resolveWaiter matches a confirmation message to a pending waiter.
// Caller must hold the mutex.
func (c *Channel) resolveWaiter(msg Message) chan Message {
	if msg.Type != TypeConfirmation {
		return nil
	}
	return c.waiters[msg.ContentString(ContentOriginalMessageID)]
}
