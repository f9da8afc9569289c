package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"onlineshop/internal/cart"
	"onlineshop/internal/domain"
)

// Phase is the checkout workflow state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreviewPending
	PhasePreviewReady
	PhaseSubmitting
	PhaseCompleted
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhasePreviewPending:
		return "PreviewPending"
	case PhasePreviewReady:
		return "PreviewReady"
	case PhaseSubmitting:
		return "Submitting"
	case PhaseCompleted:
		return "Completed"
	case PhaseErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// ErrAuthRequired is returned by Confirm when no session is active. It is a
// precondition failure, not a workflow transition: the phase stays
// PreviewReady and no request is issued.
var ErrAuthRequired = errors.New("please log in to place an order")

// ErrNotReady is returned by Confirm outside of PreviewReady, which also
// covers double submission while a request is in flight.
var ErrNotReady = errors.New("no confirmed preview to submit")

// State is the controller's observable state.
type State struct {
	Phase          Phase
	Preview        *domain.OrderPreview
	Order          *domain.Order
	Error          string
	SuccessMessage string
	AuthRequired   bool
}

// orderAPI is the slice of the backend client the workflow drives.
type orderAPI interface {
	PreviewOrder(ctx context.Context, items []domain.OrderItem) (*domain.OrderPreview, error)
	CreateOrder(ctx context.Context, items []domain.OrderItem) (*domain.Order, string, error)
}

// sessionGate answers the submit precondition.
type sessionGate interface {
	Authenticated() bool
}

// cartStore is the slice of the cart the workflow reads and, on success,
// clears. The workflow never owns the cart.
type cartStore interface {
	OrderItems() []domain.OrderItem
	Clear() cart.Snapshot
}

// Controller owns the checkout state machine: preview, confirm, submit,
// complete. One controller per checkout view instance.
type Controller struct {
	mu         sync.Mutex
	api        orderAPI
	gate       sessionGate
	cart       cartStore
	logger     *log.Logger
	resetDelay time.Duration

	state      State
	previewSeq uint64
	resetTimer *time.Timer
	onReset    func()
	closed     bool
}

type Option func(*Controller)

// WithResetDelay overrides the post-success delay before the workflow
// returns to Idle. The observed product default is three seconds.
func WithResetDelay(d time.Duration) Option {
	return func(c *Controller) { c.resetDelay = d }
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithResetHook registers a callback fired when the post-success timer
// returns the workflow to Idle, which is where navigation back to the home
// view hangs off.
func WithResetHook(fn func()) Option {
	return func(c *Controller) { c.onReset = fn }
}

func New(api orderAPI, gate sessionGate, store cartStore, opts ...Option) *Controller {
	c := &Controller{
		api:        api,
		gate:       gate,
		cart:       store,
		logger:     log.New(io.Discard, "", 0),
		resetDelay: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current workflow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RefreshPreview snapshots the cart and requests a server-priced preview.
// The payload carries product ids and quantities only. Each call supersedes
// any in-flight preview: responses that are not for the latest issued
// sequence number are discarded, so a stale response can never overwrite a
// fresher cart's preview.
func (c *Controller) RefreshPreview(ctx context.Context) error {
	items := c.cart.OrderItems()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if len(items) == 0 {
		c.cancelTimerLocked()
		c.state = State{Phase: PhaseIdle}
		c.mu.Unlock()
		return nil
	}
	c.previewSeq++
	seq := c.previewSeq
	c.state.Phase = PhasePreviewPending
	c.state.Error = ""
	c.state.SuccessMessage = ""
	c.state.AuthRequired = false
	c.mu.Unlock()

	preview, err := c.api.PreviewOrder(ctx, items)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.previewSeq {
		// Superseded by a newer preview request; last issued wins.
		return nil
	}
	if err != nil {
		c.state.Phase = PhaseErrored
		c.state.Preview = nil
		c.state.Error = err.Error()
		c.logger.Printf("checkout: preview failed: %v", err)
		return err
	}
	c.state.Phase = PhasePreviewReady
	c.state.Preview = preview
	return nil
}

// Confirm submits the previewed order. Without an authenticated session it
// refuses up front: no request is issued, the phase stays PreviewReady, and
// the auth-required notice is raised for the UI to surface.
func (c *Controller) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Phase != PhasePreviewReady {
		c.mu.Unlock()
		return ErrNotReady
	}
	if !c.gate.Authenticated() {
		c.state.AuthRequired = true
		c.mu.Unlock()
		return ErrAuthRequired
	}
	c.state.Phase = PhaseSubmitting
	c.state.AuthRequired = false
	c.mu.Unlock()

	items := c.cart.OrderItems()
	order, message, err := c.api.CreateOrder(ctx, items)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if err != nil {
		// The cart survives a failed submission.
		c.state.Phase = PhaseErrored
		c.state.Error = err.Error()
		c.logger.Printf("checkout: submit failed: %v", err)
		return err
	}

	c.cart.Clear()
	c.state.Phase = PhaseCompleted
	c.state.Order = order
	c.state.SuccessMessage = message
	c.state.Error = ""
	c.logger.Printf("checkout: order %s placed", order.ID)
	c.scheduleResetLocked()
	return nil
}

// Cancel backs out of the confirmation step. The preview stays valid and the
// phase does not change; only the auth notice is dismissed.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == PhasePreviewReady {
		c.state.AuthRequired = false
	}
}

// Reset returns the workflow to Idle immediately and cancels any pending
// post-success timer.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTimerLocked()
	c.previewSeq++ // orphan any in-flight preview
	c.state = State{Phase: PhaseIdle}
}

// Close tears the controller down with the view. Pending timers are
// cancelled and late responses are dropped, so nothing acts on a dead view.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTimerLocked()
	c.closed = true
}

func (c *Controller) scheduleResetLocked() {
	c.cancelTimerLocked()
	c.resetTimer = time.AfterFunc(c.resetDelay, func() {
		c.mu.Lock()
		if c.closed || c.state.Phase != PhaseCompleted {
			c.mu.Unlock()
			return
		}
		c.state = State{Phase: PhaseIdle}
		hook := c.onReset
		c.mu.Unlock()
		if hook != nil {
			hook()
		}
	})
}

func (c *Controller) cancelTimerLocked() {
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
}
