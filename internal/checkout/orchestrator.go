// Package checkout implements the order-submission workflow as an explicit
// state machine over the cart and session stores and the remote order
// ledger.
package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront-engine/internal/domain"
)

// State is the orchestrator's position in the checkout flow.
type State string

const (
	StateIdle              State = "idle"
	StateValidating        State = "validating"
	StateResolvingIdentity State = "resolving_identity"
	StateSubmitting        State = "submitting"
	StateSucceeded         State = "succeeded"
	StateFailed            State = "failed"
)

// ErrSubmissionInFlight rejects a checkout trigger while a submission is
// already in progress. Triggers are rejected, never queued.
var ErrSubmissionInFlight = errors.New("checkout: submission already in flight")

type cartStore interface {
	Items() []domain.CartItem
	Summary() domain.CartSummary
	Clear()
}

type sessionStore interface {
	IsAuthenticated() bool
	CurrentUser() *domain.UserIdentity
	RecoverInconsistentState(ctx context.Context) (*domain.UserIdentity, error)
}

type orderClient interface {
	Create(ctx context.Context, draft domain.Order, requestID string) (*domain.Order, error)
}

// Orchestrator owns no persistent state: it reads the two stores and keeps
// only the transient UI-facing status. Each submission attempt carries a
// fresh id; a response arriving after the attempt was superseded (Reset,
// retry) is discarded instead of applied.
type Orchestrator struct {
	mu      sync.Mutex
	state   State
	lastErr error
	attempt string

	cart    cartStore
	session sessionStore
	orders  orderClient
	logger  *log.Logger
	now     func() time.Time

	// successWindow > 0 times the Succeeded state back to Idle after the
	// UI display window. Purely cosmetic; correctness never depends on it.
	successWindow time.Duration
}

func New(cart cartStore, session sessionStore, orders orderClient, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Orchestrator{
		state:   StateIdle,
		cart:    cart,
		session: session,
		orders:  orders,
		logger:  logger,
		now:     time.Now,
	}
}

// WithSuccessWindow enables the timed Succeeded→Idle transition.
func (o *Orchestrator) WithSuccessWindow(d time.Duration) *Orchestrator {
	o.successWindow = d
	return o
}

// Status returns the current state and, when Failed, the classified error.
func (o *Orchestrator) Status() (State, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state, o.lastErr
}

// Reset moves the orchestrator back to Idle, e.g. on navigation away from
// checkout. The cart is untouched and an in-flight submission is not
// cancelled; its late response will be discarded because the attempt id no
// longer matches.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateIdle
	o.lastErr = nil
	o.attempt = ""
}

// Checkout runs one attempt through the state machine. The cart is cleared
// only on a confirmed successful order; every failure path preserves it.
func (o *Orchestrator) Checkout(ctx context.Context) (*domain.Order, error) {
	draft, attempt, err := o.begin(ctx)
	if err != nil {
		return nil, err
	}

	created, err := o.orders.Create(ctx, draft, attempt)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateSubmitting || o.attempt != attempt {
		// Superseded while in flight; report the outcome to the direct
		// caller but apply no transition and no cart side effect.
		o.logger.Printf("checkout: discarding late response for attempt %s", attempt)
		return created, err
	}
	if err != nil {
		o.logger.Printf("checkout: submission failed: %v", err)
		return nil, o.failLocked(err)
	}

	o.cart.Clear()
	o.state = StateSucceeded
	o.lastErr = nil
	o.logger.Printf("checkout: order %d confirmed for customer %d", created.ID, created.CustomerID)
	o.scheduleIdleLocked(attempt)
	return created, nil
}

// begin runs the Validating and Resolving-Identity phases and, when the
// guards pass, transitions into Submitting with a fresh attempt id.
func (o *Orchestrator) begin(ctx context.Context) (domain.Order, string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateSubmitting {
		return domain.Order{}, "", ErrSubmissionInFlight
	}

	o.state = StateValidating
	items := o.cart.Items()
	if len(items) == 0 {
		return domain.Order{}, "", o.failLocked(domain.E(domain.KindEmptyCart, "cart has no items"))
	}
	if !o.session.IsAuthenticated() {
		return domain.Order{}, "", o.failLocked(domain.E(domain.KindNotAuthenticated, "login required"))
	}

	user := o.session.CurrentUser()
	if user == nil {
		// One recovery attempt, never a loop: an unresolved outcome here
		// is terminal for this checkout and means re-authentication.
		o.state = StateResolvingIdentity
		recovered, err := o.session.RecoverInconsistentState(ctx)
		if err != nil {
			return domain.Order{}, "", o.failLocked(domain.Wrap(domain.KindIdentityUnresolved, "re-authentication required", err))
		}
		user = recovered
	}
	if user == nil || !user.Resolved() {
		return domain.Order{}, "", o.failLocked(domain.E(domain.KindIdentityUnresolved, "re-authentication required"))
	}

	summary := o.cart.Summary()
	draft := domain.NewOrderDraft(user.ID, summary.Total, items, o.now())
	attempt := uuid.NewString()
	o.attempt = attempt
	o.state = StateSubmitting
	return draft, attempt, nil
}

// failLocked records the classified failure and returns it. Failed is
// re-enterable: the next Checkout call starts a fresh attempt.
func (o *Orchestrator) failLocked(err error) error {
	o.state = StateFailed
	o.lastErr = err
	o.attempt = ""
	return err
}

func (o *Orchestrator) scheduleIdleLocked(attempt string) {
	if o.successWindow <= 0 {
		return
	}
	time.AfterFunc(o.successWindow, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.state == StateSucceeded && o.attempt == attempt {
			o.state = StateIdle
			o.attempt = ""
		}
	})
}
