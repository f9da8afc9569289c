package checkout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"onlineshop/internal/cart"
	"onlineshop/internal/domain"
)

type stubOrderAPI struct {
	previewFn    func(items []domain.OrderItem) (*domain.OrderPreview, error)
	createFn     func(items []domain.OrderItem) (*domain.Order, string, error)
	previewCalls int32
	createCalls  int32
	lastCreated  []domain.OrderItem
}

func (s *stubOrderAPI) PreviewOrder(_ context.Context, items []domain.OrderItem) (*domain.OrderPreview, error) {
	atomic.AddInt32(&s.previewCalls, 1)
	if s.previewFn != nil {
		return s.previewFn(items)
	}
	return &domain.OrderPreview{}, nil
}

func (s *stubOrderAPI) CreateOrder(_ context.Context, items []domain.OrderItem) (*domain.Order, string, error) {
	atomic.AddInt32(&s.createCalls, 1)
	s.lastCreated = items
	if s.createFn != nil {
		return s.createFn(items)
	}
	return &domain.Order{ID: "o1"}, "Order placed", nil
}

type stubGate struct {
	authed bool
}

func (s *stubGate) Authenticated() bool { return s.authed }

func cartWith(items ...cart.Item) *cart.Store {
	store := cart.NewStore()
	for _, item := range items {
		store.AddItem(item)
	}
	return store
}

func TestRefreshPreviewEmptyCartStaysIdle(t *testing.T) {
	api := &stubOrderAPI{}
	c := New(api, &stubGate{}, cart.NewStore())

	if err := c.RefreshPreview(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.State(); got.Phase != PhaseIdle || got.Preview != nil {
		t.Fatalf("unexpected state: %+v", got)
	}
	if api.previewCalls != 0 {
		t.Fatal("no preview request may be issued for an empty cart")
	}
}

func TestRefreshPreviewStoresServerPreview(t *testing.T) {
	preview := &domain.OrderPreview{
		Items:             []domain.PreviewItem{{ProductID: "p1", ProductName: "Espresso Beans", Quantity: 2, PerItemPriceCents: 500, SubTotalCents: 1000}},
		TotalPriceCents:   1000,
		ShippingCostCents: 250,
	}
	api := &stubOrderAPI{previewFn: func(items []domain.OrderItem) (*domain.OrderPreview, error) {
		if len(items) != 1 || items[0].ProductID != "p1" || items[0].Quantity != 2 {
			t.Errorf("unexpected preview payload: %+v", items)
		}
		return preview, nil
	}}
	store := cartWith(cart.Item{ProductID: "p1", UnitPriceCents: 500}, cart.Item{ProductID: "p1", UnitPriceCents: 500})
	c := New(api, &stubGate{}, store)

	if err := c.RefreshPreview(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := c.State()
	if got.Phase != PhasePreviewReady {
		t.Fatalf("expected PreviewReady, got %s", got.Phase)
	}
	if got.Preview != preview {
		t.Fatalf("preview not stored verbatim: %+v", got.Preview)
	}
}

func TestRefreshPreviewFailureEntersErrored(t *testing.T) {
	api := &stubOrderAPI{previewFn: func([]domain.OrderItem) (*domain.OrderPreview, error) {
		return nil, errors.New("service unavailable")
	}}
	c := New(api, &stubGate{}, cartWith(cart.Item{ProductID: "p1", UnitPriceCents: 500}))

	if err := c.RefreshPreview(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	got := c.State()
	if got.Phase != PhaseErrored || got.Error != "service unavailable" {
		t.Fatalf("unexpected state: %+v", got)
	}
	if got.Preview != nil {
		t.Fatal("no preview may survive a failed fetch")
	}

	// No automatic retry: a second explicit refresh re-enters the workflow.
	api.previewFn = nil
	if err := c.RefreshPreview(context.Background()); err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if got := c.State(); got.Phase != PhasePreviewReady {
		t.Fatalf("expected PreviewReady after retry, got %s", got.Phase)
	}
}

func TestStalePreviewResponseDiscarded(t *testing.T) {
	fresh := &domain.OrderPreview{TotalPriceCents: 1000}
	stale := &domain.OrderPreview{TotalPriceCents: 9999}
	release := make(chan struct{})
	var calls int32
	api := &stubOrderAPI{previewFn: func([]domain.OrderItem) (*domain.OrderPreview, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-release
			return stale, nil
		}
		return fresh, nil
	}}
	c := New(api, &stubGate{}, cartWith(cart.Item{ProductID: "p1", UnitPriceCents: 500}))

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_ = c.RefreshPreview(context.Background())
	}()
	for atomic.LoadInt32(&calls) == 0 {
		time.Sleep(time.Millisecond)
	}

	if err := c.RefreshPreview(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)
	<-firstDone

	got := c.State()
	if got.Phase != PhasePreviewReady || got.Preview != fresh {
		t.Fatalf("stale response overwrote the fresh preview: %+v", got)
	}
}

func TestConfirmBlockedWithoutSession(t *testing.T) {
	api := &stubOrderAPI{}
	c := New(api, &stubGate{authed: false}, cartWith(cart.Item{ProductID: "p1", UnitPriceCents: 500}))
	if err := c.RefreshPreview(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := c.Confirm(context.Background())
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	got := c.State()
	if got.Phase != PhasePreviewReady {
		t.Fatalf("phase must stay PreviewReady, got %s", got.Phase)
	}
	if !got.AuthRequired {
		t.Fatal("auth-required notice not raised")
	}
	if api.createCalls != 0 {
		t.Fatal("no order request may be issued without a session")
	}

	// Dismissing the notice leaves the preview intact.
	c.Cancel()
	got = c.State()
	if got.Phase != PhasePreviewReady || got.AuthRequired {
		t.Fatalf("unexpected state after cancel: %+v", got)
	}
}

func TestConfirmSuccessClearsCartAndResets(t *testing.T) {
	store := cartWith(cart.Item{ProductID: "p1", UnitPriceCents: 500}, cart.Item{ProductID: "p1", UnitPriceCents: 500})
	api := &stubOrderAPI{createFn: func(items []domain.OrderItem) (*domain.Order, string, error) {
		return &domain.Order{ID: "o1", TotalPriceCents: 1000, Status: domain.OrderStatusPlaced}, "Order placed successfully", nil
	}}
	resetFired := make(chan struct{})
	c := New(api, &stubGate{authed: true}, store,
		WithResetDelay(20*time.Millisecond),
		WithResetHook(func() { close(resetFired) }))

	if err := c.RefreshPreview(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Confirm(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := c.State()
	if got.Phase != PhaseCompleted {
		t.Fatalf("expected Completed, got %s", got.Phase)
	}
	if got.SuccessMessage != "Order placed successfully" {
		t.Fatalf("unexpected success message %q", got.SuccessMessage)
	}
	if snap := store.Snapshot(); len(snap.Lines) != 0 || snap.TotalQuantity != 0 {
		t.Fatalf("cart not cleared: %+v", snap)
	}
	if api.lastCreated[0].ProductID != "p1" || api.lastCreated[0].Quantity != 2 {
		t.Fatalf("unexpected order payload: %+v", api.lastCreated)
	}

	select {
	case <-resetFired:
	case <-time.After(time.Second):
		t.Fatal("post-success reset never fired")
	}
	if got := c.State(); got.Phase != PhaseIdle {
		t.Fatalf("expected Idle after reset delay, got %s", got.Phase)
	}
}

func TestConfirmFailureKeepsCart(t *testing.T) {
	store := cartWith(cart.Item{ProductID: "p1", UnitPriceCents: 500})
	api := &stubOrderAPI{createFn: func([]domain.OrderItem) (*domain.Order, string, error) {
		return nil, "", errors.New("Place order failed")
	}}
	c := New(api, &stubGate{authed: true}, store)

	if err := c.RefreshPreview(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Confirm(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	got := c.State()
	if got.Phase != PhaseErrored || got.Error != "Place order failed" {
		t.Fatalf("unexpected state: %+v", got)
	}
	if snap := store.Snapshot(); len(snap.Lines) != 1 {
		t.Fatal("cart must survive a failed submission")
	}
}

func TestConfirmOutsidePreviewReady(t *testing.T) {
	c := New(&stubOrderAPI{}, &stubGate{authed: true}, cart.NewStore())
	if err := c.Confirm(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestCloseCancelsPendingReset(t *testing.T) {
	store := cartWith(cart.Item{ProductID: "p1", UnitPriceCents: 500})
	hookFired := int32(0)
	c := New(&stubOrderAPI{}, &stubGate{authed: true}, store,
		WithResetDelay(20*time.Millisecond),
		WithResetHook(func() { atomic.AddInt32(&hookFired, 1) }))

	if err := c.RefreshPreview(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Confirm(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Close()

	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&hookFired) != 0 {
		t.Fatal("reset hook fired after teardown")
	}
}

func TestResetCancelsTimerAndOrphansInflightPreview(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	api := &stubOrderAPI{previewFn: func([]domain.OrderItem) (*domain.OrderPreview, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &domain.OrderPreview{TotalPriceCents: 500}, nil
	}}
	c := New(api, &stubGate{}, cartWith(cart.Item{ProductID: "p1", UnitPriceCents: 500}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.RefreshPreview(context.Background())
	}()
	for atomic.LoadInt32(&calls) == 0 {
		time.Sleep(time.Millisecond)
	}

	c.Reset()
	close(release)
	<-done

	if got := c.State(); got.Phase != PhaseIdle || got.Preview != nil {
		t.Fatalf("orphaned preview leaked into state: %+v", got)
	}
}
