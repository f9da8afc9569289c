package devserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"onlineshop/internal/backend"
	"onlineshop/internal/cart"
	"onlineshop/internal/checkout"
	"onlineshop/internal/domain"
	"onlineshop/internal/session"
)

// TestStorefrontCheckoutFlow drives the real client stack against an
// in-memory server: browse, fill the cart, preview, hit the auth wall,
// register, confirm, and watch the workflow reset.
func TestStorefrontCheckoutFlow(t *testing.T) {
	deps := testDeps()
	seedProduct(t, deps, "espresso", 500)
	seedProduct(t, deps, "filter", 350)

	srv := httptest.NewServer(testRouter(deps))
	defer srv.Close()

	logger := log.New(io.Discard, "", 0)
	gate := session.NewGate(nil, logger)
	api := backend.New(srv.URL, backend.WithLogger(logger), backend.WithTokenSource(gate))
	gate.Bind(api)

	store := cart.NewStore()
	resetFired := make(chan struct{}, 1)
	ctrl := checkout.New(api, gate, store,
		checkout.WithResetDelay(20*time.Millisecond),
		checkout.WithResetHook(func() { resetFired <- struct{}{} }),
	)
	defer ctrl.Close()

	ctx := context.Background()

	page, err := api.Products(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(page.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(page.Products))
	}
	for _, p := range page.Products {
		store.AddItem(cart.Item{ProductID: p.ID, Name: p.Name, UnitPriceCents: p.PriceCents})
	}
	store.AddItem(cart.Item{ProductID: "espresso", Name: "Espresso", UnitPriceCents: 500})

	if err := ctrl.RefreshPreview(ctx); err != nil {
		t.Fatalf("preview: %v", err)
	}
	state := ctrl.State()
	if state.Phase != checkout.PhasePreviewReady {
		t.Fatalf("expected PreviewReady, got %s", state.Phase)
	}
	if state.Preview.TotalPriceCents != 2*500+350 {
		t.Fatalf("unexpected preview total: %d", state.Preview.TotalPriceCents)
	}

	// Anonymous confirm must not reach the server.
	if err := ctrl.Confirm(ctx); !errors.Is(err, checkout.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if ctrl.State().Phase != checkout.PhasePreviewReady {
		t.Fatalf("auth wall must keep the preview, got %s", ctrl.State().Phase)
	}

	identity, err := gate.Register(ctx, "jane", "jane@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if identity.Role != domain.RoleUser {
		t.Fatalf("expected role USER, got %q", identity.Role)
	}

	if err := ctrl.Confirm(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	state = ctrl.State()
	if state.Phase != checkout.PhaseCompleted {
		t.Fatalf("expected Completed, got %s", state.Phase)
	}
	if state.Order == nil || state.Order.Status != domain.OrderStatusPlaced {
		t.Fatalf("unexpected order: %+v", state.Order)
	}
	if len(store.Snapshot().Lines) != 0 {
		t.Fatal("cart should be cleared after a placed order")
	}

	orders, err := api.Orders(ctx)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != state.Order.ID {
		t.Fatalf("unexpected order list: %+v", orders)
	}

	select {
	case <-resetFired:
	case <-time.After(time.Second):
		t.Fatal("workflow never reset after completion")
	}
	if ctrl.State().Phase != checkout.PhaseIdle {
		t.Fatalf("expected Idle after reset, got %s", ctrl.State().Phase)
	}
}
