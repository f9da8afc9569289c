package cart

import (
	"sync"

	"onlineshop/internal/domain"
)

// Item carries the product fields the cart needs when a product is added.
type Item struct {
	ProductID      string
	Name           string
	UnitPriceCents int64
}

// Line is one cart entry: a single product and its quantity.
type Line struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

// Snapshot is an immutable view of the cart. Aggregates are recomputed from
// the line set on every snapshot, so they cannot drift from the lines.
type Snapshot struct {
	Lines           []Line
	TotalQuantity   int
	TotalPriceCents int64
	Visible         bool
	Loading         bool
	Error           string
}

type line struct {
	productID      string
	name           string
	unitPriceCents int64
	quantity       int
}

// Store is the in-memory cart state container. All mutation goes through the
// named methods; consumers only ever see a Snapshot.
type Store struct {
	mu          sync.Mutex
	lines       []line
	visible     bool
	loading     bool
	errMsg      string
	subscribers []func(Snapshot)
}

func NewStore() *Store {
	return &Store{}
}

// Subscribe registers fn to be called with a fresh snapshot after every
// mutation. Callbacks run synchronously on the mutating goroutine.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// AddItem appends a new line with quantity 1, or increments the quantity of
// the existing line for the same product. It never fails.
func (s *Store) AddItem(item Item) Snapshot {
	s.mu.Lock()
	defer s.unlockAndNotify()

	for i := range s.lines {
		if s.lines[i].productID == item.ProductID {
			s.lines[i].quantity++
			return s.snapshotLocked()
		}
	}
	s.lines = append(s.lines, line{
		productID:      item.ProductID,
		name:           item.Name,
		unitPriceCents: item.UnitPriceCents,
		quantity:       1,
	})
	return s.snapshotLocked()
}

// DecreaseItem lowers the quantity of a line by one, removing the line when
// its quantity would reach zero. Unknown product ids are a silent no-op.
func (s *Store) DecreaseItem(productID string) Snapshot {
	s.mu.Lock()
	defer s.unlockAndNotify()

	for i := range s.lines {
		if s.lines[i].productID != productID {
			continue
		}
		if s.lines[i].quantity > 1 {
			s.lines[i].quantity--
		} else {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		}
		break
	}
	return s.snapshotLocked()
}

// RemoveItem drops the whole line for a product regardless of quantity.
func (s *Store) RemoveItem(productID string) Snapshot {
	s.mu.Lock()
	defer s.unlockAndNotify()

	for i := range s.lines {
		if s.lines[i].productID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			break
		}
	}
	return s.snapshotLocked()
}

// Clear empties the cart and resets every flag, including error and loading
// state and the drawer visibility.
func (s *Store) Clear() Snapshot {
	s.mu.Lock()
	defer s.unlockAndNotify()

	s.lines = nil
	s.visible = false
	s.loading = false
	s.errMsg = ""
	return s.snapshotLocked()
}

// ToggleVisibility flips the cart drawer flag. UI state only.
func (s *Store) ToggleVisibility() Snapshot {
	s.mu.Lock()
	defer s.unlockAndNotify()

	s.visible = !s.visible
	return s.snapshotLocked()
}

func (s *Store) SetLoading(v bool) Snapshot {
	s.mu.Lock()
	defer s.unlockAndNotify()

	s.loading = v
	return s.snapshotLocked()
}

func (s *Store) SetError(msg string) Snapshot {
	s.mu.Lock()
	defer s.unlockAndNotify()

	s.errMsg = msg
	s.loading = false
	return s.snapshotLocked()
}

// Snapshot returns the current cart view without mutating anything.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Restore replaces the line set wholesale, used when rehydrating persisted
// state on startup. Lines with non-positive quantity are dropped and
// duplicate product ids are merged, so a damaged persisted file cannot
// violate the one-line-per-product invariant.
func (s *Store) Restore(lines []Line) Snapshot {
	s.mu.Lock()
	defer s.unlockAndNotify()

	s.lines = nil
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		merged := false
		for i := range s.lines {
			if s.lines[i].productID == l.ProductID {
				s.lines[i].quantity += l.Quantity
				merged = true
				break
			}
		}
		if !merged {
			s.lines = append(s.lines, line{
				productID:      l.ProductID,
				name:           l.Name,
				unitPriceCents: l.UnitPriceCents,
				quantity:       l.Quantity,
			})
		}
	}
	return s.snapshotLocked()
}

// OrderItems projects the cart into the only payload shape the backend
// accepts for pricing and placing orders: product id and quantity. Client
// held prices deliberately never leave this process.
func (s *Store) OrderItems() []domain.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.OrderItem, 0, len(s.lines))
	for _, l := range s.lines {
		items = append(items, domain.OrderItem{ProductID: l.productID, Quantity: l.quantity})
	}
	return items
}

// snapshotLocked builds a Snapshot with aggregates derived from the line set.
// Totals are never tracked incrementally.
func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Lines:   make([]Line, 0, len(s.lines)),
		Visible: s.visible,
		Loading: s.loading,
		Error:   s.errMsg,
	}
	for _, l := range s.lines {
		lineTotal := l.unitPriceCents * int64(l.quantity)
		snap.Lines = append(snap.Lines, Line{
			ProductID:      l.productID,
			Name:           l.name,
			UnitPriceCents: l.unitPriceCents,
			Quantity:       l.quantity,
			LineTotalCents: lineTotal,
		})
		snap.TotalQuantity += l.quantity
		snap.TotalPriceCents += lineTotal
	}
	return snap
}

func (s *Store) unlockAndNotify() {
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}
