// Package cart implements the persisted, observable cart store. Every
// mutation rewrites the snapshot in the persistent store and then publishes
// the new item list plus a freshly derived summary to subscribers, so an
// observer never sees a state that was not also durably persisted.
package cart

import (
	"encoding/json"
	"io"
	"log"
	"sync"

	"storefront-engine/internal/domain"
	"storefront-engine/internal/storage"
)

// Subscriber receives the item list and derived summary after each change.
// Subscribers run synchronously on the mutating goroutine and must not call
// back into the store.
type Subscriber func(items []domain.CartItem, summary domain.CartSummary)

// Store owns the cart lines and the volatile promo discount. The discount
// is not a function of the items, so any item mutation resets it; promo
// codes are re-applied explicitly by the caller if still wanted.
type Store struct {
	mu       sync.Mutex
	kv       storage.KV
	logger   *log.Logger
	items    []domain.CartItem
	discount float64
	promo    string
	promos   []Promo
	subs     map[int]Subscriber
	nextSub  int
}

// NewStore restores the persisted snapshot, if any. A corrupt snapshot is
// discarded and the cart starts empty; construction never fails on bad
// persisted state.
func NewStore(kv storage.KV, logger *log.Logger, promos []Promo) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if promos == nil {
		promos = DefaultPromos()
	}
	s := &Store{kv: kv, logger: logger, promos: promos, subs: map[int]Subscriber{}}
	s.restore()
	return s
}

func (s *Store) restore() {
	raw, ok := s.kv.Get(storage.KeyCart)
	if !ok {
		return
	}
	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Printf("cart: discarding corrupt snapshot: %v", err)
		return
	}
	s.items = normalize(items)
}

// normalize re-establishes the store invariants on restored data: positive
// quantities and at most one line per identity.
func normalize(items []domain.CartItem) []domain.CartItem {
	var out []domain.CartItem
	index := map[domain.Identity]int{}
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		if at, ok := index[it.Identity()]; ok {
			out[at].Quantity += it.Quantity
			continue
		}
		index[it.Identity()] = len(out)
		out = append(out, it)
	}
	return out
}

// Items returns a copy of the current cart lines.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartItem(nil), s.items...)
}

// Summary derives the pricing summary from the current items. It is always
// computed fresh; only the promo discount carries state.
func (s *Store) Summary() domain.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Summarize(s.items, s.discount)
}

// Add merges quantity into an existing identity or inserts a new line.
// A non-positive quantity is a no-op.
func (s *Store) Add(p domain.Product, quantity int, variant domain.Variant) {
	if quantity < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := domain.Identity{ProductID: p.ID, Color: variant.Color, Size: variant.Size}
	for i := range s.items {
		if s.items[i].Identity() == id {
			s.items[i].Quantity += quantity
			s.commitLocked()
			return
		}
	}
	s.items = append(s.items, domain.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  quantity,
		Variant:   variant,
	})
	s.commitLocked()
}

// Remove deletes the matching identity. Removing an absent identity is a
// no-op.
func (s *Store) Remove(productID int, variant domain.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(domain.Identity{ProductID: productID, Color: variant.Color, Size: variant.Size})
}

func (s *Store) removeLocked(id domain.Identity) {
	kept := s.items[:0]
	removed := false
	for _, it := range s.items {
		if it.Identity() == id {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	s.items = kept
	if removed {
		s.commitLocked()
	}
}

// SetQuantity sets the line's quantity; a quantity of zero or below removes
// the line.
func (s *Store) SetQuantity(productID, quantity int, variant domain.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := domain.Identity{ProductID: productID, Color: variant.Color, Size: variant.Size}
	if quantity <= 0 {
		s.removeLocked(id)
		return
	}
	for i := range s.items {
		if s.items[i].Identity() == id {
			s.items[i].Quantity = quantity
			s.commitLocked()
			return
		}
	}
}

// Increment raises the line's quantity by one. Absent lines are untouched.
func (s *Store) Increment(productID int, variant domain.Variant) {
	s.adjust(productID, variant, +1)
}

// Decrement lowers the line's quantity by one, removing the line when it
// would drop below one.
func (s *Store) Decrement(productID int, variant domain.Variant) {
	s.adjust(productID, variant, -1)
}

func (s *Store) adjust(productID int, variant domain.Variant, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := domain.Identity{ProductID: productID, Color: variant.Color, Size: variant.Size}
	for i := range s.items {
		if s.items[i].Identity() == id {
			next := s.items[i].Quantity + delta
			if next < 1 {
				s.removeLocked(id)
				return
			}
			s.items[i].Quantity = next
			s.commitLocked()
			return
		}
	}
}

// Clear empties the cart. Called by the checkout orchestrator only after a
// confirmed successful order.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 && s.discount == 0 {
		return
	}
	s.items = nil
	s.commitLocked()
}

// Contains reports whether any line references the product, regardless of
// variant.
func (s *Store) Contains(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// ItemCount sums the quantities of every line referencing the product.
func (s *Store) ItemCount(productID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, it := range s.items {
		if it.ProductID == productID {
			total += it.Quantity
		}
	}
	return total
}

// Subscribe registers a subscriber and returns its handle.
func (s *Store) Subscribe(fn Subscriber) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	s.subs[s.nextSub] = fn
	return s.nextSub
}

// Unsubscribe drops the subscriber; unknown handles are ignored.
func (s *Store) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// commitLocked persists the item list, drops any applied discount (the
// items changed underneath it), and publishes. Persist happens before
// publish; a storage failure is logged and the in-memory state stands.
func (s *Store) commitLocked() {
	s.discount = 0
	s.promo = ""
	s.persistLocked()
	s.publishLocked()
}

func (s *Store) persistLocked() {
	raw, err := json.Marshal(s.items)
	if err != nil {
		s.logger.Printf("cart: encode snapshot: %v", err)
		return
	}
	if err := s.kv.Set(storage.KeyCart, string(raw)); err != nil {
		s.logger.Printf("cart: persist snapshot: %v", err)
	}
}

func (s *Store) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	items := append([]domain.CartItem(nil), s.items...)
	summary := domain.Summarize(s.items, s.discount)
	for _, fn := range s.subs {
		fn(items, summary)
	}
}
