package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pharmakart/cart-service/internal/domain"
	"go.uber.org/zap"
)

// ErrSnapshotNotFound is returned by a SnapshotStore when no snapshot has
// been persisted under the given cart id.
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// SnapshotStore is the persistence port of the cart store. Implementations
// keep a single serialized array of cart lines under one well-known key per
// cart. A snapshot that cannot be parsed is reported as an error; the cart
// store decides what to do with it.
type SnapshotStore interface {
	Load(ctx context.Context, cartID string) ([]domain.CartLine, error)
	Save(ctx context.Context, cartID string, lines []domain.CartLine) error
	Delete(ctx context.Context, cartID string) error
}

func snapshotKey(cartID string) string {
	return "cart:" + cartID
}

// CartStore is the sole owner of one cart's mutable state. Every mutating
// operation synchronously writes the full line collection back through the
// snapshot store (write-through, no batching). The mutex serializes
// mutations; there are no other suspension points inside the store.
type CartStore struct {
	mu        sync.Mutex
	cartID    string
	cart      *domain.Cart
	snapshots SnapshotStore
	logger    *zap.Logger
}

// NewCartStore loads the persisted snapshot for cartID. A malformed or
// unreadable snapshot is discarded and the store starts empty; construction
// never fails on bad persisted data.
func NewCartStore(ctx context.Context, snapshots SnapshotStore, cartID string, logger *zap.Logger) *CartStore {
	lines, err := snapshots.Load(ctx, cartID)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			logger.Warn("discarding unreadable cart snapshot",
				zap.String("cart_id", cartID),
				zap.Error(err))
		}
		lines = nil
	}

	return &CartStore{
		cartID:    cartID,
		cart:      domain.NewCart(lines),
		snapshots: snapshots,
		logger:    logger,
	}
}

// CartID returns the key this store persists under.
func (s *CartStore) CartID() string {
	return s.cartID
}

// AddItem merges quantity units of the product into the cart. An existing
// line keeps its price snapshot; only its quantity and stock hint change.
func (s *CartStore) AddItem(ctx context.Context, product domain.Product, quantity int) error {
	line, err := domain.NewLineFromProduct(product, quantity)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.AddLine(line)
	return s.persist(ctx)
}

// RemoveItem deletes the line for productID; absent lines are a no-op.
func (s *CartStore) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(productID)
	return s.persist(ctx)
}

// SetQuantity overwrites a line's quantity; zero or less removes the line.
func (s *CartStore) SetQuantity(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.SetQuantity(productID, quantity)
	return s.persist(ctx)
}

// Clear empties the cart and deletes its persisted snapshot.
func (s *CartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	if err := s.snapshots.Delete(ctx, s.cartID); err != nil {
		return err
	}
	return nil
}

// Total returns the sum of unit price times quantity over all lines.
func (s *CartStore) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// ItemCount returns the sum of all line quantities.
func (s *CartStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

// Contains reports whether the cart holds a line for productID.
func (s *CartStore) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Contains(productID)
}

// Quantity returns the quantity held for productID, 0 when absent.
func (s *CartStore) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Quantity(productID)
}

// Lines returns a consistent copy of the cart's lines, safe to use while
// other goroutines keep mutating the store.
func (s *CartStore) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// persist writes the full collection through to the snapshot store. Callers
// must hold the mutex.
func (s *CartStore) persist(ctx context.Context) error {
	if err := s.snapshots.Save(ctx, s.cartID, s.cart.Items); err != nil {
		s.logger.Error("failed to persist cart snapshot",
			zap.String("cart_id", s.cartID),
			zap.Error(err))
		return err
	}
	return nil
}

const (
	// StoreIdleTTL is how long an untouched cart store stays resident before
	// the cleanup loop drops it. The persisted snapshot survives eviction;
	// the next access simply reloads it.
	StoreIdleTTL = 30 * time.Minute

	// CleanupInterval is how often the background cleanup runs.
	CleanupInterval = time.Minute
)

type managerEntry struct {
	store      *CartStore
	lastAccess time.Time
}

// Manager hands out one CartStore per cart id, creating stores lazily on
// first use. Cart ids come from the client, so resident stores are evicted
// after an idle TTL to keep the map bounded; cart state itself lives in the
// snapshot store and is reloaded on the next access. Carts are keyed by
// device cart id, not by signed-in identity; concurrent writers to the same
// id are last-write-wins.
type Manager struct {
	mu        sync.Mutex
	stores    map[string]*managerEntry
	snapshots SnapshotStore
	logger    *zap.Logger

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewManager(snapshots SnapshotStore, logger *zap.Logger) *Manager {
	m := &Manager{
		stores:      make(map[string]*managerEntry),
		snapshots:   snapshots,
		logger:      logger,
		stopCleanup: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// Cart returns the store for cartID, loading its snapshot on first access.
func (m *Manager) Cart(ctx context.Context, cartID string) *CartStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.stores[cartID]; ok {
		e.lastAccess = time.Now()
		return e.store
	}
	s := NewCartStore(ctx, m.snapshots, cartID, m.logger)
	m.stores[cartID] = &managerEntry{store: s, lastAccess: time.Now()}
	return s
}

// Close stops the background cleanup and waits for it to finish.
func (m *Manager) Close() error {
	close(m.stopCleanup)
	m.wg.Wait()
	return nil
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle(time.Now())
		case <-m.stopCleanup:
			return
		}
	}
}

// evictIdle drops every store untouched since before now minus the idle TTL.
func (m *Manager) evictIdle(now time.Time) {
	cutoff := now.Add(-StoreIdleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	for cartID, e := range m.stores {
		if e.lastAccess.Before(cutoff) {
			delete(m.stores, cartID)
		}
	}
}
