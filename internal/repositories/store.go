package repositories

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Store groups the repositories and runs units of work atomically.
// Repositories obtained from the Store passed to fn share fn's transaction.
type Store interface {
	Products() ProductRepository
	Orders() OrderRepository
	Users() UserRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GORMStore is a Store backed by a *gorm.DB.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new GORMStore.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

func (s *GORMStore) Products() ProductRepository { return NewGORMProductRepository(s.db) }
func (s *GORMStore) Orders() OrderRepository     { return NewGORMOrderRepository(s.db) }
func (s *GORMStore) Users() UserRepository       { return NewGORMUserRepository(s.db) }

// Transaction runs fn inside a database transaction. Returning an error from fn rolls it back.
func (s *GORMStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}

// MockStore is an in-memory Store. Transactions are serialized; writes made
// through the repositories are applied immediately, so callers must validate
// before writing to keep a failed unit of work invisible.
type MockStore struct {
	products *MockProductRepository
	orders   *MockOrderRepository
	users    *MockUserRepository
	txMu     sync.Mutex
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	s := &MockStore{
		products: NewMockProductRepository(),
		orders:   NewMockOrderRepository(),
		users:    NewMockUserRepository(),
	}
	s.orders.users = s.users
	s.orders.products = s.products
	return s
}

func (s *MockStore) Products() ProductRepository { return s.products }
func (s *MockStore) Orders() OrderRepository     { return s.orders }
func (s *MockStore) Users() UserRepository       { return s.users }

// Transaction runs fn while holding the store-wide transaction lock.
func (s *MockStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}
