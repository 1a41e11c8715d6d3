package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *repositories.GORMStore {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repositories.NewGORMStore(db)
}

func newProduct(name, price string, images ...string) *models.Product {
	p := &models.Product{
		Name:        name,
		Description: name,
		Price:       decimal.RequireFromString(price),
		Category:    "Test",
		IsAvailable: true,
	}
	p.SetImageURLs(images)
	return p
}

// storeFactories runs every repository test against both Store implementations.
var storeFactories = map[string]func(t *testing.T) repositories.Store{
	"gorm": func(t *testing.T) repositories.Store { return newSQLiteStore(t) },
	"mock": func(t *testing.T) repositories.Store { return repositories.NewMockStore() },
}

func TestProductRepository_ImagesKeepOrder(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t).Products()

			p := newProduct("Lamp", "25.00", "b.jpg", "a.jpg", "c.jpg")
			require.NoError(t, repo.Create(ctx, p))
			require.NotEmpty(t, p.ID)

			got, err := repo.GetByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{"b.jpg", "a.jpg", "c.jpg"}, got.ImageURLs())
			assert.Equal(t, "25.00", got.Price.StringFixed(2))

			got.SetImageURLs([]string{"a.jpg", "b.jpg"})
			got.Price = decimal.RequireFromString("30.50")
			require.NoError(t, repo.Update(ctx, got))

			got, err = repo.GetByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{"a.jpg", "b.jpg"}, got.ImageURLs())
			assert.Equal(t, "30.50", got.Price.StringFixed(2))
		})
	}
}

func TestProductRepository_NotFound(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t).Products()

			_, err := repo.GetByID(ctx, "missing")
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			ghost := newProduct("Ghost", "1.00")
			ghost.ID = "missing"
			assert.ErrorIs(t, repo.Update(ctx, ghost), repositories.ErrNotFound)
			assert.ErrorIs(t, repo.SetAvailability(ctx, "missing", false), repositories.ErrNotFound)
		})
	}
}

func TestProductRepository_List(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t).Products()

			names := []string{"Red Chair", "Blue Chair", "Table", "Armchair"}
			ids := make(map[string]string)
			for _, n := range names {
				p := newProduct(n, "10.00")
				require.NoError(t, repo.Create(ctx, p))
				ids[n] = p.ID
				time.Sleep(5 * time.Millisecond) // distinct created_at
			}
			require.NoError(t, repo.SetAvailability(ctx, ids["Blue Chair"], false))

			items, total, err := repo.List(ctx, repositories.ProductFilter{Page: 1, Limit: 10, Search: "CHAIR", AvailableOnly: true})
			require.NoError(t, err)
			assert.Equal(t, int64(2), total)
			require.Len(t, items, 2)
			assert.Equal(t, "Armchair", items[0].Name, "newest first")
			assert.Equal(t, "Red Chair", items[1].Name)

			items, total, err = repo.List(ctx, repositories.ProductFilter{Page: 2, Limit: 2})
			require.NoError(t, err)
			assert.Equal(t, int64(4), total)
			require.Len(t, items, 2)
			assert.Equal(t, "Blue Chair", items[0].Name)
			assert.Equal(t, "Red Chair", items[1].Name)

			items, _, err = repo.List(ctx, repositories.ProductFilter{Page: 3, Limit: 2})
			require.NoError(t, err)
			assert.Empty(t, items)

			_, total, err = repo.List(ctx, repositories.ProductFilter{Page: 1, Limit: 10, Category: "Other"})
			require.NoError(t, err)
			assert.Zero(t, total)
		})
	}
}

func createUser(t *testing.T, ctx context.Context, store repositories.Store, id string) *models.User {
	t.Helper()
	user := &models.User{ID: id, Email: id + "@example.com", FirstName: "Test", LastName: "User", Password: "hash"}
	require.NoError(t, store.Users().Create(ctx, user))
	return user
}

func TestProductRepository_SearchIsLiteral(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t).Products()

			for _, n := range []string{"Laptop", "100% Cotton Shirt", `C:\Tools`} {
				require.NoError(t, repo.Create(ctx, newProduct(n, "10.00")))
			}

			tests := []struct {
				search string
				want   []string
			}{
				{"_", nil},
				{"%", []string{"100% Cotton Shirt"}},
				{"l_p", nil},
				{"0%", []string{"100% Cotton Shirt"}},
				{`\`, []string{`C:\Tools`}},
				{"LAP", []string{"Laptop"}},
			}
			for _, tt := range tests {
				items, total, err := repo.List(ctx, repositories.ProductFilter{Page: 1, Limit: 10, Search: tt.search})
				require.NoError(t, err, tt.search)
				var got []string
				for _, p := range items {
					got = append(got, p.Name)
				}
				assert.Equal(t, tt.want, got, tt.search)
				assert.Equal(t, int64(len(tt.want)), total, tt.search)
			}
		})
	}
}

func newOrder(userID string, product *models.Product, qty int) *models.Order {
	item := models.OrderItem{
		ProductID:   product.ID,
		Quantity:    qty,
		Price:       product.Price,
		ProductName: product.Name,
	}
	return &models.Order{
		UserID:      userID,
		Items:       []models.OrderItem{item},
		TotalAmount: item.Subtotal(),
		Status:      models.OrderStatusPending,
		ShippingAddress: models.ShippingAddress{
			Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US",
		},
	}
}

func TestOrderRepository(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			product := newProduct("Widget", "12.50")
			require.NoError(t, store.Products().Create(ctx, product))
			createUser(t, ctx, store, "user-a")
			createUser(t, ctx, store, "user-b")

			first := newOrder("user-a", product, 2)
			require.NoError(t, store.Orders().Create(ctx, first))
			time.Sleep(5 * time.Millisecond)
			second := newOrder("user-a", product, 1)
			require.NoError(t, store.Orders().Create(ctx, second))
			require.NoError(t, store.Orders().Create(ctx, newOrder("user-b", product, 1)))

			got, err := store.Orders().GetByID(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "25.00", got.TotalAmount.StringFixed(2))
			assert.Equal(t, "Springfield", got.ShippingAddress.City)
			require.Len(t, got.Items, 1)
			assert.Equal(t, first.ID, got.Items[0].OrderID)
			assert.Equal(t, "Widget", got.Items[0].ProductName)

			orders, err := store.Orders().ListByUser(ctx, "user-a")
			require.NoError(t, err)
			require.Len(t, orders, 2)
			assert.Equal(t, second.ID, orders[0].ID, "newest first")
			assert.Equal(t, first.ID, orders[1].ID)

			require.NoError(t, store.Orders().UpdateStatus(ctx, first.ID, models.OrderStatusShipped))
			got, err = store.Orders().GetByID(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusShipped, got.Status)

			_, err = store.Orders().GetByID(ctx, "missing")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			assert.ErrorIs(t, store.Orders().UpdateStatus(ctx, "missing", models.OrderStatusShipped), repositories.ErrNotFound)
		})
	}
}

func TestOrderRepository_RejectsMissingReferences(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			product := newProduct("Widget", "12.50")
			require.NoError(t, store.Products().Create(ctx, product))

			err := store.Orders().Create(ctx, newOrder("ghost", product, 1))
			assert.ErrorIs(t, err, repositories.ErrForeignKey)

			createUser(t, ctx, store, "user-a")
			ghostProduct := newProduct("Ghost", "1.00")
			ghostProduct.ID = "missing"
			err = store.Orders().Create(ctx, newOrder("user-a", ghostProduct, 1))
			assert.ErrorIs(t, err, repositories.ErrForeignKey)

			orders, err := store.Orders().ListByUser(ctx, "user-a")
			require.NoError(t, err)
			assert.Empty(t, orders)
			orders, err = store.Orders().ListByUser(ctx, "ghost")
			require.NoError(t, err)
			assert.Empty(t, orders)
		})
	}
}

func TestUserRepository(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t).Users()

			user := &models.User{Email: "alice@example.com", FirstName: "Alice", LastName: "Smith", Password: "hash"}
			require.NoError(t, repo.Create(ctx, user))
			require.NotEmpty(t, user.ID)

			dup := &models.User{Email: "alice@example.com", FirstName: "A", LastName: "S", Password: "hash"}
			assert.ErrorIs(t, repo.Create(ctx, dup), repositories.ErrDuplicate)

			got, err := repo.GetByEmail(ctx, "alice@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
			assert.False(t, got.IsAdmin)

			require.NoError(t, repo.UpdateAdminStatus(ctx, user.ID, true))
			got, err = repo.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.True(t, got.IsAdmin)

			_, err = repo.GetByEmail(ctx, "nobody@example.com")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			assert.ErrorIs(t, repo.UpdateAdminStatus(ctx, "missing", true), repositories.ErrNotFound)
		})
	}
}

func TestGORMStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	product := newProduct("Widget", "5.00")
	require.NoError(t, store.Products().Create(ctx, product))
	createUser(t, ctx, store, "user-a")

	err := store.Transaction(ctx, func(tx repositories.Store) error {
		if err := tx.Orders().Create(ctx, newOrder("user-a", product, 1)); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	assert.EqualError(t, err, "abort")

	orders, err := store.Orders().ListByUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Empty(t, orders)
}
