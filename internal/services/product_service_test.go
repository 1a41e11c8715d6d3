package services_test

import (
	"context"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}

func validProductInput() services.ProductInput {
	return services.ProductInput{
		Name:        "Laptop",
		Description: "High performance laptop",
		Price:       decimal.RequireFromString("1299.99"),
		Category:    "Electronics",
		Images:      []string{"a.jpg", "b.jpg"},
	}
}

func intPtr(v int) *int { return &v }

func TestProductService_ListProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expected := []models.Product{{ID: "1", Name: "Laptop", IsAvailable: true}}
	mockRepo.On("List", ctx, repositories.ProductFilter{
		Page:          2,
		Limit:         10,
		Category:      "Electronics",
		Search:        "lap",
		AvailableOnly: true,
	}).Return(expected, int64(11), nil).Once()

	page, err := service.ListProducts(ctx, services.ProductQuery{Page: intPtr(2), Limit: intPtr(10), Category: " Electronics ", Search: "lap"})
	require.NoError(t, err)
	assert.Equal(t, expected, page.Items)
	assert.Equal(t, int64(11), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Limit)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListProducts_Defaults(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("List", ctx, repositories.ProductFilter{Page: 1, Limit: 100, AvailableOnly: true}).
		Return([]models.Product{}, int64(0), nil).Once()

	page, err := service.ListProducts(ctx, services.ProductQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Limit)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListProducts_InvalidPaging(t *testing.T) {
	service := services.NewProductService(new(MockProductRepository))

	tests := []struct {
		name   string
		q      services.ProductQuery
		detail string
	}{
		{"negative page", services.ProductQuery{Page: intPtr(-1), Limit: intPtr(10)}, "Page must be at least 1"},
		{"explicit zero page", services.ProductQuery{Page: intPtr(0)}, "Page must be at least 1"},
		{"negative limit", services.ProductQuery{Page: intPtr(1), Limit: intPtr(-5)}, "Limit must be between 1 and 100"},
		{"explicit zero limit", services.ProductQuery{Limit: intPtr(0)}, "Limit must be between 1 and 100"},
		{"limit too large", services.ProductQuery{Page: intPtr(1), Limit: intPtr(101)}, "Limit must be between 1 and 100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ListProducts(context.Background(), tt.q)
			assert.ErrorIs(t, err, services.ErrInvalidInput)
			assert.EqualError(t, err, tt.detail)
		})
	}
}

func TestProductService_GetProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	hidden := &models.Product{ID: "1", Name: "Old", IsAvailable: false}
	mockRepo.On("GetByID", ctx, "1").Return(hidden, nil).Once()
	mockRepo.On("GetByID", ctx, "missing").Return(nil, notFound("missing")).Once()

	product, err := service.GetProduct(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, hidden, product)

	_, err = service.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.EqualError(t, err, "Product not found")
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	in := validProductInput()
	in.Price = decimal.RequireFromString("10.005")
	product, err := service.CreateProduct(ctx, in)
	require.NoError(t, err)
	assert.True(t, product.IsAvailable)
	assert.Equal(t, "10.01", product.Price.StringFixed(2))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, product.ImageURLs())
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Invalid(t *testing.T) {
	service := services.NewProductService(new(MockProductRepository))

	cases := map[string]func(in *services.ProductInput){
		"blank name":     func(in *services.ProductInput) { in.Name = "  " },
		"zero price":     func(in *services.ProductInput) { in.Price = decimal.Zero },
		"negative price": func(in *services.ProductInput) { in.Price = decimal.NewFromInt(-1) },
		"huge price":     func(in *services.ProductInput) { in.Price = decimal.RequireFromString("100000000") },
		"no category":    func(in *services.ProductInput) { in.Category = "" },
		"blank image":    func(in *services.ProductInput) { in.Images = []string{""} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validProductInput()
			mutate(&in)
			_, err := service.CreateProduct(context.Background(), in)
			assert.ErrorIs(t, err, services.ErrInvalidInput)
			assert.ErrorIs(t, err, services.ErrInvalidProduct)
		})
	}
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	existing := &models.Product{ID: "1", Name: "Laptop", Price: decimal.NewFromInt(100), IsAvailable: true}
	mockRepo.On("GetByID", ctx, "1").Return(existing, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == "1" && p.Price.Equal(decimal.NewFromInt(150))
	})).Return(nil).Once()

	in := validProductInput()
	in.Price = decimal.NewFromInt(150)
	in.Images = []string{"c.jpg"}
	product, err := service.UpdateProduct(ctx, "1", in)
	require.NoError(t, err)
	assert.Equal(t, []string{"c.jpg"}, product.ImageURLs())
	assert.True(t, product.IsAvailable)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	mockRepo.On("GetByID", ctx, "missing").Return(nil, notFound("missing")).Once()

	_, err := service.UpdateProduct(ctx, "missing", validProductInput())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("SetAvailability", ctx, "1", false).Return(nil).Once()
	mockRepo.On("GetByID", ctx, "1").Return(&models.Product{ID: "1", IsAvailable: false}, nil).Once()
	mockRepo.On("SetAvailability", ctx, "missing", false).Return(notFound("missing")).Once()

	product, err := service.DeleteProduct(ctx, "1")
	require.NoError(t, err)
	assert.False(t, product.IsAvailable)

	_, err = service.DeleteProduct(ctx, "missing")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}
