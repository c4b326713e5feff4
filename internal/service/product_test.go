package service

import (
	"errors"
	"net/http"
	"testing"

	"decantifume-api/internal/dto"
	"decantifume-api/internal/mocks"
	"decantifume-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createProductRequest(name string) *dto.CreateProductRequest {
	return &dto.CreateProductRequest{
		Name:          name,
		Brand:         "Creed",
		Description:   "Smoky pineapple and birch",
		Category:      model.CategoryNicheFragrance,
		FragranceType: model.EauDeParfum,
		Gender:        model.GenderUnisex,
		FragranceNotes: dto.FragranceNotesInput{
			Top:    []string{"pineapple"},
			Middle: []string{"birch"},
			Base:   []string{"musk"},
		},
		Longevity:  8,
		Sillage:    7,
		Projection: 7,
		Images:     []string{"https://res.cloudinary.com/demo/image/upload/v1/decantifume/products/aventus.jpg"},
		DecantSizes: []dto.DecantSizeInput{
			{Size: model.Size5ml, Price: decimal.NewFromInt(15), Stock: 4},
			{Size: model.Size10ml, Price: decimal.NewFromInt(25), Stock: 0},
		},
	}
}

func TestProductService_Create(t *testing.T) {
	f := newFixture(t)
	svc := NewProductService(f.products, &mocks.MockImageStore{})
	ctx := t.Context()

	product, err := svc.Create(ctx, createProductRequest("Aventus"), "admin-1")
	require.NoError(t, err)

	assert.Equal(t, "creed-aventus", product.Slug)
	assert.Equal(t, 4, product.TotalStock)
	assert.Equal(t, model.ProductStatusActive, product.Status)
	assert.Equal(t, product.Images[0], product.Thumbnail)

	stored, err := svc.Get(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, stored.DecantSizes, 2)
	assert.True(t, stored.FindSize(model.Size5ml).IsAvailable)
	assert.False(t, stored.FindSize(model.Size10ml).IsAvailable)

	_, err = svc.Create(ctx, createProductRequest("Aventus"), "admin-1")
	assertAppError(t, err, http.StatusConflict, "Product with this name and brand already exists")
}

func TestProductService_UpdateStock(t *testing.T) {
	f := newFixture(t)
	svc := NewProductService(f.products, &mocks.MockImageStore{})
	ctx := t.Context()

	product, err := svc.Create(ctx, createProductRequest("Viking"), "admin-1")
	require.NoError(t, err)

	updated, err := svc.UpdateStock(ctx, product.ID, &dto.UpdateStockRequest{
		SizeUpdates: []dto.StockUpdate{
			{Size: model.Size5ml, NewStock: 0},
			{Size: model.Size10ml, NewStock: 9},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.TotalStock)

	stored, err := svc.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, stored.TotalStock)
	assert.False(t, stored.FindSize(model.Size5ml).IsAvailable)
	assert.Equal(t, 9, stored.FindSize(model.Size10ml).Stock)
}

func TestProductService_GetErrors(t *testing.T) {
	f := newFixture(t)
	svc := NewProductService(f.products, &mocks.MockImageStore{})

	_, err := svc.Get(t.Context(), "not-a-uuid")
	assert.Error(t, err)

	_, err = svc.Get(t.Context(), "8a0f7a5e-3a58-4c61-9a2b-7d3f0f1f2a11")
	assertAppError(t, err, http.StatusNotFound, "Product not found")
}

func TestProductService_Delete(t *testing.T) {
	f := newFixture(t)
	images := &mocks.MockImageStore{}
	svc := NewProductService(f.products, images)
	ctx := t.Context()

	product, err := svc.Create(ctx, createProductRequest("Silver Mountain"), "admin-1")
	require.NoError(t, err)

	// image cleanup failures do not fail the delete
	images.On("Delete", mock.Anything, product.Images[0]).Return(errors.New("cloudinary down")).Once()

	require.NoError(t, svc.Delete(ctx, product.ID))
	images.AssertExpectations(t)

	_, err = svc.Get(ctx, product.ID)
	assertAppError(t, err, http.StatusNotFound, "Product not found")

	err = svc.Delete(ctx, product.ID)
	assertAppError(t, err, http.StatusNotFound, "Product not found")
}

func TestProductService_ListDefaultsToActive(t *testing.T) {
	f := newFixture(t)
	svc := NewProductService(f.products, &mocks.MockImageStore{})
	ctx := t.Context()

	active, err := svc.Create(ctx, createProductRequest("Green Irish Tweed"), "admin-1")
	require.NoError(t, err)

	hidden, err := svc.Create(ctx, createProductRequest("Original Vetiver"), "admin-1")
	require.NoError(t, err)
	inactive := model.ProductStatusInactive
	_, err = svc.Update(ctx, hidden.ID, &dto.UpdateProductRequest{Status: &inactive}, "admin-1")
	require.NoError(t, err)

	page, err := svc.List(ctx, &dto.ProductQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, active.ID, page.Items[0].ID)
	assert.Equal(t, int64(1), page.Pagination.Total)
}
