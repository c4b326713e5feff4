package service

import (
	"errors"
	"testing"
	"time"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/auth"
	"decantifume-api/internal/client"
	"decantifume-api/internal/config"
	"decantifume-api/internal/dto"
	"decantifume-api/internal/model"
	"decantifume-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	users     repository.UserRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
	webhooks  repository.WebhookEventRepository
	wishlists repository.WishlistRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := client.NewDBClient(&config.Database{
		Driver: "sqlite",
		URL:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, client.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &fixture{
		db:        db,
		users:     repository.NewUserRepository(db),
		products:  repository.NewProductRepository(db),
		orders:    repository.NewOrderRepository(db),
		webhooks:  repository.NewWebhookEventRepository(db),
		wishlists: repository.NewWishlistRepository(db),
	}
}

func (f *fixture) createUser(t *testing.T, email string, role model.Role) *model.User {
	t.Helper()

	hash, err := auth.HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{Name: "Test User", Email: email, Password: hash, Role: role}
	require.NoError(t, f.users.Create(t.Context(), user))
	return user
}

// createProduct stores a product with a single 10ml decant priced at 25.
func (f *fixture) createProduct(t *testing.T, name string, stock int) *model.Product {
	t.Helper()

	product := &model.Product{
		Name:          name,
		Brand:         "Maison Test",
		Description:   "A long enough description",
		Category:      model.CategoryWoody,
		FragranceType: model.EauDeParfum,
		Gender:        model.GenderUnisex,
		Longevity:     7,
		Sillage:       6,
		Projection:    5,
		Images:        []string{"https://res.cloudinary.com/demo/image/upload/v1/decantifume/products/" + name + ".jpg"},
		DecantSizes: []model.DecantSize{
			{Size: model.Size10ml, Price: decimal.NewFromInt(25), Stock: stock},
		},
	}
	require.NoError(t, f.products.Create(t.Context(), product))
	return product
}

func testTokenIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer(&config.Auth{
		AccessSecret:     "access-secret",
		AccessExpiresIn:  time.Hour,
		RefreshSecret:    "refresh-secret",
		RefreshExpiresIn: time.Hour,
	})
}

func orderLine(p *model.Product, qty int) dto.OrderItemInput {
	price := decimal.NewFromInt(25)
	return dto.OrderItemInput{
		Product:      p.ID,
		ProductName:  p.Name,
		ProductImage: p.Images[0],
		DecantSize:   model.Size10ml,
		Price:        price,
		Quantity:     qty,
		TotalPrice:   price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func orderRequest(lines ...dto.OrderItemInput) *dto.CreateOrderRequest {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.TotalPrice)
	}
	shipping := decimal.NewFromInt(5)

	return &dto.CreateOrderRequest{
		Items: lines,
		ShippingAddress: dto.ShippingAddressInput{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "+15550100",
			Street:    "1 Main St",
			City:      "London",
			ZipCode:   "N1",
			Country:   "UK",
		},
		Subtotal:      subtotal,
		ShippingCost:  shipping,
		Tax:           decimal.Zero,
		Discount:      decimal.Zero,
		TotalAmount:   subtotal.Add(shipping),
		PaymentMethod: model.PaymentMethodStripe,
	}
}

func assertAppError(t *testing.T, err error, status int, message string) {
	t.Helper()

	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.StatusCode)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}
