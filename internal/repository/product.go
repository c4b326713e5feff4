package repository

import (
	"context"
	"errors"

	"decantifume-api/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type ProductFilter struct {
	SearchTerm    *string
	Category      *model.ProductCategory
	Brand         *string
	Gender        *model.Gender
	FragranceType *model.FragranceType
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Status        *model.ProductStatus
	Pagination    Pagination
	Sort          Sort
}

const minPriceExpr = "(SELECT MIN(ds.price) FROM decant_sizes ds WHERE ds.product_id = products.id)"

var productSortColumns = map[string]string{
	"name":          "name",
	"brand":         "brand",
	"price":         minPriceExpr,
	"createdAt":     "created_at",
	"averageRating": "average_rating",
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindMany(ctx context.Context, ids []string) ([]*model.Product, error)
	ExistsByNameBrand(ctx context.Context, name, brand, excludeID string) (bool, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	Save(ctx context.Context, product *model.Product) error
	SoftDelete(ctx context.Context, id string) error
	Featured(ctx context.Context, limit int) ([]model.Product, error)
	ByBrand(ctx context.Context, brand string, limit int) ([]model.Product, error)
	Related(ctx context.Context, productID string, category model.ProductCategory, limit int) ([]model.Product, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID string, size model.Size, quantity int) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func withSizes(db *gorm.DB) *gorm.DB {
	return db.Preload("DecantSizes", func(db *gorm.DB) *gorm.DB {
		return db.Order("price ASC")
	})
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Scopes(notDeleted, withSizes).
		Where("id = ?", id).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Scopes(notDeleted, withSizes).
		Where("slug = ?", slug).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindMany(ctx context.Context, ids []string) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Scopes(notDeleted, withSizes).
		Where("id IN ?", ids).
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) ExistsByNameBrand(ctx context.Context, name, brand, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{}).
		Scopes(notDeleted).
		Where("name = ? AND brand = ?", name, brand)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *productRepoImpl) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{}).Scopes(notDeleted)

	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Category != nil {
		q = q.Where("category = ?", *filter.Category)
	}
	if filter.Brand != nil && *filter.Brand != "" {
		q = q.Where("LOWER(brand) LIKE ?", likePattern(*filter.Brand))
	}
	if filter.Gender != nil {
		q = q.Where("gender = ?", *filter.Gender)
	}
	if filter.FragranceType != nil {
		q = q.Where("fragrance_type = ?", *filter.FragranceType)
	}
	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		term := likePattern(*filter.SearchTerm)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?)",
			term, term, term, term)
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		sizes := r.db.Model(&model.DecantSize{}).
			Select("1").
			Where("decant_sizes.product_id = products.id")
		if filter.MinPrice != nil {
			sizes = sizes.Where("decant_sizes.price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			sizes = sizes.Where("decant_sizes.price <= ?", *filter.MaxPrice)
		}
		q = q.Where("EXISTS (?)", sizes)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := q.Scopes(withSizes).
		Order(orderBy(filter.Sort, productSortColumns, "created_at")).
		Scopes(paginate(filter.Pagination.Normalize())).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Save writes the product row and replaces its decant sizes.
func (r *productRepoImpl) Save(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(product).Error; err != nil {
			return err
		}

		if product.DecantSizes == nil {
			return nil
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&model.DecantSize{}).Error; err != nil {
			return err
		}

		for i := range product.DecantSizes {
			product.DecantSizes[i].ID = 0
			product.DecantSizes[i].ProductID = product.ID
		}
		if len(product.DecantSizes) == 0 {
			return nil
		}
		return tx.Create(&product.DecantSizes).Error
	})
}

func (r *productRepoImpl) SoftDelete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&model.Product{}).
		Scopes(notDeleted).
		Where("id = ?", id).
		UpdateColumn("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepoImpl) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Scopes(notDeleted, withSizes).
		Where("status = ? AND total_stock > 0", model.ProductStatusActive).
		Order("average_rating DESC").
		Order("total_reviews DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepoImpl) ByBrand(ctx context.Context, brand string, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Scopes(notDeleted, withSizes).
		Where("status = ? AND LOWER(brand) LIKE ?", model.ProductStatusActive, likePattern(brand)).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepoImpl) Related(ctx context.Context, productID string, category model.ProductCategory, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Scopes(notDeleted, withSizes).
		Where("id <> ? AND category = ? AND status = ?", productID, category, model.ProductStatusActive).
		Order("average_rating DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// DecrementStock takes quantity units from one decant size and from the
// product total. Only rows with enough stock are touched; zero rows affected
// yields ErrInsufficientStock.
func (r *productRepoImpl) DecrementStock(ctx context.Context, tx *gorm.DB, productID string, size model.Size, quantity int) error {
	result := tx.WithContext(ctx).Model(&model.DecantSize{}).
		Where("product_id = ? AND size = ? AND stock >= ?", productID, size, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}

	result = tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND total_stock >= ?", productID, quantity).
		UpdateColumn("total_stock", gorm.Expr("total_stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
