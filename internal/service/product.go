package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/client"
	"decantifume-api/internal/dto"
	"decantifume-api/internal/model"
	"decantifume-api/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	maxImageSize   = 5 << 20
	maxImageUpload = 10

	defaultFeaturedLimit = 8
	defaultBrandLimit    = 10
	defaultRelatedLimit  = 6
)

type ProductService interface {
	Create(ctx context.Context, req *dto.CreateProductRequest, createdBy string) (*model.Product, error)
	List(ctx context.Context, q *dto.ProductQuery) (*dto.Page[model.Product], error)
	Get(ctx context.Context, id string) (*model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	Update(ctx context.Context, id string, req *dto.UpdateProductRequest, updatedBy string) (*model.Product, error)
	Delete(ctx context.Context, id string) error
	UpdateStock(ctx context.Context, id string, req *dto.UpdateStockRequest) (*model.Product, error)
	Featured(ctx context.Context, limit int) ([]model.Product, error)
	ByBrand(ctx context.Context, brand string, limit int) ([]model.Product, error)
	Related(ctx context.Context, id, category string, limit int) ([]model.Product, error)
	UploadImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
}

type productServiceImpl struct {
	productRepo repository.ProductRepository
	images      client.ImageStore
}

func NewProductService(productRepo repository.ProductRepository, images client.ImageStore) ProductService {
	return &productServiceImpl{
		productRepo: productRepo,
		images:      images,
	}
}

func (s *productServiceImpl) Create(ctx context.Context, req *dto.CreateProductRequest, createdBy string) (*model.Product, error) {
	exists, err := s.productRepo.ExistsByNameBrand(ctx, req.Name, req.Brand, "")
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("Product with this name and brand already exists")
	}

	product := &model.Product{
		Name:            req.Name,
		Brand:           req.Brand,
		Description:     req.Description,
		Category:        req.Category,
		FragranceType:   req.FragranceType,
		Gender:          req.Gender,
		FragranceNotes:  req.FragranceNotes.Model(),
		Longevity:       req.Longevity,
		Sillage:         req.Sillage,
		Projection:      req.Projection,
		Images:          req.Images,
		Thumbnail:       req.Thumbnail,
		DecantSizes:     dto.DecantSizes(req.DecantSizes),
		Tags:            req.Tags,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		CreatedBy:       createdBy,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *productServiceImpl) List(ctx context.Context, q *dto.ProductQuery) (*dto.Page[model.Product], error) {
	status := q.Status
	if status == "" {
		status = string(model.ProductStatusActive)
	}

	filter := repository.ProductFilter{
		Category:      optional[model.ProductCategory](q.Category),
		Gender:        optional[model.Gender](q.Gender),
		FragranceType: optional[model.FragranceType](q.FragranceType),
		Status:        optional[model.ProductStatus](status),
		Pagination:    pagination(q.PageQuery),
		Sort:          sortFor(q.SortBy, q.SortOrder),
	}
	if q.SearchTerm != "" {
		filter.SearchTerm = &q.SearchTerm
	}
	if q.Brand != "" {
		filter.Brand = &q.Brand
	}

	var err error
	if filter.MinPrice, err = parsePrice("minPrice", q.MinPrice); err != nil {
		return nil, err
	}
	if filter.MaxPrice, err = parsePrice("maxPrice", q.MaxPrice); err != nil {
		return nil, err
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return newPage(products, filter.Pagination, total), nil
}

func parsePrice(field, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperr.BadRequest("%s must be a number", field)
	}
	return &d, nil
}

func (s *productServiceImpl) Get(ctx context.Context, id string) (*model.Product, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *productServiceImpl) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if isNotFound(err) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

func (s *productServiceImpl) Update(ctx context.Context, id string, req *dto.UpdateProductRequest, updatedBy string) (*model.Product, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Brand != nil {
		name, brand := product.Name, product.Brand
		if req.Name != nil {
			name = *req.Name
		}
		if req.Brand != nil {
			brand = *req.Brand
		}

		exists, err := s.productRepo.ExistsByNameBrand(ctx, name, brand, product.ID)
		if err != nil {
			return nil, fmt.Errorf("check product: %w", err)
		}
		if exists {
			return nil, apperr.Conflict("Product with this name and brand already exists")
		}
		product.Name, product.Brand = name, brand
	}

	applyProductUpdate(product, req)
	product.UpdatedBy = updatedBy

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return product, nil
}

func applyProductUpdate(p *model.Product, req *dto.UpdateProductRequest) {
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.FragranceType != nil {
		p.FragranceType = *req.FragranceType
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.FragranceNotes != nil {
		p.FragranceNotes = req.FragranceNotes.Model()
	}
	if req.Longevity != nil {
		p.Longevity = *req.Longevity
	}
	if req.Sillage != nil {
		p.Sillage = *req.Sillage
	}
	if req.Projection != nil {
		p.Projection = *req.Projection
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.Thumbnail != nil {
		p.Thumbnail = *req.Thumbnail
	}
	if req.DecantSizes != nil {
		p.DecantSizes = dto.DecantSizes(req.DecantSizes)
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	if req.MetaTitle != nil {
		p.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		p.MetaDescription = *req.MetaDescription
	}
}

// Delete soft-deletes the product, then removes its images from storage.
// Image failures are logged and leave the product deleted.
func (s *productServiceImpl) Delete(ctx context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}

	product, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	err = s.productRepo.SoftDelete(ctx, id)
	if isNotFound(err) {
		return apperr.NotFound("Product not found")
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	for _, url := range productImageURLs(product) {
		if err := s.images.Delete(ctx, url); err != nil {
			slog.WarnContext(ctx, "delete product image", "product_id", id, "url", url, "error", err)
		}
	}
	return nil
}

func productImageURLs(p *model.Product) []string {
	urls := make([]string, 0, len(p.Images)+1)
	seen := make(map[string]bool, len(p.Images)+1)
	for _, u := range append([]string{p.Thumbnail}, p.Images...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// UpdateStock overwrites the stock of the listed sizes. Sizes the product
// does not carry are ignored.
func (s *productServiceImpl) UpdateStock(ctx context.Context, id string, req *dto.UpdateStockRequest) (*model.Product, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, update := range req.SizeUpdates {
		size := product.FindSize(update.Size)
		if size == nil {
			continue
		}
		size.Stock = update.NewStock
		size.IsAvailable = update.NewStock > 0
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product stock: %w", err)
	}
	return product, nil
}

func (s *productServiceImpl) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	products, err := s.productRepo.Featured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("featured products: %w", err)
	}
	return products, nil
}

func (s *productServiceImpl) ByBrand(ctx context.Context, brand string, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = defaultBrandLimit
	}
	products, err := s.productRepo.ByBrand(ctx, brand, limit)
	if err != nil {
		return nil, fmt.Errorf("products by brand: %w", err)
	}
	return products, nil
}

// Related lists active products in the same category. Without an explicit
// category the product's own one is used.
func (s *productServiceImpl) Related(ctx context.Context, id, category string, limit int) ([]model.Product, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRelatedLimit
	}

	cat := model.ProductCategory(category)
	if cat == "" {
		product, err := s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		cat = product.Category
	}

	products, err := s.productRepo.Related(ctx, id, cat, limit)
	if err != nil {
		return nil, fmt.Errorf("related products: %w", err)
	}
	return products, nil
}

func (s *productServiceImpl) UploadImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, apperr.BadRequest("No images provided")
	}
	if len(files) > maxImageUpload {
		return nil, apperr.BadRequest("At most %d images can be uploaded at once", maxImageUpload)
	}
	for _, fh := range files {
		if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
			return nil, apperr.BadRequest("Only image files are allowed!")
		}
		if fh.Size > maxImageSize {
			return nil, apperr.BadRequest("Image %s exceeds the 5MB limit", fh.Filename)
		}
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := s.upload(ctx, fh)
		if err != nil {
			slog.ErrorContext(ctx, "upload product image", "file", fh.Filename, "error", err)
			return nil, apperr.Internal("Failed to upload image to cloud storage")
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *productServiceImpl) upload(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return s.images.Upload(ctx, fh.Filename, f)
}

func (s *productServiceImpl) find(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if isNotFound(err) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}
