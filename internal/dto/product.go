package dto

import (
	"decantifume-api/internal/model"

	"github.com/shopspring/decimal"
)

type FragranceNotesInput struct {
	Top    []string `json:"top" validate:"required,min=1,dive,min=1"`
	Middle []string `json:"middle" validate:"required,min=1,dive,min=1"`
	Base   []string `json:"base" validate:"required,min=1,dive,min=1"`
}

func (f FragranceNotesInput) Model() model.FragranceNotes {
	return model.FragranceNotes{Top: f.Top, Middle: f.Middle, Base: f.Base}
}

type DecantSizeInput struct {
	Size  model.Size      `json:"size" validate:"required,oneof=2ml 5ml 10ml 15ml 20ml 30ml"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
	Stock int             `json:"stock" validate:"gte=0"`
}

func DecantSizes(in []DecantSizeInput) []model.DecantSize {
	out := make([]model.DecantSize, len(in))
	for i, s := range in {
		out[i] = model.DecantSize{Size: s.Size, Price: s.Price, Stock: s.Stock}
	}
	return out
}

type CreateProductRequest struct {
	Name            string                `json:"name" validate:"required,min=1,max=200"`
	Brand           string                `json:"brand" validate:"required,min=1,max=100"`
	Description     string                `json:"description" validate:"required,min=10,max=2000"`
	Category        model.ProductCategory `json:"category" validate:"required,oneof=mens_fragrance womens_fragrance unisex_fragrance niche_fragrance designer_fragrance oriental fresh woody floral gourmand"`
	FragranceType   model.FragranceType   `json:"fragranceType" validate:"required,oneof=eau_de_parfum eau_de_toilette eau_de_cologne parfum eau_fraiche"`
	Gender          model.Gender          `json:"gender" validate:"required,oneof=men women unisex"`
	FragranceNotes  FragranceNotesInput   `json:"fragranceNotes" validate:"required"`
	Longevity       int                   `json:"longevity" validate:"required,min=1,max=10"`
	Sillage         int                   `json:"sillage" validate:"required,min=1,max=10"`
	Projection      int                   `json:"projection" validate:"required,min=1,max=10"`
	Images          []string              `json:"images" validate:"required,min=1,dive,url"`
	Thumbnail       string                `json:"thumbnail" validate:"omitempty,url"`
	DecantSizes     []DecantSizeInput     `json:"decantSizes" validate:"required,min=1,dive"`
	Tags            []string              `json:"tags" validate:"omitempty,dive,min=1"`
	MetaTitle       string                `json:"metaTitle" validate:"omitempty,max=60"`
	MetaDescription string                `json:"metaDescription" validate:"omitempty,max=160"`
}

type UpdateProductRequest struct {
	Name            *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Brand           *string                `json:"brand" validate:"omitempty,min=1,max=100"`
	Description     *string                `json:"description" validate:"omitempty,min=10,max=2000"`
	Category        *model.ProductCategory `json:"category" validate:"omitempty,oneof=mens_fragrance womens_fragrance unisex_fragrance niche_fragrance designer_fragrance oriental fresh woody floral gourmand"`
	FragranceType   *model.FragranceType   `json:"fragranceType" validate:"omitempty,oneof=eau_de_parfum eau_de_toilette eau_de_cologne parfum eau_fraiche"`
	Gender          *model.Gender          `json:"gender" validate:"omitempty,oneof=men women unisex"`
	FragranceNotes  *FragranceNotesInput   `json:"fragranceNotes"`
	Longevity       *int                   `json:"longevity" validate:"omitempty,min=1,max=10"`
	Sillage         *int                   `json:"sillage" validate:"omitempty,min=1,max=10"`
	Projection      *int                   `json:"projection" validate:"omitempty,min=1,max=10"`
	Images          []string               `json:"images" validate:"omitempty,min=1,dive,url"`
	Thumbnail       *string                `json:"thumbnail" validate:"omitempty,url"`
	DecantSizes     []DecantSizeInput      `json:"decantSizes" validate:"omitempty,min=1,dive"`
	Status          *model.ProductStatus   `json:"status" validate:"omitempty,oneof=active inactive out_of_stock discontinued"`
	Tags            []string               `json:"tags" validate:"omitempty,dive,min=1"`
	MetaTitle       *string                `json:"metaTitle" validate:"omitempty,max=60"`
	MetaDescription *string                `json:"metaDescription" validate:"omitempty,max=160"`
}

type StockUpdate struct {
	Size     model.Size `json:"size" validate:"required,oneof=2ml 5ml 10ml 15ml 20ml 30ml"`
	NewStock int        `json:"newStock" validate:"gte=0"`
}

type UpdateStockRequest struct {
	SizeUpdates []StockUpdate `json:"sizeUpdates" validate:"required,min=1,dive"`
}

type ProductQuery struct {
	PageQuery
	SearchTerm    string `query:"searchTerm" validate:"omitempty,max=100"`
	Category      string `query:"category" validate:"omitempty,oneof=mens_fragrance womens_fragrance unisex_fragrance niche_fragrance designer_fragrance oriental fresh woody floral gourmand"`
	Brand         string `query:"brand" validate:"omitempty,max=100"`
	Gender        string `query:"gender" validate:"omitempty,oneof=men women unisex"`
	FragranceType string `query:"fragranceType" validate:"omitempty,oneof=eau_de_parfum eau_de_toilette eau_de_cologne parfum eau_fraiche"`
	MinPrice      string `query:"minPrice" validate:"omitempty,numeric"`
	MaxPrice      string `query:"maxPrice" validate:"omitempty,numeric"`
	Status        string `query:"status" validate:"omitempty,oneof=active inactive out_of_stock discontinued"`
	SortBy        string `query:"sortBy" validate:"omitempty,oneof=name brand price createdAt averageRating"`
}

type LimitQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=50"`
}

type UploadedImages struct {
	URLs []string `json:"urls"`
}
