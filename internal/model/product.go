package model

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FragranceNotes struct {
	Top    []string `json:"top"`
	Middle []string `json:"middle"`
	Base   []string `json:"base"`
}

type DecantSize struct {
	ID          uint            `gorm:"primaryKey" json:"-"`
	ProductID   string          `gorm:"size:36;not null;uniqueIndex:idx_decant_product_size" json:"-"`
	Size        Size            `gorm:"size:8;not null;uniqueIndex:idx_decant_product_size" json:"size"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	IsAvailable bool            `gorm:"not null" json:"isAvailable"`
}

func (d *DecantSize) BeforeSave(tx *gorm.DB) error {
	d.IsAvailable = d.Stock > 0
	return nil
}

type Product struct {
	Base
	Name            string          `gorm:"size:200;not null;index:idx_product_name_brand" json:"name"`
	Brand           string          `gorm:"size:100;not null;index:idx_product_name_brand;index" json:"brand"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	Category        ProductCategory `gorm:"size:32;index;not null" json:"category"`
	FragranceType   FragranceType   `gorm:"size:32;not null" json:"fragranceType"`
	Gender          Gender          `gorm:"size:16;index;not null" json:"gender"`
	FragranceNotes  FragranceNotes  `gorm:"serializer:json;type:text" json:"fragranceNotes"`
	Longevity       int             `gorm:"not null" json:"longevity"`
	Sillage         int             `gorm:"not null" json:"sillage"`
	Projection      int             `gorm:"not null" json:"projection"`
	Images          []string        `gorm:"serializer:json;type:text" json:"images"`
	Thumbnail       string          `gorm:"size:500" json:"thumbnail"`
	DecantSizes     []DecantSize    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"decantSizes"`
	Status          ProductStatus   `gorm:"size:16;index;not null;default:active" json:"status"`
	IsDeleted       bool            `gorm:"index;not null;default:false" json:"isDeleted"`
	TotalStock      int             `gorm:"not null;default:0" json:"totalStock"`
	Slug            string          `gorm:"size:320;uniqueIndex;not null" json:"slug"`
	Tags            []string        `gorm:"serializer:json;type:text" json:"tags"`
	MetaTitle       string          `gorm:"size:60" json:"metaTitle,omitempty"`
	MetaDescription string          `gorm:"size:160" json:"metaDescription,omitempty"`
	AverageRating   decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"averageRating"`
	TotalReviews    int             `gorm:"not null;default:0" json:"totalReviews"`
	CreatedBy       string          `gorm:"size:36" json:"createdBy,omitempty"`
	UpdatedBy       string          `gorm:"size:36" json:"updatedBy,omitempty"`
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.Slug = Slugify(p.Brand + "-" + p.Name)
	if p.Thumbnail == "" && len(p.Images) > 0 {
		p.Thumbnail = p.Images[0]
	}
	if p.Status == "" {
		p.Status = ProductStatusActive
	}

	// nil means the sizes were not loaded and total_stock is left alone
	if p.DecantSizes != nil {
		p.TotalStock = 0
		for i := range p.DecantSizes {
			p.DecantSizes[i].IsAvailable = p.DecantSizes[i].Stock > 0
			p.TotalStock += p.DecantSizes[i].Stock
		}
	}
	return nil
}

// FindSize returns the decant size with the given label, or nil.
func (p *Product) FindSize(size Size) *DecantSize {
	for i := range p.DecantSizes {
		if p.DecantSizes[i].Size == size {
			return &p.DecantSizes[i]
		}
	}
	return nil
}

var (
	slugStrip  = regexp.MustCompile(`[^\w\s-]`)
	slugSpaces = regexp.MustCompile(`\s+`)
	slugDashes = regexp.MustCompile(`-+`)
)

func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
