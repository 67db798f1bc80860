package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Brand groups products by manufacturer.
type Brand struct {
	ID   string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(250);not null"`
}

func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// Category groups products by kind.
type Category struct {
	ID   string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(250);not null"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Product represents a product in the store.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"name" gorm:"type:varchar(250);not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Discount    int             `json:"discount" gorm:"not null;default:0"` // percent, 0..100
	Stock       int             `json:"stock" gorm:"not null"`
	Description string          `json:"description" gorm:"type:varchar(250);not null"`
	Colors      string          `json:"colors" gorm:"type:varchar(250);not null"` // comma separated
	BrandID     string          `json:"brand_id" gorm:"type:varchar(36);index"`
	Brand       *Brand          `json:"brand,omitempty"`
	CategoryID  string          `json:"category_id" gorm:"type:varchar(36);index"`
	Category    *Category       `json:"category,omitempty"`
	Image1      string          `json:"image_1" gorm:"column:image_1;type:varchar(250);not null;default:image.jpg"`
	Image2      string          `json:"image_2" gorm:"column:image_2;type:varchar(250);not null;default:image.jpg"`
	Image3      string          `json:"image_3" gorm:"column:image_3;type:varchar(250);not null;default:image.jpg"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// ColorList splits the comma separated Colors field.
func (p *Product) ColorList() []string {
	var colors []string
	for _, c := range strings.Split(p.Colors, ",") {
		if c = strings.TrimSpace(c); c != "" {
			colors = append(colors, c)
		}
	}
	return colors
}

// LineItem builds the cart entry for this product.
func (p *Product) LineItem(quantity int, color string) LineItem {
	return LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Discount:  p.Discount,
		Quantity:  quantity,
		Color:     color,
		Image:     p.Image1,
		Colors:    p.Colors,
	}
}

// Page is one page of a paginated product listing.
type Page struct {
	Items   []Product `json:"items"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
	Total   int64     `json:"total"`
	Pages   int       `json:"pages"`
}
