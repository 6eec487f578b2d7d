package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"                 json:"id"`
	Name        string          `gorm:"size:128;not null"                    json:"name"`
	Slug        string          `gorm:"size:128;uniqueIndex;not null"        json:"slug"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Stock       uint            `gorm:"not null;default:0"                   json:"stock"`
	Description string          `gorm:"type:text"                            json:"description"`
	Thumbnail   string          `gorm:"size:255"                             json:"-"`
	StripeID    string          `gorm:"size:90"                              json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	return nil
}

type Shopper struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"         json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null"                     json:"-"`
	FirstName    string    `gorm:"size:150"                     json:"first_name"`
	LastName     string    `gorm:"size:150"                     json:"last_name"`
	Role         string    `gorm:"size:20;not null;default:user" json:"role"`
	StripeID     string    `gorm:"size:90"                      json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Shopper) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Cart struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Orders    []Order   `gorm:"foreignKey:CartID"           json:"orders"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BeforeDelete detaches the cart's order lines instead of deleting them.
// ordered_date is not touched here.
func (c *Cart) BeforeDelete(tx *gorm.DB) error {
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&Order{}).
		Where("cart_id = ?", c.ID).
		Updates(map[string]any{"ordered": true, "cart_id": nil}).Error
}

// Order is one product line of a cart.
type Order struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"             json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null"         json:"user_id"`
	ProductID   uuid.UUID  `gorm:"type:uuid;index;not null"         json:"product_id"`
	Product     Product    `gorm:"foreignKey:ProductID"             json:"product"`
	Quantity    uint       `gorm:"not null;default:1;check:quantity>0" json:"quantity"`
	Ordered     bool       `gorm:"not null;default:false"           json:"ordered"`
	OrderedDate *time.Time `json:"ordered_date"`
	CartID      *uuid.UUID `gorm:"type:uuid;index"                  json:"cart_id"`
	CreatedAt   time.Time  `gorm:"index"                            json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type ShippingAddress struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Name     string    `gorm:"size:240;not null"        json:"name"`
	City     string    `gorm:"size:1024;not null"       json:"city"`
	Country  string    `gorm:"size:2;not null"          json:"country"`
	Address1 string    `gorm:"column:address_1;size:1024;not null" json:"address_1"`
	Address2 string    `gorm:"column:address_2;size:1024"          json:"address_2"`
	ZipCode  string    `gorm:"size:32;not null"         json:"zip_code"`
	Default  bool      `gorm:"column:is_default;not null;default:false" json:"default"`
}

func (a *ShippingAddress) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ProcessedEvent records a payment notification that has been applied.
type ProcessedEvent struct {
	EventID     string    `gorm:"size:255;primaryKey" json:"event_id"`
	Type        string    `gorm:"size:128;not null"   json:"type"`
	ProcessedAt time.Time `gorm:"autoCreateTime"      json:"processed_at"`
}

func All() []any {
	return []any{&Product{}, &Shopper{}, &Cart{}, &Order{}, &ShippingAddress{}, &ProcessedEvent{}}
}
