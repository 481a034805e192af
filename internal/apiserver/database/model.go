package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is a named permission level. Only "super admin" is special.
type Role struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User mirrors an account of the authentication service
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AuthID    string    `json:"authId" gorm:"type:varchar(64);index"`
	Username  string    `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone     string    `json:"phone" gorm:"type:varchar(50)"`
	Password  string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, local provider only
	Online    bool      `json:"status" gorm:"column:status;not null;default:false"`
	Disabled  bool      `json:"disabled" gorm:"not null;default:false"`
	RoleID    uint      `json:"roleId" gorm:"index;not null"`
	Role      *Role     `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoleName returns the preloaded role name, or "" when the role was not loaded
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

type Industry struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Status      bool      `json:"status" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Shop struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"type:varchar(150);not null"`
	Address      string    `json:"address" gorm:"type:text"`
	Profile      string    `json:"profile" gorm:"type:text"` // image URL
	Banner       string    `json:"banner" gorm:"type:text"`  // image URL
	Color        string    `json:"color" gorm:"type:varchar(20)"`
	LinkLocation string    `json:"linkLocation" gorm:"type:text"`
	Status       bool      `json:"status" gorm:"not null;default:false"`
	IndustryID   uint      `json:"industryId" gorm:"index"`
	Industry     *Industry `json:"industry,omitempty" gorm:"foreignKey:IndustryID"`
	UserID       uint      `json:"userId" gorm:"index;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProductType is a menu category owned by one user
type ProductType struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Status      bool      `json:"status" gorm:"not null;default:false"`
	UserID      uint      `json:"userId" gorm:"index;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SaleType labels how a product is sold (dine-in, take-away, ...)
type SaleType struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Status    bool      `json:"status" gorm:"not null"`
	UserID    uint      `json:"userId" gorm:"index;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Product struct {
	ID            uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string          `json:"name" gorm:"type:varchar(150);not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `json:"discount" gorm:"type:decimal(5,2);not null;default:0"` // percent
	Image         string          `json:"image" gorm:"type:text"`
	Status        bool            `json:"status" gorm:"not null;default:false"`
	ShopID        uint            `json:"shopId" gorm:"index;not null"`
	Shop          *Shop           `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
	ProductTypeID uint            `json:"productTypeId" gorm:"index;not null"`
	ProductType   *ProductType    `json:"productType,omitempty" gorm:"foreignKey:ProductTypeID"`
	SaleTypeID    uint            `json:"saleTypeId" gorm:"index;not null"`
	SaleType      *SaleType       `json:"saleType,omitempty" gorm:"foreignKey:SaleTypeID"`
	UserID        uint            `json:"userId" gorm:"index;not null"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

var hundred = decimal.NewFromInt(100)

// FinalPrice applies the percentage discount and rounds to cents
func (p *Product) FinalPrice() decimal.Decimal {
	if p.Discount.LessThanOrEqual(decimal.Zero) {
		return p.Price.Round(2)
	}
	off := p.Price.Mul(p.Discount).Div(hundred)
	return p.Price.Sub(off).Round(2)
}

// SocialContact is a link shown on a shop's public menu. It is owned through its shop.
type SocialContact struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(50);not null"` // facebook, telegram, ...
	Link        string    `json:"link" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Status      bool      `json:"status" gorm:"not null;default:false"`
	ShopID      uint      `json:"shopId" gorm:"index;not null"`
	Shop        *Shop     `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Counts backs the dashboard cards
type Counts struct {
	Products   int64 `json:"products"`
	Categories int64 `json:"categories"`
	Shops      int64 `json:"shops"`
	Users      int64 `json:"users"`
	Industries int64 `json:"industries"`
}

func allModels() []any {
	return []any{&Role{}, &User{}, &Industry{}, &Shop{}, &ProductType{}, &SaleType{}, &Product{}, &SocialContact{}}
}
