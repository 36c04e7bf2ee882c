// Package domain holds the marketplace records shared by the API client and
// the workflows built on top of it.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend stores prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category is one of the fixed listing categories.
type Category string

const (
	CategoryPets         Category = "Pets"
	CategoryPetFood      Category = "Pet Food"
	CategoryAccessories  Category = "Accessories"
	CategoryCareProducts Category = "Care Products"
)

// AllCategories is the selector value that disables category filtering.
const AllCategories = "All"

// Categories lists the categories in display order.
var Categories = []Category{CategoryPets, CategoryPetFood, CategoryAccessories, CategoryCareProducts}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Role of an ApplicationUser.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Toggled returns the role an admin toggle switches to.
func (r Role) Toggled() Role {
	if r == RoleAdmin {
		return RoleUser
	}
	return RoleAdmin
}

// SessionMetadata mirrors the identity provider's account timestamps.
type SessionMetadata struct {
	CreationTime   string `json:"creationTime,omitempty"`
	LastSignInTime string `json:"lastSignInTime,omitempty"`
}

// Session is the identity provider's signed-in principal.
type Session struct {
	UID         string          `json:"uid"`
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName"`
	PhotoURL    string          `json:"photoURL"`
	Metadata    SessionMetadata `json:"metadata"`
	// IDToken is forwarded to the backend as the caller's credential.
	IDToken string `json:"-"`
	// TokenExpiresAt is when IDToken stops being accepted.
	TokenExpiresAt time.Time `json:"-"`
}

// ApplicationUser is the backend's user record, keyed by email.
type ApplicationUser struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	PhotoURL  string `json:"photoURL,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *ApplicationUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Normalize applies safe defaults to a decoded record.
func (u *ApplicationUser) Normalize() {
	u.Email = strings.TrimSpace(u.Email)
	if u.Role != RoleAdmin {
		u.Role = RoleUser
	}
}

// Listing is a marketplace item owned by the seller identified by Email.
type Listing struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Category    Category        `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Date        string          `json:"date"`
	Email       string          `json:"email"`
	CreatedAt   string          `json:"createdAt,omitempty"`
}

// Normalize applies safe defaults to a decoded listing: a negative price reads
// as zero and a quantity below one reads as one.
func (l *Listing) Normalize() {
	if l.Price.IsNegative() {
		l.Price = decimal.Zero
	}
	if l.Quantity < 1 {
		l.Quantity = 1
	}
}

// Order is a buyer's request for a listing. Orders are never updated.
type Order struct {
	ID              string          `json:"_id"`
	ProductID       string          `json:"productId"`
	ProductName     string          `json:"productName"`
	BuyerName       string          `json:"buyerName"`
	Email           string          `json:"email"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Address         string          `json:"address"`
	Phone           string          `json:"phone"`
	Date            string          `json:"date"`
	AdditionalNotes string          `json:"additionalNotes,omitempty"`
}
