package listing

import (
	"strings"
	"time"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/common"
	"pawmart_web/internal/domain"

	"github.com/shopspring/decimal"
)

// Form is the create/edit listing form.
type Form struct {
	Name        string          `json:"name" validate:"required"`
	Category    domain.Category `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Location    string          `json:"location" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Image       string          `json:"image" validate:"required,url"`
	Date        string          `json:"date" validate:"required"`
	Email       string          `json:"email" validate:"required,email"`
}

// FormFromListing pre-fills an edit form.
func FormFromListing(l domain.Listing) Form {
	return Form{
		Name:        l.Name,
		Category:    l.Category,
		Price:       l.Price,
		Quantity:    l.Quantity,
		Location:    l.Location,
		Description: l.Description,
		Image:       l.Image,
		Date:        l.Date,
		Email:       l.Email,
	}
}

// Input trims the form and returns the payload with the category lock applied.
func (f Form) Input() apiclient.ListingInput {
	in := apiclient.ListingInput{
		Name:        strings.TrimSpace(f.Name),
		Category:    domain.Category(strings.TrimSpace(string(f.Category))),
		Price:       f.Price,
		Quantity:    f.Quantity,
		Location:    strings.TrimSpace(f.Location),
		Description: strings.TrimSpace(f.Description),
		Image:       strings.TrimSpace(f.Image),
		Date:        strings.TrimSpace(f.Date),
		Email:       strings.TrimSpace(f.Email),
	}
	ApplyCategoryLock(&in)
	return in
}

// validateRequired checks the text fields and the category of a payload.
func validateRequired(in apiclient.ListingInput) error {
	form := Form{
		Name:        in.Name,
		Category:    in.Category,
		Location:    in.Location,
		Description: in.Description,
		Image:       in.Image,
		Date:        in.Date,
		Email:       in.Email,
	}
	if err := common.ValidateStruct(form); err != nil {
		return err
	}
	if !in.Category.Valid() {
		return common.FieldError("category", "Please select a valid category.")
	}
	return nil
}

// ValidateCreate applies the create rules: every field present, price not
// negative, quantity at least one.
func ValidateCreate(in apiclient.ListingInput) error {
	if err := validateRequired(in); err != nil {
		return err
	}
	if in.Price.IsNegative() {
		return common.FieldError("price", "Price cannot be negative.")
	}
	if in.Quantity < 1 {
		return common.FieldError("quantity", "Quantity must be at least 1.")
	}
	return nil
}

// ValidateEdit applies the edit rules: required fields only. Numeric fields
// are governed by the category lock alone.
func ValidateEdit(in apiclient.ListingInput) error {
	return validateRequired(in)
}

// Today is the default listing date, in the form the backend stores.
func Today(now time.Time) string {
	return now.Format("2006-01-02")
}
