package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Supplier is a vendor invited to quote on RFQs
type Supplier struct {
	shared.BaseAggregateRoot
	Code        string
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Address     string
	TaxCode     string
	Rating      decimal.Decimal
	UserID      *uuid.UUID // supplier portal account
}

// NewSupplier creates a supplier with no rating yet
func NewSupplier(code, companyName, email string) (*Supplier, error) {
	code = strings.TrimSpace(code)
	companyName = strings.TrimSpace(companyName)
	if code == "" {
		return nil, shared.NewValidationError("Supplier code cannot be empty")
	}
	if companyName == "" {
		return nil, shared.NewValidationError("Supplier company name cannot be empty")
	}
	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		CompanyName:       companyName,
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Rating:            decimal.Zero,
	}, nil
}

// HasEmail reports whether invitations can be mailed to the supplier
func (s *Supplier) HasEmail() bool {
	return s.Email != ""
}

// UpdateRating stores the rating recomputed from evaluations, rounded to 2 places
func (s *Supplier) UpdateRating(rating decimal.Decimal) error {
	if rating.IsNegative() || rating.GreaterThan(decimal.NewFromInt(5)) {
		return shared.NewValidationError("Supplier rating must be between 0 and 5")
	}
	s.Rating = rating.Round(2)
	s.Touch()
	return nil
}

// LinkUser attaches the supplier portal account
func (s *Supplier) LinkUser(userID uuid.UUID) {
	s.UserID = &userID
	s.Touch()
}
