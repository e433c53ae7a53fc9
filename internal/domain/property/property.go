package property

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired    = errors.New("property: id is required")
	ErrOwnerRequired = errors.New("property: owner is required")
	ErrTitleRequired = errors.New("property: title is required")
)

type ID string

type OwnerID string

// Property is the minimal ownership anchor the pricing and availability
// stores hang off. Listing content (photos, descriptions, search) lives in
// external systems.
type Property struct {
	ID        ID
	Owner     OwnerID
	Title     string
	Currency  string
	MaxGuests int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateParams struct {
	ID        ID
	Owner     OwnerID
	Title     string
	Currency  string
	MaxGuests int
	Now       time.Time
}

func New(params CreateParams) (*Property, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = "USD"
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Property{
		ID:        params.ID,
		Owner:     params.Owner,
		Title:     title,
		Currency:  currency,
		MaxGuests: params.MaxGuests,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// OwnedBy reports whether the given user owns this property.
func (p *Property) OwnedBy(owner OwnerID) bool {
	return p != nil && p.Owner == owner
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Property, error)
	Save(ctx context.Context, property *Property) error
}
