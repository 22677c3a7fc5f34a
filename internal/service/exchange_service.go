package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/session"
)

const (
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	DefaultPageSize = 12
	MaxPageSize     = 50
)

type ListingFilter struct {
	Brand     string
	Size      string
	Condition domain.Condition
	MaxPrice  *decimal.Decimal
	Search    string
	Sort      string
	Page      int
	PageSize  int
}

type ListingPage struct {
	Listings []domain.Listing `json:"listings"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Total    int              `json:"total"`
	Pages    int              `json:"pages"`
}

type ExchangeService struct {
	listings ListingSource
}

func NewExchangeService(listings ListingSource) *ExchangeService {
	return &ExchangeService{listings: listings}
}

func (s *ExchangeService) Browse(ctx context.Context, sess *session.Session, f ListingFilter) (*ListingPage, error) {
	f, err := f.normalize()
	if err != nil {
		return nil, err
	}
	all, err := s.listings.ListListings(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}

	matched := make([]domain.Listing, 0, len(all))
	for _, l := range all {
		if f.matches(l) {
			matched = append(matched, l)
		}
	}
	sortListings(matched, f.Sort)

	page := &ListingPage{Page: f.Page, PageSize: f.PageSize, Total: len(matched)}
	page.Pages = (page.Total + f.PageSize - 1) / f.PageSize
	if f.Page > page.Pages {
		page.Listings = []domain.Listing{}
		return page, nil
	}
	start := (f.Page - 1) * f.PageSize
	end := min(start+f.PageSize, len(matched))
	page.Listings = matched[start:end]
	return page, nil
}

func (f ListingFilter) normalize() (ListingFilter, error) {
	if f.Condition != "" && !f.Condition.Valid() {
		return f, fmt.Errorf("%w: unknown condition %q", ErrInvalidFilter, f.Condition)
	}
	switch f.Sort {
	case "":
		f.Sort = SortNewest
	case SortNewest, SortPriceAsc, SortPriceDesc:
	default:
		return f, fmt.Errorf("%w: unknown sort %q", ErrInvalidFilter, f.Sort)
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return f, fmt.Errorf("%w: max price must not be negative", ErrInvalidFilter)
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f, nil
}

func (f ListingFilter) matches(l domain.Listing) bool {
	if f.Brand != "" && !strings.EqualFold(l.Brand, f.Brand) {
		return false
	}
	if f.Size != "" && !strings.EqualFold(l.Size, f.Size) {
		return false
	}
	if f.Condition != "" && l.Condition != f.Condition {
		return false
	}
	if f.MaxPrice != nil && l.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Title), q) ||
		strings.Contains(strings.ToLower(l.Brand), q) ||
		strings.Contains(strings.ToLower(l.Description), q)
}

func sortListings(listings []domain.Listing, by string) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		switch by {
		case SortPriceAsc:
			return a.Price.LessThan(b.Price)
		case SortPriceDesc:
			return a.Price.GreaterThan(b.Price)
		default:
			return a.ListedAt.After(b.ListedAt)
		}
	})
}
