package pagination

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Pagination modes and validation limits.
const (
	MaxLimit      = 10000
	MaxPageSize   = 1000
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"

	flagLimit    = "limit"
	flagOffset   = "offset"
	flagPage     = "page"
	flagPageSize = "page-size"
	flagSort     = "sort"
)

// Common validation errors.
var (
	ErrInvalidLimit         = fmt.Errorf("limit must be between 0 and %d", MaxLimit)
	ErrInvalidPageSize      = fmt.Errorf("page-size must be between 1 and %d", MaxPageSize)
	ErrInvalidOffset        = errors.New("offset must be non-negative")
	ErrInvalidPage          = errors.New("page must be >= 1")
	ErrInvalidSortOrder     = errors.New("sort order must be 'asc' or 'desc'")
	ErrMixedPaginationModes = errors.New("cannot use both offset-based (--offset) and page-based (--page) pagination")
	ErrPageSizeWithoutPage  = errors.New("--page-size requires --page to be set")
	ErrInvalidSortFormat    = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'solar:desc')")
	ErrEmptySortField       = errors.New("sort field cannot be empty")
	ErrInvalidSortField     = errors.New("invalid sort field")
)

// PaginationParams holds CLI pagination flags. Two modes are supported and are
// mutually exclusive:
//   - Offset-based: --limit and --offset
//   - Page-based: --page and --page-size
//
// The zero value returns every item in its original order.
//
//nolint:revive // PaginationParams is the canonical name for this exported type.
type PaginationParams struct {
	// Limit is the maximum number of results (0 = no limit).
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// Page is the 1-based page number (0 = page mode off).
	Page int

	// PageSize is the number of results per page.
	PageSize int

	// SortField is the field to re-sort by; empty keeps the incoming order.
	SortField string

	// SortOrder is "asc" or "desc".
	SortOrder string
}

// AddFlags registers the pagination flags on cmd.
func AddFlags(cmd *cobra.Command) {
	cmd.Flags().Int(flagLimit, 0, "maximum number of rows to show (0 = all)")
	cmd.Flags().Int(flagOffset, 0, "number of rows to skip")
	cmd.Flags().Int(flagPage, 0, "page number to show (1-based, requires --page-size)")
	cmd.Flags().Int(flagPageSize, 0, "rows per page")
	cmd.Flags().String(flagSort, "", "re-sort rows by field[:asc|desc] (country, total, an energy type or category)")
}

// FromCommand reads and validates the pagination flags registered by AddFlags.
func FromCommand(cmd *cobra.Command) (PaginationParams, error) {
	var p PaginationParams
	p.Limit, _ = cmd.Flags().GetInt(flagLimit)
	p.Offset, _ = cmd.Flags().GetInt(flagOffset)
	p.Page, _ = cmd.Flags().GetInt(flagPage)
	p.PageSize, _ = cmd.Flags().GetInt(flagPageSize)

	if sortExpr, _ := cmd.Flags().GetString(flagSort); sortExpr != "" {
		field, order, err := ParseSort(sortExpr)
		if err != nil {
			return PaginationParams{}, err
		}
		p.SortField, p.SortOrder = field, order
	}

	if err := p.Validate(); err != nil {
		return PaginationParams{}, err
	}
	return p, nil
}

// Validate checks that the parameters are in range and use a single mode.
func (p PaginationParams) Validate() error {
	if p.Limit < 0 || p.Limit > MaxLimit {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, p.Limit)
	}
	if p.Offset < 0 {
		return ErrInvalidOffset
	}
	if p.Page < 0 {
		return ErrInvalidPage
	}
	if p.PageSize < 0 || p.PageSize > MaxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, p.PageSize)
	}
	if p.Page > 0 && p.Offset > 0 {
		return ErrMixedPaginationModes
	}
	if p.Page == 0 && p.PageSize > 0 {
		return ErrPageSizeWithoutPage
	}
	if p.Page > 0 && p.PageSize == 0 {
		return fmt.Errorf("%w: --page needs --page-size", ErrInvalidPageSize)
	}
	return nil
}

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// ParseSort parses "field" or "field:order". Without an explicit order, "country"
// sorts ascending and numeric fields descending.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field, order string, err error) {
	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		order = DefaultOrder(field)
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	return field, order, nil
}

// IsPageBased returns true if page-based pagination is active.
func (p PaginationParams) IsPageBased() bool {
	return p.Page > 0
}

// IsEnabled returns true if any pagination parameter is set.
func (p PaginationParams) IsEnabled() bool {
	return p.Limit > 0 || p.Offset > 0 || p.Page > 0
}

// CalculateOffsetLimit returns the effective offset and limit (0 = unbounded).
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func (p PaginationParams) CalculateOffsetLimit() (offset, limit int) {
	if p.IsPageBased() {
		return (p.Page - 1) * p.PageSize, p.PageSize
	}
	return p.Offset, p.Limit
}

// Apply returns the window of items selected by p. A page past the end is capped to
// the last page; an offset past the end yields an empty slice.
func Apply[T any](p PaginationParams, items []T) []T {
	if len(items) == 0 {
		return items
	}

	offset, limit := p.CalculateOffsetLimit()

	if p.IsPageBased() && offset >= len(items) {
		offset = ((len(items) - 1) / p.PageSize) * p.PageSize
	}
	if offset >= len(items) {
		return []T{}
	}

	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
