// Package listing filters, sorts and paginates in-memory collections the way
// the administration tables do: text search, equality filters, one sort key
// and a page window.
package listing

import (
	"slices"
	"strings"
	"time"

	"github.com/jass/bff/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Page size limits
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SortDir is the sort direction
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ParseSortDir accepts asc/desc in any case; anything else is ascending
func ParseSortDir(s string) SortDir {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// Query is what the caller asked for. Zero values mean "no constraint".
type Query struct {
	Search   string
	Filters  map[string]string
	SortBy   string
	SortDir  SortDir
	Page     int
	PageSize int
}

// Filter returns the value of a named filter
func (q Query) Filter(name string) string {
	return strings.TrimSpace(q.Filters[name])
}

// WithFilter returns a copy of q with an extra filter
func (q Query) WithFilter(name, value string) Query {
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[name] = value
	q.Filters = filters
	return q
}

// SortKey compares two items on one attribute
type SortKey[T any] struct {
	compare func(c *comparer, a, b T) int
}

// Text sorts by a string attribute using Spanish collation
func Text[T any](get func(T) string) SortKey[T] {
	return SortKey[T]{compare: func(c *comparer, a, b T) int {
		return c.collator.CompareString(get(a), get(b))
	}}
}

// Time sorts chronologically. Unparseable values sort first.
func Time[T any](get func(T) time.Time) SortKey[T] {
	return SortKey[T]{compare: func(_ *comparer, a, b T) int {
		return get(a).Compare(get(b))
	}}
}

// TimeString sorts a date/time string attribute chronologically
func TimeString[T any](get func(T) string) SortKey[T] {
	return Time(func(v T) time.Time { return shared.ParseTime(get(v)) })
}

// Number sorts by a decimal attribute
func Number[T any](get func(T) decimal.Decimal) SortKey[T] {
	return SortKey[T]{compare: func(_ *comparer, a, b T) int {
		return get(a).Cmp(get(b))
	}}
}

// Float sorts by a float attribute
func Float[T any](get func(T) float64) SortKey[T] {
	return Number(func(v T) decimal.Decimal { return decimal.NewFromFloat(get(v)) })
}

// Spec describes how one collection is searched, filtered and sorted
type Spec[T any] struct {
	// Search lists the attributes matched by the free-text search
	Search []func(T) string
	// Filters maps a filter name to the attribute it compares
	Filters map[string]func(T) string
	// Sorts maps a sort name to its key
	Sorts map[string]SortKey[T]
	// DefaultSort is used when the query names no sort
	DefaultSort string
	DefaultDir  SortDir
}

// Page is one window of a filtered, sorted collection
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Result is a page of enriched rows plus the warnings raised while
// resolving their references
type Result[T any] struct {
	Page[T]
	Warnings []string `json:"warnings,omitempty"`
}

// NewResult applies q to items and attaches warnings
func NewResult[T any](items []T, spec Spec[T], q Query, warnings []string) (*Result[T], error) {
	page, err := Apply(items, spec, q)
	if err != nil {
		return nil, err
	}
	return &Result[T]{Page: page, Warnings: warnings}, nil
}

// comparer holds the locale helpers, which are not safe for concurrent use
type comparer struct {
	collator *collate.Collator
	folder   cases.Caser
}

func newComparer() *comparer {
	return &comparer{
		collator: collate.New(language.Spanish),
		folder:   cases.Fold(),
	}
}

// Apply runs search, filters, sort and pagination over items. items is not
// modified. An unknown sort name is an invalid-input error.
func Apply[T any](items []T, spec Spec[T], q Query) (Page[T], error) {
	selected, err := Select(items, spec, q)
	if err != nil {
		return Page[T]{}, err
	}
	return Paginate(selected, q.Page, q.PageSize), nil
}

// Select runs search, filters and sort without paginating. Reports use it to
// print every matching row.
func Select[T any](items []T, spec Spec[T], q Query) ([]T, error) {
	c := newComparer()

	result := make([]T, 0, len(items))
	term := c.folder.String(strings.TrimSpace(q.Search))
	for _, item := range items {
		if term != "" && !matches(c, spec.Search, item, term) {
			continue
		}
		if !passesFilters(spec.Filters, q, item) {
			continue
		}
		result = append(result, item)
	}

	sortBy, dir := q.SortBy, q.SortDir
	if sortBy == "" {
		sortBy = spec.DefaultSort
		if dir == "" {
			dir = spec.DefaultDir
		}
	}
	if sortBy != "" {
		key, ok := spec.Sorts[sortBy]
		if !ok {
			return nil, shared.NewDomainError("INVALID_INPUT", "Campo de ordenamiento no válido: "+sortBy)
		}
		slices.SortStableFunc(result, func(a, b T) int {
			if dir == SortDesc {
				return key.compare(c, b, a)
			}
			return key.compare(c, a, b)
		})
	}

	return result, nil
}

// Paginate slices one page out of items, clamping the page number to
// [1, max(1, totalPages)].
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	pageSize = ClampPageSize(pageSize)
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	page = ClampPage(page, totalPages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	window := []T{}
	if start < end {
		window = items[start:end]
	}

	return Page[T]{
		Items:      window,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// ClampPage keeps page within [1, max(1, totalPages)]
func ClampPage(page, totalPages int) int {
	return max(1, min(page, max(1, totalPages)))
}

// ClampPageSize applies the default and the maximum page size
func ClampPageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	return min(size, MaxPageSize)
}

func matches[T any](c *comparer, fields []func(T) string, item T, term string) bool {
	for _, field := range fields {
		if strings.Contains(c.folder.String(field(item)), term) {
			return true
		}
	}
	return false
}

func passesFilters[T any](filters map[string]func(T) string, q Query, item T) bool {
	for name, get := range filters {
		want := q.Filter(name)
		if want == "" {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(get(item)), want) {
			return false
		}
	}
	return true
}
