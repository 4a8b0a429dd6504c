package table

import "context"

// DefaultPageSize is used when a Pagination is created with a
// non-positive size.
const DefaultPageSize = 10

// Page is one materialized page of a selector.
type Page[T any] struct {
	// Index is the zero-based page index.
	Index int
	// Size is the page size.
	Size int
	// Items holds the rows of the page; empty when Index is out of range.
	Items []*T
	// Total is the number of rows matching the selector.
	Total int
	// Pages is the number of pages, ceil(Total/Size).
	Pages int
}

// Pagination slices a QuerySelector into fixed-size pages. The selector's
// own limit and offset are replaced for every page.
type Pagination[T any] struct {
	sel  *QuerySelector[T]
	size int
}

// NewPagination returns a Pagination over sel.
func NewPagination[T any](sel *QuerySelector[T], size int) *Pagination[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pagination[T]{sel: sel.Clone(), size: size}
}

// Size returns the page size.
func (p *Pagination[T]) Size() int {
	return p.size
}

// Total returns the number of rows matching the selector.
func (p *Pagination[T]) Total(ctx context.Context) (int, error) {
	return p.sel.Count(ctx)
}

// Pages returns the number of pages.
func (p *Pagination[T]) Pages(ctx context.Context) (int, error) {
	total, err := p.Total(ctx)
	if err != nil {
		return 0, err
	}
	return pages(total, p.size), nil
}

// Page returns the page at index. An out-of-range index yields a page with
// no items, not an error.
func (p *Pagination[T]) Page(ctx context.Context, index int) (*Page[T], error) {
	total, err := p.Total(ctx)
	if err != nil {
		return nil, err
	}
	page := &Page[T]{Index: index, Size: p.size, Items: []*T{}, Total: total, Pages: pages(total, p.size)}
	if index < 0 || index >= page.Pages {
		return page, nil
	}
	items, err := p.sel.Clone().Limit(p.size).Offset(p.size * index).All(ctx)
	if err != nil {
		return nil, err
	}
	if items != nil {
		page.Items = items
	}
	return page, nil
}

func pages(total, size int) int {
	return (total + size - 1) / size
}
