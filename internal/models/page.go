package models

// Page is a page-number window over a listing.
type Page struct {
	Number int
	Size   int
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// PageResult is one page of items plus the total count of the listing.
type PageResult[T any] struct {
	Items []T
	Count int64
}
