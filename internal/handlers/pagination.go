package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// Paginated is the list envelope for every paginated endpoint.
type Paginated[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Paginator reads page and limit query parameters.
type Paginator struct {
	PageSize    int
	MaxPageSize int
}

func NewPaginator(pageSize, maxPageSize int) Paginator {
	if pageSize < 1 {
		pageSize = 6
	}
	if maxPageSize < pageSize {
		maxPageSize = pageSize
	}
	return Paginator{PageSize: pageSize, MaxPageSize: maxPageSize}
}

// Page parses ?page=N&limit=M. An unparsable limit falls back to the default
// size; an unparsable page is rejected.
func (p Paginator) Page(c echo.Context) (models.Page, error) {
	page := models.Page{Number: 1, Size: p.PageSize}

	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, echo.NewHTTPError(http.StatusNotFound, "Invalid page.")
		}
		page.Number = n
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Size = min(n, p.MaxPageSize)
		}
	}
	return page, nil
}

// newPaginated wraps one page of results with links to its neighbours. Asking
// for a page past the end is an error, except for the first page.
func newPaginated[T any](c echo.Context, page models.Page, items []T, count int64) (*Paginated[T], error) {
	if page.Number > 1 && int64(page.Offset()) >= count {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Invalid page.")
	}
	if items == nil {
		items = []T{}
	}
	out := &Paginated[T]{Count: count, Results: items}
	if int64(page.Offset()+len(items)) < count {
		next := pageURL(c, page.Number+1)
		out.Next = &next
	}
	if page.Number > 1 {
		prev := pageURL(c, page.Number-1)
		out.Previous = &prev
	}
	return out, nil
}

func pageURL(c echo.Context, number int) string {
	req := c.Request()
	u := *req.URL
	u.Scheme = c.Scheme()
	u.Host = req.Host
	q := u.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
