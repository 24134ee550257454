// Package render turns a shopping list into a downloadable file.
package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/foodgram/backend/internal/models"
)

// ShoppingListHeader is the first line of every rendered list.
const ShoppingListHeader = "Shopping list:"

// File is a rendered attachment.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Renderer renders lines of text into a file.
type Renderer interface {
	Format() string
	Render(ctx context.Context, lines []string) (*File, error)
}

// ShoppingListLines formats aggregated items as a header plus one line per item.
func ShoppingListLines(items []models.ShoppingListItem) []string {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, ShoppingListHeader)
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s (%s) - %d", item.Name, item.Unit, item.TotalAmount))
	}
	return lines
}

// TextRenderer emits a plain UTF-8 text file.
type TextRenderer struct{}

func NewTextRenderer() *TextRenderer { return &TextRenderer{} }

func (r *TextRenderer) Format() string { return "text" }

func (r *TextRenderer) Render(_ context.Context, lines []string) (*File, error) {
	return &File{
		Name:        "shopping_cart.txt",
		ContentType: "text/plain; charset=utf-8",
		Data:        []byte(strings.Join(lines, "\n") + "\n"),
	}, nil
}
