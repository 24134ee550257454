package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

var pdfTemplate = template.Must(template.New("shopping-list").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
body { font-family: "DejaVu Sans", "FreeSans", sans-serif; font-size: 14pt; margin: 1in; }
p { margin: 0 0 4pt 0; }
</style></head><body>
{{range .}}<p>{{.}}</p>
{{end}}</body></html>`))

// PDFRenderer prints the lines to PDF with headless Chrome.
type PDFRenderer struct {
	timeout  time.Duration
	execPath string
}

// NewPDFRenderer returns a renderer; execPath may be empty to let chromedp find Chrome.
func NewPDFRenderer(timeout time.Duration, execPath string) *PDFRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PDFRenderer{timeout: timeout, execPath: execPath}
}

func (r *PDFRenderer) Format() string { return "pdf" }

func (r *PDFRenderer) Render(ctx context.Context, lines []string) (*File, error) {
	var html bytes.Buffer
	if err := pdfTemplate.Execute(&html, lines); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html.String()).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().WithPrintBackground(false).Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}

	return &File{Name: "shopping_cart.pdf", ContentType: "application/pdf", Data: pdf}, nil
}
