package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ledgerlane/ledgerlane/internal/estimates"
	"github.com/ledgerlane/ledgerlane/internal/invoices"
	"github.com/ledgerlane/ledgerlane/internal/settings"
)

//go:embed templates/*.html
var templateFS embed.FS

// PDFExporter renders invoices and estimates to PDF through Gotenberg.
// It satisfies the PDFRenderer interfaces declared by the invoices and
// estimates handlers.
type PDFExporter struct {
	client    *Client
	templates *template.Template
}

// NewPDFExporter parses the document templates and wires the Gotenberg
// client.
func NewPDFExporter(client *Client) (*PDFExporter, error) {
	printer := message.NewPrinter(language.MustParse("en-AU"))
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2 January 2006")
		},
		"formatMoney": func(v float64) string {
			return printer.Sprintf("$%v", number.Decimal(v, number.Scale(2)))
		},
		"formatQty": func(v float64) string {
			return printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(4)))
		},
	}

	tpl, err := template.New("documents").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse document templates: %w", err)
	}

	return &PDFExporter{client: client, templates: tpl}, nil
}

type documentLine struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	GST         bool
	Total       float64
}

type documentPayload struct {
	Title         string
	Number        string
	Date          time.Time
	ClientName    string
	ClientAddress string

	// DueDate and PaymentTerms are invoice only; ExpiryDate is
	// estimate only.
	DueDate      time.Time
	PaymentTerms string
	ExpiryDate   time.Time

	Lines    []documentLine
	Subtotal float64
	GST      float64
	Total    float64

	Company *settings.CompanySettings
	Notes   string
}

// RenderInvoice produces the PDF bytes for a tax invoice.
func (p *PDFExporter) RenderInvoice(ctx context.Context, inv *invoices.Invoice, cfg *settings.CompanySettings) ([]byte, error) {
	payload := documentPayload{
		Title:         "Tax Invoice",
		Number:        inv.Number,
		Date:          inv.Date,
		ClientName:    inv.ClientName,
		ClientAddress: inv.ClientAddress,
		DueDate:       inv.DueDate,
		PaymentTerms:  paymentTermsLabel(inv.PaymentTerms),
		Subtotal:      inv.Subtotal,
		GST:           inv.GST,
		Total:         inv.Total,
		Company:       cfg,
	}
	for _, li := range inv.LineItems {
		payload.Lines = append(payload.Lines, documentLine{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			GST:         li.GST,
			Total:       li.Total,
		})
	}
	if cfg != nil {
		payload.Notes = cfg.InvoiceNotes
		if payload.Notes == "" {
			payload.Notes = cfg.Notes
		}
	}
	return p.render(ctx, "invoice_pdf.html", payload)
}

// RenderEstimate produces the PDF bytes for an estimate.
func (p *PDFExporter) RenderEstimate(ctx context.Context, est *estimates.Estimate, cfg *settings.CompanySettings) ([]byte, error) {
	payload := documentPayload{
		Title:         "Estimate",
		Number:        est.Number,
		Date:          est.Date,
		ClientName:    est.ClientName,
		ClientAddress: est.ClientAddress,
		ExpiryDate:    est.ExpiryDate,
		Subtotal:      est.Subtotal,
		GST:           est.GST,
		Total:         est.Total,
		Company:       cfg,
	}
	for _, li := range est.LineItems {
		payload.Lines = append(payload.Lines, documentLine{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			GST:         li.GST,
			Total:       li.Total,
		})
	}
	if cfg != nil {
		payload.Notes = cfg.EstimateNotes
		if payload.Notes == "" {
			payload.Notes = cfg.Notes
		}
	}
	return p.render(ctx, "estimate_pdf.html", payload)
}

func (p *PDFExporter) render(ctx context.Context, name string, payload documentPayload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("pdf exporter not initialized")
	}

	buf := &bytes.Buffer{}
	if err := p.templates.ExecuteTemplate(buf, name, payload); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return p.client.RenderHTML(ctx, buf.String())
}

func paymentTermsLabel(terms invoices.PaymentTerms) string {
	switch terms {
	case invoices.TermsNet15:
		return "Net 15 days"
	case invoices.TermsNet30:
		return "Net 30 days"
	case invoices.TermsCustom:
		return "Custom"
	}
	return ""
}
