package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type visitEmailData struct {
	baseEmailData
	CustomerName   string
	VisitType      string
	Date           string
	Window         string
	Address        string
	ItemCount      int
	PriceFormatted string
}

type opsAlertEmailData struct {
	baseEmailData
	Message string
}

func newVisitEmailData(title string, v VisitDetails) visitEmailData {
	data := visitEmailData{
		baseEmailData: baseEmailData{
			Title:   title,
			Heading: title,
		},
		CustomerName: v.CustomerName,
		VisitType:    v.VisitType,
		Date:         v.Date,
		Window:       v.Window,
		Address:      v.Address,
		ItemCount:    v.ItemCount,
	}
	if v.PriceCents > 0 {
		data.PriceFormatted = formatCurrencyUSD(v.PriceCents)
	}
	if v.ManageURL != "" {
		data.CTALabel = "Manage your visit"
		data.CTAURL = v.ManageURL
	}
	return data
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatCurrencyUSD(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
