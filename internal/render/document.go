// Package render builds the two-page listing sheet document and converts it to PDF.
package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/premiumcars/listingsheet/internal/model"
)

//go:embed templates/sheet.html assets/logo.svg
var files embed.FS

// Sheet is the data shown on a listing sheet.
type Sheet struct {
	Title        string
	Description  string
	Price        string
	Color        string
	FuelType     string
	Transmission string
	Images       []string
	Date         time.Time
}

// SheetFromRecord builds a sheet from a record, dated date.
func SheetFromRecord(rec *model.Record, date time.Time) Sheet {
	title := rec.Title
	if title == "" {
		title = rec.Content.Title
	}

	return Sheet{
		Title:        title,
		Description:  rec.DisplayDescription(),
		Price:        rec.Content.Price,
		Color:        rec.Content.Color,
		FuelType:     rec.Content.FuelType,
		Transmission: rec.Content.Transmission,
		Images:       rec.Content.Images,
		Date:         date,
	}
}

// Branding holds the company details printed on every page.
type Branding struct {
	Name  string
	Site  string
	Email string
	Logo  template.URL
}

// DefaultBranding returns the built-in branding with the embedded logo.
func DefaultBranding() Branding {
	logo, _ := files.ReadFile("assets/logo.svg")
	return Branding{
		Name:  "Premium Cars",
		Site:  "www.premiumcars.nl",
		Email: "info@premiumcars.nl",
		Logo:  dataURL("image/svg+xml", logo),
	}
}

// LoadLogo reads an image file and returns it as a data URL.
func LoadLogo(path string) (template.URL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read logo: %w", err)
	}

	typ := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if typ == "" {
		return "", fmt.Errorf("unknown logo type for %s", filepath.Base(path))
	}
	return dataURL(typ, data), nil
}

func dataURL(typ string, data []byte) template.URL {
	return template.URL("data:" + typ + ";base64," + base64.StdEncoding.EncodeToString(data)) //nolint:gosec
}

// Document renders sheets to HTML.
type Document struct {
	tmpl  *template.Template
	brand Branding
}

// NewDocument parses the embedded template.
func NewDocument(brand Branding) (*Document, error) {
	tmpl, err := template.New("sheet.html").Funcs(template.FuncMap{
		"price":  FormatPrice,
		"footer": footer,
	}).ParseFS(files, "templates/sheet.html")
	if err != nil {
		return nil, fmt.Errorf("parse sheet template: %w", err)
	}

	return &Document{tmpl: tmpl, brand: brand}, nil
}

type documentData struct {
	Sheet  Sheet
	Brand  Branding
	Images []template.URL
}

// Render writes the HTML of s to w. Images that are not valid base64 are skipped.
func (d *Document) Render(w io.Writer, s Sheet) error {
	data := documentData{Sheet: s, Brand: d.brand}
	for _, img := range s.Images {
		if src, ok := imageSource(img); ok {
			data.Images = append(data.Images, src)
		}
	}

	if err := d.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute sheet template: %w", err)
	}
	return nil
}

// HTML renders s and returns the document.
func (d *Document) HTML(s Sheet) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func footer(b Branding, date time.Time) string {
	return b.Site + " • " + FormatDate(date) + " • " + b.Email
}
