package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/premiumcars/listingsheet/internal/metrics"
	"github.com/premiumcars/listingsheet/internal/model"
	"github.com/premiumcars/listingsheet/internal/render"
)

// Output formats of a rendered sheet.
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// Templater renders a sheet to an HTML document.
type Templater interface {
	HTML(s render.Sheet) ([]byte, error)
}

// ArchiveStore uploads exported documents and hands out download links.
type ArchiveStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Rendered is a finished document ready to be written to a response.
type Rendered struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Archived describes an export stored in object storage.
type Archived struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportService renders records to HTML previews and PDF downloads.
type ExportService struct {
	gate    *Gate
	doc     Templater
	pdf     render.PDFRenderer
	archive ArchiveStore
	urlTTL  time.Duration
	metrics metrics.Recorder
	now     func() time.Time
}

// ExportOption configures an ExportService.
type ExportOption func(*ExportService)

// WithArchive enables archiving exports to store with links valid for urlTTL.
func WithArchive(store ArchiveStore, urlTTL time.Duration) ExportOption {
	return func(s *ExportService) {
		s.archive = store
		s.urlTTL = urlTTL
	}
}

// NewExportService creates a new ExportService.
func NewExportService(gate *Gate, doc Templater, pdf render.PDFRenderer, recorder metrics.Recorder, opts ...ExportOption) *ExportService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	s := &ExportService{
		gate:    gate,
		doc:     doc,
		pdf:     pdf,
		urlTTL:  15 * time.Minute,
		metrics: recorder,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview renders a stored record as HTML.
func (s *ExportService) Preview(ctx context.Context, id *model.Identity, recordID string) (*Rendered, error) {
	_, rec, err := s.gate.Authorize(ctx, id, recordID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, render.SheetFromRecord(rec, s.now()), FormatHTML)
}

// Export renders a stored record as a PDF download.
func (s *ExportService) Export(ctx context.Context, id *model.Identity, recordID string) (*Rendered, error) {
	_, rec, err := s.gate.Authorize(ctx, id, recordID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, render.SheetFromRecord(rec, s.now()), FormatPDF)
}

// Draft renders unsaved input. Nothing is persisted.
func (s *ExportService) Draft(ctx context.Context, id *model.Identity, input RecordInput, format string) (*Rendered, error) {
	if id == nil {
		return nil, ErrUnauthenticated
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.gate.ResolveUser(ctx, id); err != nil {
		return nil, err
	}

	input = input.normalize()
	rec := &model.Record{Title: input.Title, Description: input.Description, Content: input.Content}
	return s.render(ctx, render.SheetFromRecord(rec, s.now()), format)
}

// Archive renders a stored record to PDF, uploads it and returns a
// time-limited download link.
func (s *ExportService) Archive(ctx context.Context, id *model.Identity, recordID string) (*Archived, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}

	user, rec, err := s.gate.Authorize(ctx, id, recordID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out, err := s.render(ctx, render.SheetFromRecord(rec, now), FormatPDF)
	if err != nil {
		return nil, err
	}

	key := archiveKey(user.ID, rec.ID, out.Filename, now)
	if err := s.archive.Upload(ctx, key, out.Body, out.ContentType); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	url, err := s.archive.PresignDownload(ctx, key, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.metrics.IncArchiveUploaded()
	return &Archived{Key: key, URL: url, ExpiresAt: now.Add(s.urlTTL).UTC()}, nil
}

func (s *ExportService) render(ctx context.Context, sheet render.Sheet, format string) (*Rendered, error) {
	start := time.Now()

	html, err := s.doc.HTML(sheet)
	if err != nil {
		s.metrics.ObserveRender(FormatHTML, time.Since(start), err)
		return nil, render.NewRenderError(render.ErrCodeRenderFailed, "render sheet template", err)
	}

	if format != FormatPDF {
		s.metrics.ObserveRender(FormatHTML, time.Since(start), nil)
		return &Rendered{
			Filename:    trimPDF(render.Filename(sheet.Title)) + ".html",
			ContentType: "text/html; charset=utf-8",
			Body:        html,
		}, nil
	}

	pdf, err := s.pdf.RenderPDF(ctx, html)
	s.metrics.ObserveRender(FormatPDF, time.Since(start), err)
	if err != nil {
		var re *render.RenderError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, render.NewRenderError(render.ErrCodeRenderFailed, "render pdf", err)
	}

	return &Rendered{
		Filename:    render.Filename(sheet.Title),
		ContentType: "application/pdf",
		Body:        pdf,
	}, nil
}

func archiveKey(ownerID, recordID, filename string, at time.Time) string {
	return fmt.Sprintf("exports/%s/%s/%s-%s", ownerID, recordID, at.UTC().Format("20060102T150405Z"), filename)
}

func trimPDF(name string) string {
	return name[:len(name)-len(".pdf")]
}
