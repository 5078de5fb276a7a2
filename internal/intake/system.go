package intake

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JaimeStill/stark/internal/certificates"
	"github.com/JaimeStill/stark/internal/ocr"
	"github.com/JaimeStill/stark/internal/scans"
	"github.com/JaimeStill/stark/pkg/metrics"
	"github.com/JaimeStill/stark/pkg/middleware"
)

// System runs certificates from scan to record.
type System interface {
	Handler(limiter *middleware.RateLimiter) *Handler

	// Recognize runs OCR on a stored scan, classifies the text and stores
	// the outcome on the scan.
	Recognize(ctx context.Context, scanID uuid.UUID, language string) (*Draft, error)
	// Analyze classifies text recognized elsewhere. Nothing is stored.
	Analyze(ctx context.Context, cmd AnalyzeCommand) (*Draft, error)

	ConfirmCourse(ctx context.Context, cmd ConfirmCourseCommand) (*Confirmation, error)
	ConfirmPlacement(ctx context.Context, cmd ConfirmPlacementCommand) (*Confirmation, error)
}

// Config holds the collaborators of the intake pipeline. Metrics may be
// nil.
type Config struct {
	Scans      scans.System
	Recognizer ocr.Recognizer
	Mapper     *Mapper
	Tracer     trace.Tracer
	Metrics    *metrics.Registry
	Language   string
}

type pipeline struct {
	scans      scans.System
	recognizer ocr.Recognizer
	mapper     *Mapper
	tracer     trace.Tracer
	language   string
	logger     *slog.Logger

	recognized *metrics.Counter
	classified *metrics.Counter
	mapped     *metrics.Counter
}

func New(cfg Config, logger *slog.Logger) System {
	p := &pipeline{
		scans:      cfg.Scans,
		recognizer: cfg.Recognizer,
		mapper:     cfg.Mapper,
		tracer:     cfg.Tracer,
		language:   cfg.Language,
		logger:     logger.With("system", "intake"),
	}

	if cfg.Metrics != nil {
		p.recognized = cfg.Metrics.Counter("ocr_requests_total", "OCR calls by provider and outcome.", "provider", "outcome")
		p.classified = cfg.Metrics.Counter("certificates_classified_total", "Classified certificates by kind.", "kind")
		p.mapped = cfg.Metrics.Counter("records_mapped_total", "Records created from certificates.", "record")
	}
	return p
}

func (p *pipeline) Handler(limiter *middleware.RateLimiter) *Handler {
	return NewHandler(p, p.logger, limiter)
}

func (p *pipeline) Recognize(ctx context.Context, scanID uuid.UUID, language string) (*Draft, error) {
	ctx, span := p.tracer.Start(ctx, "intake.recognize", trace.WithAttributes(
		attribute.String("scan.id", scanID.String()),
	))
	defer span.End()

	if strings.TrimSpace(language) == "" {
		language = p.language
	}

	scan, body, err := p.scans.Download(ctx, scanID)
	if err != nil {
		return nil, spanError(span, err)
	}
	data, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return nil, spanError(span, fmt.Errorf("read scan blob: %w", err))
	}

	res, err := p.recognize(ctx, ocr.Request{
		Data:        data,
		Filename:    scan.Filename,
		ContentType: scan.ContentType,
		Language:    language,
	})
	if err != nil {
		return nil, spanError(span, err)
	}

	d := p.draft(ctx, res.Text, res.Words)
	d.ScanID = &scanID
	d.Language = res.Language

	_, err = p.scans.Recognized(ctx, scanID, scans.RecognizedCommand{
		Language: res.Language,
		Text:     res.Text,
		Kind:     d.Kind,
		Reason:   d.Reason,
	})
	if err != nil {
		return nil, spanError(span, fmt.Errorf("store recognition: %w", err))
	}

	span.SetAttributes(attribute.String("certificate.kind", string(d.Kind)))
	return &d, nil
}

func (p *pipeline) Analyze(ctx context.Context, cmd AnalyzeCommand) (*Draft, error) {
	if strings.TrimSpace(cmd.Text) == "" {
		return nil, ErrEmptyText
	}
	d := p.draft(ctx, cmd.Text, cmd.Words)
	return &d, nil
}

func (p *pipeline) ConfirmCourse(ctx context.Context, cmd ConfirmCourseCommand) (*Confirmation, error) {
	ctx, span := p.tracer.Start(ctx, "intake.confirm_course")
	defer span.End()

	return p.confirm(ctx, span, cmd.ScanID, certificates.RecordCourse, func() (string, error) {
		return p.mapper.MapCourse(ctx, cmd.CourseCommand)
	})
}

func (p *pipeline) ConfirmPlacement(ctx context.Context, cmd ConfirmPlacementCommand) (*Confirmation, error) {
	ctx, span := p.tracer.Start(ctx, "intake.confirm_placement")
	defer span.End()

	return p.confirm(ctx, span, cmd.ScanID, certificates.RecordPlacement, func() (string, error) {
		return p.mapper.MapPlacement(ctx, cmd.PlacementCommand)
	})
}

// confirm checks the scan exists before mapping so a stale scan id does
// not leave an unlinked record behind.
func (p *pipeline) confirm(
	ctx context.Context,
	span trace.Span,
	scanID *uuid.UUID,
	record certificates.Record,
	mapFn func() (string, error),
) (*Confirmation, error) {
	if scanID != nil {
		if _, err := p.scans.Find(ctx, *scanID); err != nil {
			return nil, spanError(span, err)
		}
	}

	id, err := mapFn()
	if err != nil {
		return nil, spanError(span, err)
	}
	p.mapped.Inc(string(record))
	span.SetAttributes(attribute.String("record.id", id))

	if scanID != nil {
		if _, err := p.scans.Mapped(ctx, *scanID, id); err != nil {
			return nil, spanError(span, fmt.Errorf("mark scan mapped: %w", err))
		}
	}

	return &Confirmation{ID: id, Record: record, ScanID: scanID}, nil
}

func (p *pipeline) recognize(ctx context.Context, req ocr.Request) (*ocr.Result, error) {
	ctx, span := p.tracer.Start(ctx, "ocr.recognize", trace.WithAttributes(
		attribute.String("ocr.provider", p.recognizer.Name()),
		attribute.Int("ocr.bytes", len(req.Data)),
	))
	defer span.End()

	res, err := p.recognizer.Recognize(ctx, req)
	if err != nil {
		p.recognized.Inc(p.recognizer.Name(), "error")
		p.logger.Warn("ocr failed", "provider", p.recognizer.Name(), "error", err)
		return nil, spanError(span, err)
	}

	p.recognized.Inc(p.recognizer.Name(), "ok")
	span.SetAttributes(
		attribute.String("ocr.language", res.Language),
		attribute.Int("ocr.words", len(res.Words)),
	)
	return res, nil
}

func (p *pipeline) draft(ctx context.Context, text string, words []ocr.Word) Draft {
	_, span := p.tracer.Start(ctx, "certificates.classify")
	defer span.End()

	d := NewDraft(text, words)

	kind := string(d.Kind)
	if kind == "" {
		kind = "none"
	}
	p.classified.Inc(kind)
	span.SetAttributes(attribute.String("certificate.kind", kind))
	return d
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
