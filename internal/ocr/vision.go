package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/JaimeStill/stark/pkg/lifecycle"
)

// Vision takes BCP-47 hints rather than OCR.space codes.
var visionHints = map[string]string{
	"eng": "en", "swe": "sv", "dan": "da", "nor": "no",
	"fin": "fi", "ger": "de", "fre": "fr", "spa": "es",
	"ita": "it", "por": "pt", "pol": "pl", "dut": "nl",
}

// VisionRecognizer runs document text detection on Google Cloud Vision.
type VisionRecognizer struct {
	client *vision.ImageAnnotatorClient
	logger *slog.Logger
}

// NewVision creates a Recognizer backed by Google Cloud Vision document
// text detection.
func NewVision(ctx context.Context, cfg *Config, logger *slog.Logger) (*VisionRecognizer, error) {
	var opts []option.ClientOption
	if cfg.Vision.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Vision.CredentialsFile))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	return &VisionRecognizer{
		client: client,
		logger: logger.With("system", "ocr", "provider", ProviderVision),
	}, nil
}

func (v *VisionRecognizer) Name() string { return ProviderVision }

// Start closes the client on shutdown.
func (v *VisionRecognizer) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := v.client.Close(); err != nil {
			v.logger.Error("vision client close failed", "error", err)
		}
	})
	return nil
}

// Recognize annotates images directly and the first page of PDFs through
// the synchronous file endpoint.
func (v *VisionRecognizer) Recognize(ctx context.Context, req Request) (*Result, error) {
	if len(req.Data) == 0 {
		return nil, ErrEmptyFile
	}

	lang := NormalizeLanguage(req.Language)
	features := []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}}
	imageCtx := &visionpb.ImageContext{LanguageHints: []string{visionHints[lang]}}

	var annotation *visionpb.AnnotateImageResponse

	if IsPDF(req.Filename, req.ContentType) {
		resp, err := v.client.BatchAnnotateFiles(ctx, &visionpb.BatchAnnotateFilesRequest{
			Requests: []*visionpb.AnnotateFileRequest{{
				InputConfig:  &visionpb.InputConfig{Content: req.Data, MimeType: "application/pdf"},
				Features:     features,
				ImageContext: imageCtx,
				Pages:        []int32{1},
			}},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		if len(resp.GetResponses()) > 0 && len(resp.GetResponses()[0].GetResponses()) > 0 {
			annotation = resp.GetResponses()[0].GetResponses()[0]
		}
	} else {
		resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
			Requests: []*visionpb.AnnotateImageRequest{{
				Image:        &visionpb.Image{Content: req.Data},
				Features:     features,
				ImageContext: imageCtx,
			}},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		if len(resp.GetResponses()) > 0 {
			annotation = resp.GetResponses()[0]
		}
	}

	if annotation == nil {
		return &Result{Language: lang}, nil
	}
	if e := annotation.GetError(); e != nil && e.GetMessage() != "" {
		// google.rpc.Code 7 is PERMISSION_DENIED.
		if e.GetCode() == 7 {
			return nil, fmt.Errorf("%w: %s", ErrForbidden, e.GetMessage())
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstream, e.GetMessage())
	}

	return fromAnnotation(annotation.GetFullTextAnnotation(), lang), nil
}

func fromAnnotation(fta *visionpb.TextAnnotation, lang string) *Result {
	out := &Result{Language: lang}
	if fta == nil {
		return out
	}
	out.Text = strings.TrimSpace(fta.GetText())

	pages := fta.GetPages()
	if len(pages) == 0 {
		return out
	}
	page := pages[0]
	out.Width = int(page.GetWidth())
	out.Height = int(page.GetHeight())

	for _, block := range page.GetBlocks() {
		for _, para := range block.GetParagraphs() {
			for _, word := range para.GetWords() {
				var sb strings.Builder
				for _, sym := range word.GetSymbols() {
					sb.WriteString(sym.GetText())
				}
				if sb.Len() == 0 {
					continue
				}
				x1, y1, x2, y2, ok := bounds(word.GetBoundingBox(), out.Width, out.Height)
				if !ok {
					continue
				}
				out.Words = append(out.Words, Word{Text: sb.String(), X1: x1, Y1: y1, X2: x2, Y2: y2})
			}
		}
	}
	return out
}

// bounds reduces a polygon to its axis-aligned box. Normalized vertices are
// scaled to the page size.
func bounds(poly *visionpb.BoundingPoly, width, height int) (x1, y1, x2, y2 float64, ok bool) {
	var pts [][2]float64
	for _, v := range poly.GetVertices() {
		pts = append(pts, [2]float64{float64(v.GetX()), float64(v.GetY())})
	}
	if len(pts) == 0 {
		for _, v := range poly.GetNormalizedVertices() {
			pts = append(pts, [2]float64{float64(v.GetX()) * float64(width), float64(v.GetY()) * float64(height)})
		}
	}
	if len(pts) == 0 {
		return 0, 0, 0, 0, false
	}

	x1, y1 = pts[0][0], pts[0][1]
	x2, y2 = x1, y1
	for _, p := range pts[1:] {
		x1, y1 = min(x1, p[0]), min(y1, p[1])
		x2, y2 = max(x2, p[0]), max(y2, p[1])
	}
	return x1, y1, x2, y2, true
}
