package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// DefaultOCRSpaceEndpoint is the public OCR.space parse endpoint.
const DefaultOCRSpaceEndpoint = "https://api.ocr.space/parse/image"

type ocrSpace struct {
	client   *http.Client
	endpoint string
	apiKey   string
	logger   *slog.Logger
}

// NewOCRSpace creates a Recognizer backed by the OCR.space REST API.
func NewOCRSpace(cfg *Config, client *http.Client, logger *slog.Logger) Recognizer {
	if client == nil {
		client = &http.Client{Timeout: cfg.TimeoutDuration()}
	}
	return &ocrSpace{
		client:   client,
		endpoint: cfg.Endpoint,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		logger:   logger.With("system", "ocr", "provider", ProviderOCRSpace),
	}
}

func (o *ocrSpace) Name() string { return ProviderOCRSpace }

// Recognize posts the file once in the requested language. A language
// rejection is retried exactly once in English.
func (o *ocrSpace) Recognize(ctx context.Context, req Request) (*Result, error) {
	if o.apiKey == "" {
		return nil, ErrMissingKey
	}

	lang := NormalizeLanguage(req.Language)

	status, payload, err := o.call(ctx, req, lang)
	if err != nil {
		return nil, err
	}

	msg := payload.errorMessage()
	if (status != http.StatusOK || msg != "") && isLanguageError(msg) && lang != DefaultLanguage {
		o.logger.Warn("language rejected, retrying", "language", lang, "error", msg)
		lang = DefaultLanguage
		if status, payload, err = o.call(ctx, req, lang); err != nil {
			return nil, err
		}
		msg = payload.errorMessage()
	}

	if status != http.StatusOK {
		if status == http.StatusForbidden {
			if msg == "" {
				return nil, ErrForbidden
			}
			return nil, fmt.Errorf("%w: %s", ErrForbidden, msg)
		}
		if msg == "" {
			msg = fmt.Sprintf("status %d", status)
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstream, msg)
	}
	if msg != "" {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, msg)
	}

	return payload.result(lang), nil
}

func (o *ocrSpace) call(ctx context.Context, req Request, lang string) (int, *ocrSpaceResponse, error) {
	body, contentType, err := o.form(req, lang)
	if err != nil {
		return 0, nil, fmt.Errorf("build ocr form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create ocr request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %w", ErrUpstream, err)
	}

	// A non-JSON body leaves the payload empty and the status decides.
	payload := &ocrSpaceResponse{}
	_ = json.Unmarshal(data, payload)

	return resp.StatusCode, payload, nil
}

func (o *ocrSpace) form(req Request, lang string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"apikey", o.apiKey},
		{"language", lang},
		{"isOverlayRequired", "true"},
		{"detectOrientation", "true"},
		{"scale", "true"},
		{"OCREngine", "2"},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	filename := req.Filename
	if filename == "" {
		filename = "upload.jpg"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if req.ContentType != "" {
		h.Set("Content-Type", req.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func isLanguageError(msg string) bool {
	return strings.Contains(msg, "E201") || strings.Contains(strings.ToLower(msg), "language")
}

type ocrSpaceWord struct {
	WordText string  `json:"WordText"`
	Left     float64 `json:"Left"`
	Top      float64 `json:"Top"`
	Width    float64 `json:"Width"`
	Height   float64 `json:"Height"`
}

type ocrSpaceParsed struct {
	ParsedText  string `json:"ParsedText"`
	TextOverlay struct {
		Lines []struct {
			Words []ocrSpaceWord `json:"Words"`
		} `json:"Lines"`
	} `json:"TextOverlay"`
	ImageWidth  *float64 `json:"ImageWidth"`
	ImageHeight *float64 `json:"ImageHeight"`
}

type ocrSpaceResponse struct {
	ParsedResults []ocrSpaceParsed `json:"ParsedResults"`
	ErrorMessage  json.RawMessage  `json:"ErrorMessage"`
}

// errorMessage flattens ErrorMessage, which is either a string or a list.
func (r *ocrSpaceResponse) errorMessage() string {
	if r == nil || len(r.ErrorMessage) == 0 {
		return ""
	}

	var list []string
	if err := json.Unmarshal(r.ErrorMessage, &list); err == nil {
		return strings.Join(list, ", ")
	}
	var s string
	if err := json.Unmarshal(r.ErrorMessage, &s); err == nil {
		return s
	}
	return string(r.ErrorMessage)
}

func (r *ocrSpaceResponse) result(lang string) *Result {
	out := &Result{Language: lang}
	if len(r.ParsedResults) == 0 {
		return out
	}

	parsed := r.ParsedResults[0]
	out.Text = strings.TrimSpace(parsed.ParsedText)
	if parsed.ImageWidth != nil {
		out.Width = int(*parsed.ImageWidth)
	}
	if parsed.ImageHeight != nil {
		out.Height = int(*parsed.ImageHeight)
	}

	for _, line := range parsed.TextOverlay.Lines {
		for _, w := range line.Words {
			if w.WordText == "" {
				continue
			}
			out.Words = append(out.Words, Word{
				Text: w.WordText,
				X1:   w.Left,
				Y1:   w.Top,
				X2:   w.Left + w.Width,
				Y2:   w.Top + w.Height,
			})
		}
	}
	return out
}
