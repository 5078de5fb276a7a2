package scans_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/stark/internal/certificates"
	"github.com/JaimeStill/stark/internal/scans"
	"github.com/JaimeStill/stark/internal/schema/schematest"
	"github.com/JaimeStill/stark/pkg/lifecycle"
	"github.com/JaimeStill/stark/pkg/pagination"
	"github.com/JaimeStill/stark/pkg/storage"
)

var pageCfg = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type memStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	failWrite bool
}

func newMemStore() *memStore { return &memStore{blobs: map[string][]byte{}} }

func (m *memStore) Start(*lifecycle.Coordinator) error { return nil }

func (m *memStore) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	if m.failWrite {
		return errors.New("write failed")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

func (m *memStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", scans.ErrNotFound, http.StatusNotFound},
		{"blob not found", storage.ErrNotFound, http.StatusNotFound},
		{"duplicate", scans.ErrDuplicate, http.StatusConflict},
		{"too large", scans.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"invalid", scans.ErrInvalidFile, http.StatusBadRequest},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scans.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	f := scans.FiltersFromQuery(url.Values{
		"status":   {"recognized"},
		"filename": {"intyg"},
	})

	if f.Status == nil || *f.Status != "recognized" {
		t.Errorf("Status = %v", f.Status)
	}
	if f.Filename == nil || *f.Filename != "intyg" {
		t.Errorf("Filename = %v", f.Filename)
	}
	if f.Kind != nil || f.ContentType != nil {
		t.Error("unset filters should be nil")
	}
}

func TestRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	sys := scans.New(schematest.Open(t), store, discard(), pageCfg)

	s, err := sys.Create(ctx, scans.CreateCommand{
		Data:        pngHeader,
		Filename:    "intyg kurs.png",
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if s.Status != scans.StatusUploaded {
		t.Errorf("Status = %q, want %q", s.Status, scans.StatusUploaded)
	}
	if s.SizeBytes != int64(len(pngHeader)) {
		t.Errorf("SizeBytes = %d", s.SizeBytes)
	}
	if !strings.HasPrefix(s.StorageKey, "scans/"+s.ID.String()+"/") {
		t.Errorf("StorageKey = %q", s.StorageKey)
	}
	if store.count() != 1 {
		t.Fatalf("blobs = %d, want 1", store.count())
	}

	s, err = sys.Recognized(ctx, s.ID, scans.RecognizedCommand{
		Language: "swe",
		Text:     "Intyg för kurs",
		Kind:     certificates.KindKurs2021,
		Reason:   "matched",
	})
	if err != nil {
		t.Fatalf("Recognized: %v", err)
	}
	if s.Status != scans.StatusRecognized || s.Kind != certificates.KindKurs2021 {
		t.Errorf("after Recognized: %+v", s)
	}

	s, err = sys.Mapped(ctx, s.ID, "course-1")
	if err != nil {
		t.Fatalf("Mapped: %v", err)
	}
	if s.Status != scans.StatusMapped || s.RecordID != "course-1" {
		t.Errorf("after Mapped: %+v", s)
	}

	kind := string(certificates.KindKurs2021)
	page, err := sys.List(ctx, pagination.PageRequest{}, scans.Filters{Kind: &kind})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}

	_, body, err := sys.Download(ctx, s.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, _ := io.ReadAll(body)
	body.Close()
	if !bytes.Equal(data, pngHeader) {
		t.Error("downloaded bytes differ from upload")
	}

	if err := sys.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.count() != 0 {
		t.Errorf("blob left behind after delete")
	}
	if _, err := sys.Find(ctx, s.ID); !errors.Is(err, scans.ErrNotFound) {
		t.Errorf("Find after delete = %v, want ErrNotFound", err)
	}
}

func TestCreateUploadFailure(t *testing.T) {
	store := newMemStore()
	store.failWrite = true
	db := schematest.Open(t)
	sys := scans.New(db, store, discard(), pageCfg)

	_, err := sys.Create(context.Background(), scans.CreateCommand{
		Data:        pngHeader,
		Filename:    "a.png",
		ContentType: "image/png",
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM scans").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rows = %d, want 0", n)
	}
}

func TestFindUnknown(t *testing.T) {
	sys := scans.New(schematest.Open(t), newMemStore(), discard(), pageCfg)

	if _, err := sys.Find(context.Background(), uuid.New()); !errors.Is(err, scans.ErrNotFound) {
		t.Errorf("Find() = %v, want ErrNotFound", err)
	}
}

func upload(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/scans", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandlerUpload(t *testing.T) {
	sys := scans.New(schematest.Open(t), newMemStore(), discard(), pageCfg)
	h := sys.Handler(1 << 20)

	tests := []struct {
		name     string
		filename string
		data     []byte
		want     int
	}{
		{"png", "intyg.png", pngHeader, http.StatusCreated},
		{"text file", "notes.txt", []byte("plain text"), http.StatusBadRequest},
		{"empty", "empty.png", nil, http.StatusBadRequest},
		{"too large", "big.png", append(pngHeader, make([]byte, 1<<20)...), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Upload(rec, upload(t, tt.filename, tt.data))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandlerDownload(t *testing.T) {
	sys := scans.New(schematest.Open(t), newMemStore(), discard(), pageCfg)
	h := sys.Handler(1 << 20)

	s, err := sys.Create(context.Background(), scans.CreateCommand{
		Data:        pngHeader,
		Filename:    "intyg.png",
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/scans/"+s.ID.String()+"/download", nil)
	req.SetPathValue("id", s.ID.String())
	rec := httptest.NewRecorder()
	h.Download(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), pngHeader) {
		t.Error("body differs from upload")
	}

	req = httptest.NewRequest(http.MethodGet, "/scans/nope/download", nil)
	req.SetPathValue("id", "nope")
	rec = httptest.NewRecorder()
	h.Download(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}
