package scans

import (
	"net/url"

	"github.com/JaimeStill/stark/pkg/query"
	"github.com/JaimeStill/stark/pkg/repository"
)

var projection = query.
	NewProjectionMap("scans", "s").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("status", "Status").
	Project("kind", "Kind").
	Project("reason", "Reason").
	Project("language", "Language").
	Project("ocr_text", "OCRText").
	Project("record_id", "RecordID").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for scan queries. Status,
// Kind and ContentType match exactly; Filename matches as a
// case-insensitive substring.
type Filters struct {
	Status      *string `json:"status,omitempty"`
	Kind        *string `json:"kind,omitempty"`
	ContentType *string `json:"contentType,omitempty"`
	Filename    *string `json:"filename,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("Kind", f.Kind).
		WhereEquals("ContentType", f.ContentType).
		WhereContains("Filename", f.Filename)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if k := values.Get("kind"); k != "" {
		f.Kind = &k
	}
	if ct := values.Get("contentType"); ct != "" {
		f.ContentType = &ct
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	return f
}

func scanScan(s repository.Scanner) (Scan, error) {
	var sc Scan
	err := s.Scan(
		&sc.ID,
		&sc.Filename,
		&sc.ContentType,
		&sc.SizeBytes,
		&sc.PageCount,
		&sc.StorageKey,
		&sc.Status,
		&sc.Kind,
		&sc.Reason,
		&sc.Language,
		&sc.OCRText,
		&sc.RecordID,
		&sc.UploadedAt,
		&sc.UpdatedAt,
	)
	return sc, err
}
