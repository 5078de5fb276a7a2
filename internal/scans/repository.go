package scans

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JaimeStill/stark/pkg/pagination"
	"github.com/JaimeStill/stark/pkg/query"
	"github.com/JaimeStill/stark/pkg/repository"
	"github.com/JaimeStill/stark/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a scan repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "scans"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Scan], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "OCRText")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count scans: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanScan)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Scan, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanScan)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

// Create uploads the blob first and removes it again if the row cannot be
// written.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Scan, error) {
	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload scan blob: %w", err)
	}

	q := `
		INSERT INTO scans(id, filename, content_type, size_bytes, page_count, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, filename, content_type, size_bytes, page_count, storage_key, status,
			kind, reason, language, ocr_text, record_id, uploaded_at, updated_at`

	insertArgs := []any{
		id,
		cmd.Filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		cmd.PageCount,
		key,
	}

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Scan, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanScan)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("scan created", "id", s.ID, "filename", s.Filename)
	return &s, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	s, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM scans WHERE id = $1", id); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, s.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", s.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("scan deleted", "id", id)
	return nil
}

func (r *repo) Download(ctx context.Context, id uuid.UUID) (*Scan, io.ReadCloser, error) {
	s, err := r.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	body, err := r.storage.Download(ctx, s.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("download scan blob: %w", err)
	}
	return s, body, nil
}

func (r *repo) Recognized(ctx context.Context, id uuid.UUID, cmd RecognizedCommand) (*Scan, error) {
	q := `
		UPDATE scans SET
			status = $1, language = $2, ocr_text = $3, kind = $4, reason = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $6`

	err := repository.ExecExpectOne(
		ctx, r.db, q,
		StatusRecognized, cmd.Language, cmd.Text, string(cmd.Kind), cmd.Reason, id,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("scan recognized", "id", id, "kind", cmd.Kind)
	return r.Find(ctx, id)
}

func (r *repo) Mapped(ctx context.Context, id uuid.UUID, recordID string) (*Scan, error) {
	q := `
		UPDATE scans SET status = $1, record_id = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`

	if err := repository.ExecExpectOne(ctx, r.db, q, StatusMapped, recordID, id); err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("scan mapped", "id", id, "record_id", recordID)
	return r.Find(ctx, id)
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("scans/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		name = "scan"
	}
	return url.PathEscape(name)
}
