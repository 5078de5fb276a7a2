package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/JaimeStill/stark/pkg/formatting"
	"github.com/JaimeStill/stark/pkg/lifecycle"
)

// Snapshot writes an export to <prefix>/<timestamp>.json.
func (r *repo) Snapshot(ctx context.Context) (string, error) {
	b, err := r.Export(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode bundle: %w", err)
	}

	key := path.Join(r.cfg.Prefix, b.ExportedAt.Format("20060102T150405Z")+".json")
	if err := r.storage.Upload(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	r.logger.Info("backup snapshot written", "key", key, "size", formatting.FormatBytes(int64(len(data)), 1))
	return key, nil
}

// Start schedules snapshots on cfg.Schedule. Runs stop when the
// coordinator shuts down.
func (r *repo) Start(lc *lifecycle.Coordinator) error {
	if r.cfg.Schedule == "" {
		return nil
	}

	sched, err := scheduleParser.Parse(r.cfg.Schedule)
	if err != nil {
		return fmt.Errorf("parse schedule: %w", err)
	}

	r.logger.Info("backup snapshots scheduled", "schedule", r.cfg.Schedule, "prefix", r.cfg.Prefix)

	go func() {
		ctx := lc.Context()
		for {
			now := r.now()
			next := sched.Next(now)
			r.logger.Debug("next backup snapshot", "at", next)

			timer := time.NewTimer(next.Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			if _, err := r.Snapshot(ctx); err != nil {
				r.logger.Error("backup snapshot failed", "error", err)
			}
		}
	}()

	return nil
}
