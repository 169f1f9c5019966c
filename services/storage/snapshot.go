package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/DanishNadar/ttp-tracker/interfaces"
	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Snapshotter uploads a timestamped copy of a workbook
type Snapshotter struct {
	storage interfaces.StorageService
	prefix  string
	log     logger.Logger
	now     func() time.Time
}

func NewSnapshotter(storage interfaces.StorageService, prefix string, log logger.Logger) *Snapshotter {
	return &Snapshotter{
		storage: storage,
		prefix:  strings.Trim(prefix, "/"),
		log:     log,
		now:     time.Now,
	}
}

func (s *Snapshotter) Snapshot(ctx context.Context, path string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Snapshotter.Snapshot")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	data, err := os.ReadFile(path)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "read workbook %s", path)
	}

	key := s.snapshotKey(path)
	if err := s.storage.Upload(ctx, key, data, xlsxContentType); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "upload snapshot %s", key)
	}

	s.log.Infof("Uploaded workbook snapshot %s", key)
	return nil
}

// Restore downloads a snapshot key and writes it to path
func (s *Snapshotter) Restore(ctx context.Context, key, path string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Snapshotter.Restore")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("key", key)

	data, err := s.storage.Download(ctx, key)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "download snapshot %s", key)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "write workbook %s", path)
	}

	s.log.Infof("Restored %s from snapshot %s", path, key)
	return nil
}

func (s *Snapshotter) snapshotKey(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	key := name + "/" + s.now().UTC().Format("20060102T150405Z") + ext
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	return key
}

type NoopSnapshotter struct{}

func (NoopSnapshotter) Snapshot(context.Context, string) error {
	return nil
}
