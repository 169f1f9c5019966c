package interfaces

import "context"

type StorageService interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
}

// WorkbookSnapshotter keeps a copy of the results workbook before it is rewritten
type WorkbookSnapshotter interface {
	Snapshot(ctx context.Context, path string) error
}
