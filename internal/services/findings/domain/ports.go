package domain

import "context"

// WriterPort persists findings as a scan produces them
type WriterPort interface {
	Write(ctx context.Context, f Finding) error
	WriteBatch(ctx context.Context, xs []Finding) error
	Close() error
}

// ReaderPort lists persisted findings, newest first
type ReaderPort interface {
	List(ctx context.Context, limit, offset int) ([]Finding, error)
}
