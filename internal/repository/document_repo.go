package repository

import "context"

// DocumentRepository stores raw box-score documents keyed by filename.
type DocumentRepository interface {
	// Exists reports whether a document with this name was already saved.
	Exists(ctx context.Context, name string) (bool, error)
	// Save writes a new document. Existing documents are never overwritten.
	Save(ctx context.Context, name, content string) error
	// List returns every stored document name in lexical order.
	List(ctx context.Context) ([]string, error)
	// Read returns the content of a stored document.
	Read(ctx context.Context, name string) (string, error)
}
