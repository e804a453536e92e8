// Package source abstracts where documents come from. A Source lists the
// PDF files it holds and fetches each one to a local path for processing.
package source

import "context"

// File identifies one document in a source. ID is source-specific (a
// filesystem path, a Drive file id); Name is the human-facing file name.
type File struct {
	ID   string
	Name string
}

// Source enumerates and materializes documents. Fetch returns a local
// path plus a cleanup func the caller must run once processing is done.
type Source interface {
	Name() string
	List(ctx context.Context) ([]File, error)
	Fetch(ctx context.Context, file File) (path string, cleanup func(), err error)
}
