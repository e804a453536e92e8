// Package index provides the full-text keyword index that complements the
// vector store for lexical recall. It wraps bleve; documents are chunk
// records keyed by chunk ID.
package index

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Entry is what gets indexed per chunk.
type Entry struct {
	ID         string
	DocumentID string
	FileName   string
	Text       string
}

// Hit is a keyword search result. Scores are bleve's tf-idf style scores,
// normalized by the caller if needed.
type Hit struct {
	ID    string
	Score float64
}

// Keyword is a bleve-backed keyword index.
type Keyword struct {
	idx bleve.Index
}

type keywordDoc struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	Text       string `json:"text"`
}

func indexMapping() *mapping.IndexMappingImpl {
	docMapping := bleve.NewDocumentMapping()

	idField := bleve.NewTextFieldMapping()
	idField.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("document_id", idField)

	textField := bleve.NewTextFieldMapping()
	docMapping.AddFieldMappingsAt("text", textField)
	docMapping.AddFieldMappingsAt("file_name", textField)

	mapping := bleve.NewIndexMapping()
	mapping.DefaultMapping = docMapping
	return mapping
}

// OpenKeyword opens (creating if needed) a keyword index at path. An empty
// path yields an in-memory index.
func OpenKeyword(path string) (*Keyword, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(indexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory keyword index: %w", err)
		}
		return &Keyword{idx: idx}, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		idx, err := bleve.New(path, indexMapping())
		if err != nil {
			return nil, fmt.Errorf("create keyword index: %w", err)
		}
		return &Keyword{idx: idx}, nil
	}

	idx, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyword index: %w", err)
	}
	return &Keyword{idx: idx}, nil
}

// Index adds entries in one batch.
func (k *Keyword) Index(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := k.idx.NewBatch()
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("index: entry ID must be set")
		}
		doc := keywordDoc{DocumentID: e.DocumentID, FileName: e.FileName, Text: e.Text}
		if err := batch.Index(e.ID, doc); err != nil {
			return fmt.Errorf("batch index %s: %w", e.ID, err)
		}
	}
	if err := k.idx.Batch(batch); err != nil {
		return fmt.Errorf("apply index batch: %w", err)
	}
	return nil
}

// Search returns up to limit keyword hits for the query, best first.
// An empty index or a query matching nothing returns an empty slice.
func (k *Keyword) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if limit <= 0 || query == "" {
		return nil, nil
	}
	q := bleve.NewMatchQuery(query)
	q.SetField("text")
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)

	res, err := k.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// DeleteByDocument removes every entry of one document.
func (k *Keyword) DeleteByDocument(ctx context.Context, documentID string) error {
	q := bleve.NewTermQuery(documentID)
	q.SetField("document_id")

	// Page through matches; each pass deletes what the previous one found.
	for {
		req := bleve.NewSearchRequestOptions(q, 500, 0, false)
		res, err := k.idx.SearchInContext(ctx, req)
		if err != nil {
			return fmt.Errorf("find document entries: %w", err)
		}
		if len(res.Hits) == 0 {
			return nil
		}
		batch := k.idx.NewBatch()
		for _, h := range res.Hits {
			batch.Delete(h.ID)
		}
		if err := k.idx.Batch(batch); err != nil {
			return fmt.Errorf("delete document entries: %w", err)
		}
	}
}

// Count returns the number of indexed entries.
func (k *Keyword) Count() (uint64, error) {
	return k.idx.DocCount()
}

// Close releases the underlying index.
func (k *Keyword) Close() error {
	return k.idx.Close()
}
