package main

import (
	"context"
	"fmt"
	"os"

	"vero/internal/embed"
	"vero/internal/index"
	"vero/internal/vectorstore"
)

// main exercises the critical embedded dependencies without any network or
// filesystem state; the container build runs it to fail fast when the
// SQLite driver or the keyword index cannot initialize.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "selfcheck failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("selfcheck ok: sqlite, bleve and embedding paths are functional")
}

func run() error {
	ctx := context.Background()

	store, err := vectorstore.Open(":memory:")
	if err != nil {
		return fmt.Errorf("open in-memory vector store: %w", err)
	}
	defer store.Close()

	embedder := embed.NewLocal()
	vecs, err := embedder.Embed(ctx, []string{"selfcheck probe document"})
	if err != nil {
		return fmt.Errorf("embed probe text: %w", err)
	}

	if err := store.Add(ctx, []vectorstore.Chunk{{
		ID:         "selfcheck:0",
		DocumentID: "selfcheck",
		Text:       "selfcheck probe document",
		FileName:   "selfcheck.pdf",
		Embedding:  vecs[0],
	}}); err != nil {
		return fmt.Errorf("write probe chunk: %w", err)
	}
	results, err := store.Search(ctx, vecs[0], 1)
	if err != nil {
		return fmt.Errorf("search probe chunk: %w", err)
	}
	if len(results) != 1 || results[0].Chunk.ID != "selfcheck:0" {
		return fmt.Errorf("probe chunk not found in search results")
	}

	blob, err := vectorstore.EncodeEmbedding(vecs[0])
	if err != nil {
		return fmt.Errorf("encode embedding blob: %w", err)
	}
	decoded, err := vectorstore.DecodeEmbedding(blob)
	if err != nil {
		return fmt.Errorf("decode embedding blob: %w", err)
	}
	if len(decoded) != len(vecs[0]) {
		return fmt.Errorf("embedding codec round trip changed dimension: %d != %d", len(decoded), len(vecs[0]))
	}

	kw, err := index.OpenKeyword("")
	if err != nil {
		return fmt.Errorf("open in-memory keyword index: %w", err)
	}
	defer kw.Close()
	if err := kw.Index([]index.Entry{{ID: "selfcheck:0", DocumentID: "selfcheck", Text: "probe document"}}); err != nil {
		return fmt.Errorf("index probe entry: %w", err)
	}
	hits, err := kw.Search(ctx, "probe", 1)
	if err != nil {
		return fmt.Errorf("search keyword index: %w", err)
	}
	if len(hits) != 1 {
		return fmt.Errorf("probe entry not found in keyword index")
	}
	return nil
}
