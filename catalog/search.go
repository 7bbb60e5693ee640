package catalog

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/jonwraymond/toolwire/codec"
)

// Index is a full-text index over cataloged tools. Each tool is indexed as
// its own document so a query lands on the specific operation, not just the
// program.
type Index struct {
	idx bleve.Index
}

// NewIndex creates an in-memory search index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("catalog: create index: %w", err)
	}
	return &Index{idx: idx}, nil
}

// Hit is one search result.
type Hit struct {
	Program string  `json:"program"`
	Tool    string  `json:"tool"`
	Score   float64 `json:"score"`
}

// Add indexes every tool in the entry's schema. Re-adding an entry replaces
// its previous tools under the same document IDs.
func (ix *Index) Add(entry Entry) error {
	doc, err := entry.Document()
	if err != nil {
		return err
	}
	for _, tool := range doc.Tools {
		id := entry.Program + "\x00" + tool.Name
		fields := map[string]any{
			"program":     entry.Program,
			"schema":      doc.Name,
			"tool":        tool.Name,
			"description": tool.Description,
		}
		if err := ix.idx.Index(id, fields); err != nil {
			return fmt.Errorf("catalog: index %q: %w", tool.Name, err)
		}
	}
	return nil
}

// Remove drops every tool of a program from the index.
func (ix *Index) Remove(program string, doc *codec.Document) error {
	for _, tool := range doc.Tools {
		if err := ix.idx.Delete(program + "\x00" + tool.Name); err != nil {
			return fmt.Errorf("catalog: deindex %q: %w", tool.Name, err)
		}
	}
	return nil
}

// Search runs a match query across tool names, schema names, and
// descriptions, returning up to limit hits ordered by score.
func (ix *Index) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	req.Fields = []string{"program", "tool"}

	res, err := ix.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: search %q: %w", query, err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, match := range res.Hits {
		hit := Hit{Score: match.Score}
		if v, ok := match.Fields["program"].(string); ok {
			hit.Program = v
		}
		if v, ok := match.Fields["tool"].(string); ok {
			hit.Tool = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases index resources.
func (ix *Index) Close() error {
	return ix.idx.Close()
}
