package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/voxeterna/blog-api/internal/models"
)

// BlogDoc is the search projection of a blog; bodies are indexed but photos
// and credentials never reach the index.
type BlogDoc struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Excerpt  string `json:"excerpt"`
	Body     string `json:"body"`
	Author   string `json:"author"`
	MetaDesc string `json:"mdesc"`
}

func docFromBlog(b *models.Blog) BlogDoc {
	return BlogDoc{
		ID:       b.ID,
		Title:    b.Title,
		Slug:     b.Slug,
		Excerpt:  b.Excerpt,
		Body:     b.Body,
		Author:   b.PostedBy.Name,
		MetaDesc: b.MetaDesc,
	}
}

func IndexBlog(ctx context.Context, es *elasticsearch.Client, index string, b *models.Blog) error {
	doc := docFromBlog(b)
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("index blog: %w", err)
	}

	res, err := es.Index(index, &buf,
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(strconv.FormatUint(uint64(b.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index blog: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index blog: %s", res.Status())
	}
	return nil
}

func DeleteBlog(ctx context.Context, es *elasticsearch.Client, index string, id uint) error {
	res, err := es.Delete(index, strconv.FormatUint(uint64(id), 10), es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete blog doc: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete blog doc: %s", res.Status())
	}
	return nil
}

func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []BlogDoc, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "body", "excerpt"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 }      `json:"total"`
			Hits  []struct{ Source BlogDoc } `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	docs := make([]BlogDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}
