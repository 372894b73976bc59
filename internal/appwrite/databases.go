package appwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Query is a single document filter, serialized into the queries[] parameter.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// Equal filters documents whose attribute exactly matches one of the values.
func Equal(attribute string, values ...any) Query {
	return Query{Method: "equal", Attribute: attribute, Values: values}
}

// Limit caps the number of returned documents.
func Limit(n int) Query {
	return Query{Method: "limit", Values: []any{n}}
}

// DocumentList is a page of documents from a collection.
type DocumentList struct {
	Total     int64             `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

// DatabaseReader exposes read-only document queries. It is the only database
// capability a session handle carries.
type DatabaseReader struct {
	c *Client
}

// ListDocuments queries a collection with exact-match filters.
func (r *DatabaseReader) ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...Query) (DocumentList, error) {
	params := url.Values{}
	for _, q := range queries {
		encoded, err := json.Marshal(q)
		if err != nil {
			return DocumentList{}, fmt.Errorf("encode query: %w", err)
		}
		params.Add("queries[]", string(encoded))
	}

	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)
	var list DocumentList
	if err := r.c.call(ctx, http.MethodGet, path, params, nil, &list); err != nil {
		return DocumentList{}, fmt.Errorf("list documents: %w", err)
	}
	return list, nil
}

// DatabaseService adds writes on top of the reader; admin handles only.
type DatabaseService struct {
	DatabaseReader
}

// CreateDocument inserts a document under the given ID. Uniqueness of data
// fields is not enforced here; callers pre-check their own invariants.
func (s *DatabaseService) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)
	body := map[string]any{"documentId": documentID, "data": data}
	var doc json.RawMessage
	if err := s.c.call(ctx, http.MethodPost, path, nil, body, &doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}
