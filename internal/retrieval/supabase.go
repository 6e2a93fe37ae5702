package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bkkguide/bkkguide/internal/corpus"
)

var _ VectorStore = (*SupabaseStore)(nil)

const (
	defaultSupabaseTable = "documents"
	defaultMatchFunction = "match_documents"
)

// SupabaseStore stores documents in a Supabase (PostgREST + pgvector) table
// and searches through a SQL similarity function exposed as an RPC. The
// function takes (query_embedding, match_count, filter) and returns rows of
// (id, content, metadata, similarity), best first.
type SupabaseStore struct {
	baseURL       string
	serviceKey    string
	table         string
	matchFunction string
	httpClient    *http.Client
}

// NewSupabaseStore creates a store for the project at baseURL
// (e.g. https://xyz.supabase.co). Empty table or matchFunction select
// "documents" and "match_documents".
func NewSupabaseStore(baseURL, serviceKey, table, matchFunction string) *SupabaseStore {
	if table == "" {
		table = defaultSupabaseTable
	}
	if matchFunction == "" {
		matchFunction = defaultMatchFunction
	}
	return &SupabaseStore{
		baseURL:       strings.TrimRight(baseURL, "/"),
		serviceKey:    serviceKey,
		table:         table,
		matchFunction: matchFunction,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type supabaseRow struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	Metadata  corpus.Metadata `json:"metadata"`
	Embedding []float32       `json:"embedding,omitempty"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
}

type matchRequest struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	MatchCount     int       `json:"match_count"`
	Filter         Filter    `json:"filter"`
}

type matchRow struct {
	ID         string          `json:"id"`
	Content    string          `json:"content"`
	Metadata   corpus.Metadata `json:"metadata"`
	Similarity float64         `json:"similarity"`
}

// Upsert merges records into the table keyed by id.
func (s *SupabaseStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]supabaseRow, len(records))
	for i, r := range records {
		if r.ID == "" {
			return fmt.Errorf("upserting record: empty id")
		}
		rows[i] = supabaseRow{ID: r.ID, Content: r.Content, Metadata: r.Metadata, Embedding: r.Embedding}
	}

	q := url.Values{"on_conflict": {"id"}}
	resp, err := s.do(ctx, http.MethodPost, "/rest/v1/"+s.table+"?"+q.Encode(), rows,
		map[string]string{"Prefer": "resolution=merge-duplicates,return=minimal"})
	if err != nil {
		return fmt.Errorf("upserting %d records: %w", len(records), err)
	}
	resp.Body.Close()
	return nil
}

// Search calls the similarity RPC. An empty filter is sent as {}.
func (s *SupabaseStore) Search(ctx context.Context, vector []float32, k int, filter Filter) ([]ScoredRecord, error) {
	if k <= 0 {
		return nil, nil
	}
	if filter == nil {
		filter = Filter{}
	}
	resp, err := s.do(ctx, http.MethodPost, "/rest/v1/rpc/"+s.matchFunction,
		matchRequest{QueryEmbedding: vector, MatchCount: k, Filter: filter}, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer resp.Body.Close()

	var rows []matchRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	results := make([]ScoredRecord, 0, len(rows))
	for _, r := range rows {
		results = append(results, ScoredRecord{
			Record: Record{ID: r.ID, Content: r.Content, Metadata: r.Metadata},
			Score:  float32(r.Similarity),
		})
	}
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// GetByIDs fetches rows with id in ids. Embeddings are not transferred.
func (s *SupabaseStore) GetByIDs(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}
	q := url.Values{
		"select": {"id,content,metadata,created_at"},
		"id":     {"in.(" + strings.Join(quoted, ",") + ")"},
	}
	resp, err := s.do(ctx, http.MethodGet, "/rest/v1/"+s.table+"?"+q.Encode(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying by IDs: %w", err)
	}
	defer resp.Body.Close()

	var rows []supabaseRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decoding rows: %w", err)
	}
	records := make([]Record, len(rows))
	for i, r := range rows {
		records[i] = Record{ID: r.ID, Content: r.Content, Metadata: r.Metadata}
		if r.CreatedAt != nil {
			records[i].CreatedAt = *r.CreatedAt
		}
	}
	return records, nil
}

// Count asks PostgREST for an exact row count via the Content-Range header.
func (s *SupabaseStore) Count(ctx context.Context) (int, error) {
	q := url.Values{"select": {"id"}, "limit": {"1"}}
	resp, err := s.do(ctx, http.MethodGet, "/rest/v1/"+s.table+"?"+q.Encode(), nil,
		map[string]string{"Prefer": "count=exact"})
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	resp.Body.Close()
	return parseContentRangeTotal(resp.Header.Get("Content-Range"))
}

// parseContentRangeTotal extracts the total from "0-0/42" or "*/0".
func parseContentRangeTotal(v string) (int, error) {
	_, total, ok := strings.Cut(v, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("missing total in Content-Range %q", v)
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("parsing Content-Range %q: %w", v, err)
	}
	return n, nil
}

// do sends a request and returns the response when the status is 2xx. The
// caller closes the body.
func (s *SupabaseStore) do(ctx context.Context, method, path string, body any, headers map[string]string) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("supabase: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}
