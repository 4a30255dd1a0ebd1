package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// stubProvider scripts Query and Scan; QueryFallback touches nothing else.
type stubProvider struct {
	queryRecs []Record
	queryErr  error
	scanRecs  []Record
	scans     int
}

func (s *stubProvider) Query(ctx context.Context, table string, q Query) ([]Record, error) {
	return s.queryRecs, s.queryErr
}

func (s *stubProvider) Scan(ctx context.Context, table string, filter map[string]any) ([]Record, error) {
	s.scans++
	return s.scanRecs, nil
}

func (s *stubProvider) Get(ctx context.Context, table, id string) (Record, error) {
	return nil, ErrNotFound
}

func (s *stubProvider) Put(ctx context.Context, table string, rec Record) error { return nil }

func (s *stubProvider) Update(ctx context.Context, table, id string, fields map[string]any) (Record, error) {
	return nil, ErrNotFound
}

func (s *stubProvider) Delete(ctx context.Context, table, id string) error { return nil }

func (s *stubProvider) Transact(ctx context.Context, ops []Op) error { return nil }

func (s *stubProvider) Close() error { return nil }

func TestQueryFallbackPrefersIndex(t *testing.T) {
	p := &stubProvider{queryRecs: []Record{{FieldID: "a"}}}

	recs, err := QueryFallback(context.Background(), p, TablePicks, Query{
		Index: IndexPicksByUser,
		Key:   map[string]any{"user_id": "a"},
	})
	if err != nil {
		t.Fatalf("QueryFallback: %v", err)
	}
	if len(recs) != 1 || recs[0].String(FieldID) != "a" {
		t.Errorf("records = %v, want the indexed result", recs)
	}
	if p.scans != 0 {
		t.Errorf("scans = %d, want 0 when the index answers", p.scans)
	}
}

func TestQueryFallbackScansOnMissingIndex(t *testing.T) {
	p := &stubProvider{
		queryErr: fmt.Errorf("missing table or index: %w", ErrIndexNotFound),
		scanRecs: []Record{{FieldID: "b"}},
	}

	recs, err := QueryFallback(context.Background(), p, TablePicks, Query{
		Index: IndexPicksByUser,
		Key:   map[string]any{"user_id": "b"},
	})
	if err != nil {
		t.Fatalf("QueryFallback: %v", err)
	}
	if len(recs) != 1 || recs[0].String(FieldID) != "b" {
		t.Errorf("records = %v, want the scan result", recs)
	}
	if p.scans != 1 {
		t.Errorf("scans = %d, want 1", p.scans)
	}
}

func TestQueryFallbackPropagatesOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	p := &stubProvider{queryErr: boom}

	_, err := QueryFallback(context.Background(), p, TablePicks, Query{
		Index: IndexPicksByUser,
		Key:   map[string]any{"user_id": "c"},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the query error", err)
	}
	if p.scans != 0 {
		t.Errorf("scans = %d, want no fallback on unrelated errors", p.scans)
	}
}
