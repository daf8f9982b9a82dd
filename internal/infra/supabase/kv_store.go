package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boddenberg/controletok-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultTable is the PostgREST table holding the key-value rows:
//
//	create table controletok_kv (key text primary key, value text not null, updated_at timestamptz default now());
const DefaultTable = "controletok_kv"

// KVStore keeps each key as one row of a Supabase table.
type KVStore struct {
	client *Client
	table  string
}

type kvRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewKVStore returns a KV store over table (DefaultTable when empty).
func NewKVStore(client *Client, table string) *KVStore {
	if table == "" {
		table = DefaultTable
	}
	return &KVStore{client: client, table: table}
}

func (s *KVStore) filter(key string) string {
	return fmt.Sprintf("%s?key=eq.%s", s.table, url.QueryEscape(key))
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := tracer.Start(ctx, "Supabase.Get")
	defer span.End()
	span.SetAttributes(attribute.String("kv.key", key))

	body, err := s.client.do(ctx, http.MethodGet, s.filter(key)+"&select=key,value&limit=1", nil, "")
	if err != nil {
		return nil, false, &domain.ErrExternalService{Service: "supabase/kv", Err: err}
	}

	var rows []kvRow
	if len(body) > 0 {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, false, fmt.Errorf("decode kv row: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return []byte(rows[0].Value), true, nil
}

// Set upserts the row for key.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := tracer.Start(ctx, "Supabase.Set")
	defer span.End()
	span.SetAttributes(attribute.String("kv.key", key), attribute.Int("kv.size", len(value)))

	body, err := json.Marshal([]kvRow{{Key: key, Value: string(value)}})
	if err != nil {
		return fmt.Errorf("encode kv row: %w", err)
	}
	path := s.table + "?on_conflict=key"
	if _, err := s.client.do(ctx, http.MethodPost, path, body, "resolution=merge-duplicates,return=minimal"); err != nil {
		return &domain.ErrExternalService{Service: "supabase/kv", Err: err}
	}
	return nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "Supabase.Remove")
	defer span.End()
	span.SetAttributes(attribute.String("kv.key", key))

	if _, err := s.client.do(ctx, http.MethodDelete, s.filter(key), nil, "return=minimal"); err != nil {
		return &domain.ErrExternalService{Service: "supabase/kv", Err: err}
	}
	return nil
}

// Ping checks that the table is reachable.
func (s *KVStore) Ping(ctx context.Context) error {
	_, err := s.client.do(ctx, http.MethodGet, s.table+"?select=key&limit=1", nil, "")
	return err
}
