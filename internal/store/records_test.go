package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"yaomexi/internal/pkg/errors"
)

func testRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRecordStorePutGet(t *testing.T) {
	mr, rdb := testRedis(t)
	s := NewRecordStore(rdb)
	ctx := context.Background()

	fields := map[string]string{"a": "1", "b": "two"}
	if err := s.Put(ctx, "k1", fields, time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got["a"] != "1" || got["b"] != "two" {
		t.Errorf("got %v", got)
	}

	ttl := mr.TTL("k1")
	if ttl != time.Hour {
		t.Errorf("ttl = %v, want %v", ttl, time.Hour)
	}
}

func TestRecordStoreGetMissing(t *testing.T) {
	_, rdb := testRedis(t)
	s := NewRecordStore(rdb)

	got, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty map for missing key, got %v", got)
	}
}

func TestMergeFieldsKeepsTTL(t *testing.T) {
	mr, rdb := testRedis(t)
	s := NewRecordStore(rdb)
	ctx := context.Background()

	if err := s.Put(ctx, "k1", map[string]string{"status": "QUEUED"}, time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	mr.FastForward(30 * time.Minute)

	if err := s.MergeFields(ctx, "k1", map[string]string{"status": "PROCESSING"}); err != nil {
		t.Fatalf("MergeFields: %v", err)
	}

	// A merge must never re-arm the retention window.
	if ttl := mr.TTL("k1"); ttl != 30*time.Minute {
		t.Errorf("ttl = %v, want %v", ttl, 30*time.Minute)
	}

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got["status"] != "PROCESSING" {
		t.Errorf("status = %s", got["status"])
	}
}

func TestMergeFieldsRefusesExpiredKey(t *testing.T) {
	mr, rdb := testRedis(t)
	s := NewRecordStore(rdb)
	ctx := context.Background()

	if err := s.Put(ctx, "k1", map[string]string{"status": "PROCESSING"}, time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	mr.FastForward(time.Hour + time.Second)

	err := s.MergeFields(ctx, "k1", map[string]string{"status": "DONE"})
	if !errors.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	// The merge must not recreate the key as a TTL-less partial hash.
	if mr.Exists("k1") {
		t.Error("merge resurrected an expired key")
	}
}

func TestRecordExpires(t *testing.T) {
	mr, rdb := testRedis(t)
	s := NewRecordStore(rdb)
	ctx := context.Background()

	if err := s.Put(ctx, "k1", map[string]string{"a": "1"}, time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	mr.FastForward(time.Hour + time.Second)

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected expired record to be gone, got %v", got)
	}
}
