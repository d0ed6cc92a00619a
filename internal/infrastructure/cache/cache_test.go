package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
)

func TestMemoryStoreExpiration(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if err := store.Set(ctx, "live", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "dead", "v", -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	if v, ok, _ := store.Get(ctx, "live"); !ok || v != "v" {
		t.Fatalf("expected live value, got %q %v", v, ok)
	}
	if _, ok, _ := store.Get(ctx, "dead"); ok {
		t.Fatal("expired key should miss")
	}

	store.sweep(time.Now())
	if store.Len() != 1 {
		t.Fatalf("expected sweep to leave 1 item, got %d", store.Len())
	}

	_ = store.Delete(ctx, "live")
	if _, ok, _ := store.Get(ctx, "live"); ok {
		t.Fatal("deleted key should miss")
	}
}

func TestResultCacheRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	rc := NewResultCache(store, nil)
	ctx := context.Background()

	result := &entities.AnalysisResult{
		ID:          uuid.New(),
		AudioSHA256: "abc",
		RiskLevel:   entities.RiskMedium,
		RiskScore:   0.55,
		RiskFactors: []string{"high scam probability"},
	}
	if err := rc.Set(ctx, "abc", result, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok := rc.Get(ctx, "abc")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.ID != result.ID || got.RiskLevel != entities.RiskMedium || got.RiskScore != 0.55 {
		t.Fatalf("unexpected cached result %+v", got)
	}

	if _, ok := rc.Get(ctx, "missing"); ok {
		t.Fatal("expected miss")
	}
}

func TestResultCacheCorruptEntryIsMiss(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()
	_ = store.Set(ctx, resultKey("bad"), "{not json", time.Minute)

	rc := NewResultCache(store, nil)
	if _, ok := rc.Get(ctx, "bad"); ok {
		t.Fatal("corrupt entry should read as miss")
	}
}
