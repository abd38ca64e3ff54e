package cache

import (
	"testing"
	"time"

	"github.com/dvloznov/finwise/internal/domain"
)

func TestInsightsCache_SetGetInvalidate(t *testing.T) {
	c, err := NewInsightsCache(time.Minute)
	if err != nil {
		t.Fatalf("NewInsightsCache() error: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get(domain.DefaultUserID); ok {
		t.Fatal("expected empty cache")
	}

	result := &domain.CoachingResult{Insights: []string{"Great job!"}}
	c.Set(domain.DefaultUserID, result)
	c.Wait()

	got, ok := c.Get(domain.DefaultUserID)
	if !ok || got != result {
		t.Fatalf("expected cached result, got %v (ok=%v)", got, ok)
	}

	c.Invalidate(domain.DefaultUserID)
	if _, ok := c.Get(domain.DefaultUserID); ok {
		t.Error("expected entry to be invalidated")
	}
}

func TestInsightsCache_Expires(t *testing.T) {
	c, err := NewInsightsCache(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewInsightsCache() error: %v", err)
	}
	defer c.Close()

	c.Set("u1", &domain.CoachingResult{})
	c.Wait()
	time.Sleep(50 * time.Millisecond)

	if _, ok := c.Get("u1"); ok {
		t.Error("expected entry to expire")
	}
}

func TestNewInsightsCache_DefaultTTL(t *testing.T) {
	c, err := NewInsightsCache(0)
	if err != nil {
		t.Fatalf("NewInsightsCache() error: %v", err)
	}
	defer c.Close()

	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}

func TestInsightsCache_SetIfGeneration(t *testing.T) {
	c, err := NewInsightsCache(time.Minute)
	if err != nil {
		t.Fatalf("NewInsightsCache() error: %v", err)
	}
	defer c.Close()

	gen := c.Generation("u1")
	c.Invalidate("u1")

	if c.SetIfGeneration("u1", gen, &domain.CoachingResult{}) {
		t.Error("expected stale result to be rejected")
	}
	c.Wait()
	if _, ok := c.Get("u1"); ok {
		t.Error("stale result was cached")
	}

	if c.Generation("u2") != 0 {
		t.Error("invalidating u1 changed u2's generation")
	}

	gen = c.Generation("u1")
	fresh := &domain.CoachingResult{Insights: []string{"fresh"}}
	if !c.SetIfGeneration("u1", gen, fresh) {
		t.Fatal("expected current result to be stored")
	}
	c.Wait()
	if got, ok := c.Get("u1"); !ok || got != fresh {
		t.Errorf("expected fresh result, got %v (ok=%v)", got, ok)
	}
}
