package ratelimiter

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowConsumesBurst(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 3})

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("client-1")
		if !allowed {
			t.Fatalf("request %d denied within burst", i+1)
		}
	}

	allowed, retryAfter := rl.Allow("client-1")
	if allowed {
		t.Fatal("request allowed past burst")
	}
	if retryAfter <= 0 {
		t.Fatalf("retryAfter = %v", retryAfter)
	}
}

func TestSourcesAreIndependent(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 1})

	if allowed, _ := rl.Allow("client-1"); !allowed {
		t.Fatal("first source denied")
	}
	if allowed, _ := rl.Allow("client-1"); allowed {
		t.Fatal("first source not exhausted")
	}
	if allowed, _ := rl.Allow("client-2"); !allowed {
		t.Fatal("second source throttled by the first")
	}
}

func TestTokensRefillOverTime(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 100, MaxBurst: 1})

	if allowed, _ := rl.Allow("client-1"); !allowed {
		t.Fatal("initial request denied")
	}
	if allowed, _ := rl.Allow("client-1"); allowed {
		t.Fatal("bucket not empty")
	}

	time.Sleep(30 * time.Millisecond) // 100/s refills within a few ms

	if allowed, _ := rl.Allow("client-1"); !allowed {
		t.Fatal("bucket did not refill")
	}
}

func TestRemainingReflectsConsumption(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 5})

	rl.Allow("client-1")
	rl.Allow("client-1")

	if remaining := rl.Remaining("client-1"); remaining != 3 {
		t.Fatalf("remaining = %d, want 3", remaining)
	}
}

func TestGetSourceKeyPrefersHeader(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, SourceHeaderKey: "X-Forwarded-For"})

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"

	if key := rl.GetSourceKey(r); key != "10.0.0.1:1234" {
		t.Fatalf("fallback key = %q", key)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	if key := rl.GetSourceKey(r); key != "203.0.113.7" {
		t.Fatalf("header key = %q", key)
	}
}
