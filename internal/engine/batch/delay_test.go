package batch

import (
	"context"
	"testing"
	"time"
)

func TestDelayPolicyFirstWaitBlocks(t *testing.T) {
	d := NewDelayPolicy(50 * time.Millisecond)
	start := time.Now()
	if err := d.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	// The pre-filled token is drained at construction, so even the first
	// wait spaces for the full interval.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("first wait returned after %v, want the configured interval", elapsed)
	}
}

func TestDelayPolicyDisabled(t *testing.T) {
	d := NewDelayPolicy(0)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := d.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("disabled policy waited %v", elapsed)
	}
}

func TestDelayPolicyContextCancel(t *testing.T) {
	d := NewDelayPolicy(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Wait(ctx); err == nil {
		t.Error("wait on a canceled context must fail")
	}
}
