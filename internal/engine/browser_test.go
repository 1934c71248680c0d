package engine

import (
	"strings"
	"testing"
)

func TestNewBrowserClient(t *testing.T) {
	bc, err := NewBrowserClient(10, "")
	if err != nil {
		t.Fatalf("NewBrowserClient() error = %v", err)
	}
	if bc == nil {
		t.Fatal("NewBrowserClient() returned nil")
	}
	defer bc.Close()
}

func TestChromeHeaders(t *testing.T) {
	h := ChromeHeaders()

	for _, key := range []string{"accept", "accept-language", "user-agent"} {
		if _, ok := h[key]; !ok {
			t.Errorf("ChromeHeaders() missing key %q", key)
		}
	}
	if !strings.Contains(h["user-agent"], "Chrome") {
		t.Errorf("user-agent does not identify as Chrome: %q", h["user-agent"])
	}
}

func TestRandomUserAgent(t *testing.T) {
	for i := 0; i < 10; i++ {
		ua := RandomUserAgent()
		if !strings.Contains(ua, "Mozilla/5.0") {
			t.Fatalf("unexpected user agent: %q", ua)
		}
	}
}
