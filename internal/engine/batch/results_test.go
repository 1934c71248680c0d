package batch

import (
	"context"
	"testing"
	"time"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

func TestApplicationsLog(t *testing.T) {
	dir := t.TempDir()
	resultsDir = func() string { return dir }

	ctx := context.Background()
	RecordApplication(ctx, "batch-1", engine.ApplicationResult{
		JobID:     "job-1",
		Success:   true,
		Company:   "Acme",
		Title:     "Go Developer",
		Timestamp: time.Now(),
	})
	RecordApplication(ctx, "", engine.ApplicationResult{
		JobID:     "job-2",
		Error:     "no confirmation marker",
		Timestamp: time.Now(),
	})

	apps, err := ListApplications(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(apps) != 2 {
		t.Fatalf("logged %d applications, want 2", len(apps))
	}
	// Newest first.
	if apps[0].JobID != "job-2" {
		t.Errorf("apps[0] = %q, want job-2", apps[0].JobID)
	}
	if apps[0].Success || apps[0].Error == "" {
		t.Errorf("failed attempt = %+v", apps[0])
	}
	if !apps[1].Success || apps[1].BatchID != "batch-1" {
		t.Errorf("succeeded attempt = %+v", apps[1])
	}
}
