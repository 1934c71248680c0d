package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/anatolykoptev/go_apply/internal/engine"
	"github.com/anatolykoptev/go_apply/internal/vault"
)

func testJob(i int) engine.JobListing {
	return engine.JobListing{
		ID:             fmt.Sprintf("job-%d", i),
		Title:          fmt.Sprintf("Role %d", i),
		Company:        engine.Company{Name: "Acme"},
		ApplicationURL: fmt.Sprintf("https://careers.example.com/openings/%d", i),
	}
}

// newTestOrchestrator stubs out real submissions and the sqlite log.
func newTestOrchestrator(apply applyFunc) *Orchestrator {
	engine.Init(engine.Config{})
	o := NewOrchestrator(NewMemoryStore(), nil, NewDelayPolicy(0))
	o.apply = apply
	o.record = func(context.Context, string, engine.ApplicationResult) {}
	return o
}

// waitForStatus polls until the batch leaves processing or the deadline hits.
func waitForStatus(t *testing.T, o *Orchestrator, batchID string) engine.BatchState {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("batch did not finish in time")
		case <-time.After(10 * time.Millisecond):
		}
		state, err := o.Status(context.Background(), batchID)
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if state.Status != engine.BatchProcessing {
			return state
		}
	}
}

func TestApplyBatchSequential(t *testing.T) {
	var order []string
	o := newTestOrchestrator(func(_ context.Context, _ engine.ApplicantProfile, job engine.JobListing) engine.ApplicationResult {
		// Sequential execution: no locking needed.
		order = append(order, job.ID)
		return engine.ApplicationResult{JobID: job.ID, Success: true, Timestamp: time.Now()}
	})

	jobs := []engine.JobListing{testJob(1), testJob(2), testJob(3)}
	batchID, err := o.ApplyBatch(context.Background(), engine.ApplicantProfile{Name: "G"}, jobs, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if batchID == "" {
		t.Fatal("empty batch id")
	}

	state := waitForStatus(t, o, batchID)

	if state.Status != engine.BatchCompleted {
		t.Errorf("status = %q, want completed", state.Status)
	}
	if state.Progress != 100 {
		t.Errorf("progress = %d, want 100", state.Progress)
	}
	if state.EndTime == nil {
		t.Error("end time not set")
	}
	if len(state.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(state.Results))
	}
	for i, r := range state.Results {
		if r.JobID != jobs[i].ID {
			t.Errorf("result %d is %q, want %q (submission order)", i, r.JobID, jobs[i].ID)
		}
	}
	if len(order) != 3 || order[0] != "job-1" || order[2] != "job-3" {
		t.Errorf("application order = %v", order)
	}
}

func TestApplyBatchFailureIsolation(t *testing.T) {
	o := newTestOrchestrator(func(_ context.Context, _ engine.ApplicantProfile, job engine.JobListing) engine.ApplicationResult {
		r := engine.ApplicationResult{JobID: job.ID, Timestamp: time.Now()}
		if job.ID == "job-2" {
			r.Error = "portal rejected the form"
			return r
		}
		r.Success = true
		return r
	})

	jobs := []engine.JobListing{testJob(1), testJob(2), testJob(3)}
	batchID, err := o.ApplyBatch(context.Background(), engine.ApplicantProfile{}, jobs, "")
	if err != nil {
		t.Fatal(err)
	}

	state := waitForStatus(t, o, batchID)

	if state.Status != engine.BatchCompleted {
		t.Errorf("status = %q: one failed job must not stop the batch", state.Status)
	}
	if len(state.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(state.Results))
	}
	if state.Results[1].Success || state.Results[1].Error == "" {
		t.Errorf("failed job result = %+v", state.Results[1])
	}
	if !state.Results[0].Success || !state.Results[2].Success {
		t.Error("surrounding jobs must still succeed")
	}
}

func TestApplyBatchAbort(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	o := newTestOrchestrator(func(_ context.Context, _ engine.ApplicantProfile, job engine.JobListing) engine.ApplicationResult {
		if job.ID == "job-1" {
			close(started)
			<-release
		}
		return engine.ApplicationResult{JobID: job.ID, Success: true, Timestamp: time.Now()}
	})

	jobs := []engine.JobListing{testJob(1), testJob(2), testJob(3)}
	batchID, err := o.ApplyBatch(context.Background(), engine.ApplicantProfile{}, jobs, "")
	if err != nil {
		t.Fatal(err)
	}

	<-started
	o.Abort(batchID)
	close(release)

	state := waitForStatus(t, o, batchID)

	if state.Status != engine.BatchAborted {
		t.Fatalf("status = %q, want aborted", state.Status)
	}
	if len(state.Results) != 1 {
		t.Errorf("results = %d: the in-flight job finishes, the rest are skipped", len(state.Results))
	}
}

func TestApplyBatchEmpty(t *testing.T) {
	o := newTestOrchestrator(nil)
	_, err := o.ApplyBatch(context.Background(), engine.ApplicantProfile{}, nil, "")
	var verr *engine.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestApplySingleMissingCredentials(t *testing.T) {
	o := newTestOrchestrator(func(context.Context, engine.ApplicantProfile, engine.JobListing) engine.ApplicationResult {
		t.Fatal("apply must not run without credentials")
		return engine.ApplicationResult{}
	})

	job := testJob(1)
	job.ApplicationURL = "https://www.linkedin.com/jobs/view/4123456789"
	_, err := o.ApplySingle(context.Background(), "user-1", engine.ApplicantProfile{}, job)
	if !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveCredentialsPerUser(t *testing.T) {
	ctx := context.Background()
	v, err := vault.New(bytes.Repeat([]byte{0x42}, vault.KeySize), vault.NewMemoryStore())
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Store(ctx, "user-a", "linkedin", vault.SecretBag{"username": "a@example.com", "password": "pass-a"}); err != nil {
		t.Fatal(err)
	}

	o := newTestOrchestrator(nil)
	o.vault = v

	job := testJob(1)
	job.ApplicationURL = "https://www.linkedin.com/jobs/view/4123456789"

	resolved, err := o.resolveCredentials(ctx, "user-a", engine.ApplicantProfile{}, job)
	if err != nil {
		t.Fatalf("resolveCredentials: %v", err)
	}
	if resolved.Credentials["username"] != "a@example.com" {
		t.Errorf("credentials = %v, want user-a's entry", resolved.Credentials)
	}

	// Another user has no entry for this portal, even though user-a does.
	if _, err := o.resolveCredentials(ctx, "user-b", engine.ApplicantProfile{}, job); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for the other user", err)
	}
}

func TestApplyBatchPacing(t *testing.T) {
	o := newTestOrchestrator(func(_ context.Context, _ engine.ApplicantProfile, job engine.JobListing) engine.ApplicationResult {
		return engine.ApplicationResult{JobID: job.ID, Success: true, Timestamp: time.Now()}
	})
	interval := 30 * time.Millisecond
	o.delay = NewDelayPolicy(interval)
	start := time.Now()

	batchID, err := o.ApplyBatch(context.Background(), engine.ApplicantProfile{}, []engine.JobListing{testJob(1), testJob(2)}, "")
	if err != nil {
		t.Fatal(err)
	}
	waitForStatus(t, o, batchID)

	// One enforced gap per job, the first included: two jobs take at least
	// two intervals.
	if elapsed := time.Since(start); elapsed < 2*interval-5*time.Millisecond {
		t.Errorf("batch of 2 finished in %v, want at least %v of pacing", elapsed, 2*interval)
	}
}

func TestBatchMissingCredentialsIsolated(t *testing.T) {
	o := newTestOrchestrator(func(_ context.Context, _ engine.ApplicantProfile, job engine.JobListing) engine.ApplicationResult {
		return engine.ApplicationResult{JobID: job.ID, Success: true, Timestamp: time.Now()}
	})

	liJob := testJob(1)
	liJob.ApplicationURL = "https://www.linkedin.com/jobs/view/4123456789"
	jobs := []engine.JobListing{liJob, testJob(2)}

	batchID, err := o.ApplyBatch(context.Background(), engine.ApplicantProfile{}, jobs, "")
	if err != nil {
		t.Fatal(err)
	}
	state := waitForStatus(t, o, batchID)

	if state.Results[0].Success || state.Results[0].Error == "" {
		t.Errorf("credential-less linkedin job = %+v, want failed result", state.Results[0])
	}
	if !state.Results[1].Success {
		t.Error("following job must still run")
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		done, total, want int
	}{
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 7, 14},
		{5, 5, 100},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := progressPercent(tt.done, tt.total); got != tt.want {
			t.Errorf("progressPercent(%d, %d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	state := engine.BatchState{
		BatchID: "b1",
		Status:  engine.BatchProcessing,
		Results: []engine.ApplicationResult{{JobID: "job-1"}},
	}
	if err := store.Save(ctx, state); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's slice must not leak into the stored copy.
	state.Results[0].JobID = "mutated"
	state.Results = append(state.Results, engine.ApplicationResult{JobID: "job-2"})

	loaded, err := store.Load(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Results) != 1 || loaded.Results[0].JobID != "job-1" {
		t.Errorf("stored state mutated through caller: %+v", loaded.Results)
	}

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("missing batch err = %v, want ErrNotFound", err)
	}
}
