package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_apply/internal/engine"
	"github.com/anatolykoptev/go_apply/internal/engine/portals"
	"github.com/anatolykoptev/go_apply/internal/vault"
)

// applyFunc submits one application. Swapped in tests.
type applyFunc func(ctx context.Context, profile engine.ApplicantProfile, job engine.JobListing) engine.ApplicationResult

// Orchestrator runs application batches strictly sequentially: one browser
// identity, human pacing, and per-job failure isolation.
type Orchestrator struct {
	store  Store
	vault  *vault.Vault
	delay  *DelayPolicy
	apply  applyFunc
	aborts *abortRegistry
	record func(ctx context.Context, batchID string, r engine.ApplicationResult)
}

// NewOrchestrator wires the orchestrator. A nil store falls back to the
// in-memory one; the vault may be nil when no portal needs login.
func NewOrchestrator(store Store, v *vault.Vault, delay *DelayPolicy) *Orchestrator {
	if store == nil {
		store = NewMemoryStore()
	}
	if delay == nil {
		delay = NewDelayPolicy(engine.Cfg.InterJobDelay)
	}
	return &Orchestrator{
		store:  store,
		vault:  v,
		delay:  delay,
		apply:  portals.ApplyToJob,
		aborts: newAbortRegistry(),
		record: RecordApplication,
	}
}

// ApplySingle submits one application right away on behalf of userID.
// Portals that require a login get that user's credentials resolved from the
// vault first; a credentialed portal with no stored entry fails with
// engine.ErrNotFound before any navigation happens.
func (o *Orchestrator) ApplySingle(ctx context.Context, userID string, profile engine.ApplicantProfile, job engine.JobListing) (engine.ApplicationResult, error) {
	resolved, err := o.resolveCredentials(ctx, userID, profile, job)
	if err != nil {
		return engine.ApplicationResult{}, err
	}
	result := o.apply(ctx, resolved, job)
	o.record(ctx, "", result)
	return result, nil
}

// ApplyBatch starts a background batch over the given jobs and returns its
// id immediately. Poll Status with the id to follow progress.
func (o *Orchestrator) ApplyBatch(ctx context.Context, profile engine.ApplicantProfile, jobs []engine.JobListing, userID string) (string, error) {
	if len(jobs) == 0 {
		return "", &engine.ValidationError{Field: "jobs", Reason: "must not be empty"}
	}

	batchID := uuid.NewString()
	jobIDs := make([]string, len(jobs))
	for i, j := range jobs {
		jobIDs[i] = j.ID
	}
	state := engine.BatchState{
		BatchID:   batchID,
		UserID:    userID,
		JobIDs:    jobIDs,
		Status:    engine.BatchProcessing,
		Results:   []engine.ApplicationResult{},
		StartTime: time.Now().UTC(),
	}
	if err := o.store.Save(ctx, state); err != nil {
		return "", fmt.Errorf("batch: save initial state: %w", err)
	}

	o.aborts.register(batchID)
	engine.IncrBatchStarted()
	slog.Info("batch: started",
		slog.String("batch_id", batchID),
		slog.Int("jobs", len(jobs)))

	// The batch outlives the request that started it.
	go o.run(context.Background(), state, profile, jobs)
	return batchID, nil
}

// Status returns the current state of a batch.
func (o *Orchestrator) Status(ctx context.Context, batchID string) (engine.BatchState, error) {
	return o.store.Load(ctx, batchID)
}

// Abort asks a running batch to stop after the in-flight job.
func (o *Orchestrator) Abort(batchID string) {
	o.aborts.abort(batchID)
}

func (o *Orchestrator) run(ctx context.Context, state engine.BatchState, profile engine.ApplicantProfile, jobs []engine.JobListing) {
	defer o.aborts.drop(state.BatchID)
	total := len(jobs)

	for i, job := range jobs {
		if o.aborts.aborted(state.BatchID) {
			now := time.Now().UTC()
			state.Status = engine.BatchAborted
			state.EndTime = &now
			o.persist(ctx, state)
			slog.Info("batch: aborted",
				slog.String("batch_id", state.BatchID),
				slog.Int("done", i), slog.Int("total", total))
			return
		}
		result := o.runOne(ctx, state.UserID, profile, job)
		o.record(ctx, state.BatchID, result)

		state.Results = append(state.Results, result)
		state.Progress = progressPercent(i+1, total)
		// Persist before moving on so a poller never lags the batch.
		o.persist(ctx, state)

		// Pace after every job, failures included, so the portals never see
		// back-to-back submissions.
		if err := o.delay.Wait(ctx); err != nil {
			slog.Warn("batch: delay interrupted", slog.String("batch_id", state.BatchID), slog.Any("error", err))
		}
	}

	now := time.Now().UTC()
	state.Status = engine.BatchCompleted
	state.Progress = 100
	state.EndTime = &now
	o.persist(ctx, state)
	engine.IncrBatchCompleted()
	slog.Info("batch: completed",
		slog.String("batch_id", state.BatchID),
		slog.Int("total", total),
		slog.Int("succeeded", countSucceeded(state.Results)))
}

// runOne isolates a single job: any failure, including credential
// resolution, becomes a failed result and the batch moves on.
func (o *Orchestrator) runOne(ctx context.Context, userID string, profile engine.ApplicantProfile, job engine.JobListing) engine.ApplicationResult {
	resolved, err := o.resolveCredentials(ctx, userID, profile, job)
	if err != nil {
		return engine.ApplicationResult{
			JobID:          job.ID,
			Company:        job.Company.Name,
			Title:          job.Title,
			ApplicationURL: job.ApplicationURL,
			Timestamp:      time.Now().UTC(),
			Error:          err.Error(),
		}
	}
	return o.apply(ctx, resolved, job)
}

// resolveCredentials copies the profile and injects the user's vault entry
// for the job's portal, when one exists. Portals that cannot proceed without
// a login fail here. Lookups are scoped to userID so concurrent batches for
// different users never see each other's secrets.
func (o *Orchestrator) resolveCredentials(ctx context.Context, userID string, profile engine.ApplicantProfile, job engine.JobListing) (engine.ApplicantProfile, error) {
	kind := portals.Classify(job.ApplicationURL)
	if o.vault == nil {
		if credentialRequired(kind) {
			return profile, fmt.Errorf("credentials for %s: %w", kind, engine.ErrNotFound)
		}
		return profile, nil
	}

	bag, err := o.vault.Lookup(ctx, userID, string(kind))
	if err != nil {
		if credentialRequired(kind) {
			return profile, fmt.Errorf("credentials for %s: %w", kind, err)
		}
		return profile, nil
	}
	profile.Credentials = bag
	return profile, nil
}

// credentialRequired reports whether a portal cannot be driven anonymously.
func credentialRequired(kind portals.Kind) bool {
	return kind == portals.KindLinkedIn
}

func (o *Orchestrator) persist(ctx context.Context, state engine.BatchState) {
	if err := o.store.Save(ctx, state); err != nil {
		slog.Warn("batch: persist failed", slog.String("batch_id", state.BatchID), slog.Any("error", err))
	}
}

// progressPercent is round(100 * done / total), not truncation: 1 of 3 jobs
// reads 33, 2 of 3 reads 67.
func progressPercent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

func countSucceeded(results []engine.ApplicationResult) int {
	n := 0
	for _, r := range results {
		if r.Success {
			n++
		}
	}
	return n
}
