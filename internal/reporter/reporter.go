package reporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"scr/internal/config"
	"scr/internal/domain"
	"scr/internal/messages"
)

// AttemptLookup resolves a testCaseStarted ID into its full attempt detail
type AttemptLookup interface {
	TestCaseAttempt(testCaseStartedID string) (*messages.TestCaseAttempt, error)
}

// EventSource delivers envelopes to subscribers, one at a time, in emission order
type EventSource interface {
	Subscribe(h messages.Handler)
}

// Store persists a finalized run
type Store interface {
	Save(run *domain.Run) error
}

// HistoryRecorder archives finalized runs
type HistoryRecorder interface {
	Record(ctx context.Context, rec domain.RunRecord) error
}

type state int

const (
	stateCollecting state = iota
	stateFinalizing
	stateDone
)

func (s state) String() string {
	switch s {
	case stateCollecting:
		return "collecting"
	case stateFinalizing:
		return "finalizing"
	default:
		return "done"
	}
}

// Result is the outcome of a finalized run
type Result struct {
	Run     *domain.Run
	Passed  bool
	JobID   string
	Upload  UploadOutcome
	SaveErr error
}

// Reporter turns runner events into a Sauce JSON report
type Reporter struct {
	config   *config.Config
	lookup   AttemptLookup
	store    Store
	history  HistoryRecorder
	uploader *Uploader
	console  *ConsoleLog
	log      *zap.Logger
	now      func() time.Time

	state         state
	run           *domain.Run
	assets        []domain.Asset
	startedAt     time.Time
	runnerVersion string
	result        Result
}

// Option customizes a Reporter
type Option func(*Reporter)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// WithHistory archives every finalized run
func WithHistory(h HistoryRecorder) Option {
	return func(r *Reporter) {
		r.history = h
	}
}

// New creates a Reporter. Everything printed goes through console.
func New(cfg *config.Config, lookup AttemptLookup, store Store, uploader *Uploader, console *ConsoleLog, log *zap.Logger, opts ...Option) *Reporter {
	r := &Reporter{
		config:   cfg,
		lookup:   lookup,
		store:    store,
		uploader: uploader,
		console:  console,
		log:      log,
		now:      time.Now,
		run:      domain.NewRun(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.startedAt = r.now()
	return r
}

// Listen subscribes the reporter to source. ctx bounds the upload that follows run-finished.
func (r *Reporter) Listen(ctx context.Context, source EventSource) {
	source.Subscribe(func(env *messages.Envelope) {
		r.HandleEnvelope(ctx, env)
	})
}

// HandleEnvelope advances the reporter with one event
func (r *Reporter) HandleEnvelope(ctx context.Context, env *messages.Envelope) {
	switch {
	case env.Meta != nil:
		r.runnerVersion = env.Meta.Implementation.Version
	case env.TestRunStarted != nil:
		if t := env.TestRunStarted.Timestamp.Time(); !t.IsZero() {
			r.startedAt = t
		}
	case env.TestCaseFinished != nil:
		r.caseFinished(env.TestCaseFinished)
	case env.TestRunFinished != nil:
		r.runFinished(ctx, env.TestRunFinished)
	}
}

// Run returns the report as built so far
func (r *Reporter) Run() *domain.Run {
	return r.run
}

// Assets returns the attachment assets queued for upload
func (r *Reporter) Assets() []domain.Asset {
	return r.assets
}

// Done reports whether run-finished was handled
func (r *Reporter) Done() bool {
	return r.state == stateDone
}

// Result returns the outcome of the finalized run
func (r *Reporter) Result() Result {
	return r.result
}

func (r *Reporter) caseFinished(finished *messages.TestCaseFinished) {
	if r.state != stateCollecting {
		r.log.Warn("test case finished after the run finished, ignoring",
			zap.String("testCaseStartedId", finished.TestCaseStartedID),
			zap.Stringer("state", r.state))
		return
	}

	attempt, err := r.lookup.TestCaseAttempt(finished.TestCaseStartedID)
	if err != nil {
		r.log.Error("unable to parse test case, it is left out of the report",
			zap.String("testCaseStartedId", finished.TestCaseStartedID), zap.Error(err))
		if errors.Is(err, messages.ErrDuplicateURI) {
			color.New(color.FgYellow).Fprintln(r.console,
				"Hint: the same feature file appears to be loaded more than once. Check for duplicate paths in the runner configuration.")
		}
		return
	}

	file, scenario, assets := buildSuite(attempt)
	finishedAt := finished.Timestamp.Time()
	if finishedAt.IsZero() {
		finishedAt = r.now()
	}
	backfillTimings(scenario.Tests, finishedAt, r.config.VideoStartTime)

	for _, line := range transcriptLines(attempt) {
		r.console.Record(line)
	}
	r.assets = append(r.assets, assets...)
	r.run.AddSuite(file)
}

func (r *Reporter) runFinished(ctx context.Context, finished *messages.TestRunFinished) {
	if r.state != stateCollecting {
		r.log.Warn("duplicate test run finished event, ignoring", zap.Stringer("state", r.state))
		return
	}
	r.state = stateFinalizing

	endedAt := finished.Timestamp.Time()
	if endedAt.IsZero() {
		endedAt = r.now()
	}

	r.run.ComputeStatus()
	r.result = Result{Run: r.run, Passed: finished.Success}

	if err := r.store.Save(r.run); err != nil {
		r.result.SaveErr = err
		r.log.Error("write report file", zap.String("path", r.config.OutputFile), zap.Error(err))
		color.New(color.FgRed).Fprintf(r.console, "Failed to write %s: %v\n", r.config.OutputFile, err)
	}

	if finished.Success {
		r.console.Record("SUCCESS")
	} else {
		r.console.Record("FAILURE")
	}

	jobID, outcome := r.uploader.Upload(ctx, UploadInput{
		Run:           r.run,
		Passed:        finished.Success,
		StartedAt:     r.startedAt,
		EndedAt:       endedAt,
		RunnerVersion: r.runnerVersion,
		Assets:        r.assets,
		Transcript:    r.console.Transcript(),
	})
	r.result.JobID = jobID
	r.result.Upload = outcome
	r.printJob(jobID)

	if r.history != nil {
		rec := domain.RunRecord{
			Name:      r.config.Name,
			Build:     r.config.Build,
			Passed:    finished.Success,
			Run:       r.run,
			StartedAt: r.startedAt,
			EndedAt:   endedAt,
			JobID:     jobID,
		}
		if err := r.history.Record(ctx, rec); err != nil {
			r.log.Warn("record run history", zap.Error(err))
		}
	}

	r.state = stateDone
}

func (r *Reporter) printJob(jobID string) {
	if jobID == "" {
		fmt.Fprintln(r.console)
		return
	}
	fmt.Fprintf(r.console, "\nReported jobs to Sauce Labs:\n")
	color.New(color.FgCyan).Fprintln(r.console, r.config.GetJobURL(jobID))
}

var _ io.Writer = (*ConsoleLog)(nil)
