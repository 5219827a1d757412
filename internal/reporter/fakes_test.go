package reporter

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"scr/internal/config"
	"scr/internal/domain"
	"scr/internal/messages"
	"scr/internal/sauce"
)

type fakeStore struct {
	saved []*domain.Run
	err   error
}

func (s *fakeStore) Save(run *domain.Run) error {
	s.saved = append(s.saved, run)
	return s.err
}

type fakeAPI struct {
	createErr  error
	jobID      string
	uploadErr  error
	uploadResp *sauce.UploadResponse
	nilUpload  bool

	requests []sauce.ReportRequest
	uploads  map[string][]domain.Asset
}

func (a *fakeAPI) CreateReport(ctx context.Context, req sauce.ReportRequest) (*sauce.ReportResponse, error) {
	a.requests = append(a.requests, req)
	if a.createErr != nil {
		return nil, a.createErr
	}
	return &sauce.ReportResponse{ID: a.jobID}, nil
}

func (a *fakeAPI) UploadAssets(ctx context.Context, jobID string, assets []domain.Asset) (*sauce.UploadResponse, error) {
	if a.uploads == nil {
		a.uploads = make(map[string][]domain.Asset)
	}
	a.uploads[jobID] = append(a.uploads[jobID], assets...)
	if a.uploadErr != nil {
		return nil, a.uploadErr
	}
	if a.nilUpload {
		return nil, nil
	}
	if a.uploadResp != nil {
		return a.uploadResp, nil
	}
	return &sauce.UploadResponse{}, nil
}

type fakeHistory struct {
	records []domain.RunRecord
}

func (h *fakeHistory) Record(ctx context.Context, rec domain.RunRecord) error {
	h.records = append(h.records, rec)
	return nil
}

// flakyLookup fails for the listed attempt IDs and defers to the collector otherwise
type flakyLookup struct {
	next  AttemptLookup
	fails map[string]error
}

func (l *flakyLookup) TestCaseAttempt(id string) (*messages.TestCaseAttempt, error) {
	if err, ok := l.fails[id]; ok {
		return nil, err
	}
	return l.next.TestCaseAttempt(id)
}

var errLookup = errors.New("lookup exploded")

func credentialedConfig() *config.Config {
	cfg := config.New()
	cfg.Name = "my cucumber test"
	cfg.Build = "mybuild"
	cfg.Tags = []string{"e2e"}
	cfg.Username = "user"
	cfg.AccessKey = "key"
	return cfg
}

type harness struct {
	reporter *Reporter
	stream   *messages.Stream
	store    *fakeStore
	api      *fakeAPI
	console  *ConsoleLog
	logs     *observer.ObservedLogs
}

func newHarness(t *testing.T, cfg *config.Config, api *fakeAPI, lookup func(AttemptLookup) AttemptLookup, opts ...Option) *harness {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	stream := messages.NewStream(messages.NewCollector())
	var l AttemptLookup = stream.Collector()
	if lookup != nil {
		l = lookup(l)
	}

	h := &harness{
		stream:  stream,
		store:   &fakeStore{},
		api:     api,
		console: NewConsoleLog(&discard{}),
		logs:    logs,
	}
	var reportAPI ReportAPI
	if api != nil {
		reportAPI = api
	}
	uploader := NewUploader(cfg, reportAPI, h.console, log)
	h.reporter = New(cfg, l, h.store, uploader, h.console, log, opts...)
	h.reporter.Listen(context.Background(), stream)
	return h
}

func (h *harness) consume(t *testing.T, path string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, h.stream.Consume(context.Background(), f))
}

type discard struct {
	bytes int
}

func (d *discard) Write(p []byte) (int, error) {
	d.bytes += len(p)
	return len(p), nil
}
