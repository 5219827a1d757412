package reporter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"scr/internal/config"
	"scr/internal/domain"
	"scr/internal/sauce"
)

func newTestUploader(cfg *config.Config, api ReportAPI) (*Uploader, *bytes.Buffer, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	out := &bytes.Buffer{}
	return NewUploader(cfg, api, out, zap.New(core)), out, logs
}

func uploadInput() UploadInput {
	return UploadInput{
		Run:        domain.NewRun(),
		Passed:     true,
		StartedAt:  time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
		EndedAt:    time.Date(2024, 1, 2, 3, 5, 0, 0, time.UTC),
		Transcript: []byte("SUCCESS"),
	}
}

func TestUploader_Precondition(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		api    ReportAPI
		want   UploadOutcome
	}{
		{"ready", func(*config.Config) {}, &fakeAPI{}, OutcomeNone},
		{"disabled wins over missing credentials", func(c *config.Config) { c.Upload = false; c.Username = "" }, &fakeAPI{}, OutcomeSkippedDisabled},
		{"no username", func(c *config.Config) { c.Username = "" }, &fakeAPI{}, OutcomeSkippedNoCredentials},
		{"no access key", func(c *config.Config) { c.AccessKey = "" }, &fakeAPI{}, OutcomeSkippedNoCredentials},
		{"no client", func(*config.Config) {}, nil, OutcomeSkippedNoCredentials},
		{"managed vm", func(c *config.Config) { c.ManagedVM = true }, &fakeAPI{}, OutcomeSkippedManagedVM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := credentialedConfig()
			tt.mutate(cfg)
			u, _, _ := newTestUploader(cfg, tt.api)
			assert.Equal(t, tt.want, u.Precondition())
		})
	}
}

func TestUploader_WarnsOnce(t *testing.T) {
	cfg := credentialedConfig()
	cfg.AccessKey = ""
	u, out, _ := newTestUploader(cfg, nil)

	for i := 0; i < 3; i++ {
		id, outcome := u.Upload(context.Background(), uploadInput())
		assert.Empty(t, id)
		assert.Equal(t, OutcomeSkippedNoCredentials, outcome)
	}

	assert.Equal(t, 1, strings.Count(out.String(), "No results reported to Sauce"))
}

func TestUploader_Request(t *testing.T) {
	api := &fakeAPI{jobID: "abc"}
	cfg := credentialedConfig()
	cfg.BrowserName = "firefox"
	u, _, _ := newTestUploader(cfg, api)

	in := uploadInput()
	id, outcome := u.Upload(context.Background(), in)
	require.Equal(t, OutcomeUploaded, outcome)
	assert.Equal(t, "abc", id)

	require.Len(t, api.requests, 1)
	req := api.requests[0]
	assert.Equal(t, "2024-01-02T03:04:05.006Z", req.StartTime)
	assert.Equal(t, "2024-01-02T03:05:00.000Z", req.EndTime)
	assert.Equal(t, "unknown", req.FrameworkVersion)
	assert.Equal(t, config.BrowserVersion, req.BrowserVersion)
	assert.Equal(t, "firefox", req.BrowserName)
	assert.Equal(t, "mybuild", req.Build)
	assert.Equal(t, cfg.Name, req.Suite)
	assert.True(t, req.Passed)
	assert.NotEmpty(t, req.PlatformName)

	assets := api.uploads["abc"]
	require.Len(t, assets, 2)
	assert.Equal(t, ConsoleAssetName, assets[0].Filename)
	assert.Equal(t, []byte("SUCCESS"), assets[0].Data)
	assert.Equal(t, "sauce-test-report.json", assets[1].Filename)
}

func TestUploader_ReportAssetFollowsOutputFile(t *testing.T) {
	api := &fakeAPI{jobID: "abc"}
	cfg := credentialedConfig()
	cfg.OutputFile = "reports/nightly.json"
	u, _, _ := newTestUploader(cfg, api)

	_, outcome := u.Upload(context.Background(), uploadInput())
	require.Equal(t, OutcomeUploaded, outcome)

	assets := api.uploads["abc"]
	assert.Equal(t, "nightly.json", assets[len(assets)-1].Filename)
}

func TestUploader_UploadFails(t *testing.T) {
	api := &fakeAPI{jobID: "abc", uploadErr: errors.New("connection reset")}
	u, out, logs := newTestUploader(credentialedConfig(), api)

	id, outcome := u.Upload(context.Background(), uploadInput())

	assert.Equal(t, "abc", id)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Contains(t, out.String(), "Upload failed")
	assert.Equal(t, 1, logs.FilterMessage("upload failed").Len())
}

func TestUploader_AssetErrorsAreLogged(t *testing.T) {
	api := &fakeAPI{jobID: "abc", uploadResp: &sauce.UploadResponse{
		Uploaded: []string{"console.log"},
		Errors:   []any{"sauce-test-report.json: too large"},
	}}
	u, _, logs := newTestUploader(credentialedConfig(), api)

	_, outcome := u.Upload(context.Background(), uploadInput())

	assert.Equal(t, OutcomeUploaded, outcome)
	assert.Equal(t, 1, logs.FilterMessage("asset upload error").Len())
}

func TestUploader_EmptyUploadResponse(t *testing.T) {
	api := &fakeAPI{jobID: "abc", nilUpload: true}
	u, _, logs := newTestUploader(credentialedConfig(), api)

	var id string
	var outcome UploadOutcome
	require.NotPanics(t, func() {
		id, outcome = u.Upload(context.Background(), uploadInput())
	})

	assert.Equal(t, "abc", id)
	assert.Equal(t, OutcomeUploaded, outcome)
	assert.Zero(t, logs.FilterMessage("asset upload error").Len())
}

func TestUploader_NoJobID(t *testing.T) {
	api := &fakeAPI{}
	u, _, logs := newTestUploader(credentialedConfig(), api)

	id, outcome := u.Upload(context.Background(), uploadInput())

	assert.Empty(t, id)
	assert.Equal(t, OutcomeSkippedNoID, outcome)
	assert.Empty(t, api.uploads)
	assert.Equal(t, 1, logs.FilterMessage("report created without a job id, assets not uploaded").Len())
}

func TestUploadOutcome_String(t *testing.T) {
	assert.Equal(t, "uploaded", OutcomeUploaded.String())
	assert.Equal(t, "skipped: no job id returned", OutcomeSkippedNoID.String())
	assert.Equal(t, "none", OutcomeNone.String())
}
