package reporter

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"scr/internal/config"
	"scr/internal/domain"
	"scr/internal/sauce"
)

// isoLayout matches the millisecond ISO-8601 form the API expects
const isoLayout = "2006-01-02T15:04:05.000Z"

// ConsoleAssetName is the upload name of the console transcript
const ConsoleAssetName = "console.log"

// ReportAPI creates reports and attaches assets to them
type ReportAPI interface {
	CreateReport(ctx context.Context, req sauce.ReportRequest) (*sauce.ReportResponse, error)
	UploadAssets(ctx context.Context, jobID string, assets []domain.Asset) (*sauce.UploadResponse, error)
}

// UploadOutcome says what happened to the remote upload of a run
type UploadOutcome int

const (
	OutcomeNone UploadOutcome = iota
	OutcomeUploaded
	OutcomeSkippedDisabled
	OutcomeSkippedNoCredentials
	OutcomeSkippedManagedVM
	OutcomeSkippedNoID
	OutcomeFailed
)

func (o UploadOutcome) String() string {
	switch o {
	case OutcomeUploaded:
		return "uploaded"
	case OutcomeSkippedDisabled:
		return "skipped: upload disabled"
	case OutcomeSkippedNoCredentials:
		return "skipped: no credentials"
	case OutcomeSkippedManagedVM:
		return "skipped: running inside Sauce Labs"
	case OutcomeSkippedNoID:
		return "skipped: no job id returned"
	case OutcomeFailed:
		return "failed"
	default:
		return "none"
	}
}

// UploadInput is everything the uploader needs from a finalized run
type UploadInput struct {
	Run           *domain.Run
	Passed        bool
	StartedAt     time.Time
	EndedAt       time.Time
	RunnerVersion string
	Assets        []domain.Asset
	Transcript    []byte
}

// Uploader decides whether to upload and performs the create-then-attach protocol
type Uploader struct {
	config *config.Config
	api    ReportAPI
	out    io.Writer
	log    *zap.Logger
	warned bool
}

// NewUploader creates an Uploader. api may be nil when no credentials are configured.
func NewUploader(cfg *config.Config, api ReportAPI, out io.Writer, log *zap.Logger) *Uploader {
	return &Uploader{
		config: cfg,
		api:    api,
		out:    out,
		log:    log,
	}
}

// Precondition reports why an upload would be skipped, or OutcomeNone when it can go ahead
func (u *Uploader) Precondition() UploadOutcome {
	switch {
	case !u.config.Upload:
		return OutcomeSkippedDisabled
	case !u.config.HasCredentials() || u.api == nil:
		return OutcomeSkippedNoCredentials
	case u.config.ManagedVM:
		return OutcomeSkippedManagedVM
	default:
		return OutcomeNone
	}
}

// Upload sends the run to Sauce Labs. Failures are logged and reported through the
// outcome; they never surface as errors.
func (u *Uploader) Upload(ctx context.Context, in UploadInput) (string, UploadOutcome) {
	if outcome := u.Precondition(); outcome != OutcomeNone {
		u.warnSkipped(outcome)
		return "", outcome
	}

	resp, err := u.api.CreateReport(ctx, u.reportRequest(in))
	if err != nil {
		u.log.Error("create job failed", zap.Error(err))
		color.New(color.FgRed).Fprintf(u.out, "Create job failed: %v\n", err)
		return "", OutcomeFailed
	}
	if resp == nil || resp.ID == "" {
		u.log.Warn("report created without a job id, assets not uploaded")
		return "", OutcomeSkippedNoID
	}

	report, err := in.Run.Marshal()
	if err != nil {
		u.log.Error("serialize report for upload", zap.Error(err))
		return resp.ID, OutcomeFailed
	}

	assets := make([]domain.Asset, 0, len(in.Assets)+2)
	assets = append(assets, in.Assets...)
	assets = append(assets,
		domain.Asset{Filename: ConsoleAssetName, Data: in.Transcript},
		domain.Asset{Filename: u.config.GetReportAssetName(), Data: report},
	)

	uploaded, err := u.api.UploadAssets(ctx, resp.ID, assets)
	if err != nil {
		u.log.Error("upload failed", zap.String("jobId", resp.ID), zap.Error(err))
		color.New(color.FgRed).Fprintf(u.out, "Upload failed: %v\n", err)
		return resp.ID, OutcomeFailed
	}
	if uploaded != nil {
		for _, assetErr := range uploaded.Errors {
			u.log.Error("asset upload error", zap.String("jobId", resp.ID), zap.Any("error", assetErr))
		}
	}

	return resp.ID, OutcomeUploaded
}

func (u *Uploader) reportRequest(in UploadInput) sauce.ReportRequest {
	version := in.RunnerVersion
	if version == "" {
		version = "unknown"
	}
	return sauce.ReportRequest{
		Name:             u.config.Name,
		Suite:            u.config.Name,
		StartTime:        in.StartedAt.UTC().Format(isoLayout),
		EndTime:          in.EndedAt.UTC().Format(isoLayout),
		Framework:        config.Framework,
		FrameworkVersion: version,
		Passed:           in.Passed,
		Tags:             u.config.Tags,
		Build:            u.config.Build,
		BrowserName:      u.config.BrowserName,
		BrowserVersion:   config.BrowserVersion,
		PlatformName:     sauce.PlatformName(),
	}
}

func (u *Uploader) warnSkipped(outcome UploadOutcome) {
	if u.warned {
		return
	}
	u.warned = true

	var msg string
	switch outcome {
	case OutcomeSkippedNoCredentials:
		msg = fmt.Sprintf("No results reported to Sauce. $%s and $%s environment variables must be defined in order for reports to be uploaded to Sauce.",
			config.EnvUsername, config.EnvAccessKey)
	case OutcomeSkippedManagedVM:
		msg = "Running inside Sauce Labs, results are reported by the managed environment and not uploaded again."
	case OutcomeSkippedDisabled:
		msg = "Upload to Sauce is disabled, results are only written locally."
	default:
		return
	}
	u.log.Warn("upload skipped", zap.Stringer("reason", outcome))
	color.New(color.FgYellow).Fprintf(u.out, "\n%s\n", msg)
}
