package sauce

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"scr/internal/domain"
)

const (
	createReportURL = "/v1/testcomposer/reports"
	uploadAssetsURL = "/v1/testcomposer/jobs/{id}/assets"
)

// ReportRequest is the body of a report creation request
type ReportRequest struct {
	Name             string   `json:"name,omitempty"`
	Suite            string   `json:"suite,omitempty"`
	BrowserName      string   `json:"browserName,omitempty"`
	BrowserVersion   string   `json:"browserVersion,omitempty"`
	PlatformName     string   `json:"platformName,omitempty"`
	Framework        string   `json:"framework,omitempty"`
	FrameworkVersion string   `json:"frameworkVersion,omitempty"`
	Passed           bool     `json:"passed"`
	StartTime        string   `json:"startTime"`
	EndTime          string   `json:"endTime"`
	Build            string   `json:"build,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}

// ReportResponse carries the ID of the created job; it may be empty
type ReportResponse struct {
	ID string `json:"ID"`
}

// UploadResponse lists uploaded file names and per-asset errors
type UploadResponse struct {
	Uploaded []string `json:"uploaded"`
	Errors   []any    `json:"errors"`
}

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("sauce api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("sauce api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Client talks to the Sauce Labs test composer API
type Client struct {
	client *resty.Client
}

// NewClient creates a Client authenticated with basic auth against baseURL
func NewClient(baseURL, username, accessKey, userAgent string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetBasicAuth(username, accessKey)
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept", "application/json")
	client.SetTimeout(2 * time.Minute)
	return &Client{client: client}
}

// HTTPClient exposes the underlying transport holder
func (c *Client) HTTPClient() *http.Client {
	return c.client.GetClient()
}

// CreateReport submits a report creation request
func (c *Client) CreateReport(ctx context.Context, req ReportRequest) (*ReportResponse, error) {
	result := &ReportResponse{}
	apiErr := &APIError{}
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(result).
		SetError(apiErr).
		Post(createReportURL)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, fmt.Errorf("create report: %w", apiErr)
	}
	return result, nil
}

// UploadAssets attaches assets to a job in a single multipart request
func (c *Client) UploadAssets(ctx context.Context, jobID string, assets []domain.Asset) (*UploadResponse, error) {
	result := &UploadResponse{}
	apiErr := &APIError{}
	r := c.client.R().
		SetContext(ctx).
		SetPathParam("id", jobID).
		SetResult(result).
		SetError(apiErr)
	for _, a := range assets {
		r.SetFileReader("file", a.Filename, bytes.NewReader(a.Data))
	}

	resp, err := r.Put(uploadAssetsURL)
	if err != nil {
		return nil, fmt.Errorf("upload assets: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, fmt.Errorf("upload assets: %w", apiErr)
	}
	return result, nil
}
