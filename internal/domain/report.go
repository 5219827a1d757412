package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Run is the complete report for one test execution
type Run struct {
	Status Status   `json:"status"`
	Suites []*Suite `json:"suites"`
}

// Suite groups tests and nested suites (feature file or scenario level)
type Suite struct {
	Name     string         `json:"name"`
	Status   Status         `json:"status"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Suites   []*Suite       `json:"suites,omitempty"`
	Tests    []*Test        `json:"tests,omitempty"`
}

// Test is a single reported step outcome
type Test struct {
	Name           string       `json:"name"`
	Status         Status       `json:"status"`
	Output         string       `json:"output"`
	Duration       int64        `json:"duration"`
	StartTime      time.Time    `json:"startTime"`
	VideoTimestamp *float64     `json:"videoTimestamp,omitempty"`
	Attachments    []Attachment `json:"attachments"`
}

// Attachment references binary content produced by a step
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Path        string `json:"path"`
}

// Asset is a named payload queued for upload, separate from the report tree
type Asset struct {
	Filename string
	Data     []byte
}

// RunRecord summarizes a finalized run for the history archive
type RunRecord struct {
	Name      string
	Build     string
	Passed    bool
	Run       *Run
	StartedAt time.Time
	EndedAt   time.Time
	JobID     string
}

// Stats counts tests by status
type Stats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// NewRun creates an empty run
func NewRun() *Run {
	return &Run{Status: StatusPassed, Suites: []*Suite{}}
}

// NewSuite creates an empty suite with the given name
func NewSuite(name string) *Suite {
	return &Suite{Name: name, Status: StatusPassed}
}

// AddSuite appends a top-level suite
func (r *Run) AddSuite(s *Suite) {
	r.Suites = append(r.Suites, s)
}

// AddSuite appends a child suite
func (s *Suite) AddSuite(child *Suite) {
	s.Suites = append(s.Suites, child)
}

// AddTest appends a test. A nil attachment list is stored as empty so it
// serializes as [].
func (s *Suite) AddTest(t *Test) {
	if t.Attachments == nil {
		t.Attachments = []Attachment{}
	}
	s.Tests = append(s.Tests, t)
}

// ComputeStatus derives and stores the status of every suite in the run,
// then the run itself.
func (r *Run) ComputeStatus() Status {
	statuses := make([]Status, 0, len(r.Suites))
	for _, s := range r.Suites {
		statuses = append(statuses, s.ComputeStatus())
	}
	r.Status = worst(statuses...)
	return r.Status
}

// ComputeStatus derives the suite status from its tests and child suites.
func (s *Suite) ComputeStatus() Status {
	statuses := make([]Status, 0, len(s.Suites)+len(s.Tests))
	for _, child := range s.Suites {
		statuses = append(statuses, child.ComputeStatus())
	}
	for _, t := range s.Tests {
		statuses = append(statuses, t.Status)
	}
	s.Status = worst(statuses...)
	return s.Status
}

// Stats walks the run and counts every test.
func (r *Run) Stats() Stats {
	var st Stats
	for _, s := range r.Suites {
		s.count(&st)
	}
	return st
}

func (s *Suite) count(st *Stats) {
	for _, child := range s.Suites {
		child.count(st)
	}
	for _, t := range s.Tests {
		st.Total++
		switch t.Status {
		case StatusPassed:
			st.Passed++
		case StatusSkipped:
			st.Skipped++
		default:
			st.Failed++
		}
	}
}

// Marshal serializes the run as indented JSON
func (r *Run) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// ParseRun reads a run serialized by Marshal
func ParseRun(data []byte) (*Run, error) {
	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &r, nil
}
