package messages

import "time"

// Envelope is one line of a Cucumber Messages NDJSON stream. Exactly one field is set.
// Only the message kinds needed to rebuild test case attempts are decoded.
type Envelope struct {
	Meta             *Meta             `json:"meta,omitempty"`
	GherkinDocument  *GherkinDocument  `json:"gherkinDocument,omitempty"`
	Pickle           *Pickle           `json:"pickle,omitempty"`
	TestCase         *TestCase         `json:"testCase,omitempty"`
	TestRunStarted   *TestRunStarted   `json:"testRunStarted,omitempty"`
	TestCaseStarted  *TestCaseStarted  `json:"testCaseStarted,omitempty"`
	TestStepFinished *TestStepFinished `json:"testStepFinished,omitempty"`
	TestCaseFinished *TestCaseFinished `json:"testCaseFinished,omitempty"`
	Attachment       *Attachment       `json:"attachment,omitempty"`
	TestRunFinished  *TestRunFinished  `json:"testRunFinished,omitempty"`
}

// Timestamp is a wall-clock instant as seconds and nanos since the epoch
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int64 `json:"nanos"`
}

// Time converts the timestamp, returning the zero time for an unset value.
func (t *Timestamp) Time() time.Time {
	if t == nil || (t.Seconds == 0 && t.Nanos == 0) {
		return time.Time{}
	}
	return time.Unix(t.Seconds, t.Nanos).UTC()
}

// Duration is an elapsed time as seconds and nanos
type Duration struct {
	Seconds int64 `json:"seconds"`
	Nanos   int64 `json:"nanos"`
}

// Meta describes the runner that produced the stream
type Meta struct {
	ProtocolVersion string  `json:"protocolVersion"`
	Implementation  Product `json:"implementation"`
	Runtime         Product `json:"runtime"`
	Os              Product `json:"os"`
}

// Product names a piece of software and its version
type Product struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Location is a position in a feature file
type Location struct {
	Line   int64 `json:"line"`
	Column int64 `json:"column,omitempty"`
}

// GherkinDocument is a parsed feature file
type GherkinDocument struct {
	URI     string   `json:"uri"`
	Feature *Feature `json:"feature,omitempty"`
}

// Feature is the root of a gherkin document
type Feature struct {
	Location Location       `json:"location"`
	Keyword  string         `json:"keyword"`
	Name     string         `json:"name"`
	Children []FeatureChild `json:"children"`
}

// FeatureChild holds exactly one of its fields
type FeatureChild struct {
	Rule       *Rule       `json:"rule,omitempty"`
	Background *Background `json:"background,omitempty"`
	Scenario   *Scenario   `json:"scenario,omitempty"`
}

// Rule groups scenarios inside a feature
type Rule struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Children []RuleChild `json:"children"`
}

// RuleChild holds exactly one of its fields
type RuleChild struct {
	Background *Background `json:"background,omitempty"`
	Scenario   *Scenario   `json:"scenario,omitempty"`
}

// Background steps run before every scenario of its feature or rule
type Background struct {
	ID    string `json:"id"`
	Steps []Step `json:"steps"`
}

// Scenario is a scenario or scenario outline
type Scenario struct {
	ID       string     `json:"id"`
	Location Location   `json:"location"`
	Keyword  string     `json:"keyword"`
	Name     string     `json:"name"`
	Steps    []Step     `json:"steps"`
	Examples []Examples `json:"examples,omitempty"`
}

// Examples is one examples table of an outline
type Examples struct {
	ID        string     `json:"id"`
	TableBody []TableRow `json:"tableBody,omitempty"`
}

// TableRow is a row of an examples table
type TableRow struct {
	ID       string   `json:"id"`
	Location Location `json:"location"`
}

// Step is a gherkin step as written in the feature file
type Step struct {
	ID       string   `json:"id"`
	Location Location `json:"location"`
	Keyword  string   `json:"keyword"`
	Text     string   `json:"text"`
}

// Pickle is a compiled scenario, one per outline example row
type Pickle struct {
	ID         string       `json:"id"`
	URI        string       `json:"uri"`
	Name       string       `json:"name"`
	Language   string       `json:"language"`
	Steps      []PickleStep `json:"steps"`
	AstNodeIDs []string     `json:"astNodeIds"`
}

// PickleStep is a step of a pickle with its AST references
type PickleStep struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	AstNodeIDs []string `json:"astNodeIds"`
}

// TestCase is the executable plan for a pickle
type TestCase struct {
	ID        string     `json:"id"`
	PickleID  string     `json:"pickleId"`
	TestSteps []TestStep `json:"testSteps"`
}

// TestStep is either a hook (HookID set) or a pickle step (PickleStepID set)
type TestStep struct {
	ID           string `json:"id"`
	HookID       string `json:"hookId,omitempty"`
	PickleStepID string `json:"pickleStepId,omitempty"`
}

// TestRunStarted marks the start of the run
type TestRunStarted struct {
	Timestamp Timestamp `json:"timestamp"`
}

// TestCaseStarted begins one attempt of a test case
type TestCaseStarted struct {
	ID         string    `json:"id"`
	TestCaseID string    `json:"testCaseId"`
	Attempt    int       `json:"attempt"`
	Timestamp  Timestamp `json:"timestamp"`
}

// TestStepFinished carries the result of one step of an attempt
type TestStepFinished struct {
	TestCaseStartedID string         `json:"testCaseStartedId"`
	TestStepID        string         `json:"testStepId"`
	TestStepResult    TestStepResult `json:"testStepResult"`
	Timestamp         Timestamp      `json:"timestamp"`
}

// TestStepResult is a step status with its duration and failure message
type TestStepResult struct {
	Duration Duration `json:"duration"`
	Status   string   `json:"status"`
	Message  string   `json:"message,omitempty"`
}

// TestCaseFinished ends one attempt of a test case
type TestCaseFinished struct {
	TestCaseStartedID string    `json:"testCaseStartedId"`
	Timestamp         Timestamp `json:"timestamp"`
	WillBeRetried     bool      `json:"willBeRetried"`
}

// Attachment is content attached by a step; Body is base64 when ContentEncoding is BASE64
type Attachment struct {
	Body              string `json:"body"`
	ContentEncoding   string `json:"contentEncoding"`
	MediaType         string `json:"mediaType"`
	FileName          string `json:"fileName,omitempty"`
	TestCaseStartedID string `json:"testCaseStartedId,omitempty"`
	TestStepID        string `json:"testStepId,omitempty"`
}

// TestRunFinished marks the end of the run
type TestRunFinished struct {
	Success   bool      `json:"success"`
	Timestamp Timestamp `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
}
