package messages

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownAttempt is returned when no testCaseStarted was seen for an ID
	ErrUnknownAttempt = errors.New("unknown test case attempt")
	// ErrIncompleteAttempt is returned when a referenced test case, pickle or document is missing
	ErrIncompleteAttempt = errors.New("incomplete test case attempt")
	// ErrDuplicateURI is returned for pickles whose feature file was loaded more than once
	ErrDuplicateURI = errors.New("feature file registered more than once")
)

// SourceLocation points at the scenario (or example row) a test case came from
type SourceLocation struct {
	URI  string `json:"uri"`
	Line int64  `json:"line"`
}

// TestCaseAttempt is one execution attempt of a test case with everything needed to report it
type TestCaseAttempt struct {
	ID             string
	Name           string
	Attempt        int
	SourceLocation SourceLocation
	Steps          []StepAttempt
}

// StepAttempt is a hook or a pickle step together with its result
type StepAttempt struct {
	Keyword     string
	Text        string
	Result      TestStepResult
	Attachments []AttachmentBody
}

// AttachmentBody is a decoded attachment
type AttachmentBody struct {
	TestCaseStartedID string
	FileName          string
	MediaType         string
	Body              []byte
}

type attempt struct {
	started     TestCaseStarted
	results     map[string]TestStepResult
	attachments map[string][]AttachmentBody
}

// Collector indexes envelopes so that finished test cases can be looked up by attempt ID
type Collector struct {
	documents   map[string]*GherkinDocument
	duplicates  map[string]bool
	steps       map[string]Step
	locations   map[string]Location
	pickles     map[string]*Pickle
	pickleSteps map[string]PickleStep
	testCases   map[string]*TestCase
	attempts    map[string]*attempt
}

// NewCollector creates an empty Collector
func NewCollector() *Collector {
	return &Collector{
		documents:   make(map[string]*GherkinDocument),
		duplicates:  make(map[string]bool),
		steps:       make(map[string]Step),
		locations:   make(map[string]Location),
		pickles:     make(map[string]*Pickle),
		pickleSteps: make(map[string]PickleStep),
		testCases:   make(map[string]*TestCase),
		attempts:    make(map[string]*attempt),
	}
}

// Process records an envelope. Envelopes must arrive in emission order.
func (c *Collector) Process(env *Envelope) error {
	switch {
	case env.GherkinDocument != nil:
		c.addDocument(env.GherkinDocument)
	case env.Pickle != nil:
		c.pickles[env.Pickle.ID] = env.Pickle
		for _, ps := range env.Pickle.Steps {
			c.pickleSteps[ps.ID] = ps
		}
	case env.TestCase != nil:
		c.testCases[env.TestCase.ID] = env.TestCase
	case env.TestCaseStarted != nil:
		c.attempts[env.TestCaseStarted.ID] = &attempt{
			started:     *env.TestCaseStarted,
			results:     make(map[string]TestStepResult),
			attachments: make(map[string][]AttachmentBody),
		}
	case env.TestStepFinished != nil:
		a, ok := c.attempts[env.TestStepFinished.TestCaseStartedID]
		if !ok {
			return fmt.Errorf("step finished for %q: %w", env.TestStepFinished.TestCaseStartedID, ErrUnknownAttempt)
		}
		a.results[env.TestStepFinished.TestStepID] = env.TestStepFinished.TestStepResult
	case env.Attachment != nil:
		att := env.Attachment
		if att.TestCaseStartedID == "" {
			return nil
		}
		a, ok := c.attempts[att.TestCaseStartedID]
		if !ok {
			return fmt.Errorf("attachment for %q: %w", att.TestCaseStartedID, ErrUnknownAttempt)
		}
		body, err := decodeBody(att)
		if err != nil {
			return err
		}
		a.attachments[att.TestStepID] = append(a.attachments[att.TestStepID], body)
	}
	return nil
}

func decodeBody(att *Attachment) (AttachmentBody, error) {
	body := AttachmentBody{
		TestCaseStartedID: att.TestCaseStartedID,
		FileName:          att.FileName,
		MediaType:         att.MediaType,
	}
	switch strings.ToUpper(att.ContentEncoding) {
	case "BASE64":
		data, err := base64.StdEncoding.DecodeString(att.Body)
		if err != nil {
			return body, fmt.Errorf("decode attachment body: %w", err)
		}
		body.Body = data
	default:
		body.Body = []byte(att.Body)
	}
	return body, nil
}

func (c *Collector) addDocument(doc *GherkinDocument) {
	if _, ok := c.documents[doc.URI]; ok {
		c.duplicates[doc.URI] = true
	}
	c.documents[doc.URI] = doc
	if doc.Feature == nil {
		return
	}
	for _, child := range doc.Feature.Children {
		c.addBackground(child.Background)
		c.addScenario(child.Scenario)
		if child.Rule != nil {
			for _, rc := range child.Rule.Children {
				c.addBackground(rc.Background)
				c.addScenario(rc.Scenario)
			}
		}
	}
}

func (c *Collector) addBackground(bg *Background) {
	if bg == nil {
		return
	}
	for _, s := range bg.Steps {
		c.steps[s.ID] = s
	}
}

func (c *Collector) addScenario(sc *Scenario) {
	if sc == nil {
		return
	}
	c.locations[sc.ID] = sc.Location
	for _, s := range sc.Steps {
		c.steps[s.ID] = s
	}
	for _, ex := range sc.Examples {
		for _, row := range ex.TableBody {
			c.locations[row.ID] = row.Location
		}
	}
}

// TestCaseAttempt resolves a testCaseStarted ID into the full attempt detail.
func (c *Collector) TestCaseAttempt(testCaseStartedID string) (*TestCaseAttempt, error) {
	a, ok := c.attempts[testCaseStartedID]
	if !ok {
		return nil, fmt.Errorf("%q: %w", testCaseStartedID, ErrUnknownAttempt)
	}
	tc, ok := c.testCases[a.started.TestCaseID]
	if !ok {
		return nil, fmt.Errorf("test case %q: %w", a.started.TestCaseID, ErrIncompleteAttempt)
	}
	pickle, ok := c.pickles[tc.PickleID]
	if !ok {
		return nil, fmt.Errorf("pickle %q: %w", tc.PickleID, ErrIncompleteAttempt)
	}
	if c.duplicates[pickle.URI] {
		return nil, fmt.Errorf("%s: %w", pickle.URI, ErrDuplicateURI)
	}
	if _, ok := c.documents[pickle.URI]; !ok {
		return nil, fmt.Errorf("gherkin document %q: %w", pickle.URI, ErrIncompleteAttempt)
	}

	result := &TestCaseAttempt{
		ID:      testCaseStartedID,
		Name:    pickle.Name,
		Attempt: a.started.Attempt,
		SourceLocation: SourceLocation{
			URI:  pickle.URI,
			Line: c.pickleLine(pickle),
		},
	}

	seenPickleStep := false
	for _, ts := range tc.TestSteps {
		step := StepAttempt{
			Result:      a.results[ts.ID],
			Attachments: a.attachments[ts.ID],
		}
		if step.Result.Status == "" {
			step.Result.Status = "UNKNOWN"
		}
		if ts.HookID != "" {
			step.Keyword = "After"
			if !seenPickleStep {
				step.Keyword = "Before"
			}
		} else {
			seenPickleStep = true
			ps, ok := c.pickleSteps[ts.PickleStepID]
			if !ok {
				return nil, fmt.Errorf("pickle step %q: %w", ts.PickleStepID, ErrIncompleteAttempt)
			}
			step.Text = ps.Text
			if len(ps.AstNodeIDs) > 0 {
				step.Keyword = c.steps[ps.AstNodeIDs[0]].Keyword
			}
		}
		result.Steps = append(result.Steps, step)
	}

	return result, nil
}

// pickleLine is the line of the example row for outlines, else of the scenario.
func (c *Collector) pickleLine(p *Pickle) int64 {
	if len(p.AstNodeIDs) == 0 {
		return 0
	}
	return c.locations[p.AstNodeIDs[len(p.AstNodeIDs)-1]].Line
}
