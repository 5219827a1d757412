package reporter

import (
	"fmt"
	"strings"

	"scr/internal/domain"
	"scr/internal/messages"
)

// buildSuite turns one finished test case attempt into a feature file suite holding a
// single scenario suite, one test per step. Attachment bodies are returned as assets.
func buildSuite(a *messages.TestCaseAttempt) (file, scenario *domain.Suite, assets []domain.Asset) {
	file = domain.NewSuite(a.SourceLocation.URI)
	scenario = domain.NewSuite(a.Name)
	scenario.Metadata = map[string]any{
		"attempt":        a.Attempt,
		"sourceLocation": a.SourceLocation,
	}

	for _, step := range a.Steps {
		test := &domain.Test{
			Name:        step.Keyword + step.Text,
			Status:      domain.ParseStatus(step.Result.Status),
			Output:      step.Result.Message,
			Duration:    domain.DurationMillis(step.Result.Duration.Seconds, step.Result.Duration.Nanos),
			Attachments: []domain.Attachment{},
		}
		for _, att := range step.Attachments {
			name := attachmentName(a.ID, att)
			assets = append(assets, domain.Asset{Filename: name, Data: att.Body})
			test.Attachments = append(test.Attachments, domain.Attachment{
				Name:        name,
				ContentType: att.MediaType,
				Path:        "",
			})
		}
		scenario.AddTest(test)
	}

	file.AddSuite(scenario)
	file.ComputeStatus()
	return file, scenario, assets
}

func attachmentName(caseID string, att messages.AttachmentBody) string {
	if att.TestCaseStartedID != "" {
		caseID = att.TestCaseStartedID
	}
	return caseID + ".log"
}

// transcriptLines describes a case the way it appears in console.log
func transcriptLines(a *messages.TestCaseAttempt) []string {
	lines := []string{fmt.Sprintf("%s\t#%s", a.Name, a.SourceLocation.URI)}
	for _, step := range a.Steps {
		lines = append(lines, fmt.Sprintf("  %s%s - %s", step.Keyword, step.Text, strings.ToUpper(step.Result.Status)))
	}
	return lines
}
