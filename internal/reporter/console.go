package reporter

import (
	"io"
	"strings"

	"github.com/acarl005/stripansi"
)

// ConsoleLog forwards everything written to it to the wrapped writer unchanged and
// keeps a transcript for upload. Transcript entries are normalized to plain text:
// ANSI escape sequences and one trailing newline are removed from each write.
type ConsoleLog struct {
	out   io.Writer
	lines []string
}

// NewConsoleLog wraps out
func NewConsoleLog(out io.Writer) *ConsoleLog {
	return &ConsoleLog{out: out}
}

// Write passes p through unchanged and appends it to the transcript
func (c *ConsoleLog) Write(p []byte) (int, error) {
	n, err := c.out.Write(p)
	c.Record(string(p))
	return n, err
}

// Record appends a line to the transcript without printing it
func (c *ConsoleLog) Record(line string) {
	c.lines = append(c.lines, strings.TrimSuffix(stripansi.Strip(line), "\n"))
}

// Lines returns the transcript entries in write order
func (c *ConsoleLog) Lines() []string {
	return c.lines
}

// Transcript joins the transcript into the console.log asset body
func (c *ConsoleLog) Transcript() []byte {
	return []byte(strings.Join(c.lines, "\n"))
}
