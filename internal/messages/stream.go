package messages

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedEnvelope is returned for a stream line that is not a valid envelope
var ErrMalformedEnvelope = errors.New("malformed envelope")

// maxLineSize bounds a single envelope; attachments are carried inline.
const maxLineSize = 64 * 1024 * 1024

// Handler receives envelopes in emission order
type Handler func(env *Envelope)

// Stream decodes an NDJSON messages stream, indexes it in a Collector and
// dispatches every envelope to its subscribers.
type Stream struct {
	collector *Collector
	handlers  []Handler
	onError   func(err error)
}

// NewStream creates a Stream backed by the given Collector
func NewStream(collector *Collector) *Stream {
	return &Stream{collector: collector}
}

// Collector returns the collector used for attempt lookups
func (s *Stream) Collector() *Collector {
	return s.collector
}

// Subscribe registers a handler. Handlers run after the collector has seen the envelope.
func (s *Stream) Subscribe(h Handler) {
	s.handlers = append(s.handlers, h)
}

// OnError makes collector errors non-fatal: they are passed to fn and consumption continues.
func (s *Stream) OnError(fn func(err error)) {
	s.onError = fn
}

// Consume reads r until EOF, one envelope per line.
func (s *Stream) Consume(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("line %d: %w: %v", line, ErrMalformedEnvelope, err)
		}
		if err := s.Dispatch(&env); err != nil {
			err = fmt.Errorf("line %d: %w", line, err)
			if s.onError == nil {
				return err
			}
			s.onError(err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read messages: %w", err)
	}
	return nil
}

// Dispatch feeds a single envelope through the collector and the subscribers.
// Subscribers see the envelope even when the collector rejected it.
func (s *Stream) Dispatch(env *Envelope) error {
	err := s.collector.Process(env)
	for _, h := range s.handlers {
		h(env)
	}
	return err
}
