package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"scr/internal/config"
	"scr/internal/messages"
	"scr/internal/reporter"
	"scr/internal/sauce"
	"scr/internal/storage"
)

// pipeline wires a message stream to a reporter
type pipeline struct {
	stream   *messages.Stream
	reporter *reporter.Reporter
	history  *storage.HistoryStore
	log      *zap.Logger
}

func newPipeline(ctx context.Context, cfg *config.Config, out io.Writer, log *zap.Logger, store reporter.Store) *pipeline {
	var api reporter.ReportAPI
	if cfg.HasCredentials() {
		api = sauce.NewClient(cfg.GetAPIURL(), cfg.Username, cfg.AccessKey, userAgent(cfg.Version))
	}

	stream := messages.NewStream(messages.NewCollector())
	stream.OnError(func(err error) {
		log.Warn("message not collected", zap.Error(err))
	})

	p := &pipeline{stream: stream, log: log}

	var opts []reporter.Option
	if cfg.HistoryDSN != "" {
		history, err := storage.OpenHistory(ctx, cfg.HistoryDSN)
		if err != nil {
			log.Warn("run history disabled", zap.Error(err))
			color.New(color.FgYellow).Fprintf(out, "Run history disabled: %v\n", err)
		} else {
			p.history = history
			opts = append(opts, reporter.WithHistory(history))
		}
	}

	console := reporter.NewConsoleLog(out)
	uploader := reporter.NewUploader(cfg, api, console, log)
	p.reporter = reporter.New(cfg, stream.Collector(), store, uploader, console, log, opts...)
	p.reporter.Listen(ctx, stream)
	return p
}

// consume feeds r through the stream and reports whether the run was finalized
func (p *pipeline) consume(ctx context.Context, r io.Reader) error {
	if err := p.stream.Consume(ctx, r); err != nil {
		return fmt.Errorf("read messages: %w", err)
	}
	if !p.reporter.Done() {
		p.log.Warn("message stream ended before the test run finished, no report written")
		return fmt.Errorf("message stream ended before the test run finished")
	}
	return nil
}

func (p *pipeline) close() {
	if p.history == nil {
		return
	}
	if err := p.history.Close(); err != nil {
		p.log.Warn("close run history", zap.Error(err))
	}
}

func userAgent(version string) string {
	return "cucumber-reporter/" + version
}
