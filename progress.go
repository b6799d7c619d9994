// progress.go: progress bar on a terminal, periodic log lines otherwise
package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/lavelinevgeny/mediasort/internal/logging"
)

type progress struct {
	log     *slog.Logger
	logStep int
	useBar  bool
	bar     *progressbar.ProgressBar
}

func newProgress(log *slog.Logger, logStep int) *progress {
	fd := os.Stderr.Fd()
	return &progress{
		log:     log,
		logStep: logStep,
		useBar:  isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
	}
}

// every is how often the organizer should report: after each file for the
// bar, every logStep files for log lines.
func (p *progress) every() int {
	if p.useBar {
		return 1
	}
	return p.logStep
}

func (p *progress) start(total int) {
	if !p.useBar {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Processing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *progress) update(done, total int) {
	if p.bar != nil {
		_ = p.bar.Set(done)
		return
	}
	logging.Notice(p.log, "progress", "done", done, "total", total)
}

func (p *progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
