package preview

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/davka-nysa/davka/internal/carousel"
	"github.com/davka-nysa/davka/internal/daily"
	"github.com/davka-nysa/davka/internal/locale"
	"github.com/davka-nysa/davka/internal/models"
	"github.com/davka-nysa/davka/internal/showcase"
)

type Options struct {
	Poller *showcase.Poller
	Clock  daily.Clock
	Lang   locale.Lang
	Source string

	// NarrowColumns moves the one-card breakpoint; zero keeps 96.
	NarrowColumns int
	Scheduler     carousel.Options
}

// Run starts the preview and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	model := NewModel(opts.Clock, opts.Lang, opts.Source, opts.NarrowColumns, opts.Scheduler)
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	// Logs would corrupt the alt screen.
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer slog.SetDefault(prev)

	pollCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if opts.Poller != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opts.Poller.Run(pollCtx, func(pl models.Payload, err error) {
				p.Send(payloadMsg{payload: pl, err: err})
			})
		}()
	}

	_, err := p.Run()
	cancel()
	wg.Wait()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
