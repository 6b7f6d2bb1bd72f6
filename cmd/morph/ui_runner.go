package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"morph/internal/pipeline"
	"morph/internal/ui"
)

type transformOutcome struct {
	results map[string]pipeline.Result
	err     error
}

func runTransformAllWithUI(ctx context.Context, title string, files []string, cfg pipeline.Config, jobs int) (map[string]pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan transformOutcome, 1)

	cfg.Sink = pipeline.ChannelSink{Ch: events}
	tr := pipeline.New(cfg)

	go func() {
		results, err := tr.TransformAll(ctx, files, jobs)
		outcomeCh <- transformOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := awaitOutcome(cancel, events, outcomeCh)
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

// awaitOutcome collects the transform result after the UI stopped reading
// events. The producer blocks on the sink once the buffer fills, so the
// channel keeps draining until the producer closes it.
func awaitOutcome(cancel context.CancelFunc, events <-chan pipeline.Event, outcomeCh <-chan transformOutcome) transformOutcome {
	cancel()
	go func() {
		for range events {
		}
	}()
	return <-outcomeCh
}
