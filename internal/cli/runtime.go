package cli

import (
	"fmt"

	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/shiftapi"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/sse"
	"github.com/cmlabs-hris/academy-shift-go/internal/repository/sqlite"
	"github.com/cmlabs-hris/academy-shift-go/internal/service/dispatcher"
)

// runtime is the client side wired for one command invocation
type runtime struct {
	queue      *sqlite.Queue
	client     *shiftapi.Client
	hub        *sse.Hub
	dispatcher *dispatcher.Dispatcher
}

func openRuntime(opts *RootOptions) (*runtime, error) {
	cfg := opts.config
	if cfg == nil {
		return nil, fmt.Errorf("client configuration not loaded")
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	queue, err := sqlite.OpenQueue(cfg.QueuePath)
	if err != nil {
		return nil, err
	}

	client := shiftapi.NewClient(cfg.APIURL, cfg.APIToken, cfg.RequestTimeout)
	hub := sse.NewHub()

	return &runtime{
		queue:      queue,
		client:     client,
		hub:        hub,
		dispatcher: dispatcher.NewDispatcher(queue, client, hub, cfg.FreshnessWindow, loc),
	}, nil
}

func (r *runtime) Close() error {
	return r.queue.Close()
}
