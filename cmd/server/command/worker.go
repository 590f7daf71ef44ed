package command

import (
	"context"
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-service/service"

	"github.com/TomCrypto/Team-208-s-Game/internal/content"
	"github.com/TomCrypto/Team-208-s-Game/internal/listener"
	"github.com/TomCrypto/Team-208-s-Game/internal/messaging"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
	"github.com/TomCrypto/Team-208-s-Game/internal/report"
	"github.com/TomCrypto/Team-208-s-Game/internal/server"
	"github.com/TomCrypto/Team-208-s-Game/internal/storage"
	"github.com/TomCrypto/Team-208-s-Game/internal/tuning"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	t := tuning.Default()
	if cfg.TuningPath != "" {
		var err error
		t, err = tuning.Load(cfg.TuningPath)
		if err != nil {
			return nil, fmt.Errorf("loading tuning: %w", err)
		}
	}
	factory := content.NewFactory(t)

	store, err := cfg.Storage.BuildPersistence()
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	world, err := server.LoadWorld(store, factory, cfg.Seed)
	if err != nil {
		return nil, err
	}

	codec, err := protocol.NewCodec()
	if err != nil {
		return nil, fmt.Errorf("creating codec: %w", err)
	}

	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	opts := []server.GameServerOpt{
		server.WithBus(natsServer),
		server.WithBlacklist(cfg.Blacklist...),
		server.WithMaxPlayers(cfg.maxPlayers()),
		server.WithTickLength(cfg.tickLength()),
	}
	if store != nil {
		opts = append(opts, server.WithPersistence(store))
	}
	gameServer := server.NewGameServer(world, factory, codec, opts...)

	// Create Listeners
	cm := listener.NewConnectionManager(gameServer)
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		worker, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d-%s", i, l.Protocol)] = worker
	}

	tmpl := ""
	if cfg.ReportTemplate != "" {
		b, err := os.ReadFile(cfg.ReportTemplate)
		if err != nil {
			return nil, fmt.Errorf("reading report template: %w", err)
		}
		tmpl = string(b)
	}
	renderer, err := report.NewRenderer(tmpl)
	if err != nil {
		return nil, fmt.Errorf("creating report renderer: %w", err)
	}
	reporter := report.NewReporter(gameServer, renderer,
		report.WithInterval(cfg.reportInterval()),
		report.WithResponder(natsServer, messaging.ReportSubject),
	)

	workers := service.WorkerList{
		"nats":      natsServer,
		"server":    &gameWorker{srv: gameServer, store: store},
		"listeners": &listeners,
		"reporter":  reporter,
	}
	if cfg.Profile.enabled() {
		workers["profiler"] = &profiler{cfg: cfg.Profile}
	}

	return workers, nil
}

// gameWorker runs the game server and closes its store once the final save is done.
type gameWorker struct {
	srv   *server.GameServer
	store storage.Persistence
}

func (w *gameWorker) Start(ctx context.Context) error {
	el := errors.NewErrorList()
	el.Add(w.srv.Start(ctx))
	if w.store != nil {
		el.Add(w.store.Close())
	}
	return el.Err()
}
