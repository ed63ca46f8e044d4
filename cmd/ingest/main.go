// Command ingest loads outlet records into Postgres and syncs the hybrid
// search index.
//
//	ingest -seed outlets.yaml        upsert the snapshot, then reindex everything
//	ingest -seed outlets.yaml -async upsert, then publish one change event per outlet
//	ingest                           reindex whatever Postgres already holds
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/outlet-assistant/internal/bootstrap"
	"github.com/kirillkom/outlet-assistant/internal/config"
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/seed"
	"github.com/kirillkom/outlet-assistant/internal/observability/logging"
)

func main() {
	seedPath := flag.String("seed", "", "YAML file with outlets to upsert before indexing")
	async := flag.Bool("async", false, "publish change events for the worker instead of indexing inline")
	flag.Parse()

	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("ingest", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *seedPath, *async); err != nil {
		slog.Error("ingest_failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, seedPath string, async bool) error {
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{WithQueue: async})
	if err != nil {
		return err
	}
	defer app.Close()

	var changed []int64
	if seedPath != "" {
		outlets, err := seed.LoadFile(seedPath)
		if err != nil {
			return err
		}
		for i := range outlets {
			if err := app.Repo.Upsert(ctx, &outlets[i]); err != nil {
				return err
			}
			changed = append(changed, outlets[i].ID)
		}
		slog.Info("seed_upserted", "path", seedPath, "outlets", len(outlets))
	}

	if async {
		for _, id := range changed {
			if err := app.Queue.PublishOutletChanged(ctx, id); err != nil {
				return err
			}
		}
		slog.Info("outlet_events_published", "events", len(changed))
		return nil
	}

	indexed, err := app.Indexer.SyncAll(ctx)
	if err != nil {
		return err
	}
	slog.Info("ingest_completed", "indexed", indexed)
	return nil
}
