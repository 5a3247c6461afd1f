package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/peterkuimelis/shardwars/internal/app"
	"github.com/peterkuimelis/shardwars/internal/config"
	"github.com/peterkuimelis/shardwars/internal/web"
)

func main() {
	cfgPath := flag.String("config", "config.toml", "path to config file")
	port := flag.Int("port", 0, "HTTP port to listen on (default from config)")
	flag.Parse()

	if err := run(*cfgPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string, port int) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	env, err := app.Open(cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if env.Cards != nil && cfg.Data.WatchCards {
		go func() {
			if err := env.Cards.Watch(ctx); err != nil {
				slog.Warn("card sheet watcher stopped", "error", err)
			}
		}()
	}

	srv := web.NewServer(web.Options{
		Cards:         env.Cards,
		Decks:         env.Decks,
		Session:       env.Session,
		IntentsPerSec: cfg.Server.IntentsPerSec,
		IntentBurst:   cfg.Server.IntentBurst,
	})

	if port == 0 {
		port = cfg.Server.WebPort
	}
	slog.Info("shardwars web UI listening", "url", fmt.Sprintf("http://localhost:%d", port))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(fmt.Sprintf(":%d", port)) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
