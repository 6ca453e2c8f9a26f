package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/schedcore/rpsched/internal/config"
	"github.com/schedcore/rpsched/internal/httpapi"
	"github.com/schedcore/rpsched/pkg/history"
	"github.com/schedcore/rpsched/pkg/memo"
	"github.com/schedcore/rpsched/pkg/scheduler/exact"
)

type serveOpts struct {
	addr       string
	configPath string
}

// serveCommand exposes the same pipeline the root command runs as a
// small HTTP service (§6 notes the CLI is the specified surface; this
// is the additive batch/CI surface the DOMAIN STACK table calls for).
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080", configPath: "rpsched.toml"}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the driver scheduling pipeline as an HTTP service (POST /schedule)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, &opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.configPath, "config", opts.configPath, "path to the optional rpsched.toml config file")
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, closeStore := memoStoreFromConfig(cfg.Memcache)
	defer closeStore()

	hist, closeHistory, err := historyFromConfig(ctx, cfg.History)
	if err != nil {
		return fmt.Errorf("connecting history store: %w", err)
	}
	defer closeHistory()

	srv := httpapi.New(cfg.Scheduler.Timeout(exact.DefaultTimeoutBalanced), cfg.Transforms.Names(), store, hist, logger)
	logger.Infof("listening on %s", opts.addr)
	return http.ListenAndServe(opts.addr, srv.Router)
}

func memoStoreFromConfig(cfg config.MemcacheConfig) (memo.Store, func()) {
	if cfg.Addr == "" {
		return memo.NewNullStore(), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: cfg.DB})
	store := memo.NewRedisCache(client)
	return store, func() { _ = store.Close() }
}

func historyFromConfig(ctx context.Context, cfg config.HistoryConfig) (*history.Store, func(), error) {
	if cfg.URI == "" {
		return nil, func() {}, nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	store, err := history.Connect(connectCtx, cfg.URI, cfg.Database, cfg.Collection)
	if err != nil {
		return nil, func() {}, err
	}
	return store, func() { _ = store.Close(context.Background()) }, nil
}
