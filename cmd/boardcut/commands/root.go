package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/piwi3910/boardcut/internal/cache"
	"github.com/piwi3910/boardcut/internal/engine"
	"github.com/piwi3910/boardcut/internal/logging"
	"github.com/piwi3910/boardcut/internal/metrics"
	"github.com/piwi3910/boardcut/internal/model"
	"github.com/piwi3910/boardcut/internal/project"
	"github.com/piwi3910/boardcut/internal/service"
)

// env is the dependency graph shared by subcommands.
type env struct {
	opts     *Options
	cfg      model.AppConfig
	log      *slog.Logger
	registry *prometheus.Registry
	svc      *service.Service
	out      io.Writer
	errOut   io.Writer
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	return NewRootCommand(os.Stdout, os.Stderr).Execute()
}

// NewRootCommand builds the command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	e := &env{opts: NewOptions(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "boardcut",
		Short:         "Guillotine cut optimizer for melamine boards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.teardown()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	e.opts.AddFlags(root.PersistentFlags())

	root.AddCommand(
		optimizeCmd(e),
		compareCmd(e),
		getCmd(e),
		recentCmd(e),
		exportCmd(e),
		configCmd(e),
		catalogCmd(e),
	)
	return root
}

func (e *env) setup(cmd *cobra.Command) error {
	if err := e.opts.Validate(); err != nil {
		return err
	}
	cfg, err := project.LoadAppConfig(e.opts.ConfigPath)
	if err != nil {
		return err
	}
	e.cfg = e.opts.Apply(cmd.Flags(), cfg)
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	e.log = logging.New(e.cfg.LogLevel, e.cfg.LogFormat, e.errOut)
	e.registry = prometheus.NewRegistry()
	m := metrics.New(e.registry)

	store, err := e.newStore()
	if err != nil {
		return err
	}

	e.svc = service.New(service.Config{
		Optimizer: engine.New(engine.Config{Parallel: e.cfg.Parallel, Logger: e.log, Metrics: m}),
		Cache: cache.NewResultCache(cache.Config{
			Store:   store,
			TTL:     e.cfg.CacheTTL(),
			Logger:  e.log,
			Metrics: m,
		}),
		Logger: e.log,
	})
	return nil
}

// newStore picks the cache backend. A nil store disables caching.
func (e *env) newStore() (cache.Store, error) {
	switch {
	case e.opts.NoCache:
		return nil, nil
	case e.cfg.RedisURL != "":
		store, err := cache.NewRedisStore(cache.RedisOptions{URL: e.cfg.RedisURL, IndexLimit: e.cfg.RecentIndexLimit})
		if err != nil {
			return nil, err
		}
		if err := store.Ping(context.Background()); err != nil {
			e.log.Warn("redis not reachable, results will be computed without cache", "error", err)
		}
		return store, nil
	default:
		return cache.NewMemoryStore(e.cfg.RecentIndexLimit), nil
	}
}

func (e *env) teardown() error {
	if e.svc == nil {
		return nil
	}
	if e.opts.Metrics {
		e.printMetrics()
	}
	return e.svc.Close()
}

// context returns the command context bounded by the configured timeout.
func (e *env) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if t := e.cfg.RequestTimeout(); t > 0 {
		return context.WithTimeout(ctx, t)
	}
	return context.WithCancel(ctx)
}

func (e *env) printMetrics() {
	families, err := e.registry.Gather()
	if err != nil {
		e.log.Warn("failed to gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(e.errOut, "%s%s %g\n", mf.GetName(), labels, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(e.errOut, "%s%s count=%d sum=%g\n", mf.GetName(), labels, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}
