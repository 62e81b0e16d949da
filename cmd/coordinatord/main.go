// Command coordinatord is the reference CLI host for package
// coordinator: it owns transport, time, and logging, and does nothing
// the spec assigns to the Coordinator core itself (spec.md §1's "host
// interprets, core doesn't act" boundary). It loads a Config via
// cobra/viper, admits a fixed client set, then pumps Tick on a
// clockwork-driven ticker exactly as the teacher's Hare.Start() pumps
// per-layer work off its wall clock.
package main

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/psyche-run/coordinator/common/types"
	"github.com/psyche-run/coordinator/config"
	"github.com/psyche-run/coordinator/coordinator"
	"github.com/psyche-run/coordinator/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var (
		configPath    string
		runID         string
		mainAuthority string
		clients       []string
		tickInterval  time.Duration
		metricsAddr   string
		verbose       bool
		trace         bool
	)

	cmd := &cobra.Command{
		Use:   "coordinatord",
		Short: "Reference host for the Psyche Coordinator state machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			authority, err := parseIdentity(mainAuthority)
			if err != nil {
				return fmt.Errorf("--main-authority: %w", err)
			}
			memberIDs, err := parseIdentities(clients)
			if err != nil {
				return fmt.Errorf("--clients: %w", err)
			}

			if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
				return fmt.Errorf("registering metrics: %w", err)
			}
			go serveMetrics(metricsAddr, log)

			clock := clockwork.NewRealClock()
			now := uint64(clock.Now().Unix())

			opts := []coordinator.Opt{coordinator.WithLogger(log)}
			if trace {
				opts = append(opts, coordinator.WithTracer(loggingTracer{log: log}))
			}
			c := coordinator.New(
				coordinator.AuthorizationPredicateFunc(func(types.ClientIdentity, []byte) bool { return true }),
				opts...,
			)
			if err := c.Init(types.RunId(runID), cfg, types.ModelDescriptor{}, types.Metadata{Name: runID}, authority, now); err != nil {
				return fmt.Errorf("init: %w", err)
			}
			for _, id := range memberIDs {
				if err := c.Join(id, nil, now); err != nil {
					log.Warn("join rejected at startup", zap.Stringer("identity", id), zap.Error(err))
				}
			}

			ticker := clock.NewTicker(tickInterval)
			defer ticker.Stop()
			log.Info("coordinatord running", zap.String("run_id", runID), zap.Duration("tick_interval", tickInterval))

			for {
				<-ticker.Chan()
				now = uint64(clock.Now().Unix())
				effects, err := c.Tick(now)
				if err != nil {
					log.Error("tick failed", zap.Error(err))
					continue
				}
				for _, e := range effects {
					log.Info("effect", zap.Stringer("kind", e.Kind), zap.Uint64("now", now))
				}
				if c.State().Phase.IsTerminal() {
					log.Info("run finished")
					return nil
				}
			}
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&configPath, "config", "", "path to a config file (yaml/json/toml, viper-loaded)")
	fs.StringVar(&runID, "run-id", "local-run", "run identifier")
	fs.StringVar(&mainAuthority, "main-authority", strings.Repeat("00", 32), "hex-encoded 32-byte main authority identity")
	fs.StringSliceVar(&clients, "clients", nil, "hex-encoded 32-byte client identities to admit at startup")
	fs.DurationVar(&tickInterval, "tick-interval", time.Second, "wall-clock interval between Tick calls")
	fs.StringVar(&metricsAddr, "metrics-addr", ":2112", "address to serve /metrics on")
	fs.BoolVar(&verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&trace, "trace", false, "log every phase change and round start/end via the Tracer hook")
	if err := config.BindFlags(fs, v); err != nil {
		panic(err)
	}

	return cmd
}

// loggingTracer backs --trace: it logs every phase change and round
// start/end at info level, separate from the per-effect logging the
// main tick loop already does unconditionally.
type loggingTracer struct {
	log *zap.Logger
}

func (t loggingTracer) OnPhaseChange(from, to types.Phase) {
	t.log.Info("phase change", zap.Stringer("from", from), zap.Stringer("to", to))
}

func (t loggingTracer) OnRoundStart(height uint64) {
	t.log.Info("round start", zap.Uint64("height", height))
}

func (t loggingTracer) OnRoundEnd(height uint64, accepted int) {
	t.log.Info("round end", zap.Uint64("height", height), zap.Int("accepted_witnesses", accepted))
}

func (t loggingTracer) OnEffect(e types.Effect) {}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", zap.Error(err))
	}
}

func parseIdentity(s string) (types.ClientIdentity, error) {
	var id types.ClientIdentity
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("expected %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

func parseIdentities(ss []string) ([]types.ClientIdentity, error) {
	out := make([]types.ClientIdentity, 0, len(ss))
	for _, s := range ss {
		id, err := parseIdentity(s)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}
