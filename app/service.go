// Package app wires the configuration into a runnable simulation:
// logger, event bus, metrics sinks, telemetry and the fleet supervisor.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/h2fleet/h2fleet/config"
	"github.com/h2fleet/h2fleet/core/fleet"
	coremetrics "github.com/h2fleet/h2fleet/core/metrics"
	coretelemetry "github.com/h2fleet/h2fleet/core/telemetry"
	"github.com/h2fleet/h2fleet/infra/logger"
	"github.com/h2fleet/h2fleet/infra/metrics"
	"github.com/h2fleet/h2fleet/infra/telemetry"
	"github.com/h2fleet/h2fleet/internal/eventbus"
	"github.com/h2fleet/h2fleet/pkg/export"
	"github.com/h2fleet/h2fleet/sim"
)

// Service owns the supervisor and its surrounding infrastructure for
// one simulation run.
type Service struct {
	cfg *config.Config
	sup *fleet.Supervisor
	bus *eventbus.Bus
	pub coretelemetry.Publisher
	log logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.SetGlobalLevel(cfg.Logging.Level)
	logg := logger.New("service")

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var pub coretelemetry.Publisher = coretelemetry.NopPublisher{}
	if cfg.Telemetry.Enabled {
		p, err := telemetry.New(cfg.Telemetry.MQTT)
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		pub = p
	}

	bus := eventbus.New()
	sup, err := fleet.New(cfg.Fleet, logg, sink, bus)
	if err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, sup: sup, bus: bus, pub: pub, log: logg}, nil
}

// Run executes the simulation and writes the configured outputs. It
// returns early when the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.log)
	telemetry.StartBridge(ctx, s.bus, s.pub, s.log)
	if addr := s.cfg.Metrics.PromAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	signal, err := s.signal()
	if err != nil {
		return err
	}

	runner := sim.NewRunner(s.sup, s.cfg.Fleet.Stack.Dt, s.log)
	report, err := runner.Run(ctx, signal)
	if err != nil {
		return err
	}
	return s.export(report)
}

func (s *Service) signal() ([]float64, error) {
	simCfg := s.cfg.Sim
	if simCfg.SeriesFile != "" {
		return sim.LoadSeries(simCfg.SeriesFile)
	}
	switch simCfg.Signal.Type {
	case "constant":
		return sim.ConstantSignal(simCfg.Signal.PowerW, simCfg.Steps), nil
	default:
		return sim.CosineSignal(simCfg.Signal.RatingMW, simCfg.Steps, simCfg.Signal.Cycles), nil
	}
}

func (s *Service) export(report sim.Report) error {
	var out io.Writer = os.Stdout
	if path := s.cfg.Sim.ReportFile; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("report file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				s.log.Errorf("report file close: %v", err)
			}
		}()
		out = f
	}
	if err := export.WriteReportJSON(out, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if path := s.cfg.Sim.HistoryFile; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("history file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				s.log.Errorf("history file close: %v", err)
			}
		}()
		if err := export.WriteHistoryCSV(f, s.sup.Stacks(), s.cfg.Fleet.Stack.Dt); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	return s.pub.Close()
}
