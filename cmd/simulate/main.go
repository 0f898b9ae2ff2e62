package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"mailroom-simulator/internal/adapters/delivery"
	"mailroom-simulator/internal/adapters/mailgen"
	"mailroom-simulator/internal/adapters/reports"
	"mailroom-simulator/internal/adapters/repositories"
	"mailroom-simulator/internal/config"
	"mailroom-simulator/internal/platform/db"
	"mailroom-simulator/internal/platform/logging"
	"mailroom-simulator/internal/platform/obs"
	"mailroom-simulator/internal/platform/render"
	"mailroom-simulator/internal/ports"
	"mailroom-simulator/internal/services"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var errRunFailed = errors.New("simulation did not complete")

// main is the application composition root.
// It wires the mail source, robots and report backends and runs one simulation.
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the automail mailroom robot simulation",
		Long: `simulate drives a fleet of mail robots through a building until every
scheduled item has been delivered, then prints a run summary and stores the
report in the configured backends.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./automail.yaml)")
	flags.Int64("seed", 0, "random seed for the mail generator")
	flags.Int("max-ticks", 0, "stop with a fault after this many ticks (0 = unbounded)")
	flags.StringSlice("robots", nil, "robot roster, e.g. Standard,Big,Careful,Weak")
	flags.String("source", "", "mail source: generator, sqlite or postgres")
	flags.Int("count", 0, "number of generated mail items")
	flags.StringSlice("report", nil, "report backends: sqlite, postgres, redis")
	flags.Bool("verify", false, "check item conservation after every tick")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	_ = v.BindPFlag("simulation.seed", flags.Lookup("seed"))
	_ = v.BindPFlag("simulation.max_ticks", flags.Lookup("max-ticks"))
	_ = v.BindPFlag("robots.types", flags.Lookup("robots"))
	_ = v.BindPFlag("mail.source", flags.Lookup("source"))
	_ = v.BindPFlag("mail.count", flags.Lookup("count"))
	_ = v.BindPFlag("report.backends", flags.Lookup("report"))
	_ = v.BindPFlag("simulation.verify_invariants", flags.Lookup("verify"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	ctx = obs.WithRunID(ctx, runID)
	logger = logger.With("run_id", runID)

	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i](); cerr != nil {
				logger.Warn("close resource", "err", cerr)
			}
		}
	}()

	source, err := openMailSource(cfg, &closers)
	if err != nil {
		return err
	}

	types, err := cfg.RobotTypes()
	if err != nil {
		return fmt.Errorf("robot roster: %w", err)
	}

	recorder := delivery.NewRecorder(cfg.Simulation.ScorePenalty, logger)
	pool := services.NewMailPool(cfg.Simulation.LoadLimit, logger)
	automail, err := services.NewAutomail(services.AutomailRequest{
		Types:         types,
		Settings:      cfg.RobotSettings(),
		MailroomFloor: cfg.Simulation.MailroomFloor,
		MaxDeliveries: cfg.Simulation.MaxDeliveriesPerLoad,
	}, pool, recorder, logger)
	if err != nil {
		return err
	}

	report, runErr := services.RunSimulation(ctx, services.SimulationRequest{
		RunID:            runID,
		Seed:             cfg.Simulation.Seed,
		MaxTicks:         cfg.Simulation.MaxTicks,
		VerifyInvariants: cfg.Simulation.VerifyInvariants,
	}, automail, source, recorder, logger)
	if report == nil {
		return runErr
	}

	// An interrupted run is still recorded.
	saveCtx := context.WithoutCancel(ctx)
	backends, err := reportBackends(saveCtx, cfg, &closers)
	if err != nil {
		return err
	}
	if len(backends) > 0 {
		if err := reports.SaveAll(saveCtx, backends, report, recorder.Records()); err != nil {
			return err
		}
		logger.Info("report saved", "backends", len(backends))
	}

	fmt.Println(render.Summary(report))

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "fault:", runErr)
		return errRunFailed
	}
	return nil
}

func openMailSource(cfg *config.Config, closers *[]func() error) (ports.MailSource, error) {
	switch cfg.Mail.Source {
	case "sqlite":
		conn, err := db.OpenSQLite(cfg.Report.SqlitePath)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, conn.Close)
		return repositories.NewMailRepository(conn), nil

	case "postgres":
		conn, err := db.Open(cfg.Report.DatabaseURL)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, conn.Close)
		return repositories.NewMailRepository(conn), nil

	default:
		gen, err := mailgen.NewGenerator(mailgen.GeneratorConfig{
			Seed:            cfg.Simulation.Seed,
			Count:           cfg.Mail.Count,
			LastArrivalTick: cfg.Mail.LastArrivalTick,
			MailroomFloor:   cfg.Simulation.MailroomFloor,
			Floors:          cfg.Simulation.Floors,
			MinWeight:       cfg.Mail.MinWeight,
			MaxWeight:       cfg.Mail.MaxWeight,
			PriorityRatio:   cfg.Mail.PriorityRatio,
			PriorityLevels:  cfg.Mail.PriorityLevels,
			FragileRatio:    cfg.Mail.FragileRatio,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil
	}
}

func reportBackends(ctx context.Context, cfg *config.Config, closers *[]func() error) ([]reports.Named, error) {
	var backends []reports.Named

	for _, name := range cfg.Report.Backends {
		switch name {
		case "sqlite":
			conn, err := db.OpenSQLite(cfg.Report.SqlitePath)
			if err != nil {
				return nil, err
			}
			*closers = append(*closers, conn.Close)
			if err := initSchema(ctx, conn); err != nil {
				return nil, err
			}
			backends = append(backends, reports.Named{Name: name, Repo: reports.NewSqliteReportRepository(conn)})

		case "postgres":
			conn, err := db.Open(cfg.Report.DatabaseURL)
			if err != nil {
				return nil, err
			}
			*closers = append(*closers, conn.Close)
			if err := initSchema(ctx, conn); err != nil {
				return nil, err
			}
			backends = append(backends, reports.Named{Name: name, Repo: reports.NewSQLReportRepository(conn)})

		case "redis":
			client := redis.NewClient(&redis.Options{Addr: cfg.Report.RedisAddr})
			*closers = append(*closers, client.Close)
			backends = append(backends, reports.Named{Name: name, Repo: reports.NewRedisReportRepository(client, cfg.Report.RedisPrefix)})

		default:
			return nil, fmt.Errorf("report backends: unknown backend %q", name)
		}
	}

	return backends, nil
}

func initSchema(ctx context.Context, conn *sql.DB) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("report backends: %w", err)
	}
	return nil
}
