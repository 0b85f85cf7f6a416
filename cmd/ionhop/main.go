// Command ionhop is the solver's entry point: it resolves CLI
// arguments and an optional YAML run config, loads a job model (the
// SQLite-backed loader itself is an out-of-scope external collaborator;
// this binary falls back to model.DemoJob when no database is wired
// in), builds the KMC or MMC engine, and drives loop.Loop to completion
// while an optional status server observes progress.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"github.com/niceyeti/ionhop/config"
	"github.com/niceyeti/ionhop/errs"
	"github.com/niceyeti/ionhop/kmc"
	"github.com/niceyeti/ionhop/loop"
	"github.com/niceyeti/ionhop/mmc"
	"github.com/niceyeti/ionhop/model"
	"github.com/niceyeti/ionhop/monitor"
	"github.com/niceyeti/ionhop/plugin"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		// A fatal error writes a single structured report and exits with
		// an error code; no partial state is kept.
		log.Printf("fatal: kind=%s: %v", errs.KindOf(err), err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	const fn = "main.run"

	args, err := config.ParseArgs(argv)
	if err != nil {
		return errs.Wrap(errs.CmdArgument, fn, err)
	}

	runCfg := defaultRunConfig()
	if args.IOPath != "" {
		if cfg, cfgErr := config.FromYaml(args.IOPath + "/config.yaml"); cfgErr == nil {
			runCfg = cfg
		}
		// A missing or malformed config file is recoverable: the
		// compiled-in defaults above are used instead.
	}
	if args.JumpHistogramMax > 0 {
		runCfg.JumpHistogramMax = args.JumpHistogramMax
	}
	if args.FastExp {
		runCfg.UseFastExp = true
	}

	job, err := loadJob(args, runCfg)
	if err != nil {
		return errs.Wrap(errs.Database, fn, err)
	}
	if runCfg.JumpHistogramMax > 0 {
		job.JumpHistogramMax = runCfg.JumpHistogramMax
	}
	if runCfg.UseFastExp {
		job.Flags.UseFastExp = true
	}
	if err := model.Validate(job); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt)
	defer stopSignals()

	mon := monitor.NewServer(monitorAddr(args))

	group, groupCtx := errgroup.WithContext(sigCtx)
	group.Go(func() error {
		return runSolver(groupCtx, job, args, runCfg, mon)
	})
	group.Go(func() error {
		if err := mon.Serve(); err != nil {
			return errs.Wrap(errs.Stream, fn, err)
		}
		return nil
	})

	return group.Wait()
}

// monitorAddr picks the status-server bind address. It defaults to a
// loopback-only port unless overridden by an environment variable, kept
// out of the formal CLI key table because it is ambient tooling, not a
// job-model parameter.
func monitorAddr(_ *config.Args) string {
	if a := os.Getenv("IONHOP_MONITOR_ADDR"); a != "" {
		return a
	}
	return "127.0.0.1:8090"
}

func loadJob(args *config.Args, cfg *config.RunConfig) (*model.Job, error) {
	if args.DBPath == "" {
		// No database collaborator configured: run the built-in demo job
		// so the binary is exercisable end to end.
		return model.DemoJob(0x853c49e6748fea9b, 0xda3e39cb94b95bdb), nil
	}
	// The SQLite-backed loader is an out-of-scope external collaborator;
	// this binary declares the contract via model.Loader but does not
	// implement a database driver itself.
	return nil, errs.New(errs.NotImplemented, "main.loadJob", "database-backed job loading is an out-of-scope collaborator")
}

func runSolver(ctx context.Context, job *model.Job, args *config.Args, runCfg *config.RunConfig, hook plugin.OutputHook) error {
	if job.Flags.UseKMC {
		engine := kmc.NewEngine(job)
		reason := newLoop(engine, job, args, runCfg, hook).Run(ctx, nil)
		fmt.Printf("kmc run ended: %s\n", reason)
		return nil
	}

	if job.Flags.UsePrerun {
		return errs.New(errs.NotImplemented, "main.runSolver", "an MMC pre-run phase is not implemented")
	}
	engine := mmc.NewEngine(job)
	reason := newLoop(engine, job, args, runCfg, hook).Run(ctx, nil)
	fmt.Printf("mmc run ended: %s\n", reason)
	return nil
}

// newLoop builds the loop.Config shared by both engines from the job
// model, CLI args, and run config, independent of which concrete engine
// satisfies loop.Runner.
func newLoop(runner loop.Runner, job *model.Job, args *config.Args, runCfg *config.RunConfig, hook plugin.OutputHook) *loop.Loop {
	cfg := loop.Config{
		BlockCycles:         runCfg.BlockCycles,
		BlockCount:          runCfg.BlockCount,
		TargetMCSP:          job.TargetMCSP,
		PrerunTargetMCSP:    job.KMC.PrerunTargetMCSP,
		MobileParticleCount: job.MobileParticleCount(),
		UsePrerun:           job.Flags.UsePrerun,
		TimeLimitS:          job.TimeLimitS,
		MinSuccessRateHz:    runCfg.MinSuccessRateHz,
		TemperatureK:        job.TemperatureK,
		IODir:               args.IOPath,
		SkipSave:            job.Flags.SkipSave,
	}
	return loop.New(runner, cfg, hook)
}

func defaultRunConfig() *config.RunConfig {
	return &config.RunConfig{
		UseKMC:           true,
		TemperatureK:     300.0,
		TargetMCSP:       1.0,
		BlockCycles:      100_000,
		BlockCount:       100,
		MinSuccessRateHz: 0,
	}
}
