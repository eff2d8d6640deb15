// Command prono builds contest leaderboards from a snapshot file and prints
// them as a table or as JSON.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/okian/prono/internal/adapters/fixture"
	"github.com/okian/prono/internal/adapters/repository"
	app "github.com/okian/prono/internal/app"
	"github.com/okian/prono/internal/config"
	"github.com/okian/prono/internal/domain/leaderboard"
	"github.com/okian/prono/internal/domain/model"
	"github.com/okian/prono/internal/domain/multiplier"
	"github.com/okian/prono/internal/domain/scoring"
	"github.com/okian/prono/pkg/logger"
	"github.com/okian/prono/pkg/metrics"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitRejected = 2
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
)

type options struct {
	snapshot string
	format   string
	top      int
	user     string
	contest  string
	envFile  string
	metrics  bool
	noColor  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fset := flag.NewFlagSet("prono", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.StringVar(&o.snapshot, "snapshot", "", "Snapshot file (YAML or JSON) with contests, results and predictions")
	fset.StringVar(&o.format, "format", formatTable, "Output format: table or json")
	fset.IntVar(&o.top, "top", -1, "Rows per contest; 0 prints all (default: top_limit from config)")
	fset.StringVar(&o.user, "user", "", "Only print the row of this user")
	fset.StringVar(&o.contest, "contest", "", "Only build this contest")
	fset.StringVar(&o.envFile, "env", ".env", "Optional dotenv file loaded before the config")
	fset.BoolVar(&o.metrics, "metrics", false, "Print build metrics in Prometheus text format after the output")
	fset.BoolVar(&o.noColor, "no-color", false, "Disable colored output")
	if err := fset.Parse(args); err != nil {
		return o, err
	}
	if o.snapshot == "" {
		return o, errors.New("-snapshot is required")
	}
	if o.format != formatTable && o.format != formatJSON {
		return o, fmt.Errorf("unknown format %q", o.format)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	if opts.noColor {
		color.NoColor = true
	}

	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(stderr, "failed to load env file: "+err.Error())
		return exitFailure
	}

	if err := logger.Init(); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging: "+err.Error())
		return exitFailure
	}
	logger.SetOutput(stderr)
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config: "+err.Error())
		return exitFailure
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		fmt.Fprintln(stderr, "failed to set log level: "+err.Error())
		return exitFailure
	}
	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		fmt.Fprintln(stderr, "failed to set log format: "+err.Error())
		return exitFailure
	}
	log := logger.Named("prono")

	contests, err := fixture.Load(ctx, opts.snapshot)
	if err != nil {
		log.Error(ctx, "failed to load snapshot", logger.String("path", opts.snapshot), logger.Error(err))
		return exitFailure
	}

	store := repository.NewMemoryStore()
	for _, c := range contests {
		if opts.contest != "" && c.ID() != opts.contest {
			continue
		}
		if err := store.Load(ctx, c.Snapshot, c.Entries); err != nil {
			log.Error(ctx, "failed to store contest", logger.String("contest", c.ID()), logger.Error(err))
			return exitFailure
		}
	}
	ids := store.ContestIDs(ctx)
	if len(ids) == 0 {
		log.Error(ctx, "no contest to build", logger.String("contest", opts.contest))
		return exitFailure
	}

	svc := app.New(
		app.WithStore(store),
		app.WithAggregator(newAggregator(cfg)),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithPendingSize(cfg.PendingSize),
		app.WithLogger(log),
	)

	results := svc.BuildAll(ctx, ids)

	top := opts.top
	if top < 0 {
		top = cfg.TopLimit
	}
	r := renderer{out: stdout, top: top, user: opts.user}
	if opts.format == formatJSON {
		err = r.writeJSON(results)
	} else {
		err = r.writeTable(results)
	}
	if err != nil {
		log.Error(ctx, "failed to write output", logger.Error(err))
		return exitFailure
	}

	code := exitOK
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		color.New(color.FgRed).Fprintf(stderr, "contest %s: %v\n", res.ContestID, res.Err)
		switch {
		case model.IsRejection(res.Err):
			if code == exitOK {
				code = exitRejected
			}
		default:
			code = exitFailure
		}
	}

	if opts.metrics {
		if err := metrics.WriteText(stdout); err != nil {
			log.Error(ctx, "failed to write metrics", logger.Error(err))
			return exitFailure
		}
	}
	return code
}

func newAggregator(cfg *config.Config) *leaderboard.Aggregator {
	return leaderboard.New(
		leaderboard.WithScorer(scoring.NewScorer(scoring.WithTable(cfg.ScoringTable()))),
		leaderboard.WithResolver(multiplier.NewResolver(multiplier.WithTable(cfg.MultiplierTable()))),
	)
}
