// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/simcheck"
	"github.com/poiesic/simcheck/check"
	"github.com/poiesic/simcheck/config"
	"github.com/poiesic/simcheck/core"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "simcheck",
		Usage: "Similarity check engine for text submissions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "simcheck.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "submit",
				Usage:     "Submit text for a similarity check",
				ArgsUsage: "[text]",
				Action:    submitCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read submission text from a file ('-' for stdin)",
					},
					&cli.StringFlag{
						Name:  "sensitivity",
						Usage: "Matching sensitivity (low, medium, high)",
						Value: "medium",
					},
					&cli.StringFlag{
						Name:  "sources",
						Usage: "Comma-separated source categories to check (articles, youtube)",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Two-letter language code of the submission",
						Value: "en",
					},
					&cli.BoolFlag{
						Name:  "store-embeddings",
						Usage: "Allow submission embeddings to be retained",
					},
					&cli.BoolFlag{
						Name:    "wait",
						Aliases: []string{"w"},
						Usage:   "Process the check in this process and print the report",
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the status of a check",
				ArgsUsage: "<check-id>",
				Action:    statusCommand,
			},
			{
				Name:      "report",
				Usage:     "Print the report of a completed check",
				ArgsUsage: "<check-id>",
				Action:    reportCommand,
			},
			{
				Name:      "cancel",
				Usage:     "Cancel a pending or in-flight check",
				ArgsUsage: "<check-id>",
				Action:    cancelCommand,
			},
			{
				Name:   "worker",
				Usage:  "Run a check-processing worker until interrupted",
				Action: workerCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of checks processed in parallel (0 uses the configured value)",
					},
					&cli.DurationFlag{
						Name:  "poll-interval",
						Usage: "Delay between queue polls when the queue is empty",
						Value: check.DefaultPollInterval,
					},
					&cli.DurationFlag{
						Name:  "sweep-interval",
						Usage: "How often expired and stuck checks are swept",
						Value: check.DefaultSweepInterval,
					},
					&cli.DurationFlag{
						Name:  "stuck-after",
						Usage: "Age at which a claimed check is considered abandoned",
						Value: check.DefaultStuckAfter,
					},
				},
			},
			{
				Name:   "sweep",
				Usage:  "Expire overdue checks and reclaim abandoned claims once",
				Action: sweepCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "stuck-after",
						Usage: "Age at which a claimed check is considered abandoned",
						Value: check.DefaultStuckAfter,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openService loads the configured service. The caller owns the Close.
func openService(c *cli.Context) (*simcheck.Service, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	svc, err := simcheck.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open service: %w", err)
	}

	return svc, nil
}

func submissionText(c *cli.Context) (string, error) {
	if file := c.String("file"); file != "" {
		if file == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return "", fmt.Errorf("failed to read stdin: %w", err)
			}
			return string(data), nil
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	}

	if c.Args().Len() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}

	return "", fmt.Errorf("no submission text: pass it as an argument or use --file")
}

func parseSources(spec string) ([]core.SourceType, error) {
	if spec == "" {
		return nil, nil
	}

	var sources []core.SourceType
	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		st, err := core.ParseSourceType(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, name)
		}
		sources = append(sources, st)
	}
	return sources, nil
}

func submitCommand(c *cli.Context) error {
	ctx := context.Background()

	text, err := submissionText(c)
	if err != nil {
		return err
	}

	sensitivity, err := core.ParseSensitivity(c.String("sensitivity"))
	if err != nil {
		return err
	}

	sources, err := parseSources(c.String("sources"))
	if err != nil {
		return err
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	submitted, err := svc.Engine().Submit(ctx, core.Submission{
		Text:        text,
		Language:    c.String("language"),
		Sensitivity: sensitivity,
		Options: core.SubmissionOptions{
			Sources:         sources,
			StoreEmbeddings: c.Bool("store-embeddings"),
		},
	})
	if err != nil {
		return fmt.Errorf("submission rejected: %w", err)
	}

	fmt.Printf("check %s submitted (%d words)\n", submitted.Id, submitted.Submission.WordCount)

	if !c.Bool("wait") {
		return nil
	}

	if err := svc.ConnectEmbedder(); err != nil {
		return fmt.Errorf("embedding service unavailable: %w", err)
	}

	final, err := drainUntilTerminal(ctx, svc.Engine(), submitted.Id)
	if err != nil {
		return err
	}

	fmt.Printf("check %s %s\n", final.Id, final.Status)
	if final.Status != core.StatusCompleted {
		if final.ErrorMessage != "" {
			fmt.Printf("error: %s\n", final.ErrorMessage)
		}
		return nil
	}

	report, err := svc.Engine().Report(ctx, final.Id)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}

	printReport(os.Stdout, report)
	return nil
}

// drainUntilTerminal processes queued checks in this process until the given
// check reaches a terminal status. Other pending checks ahead of it in the
// queue are processed along the way.
func drainUntilTerminal(ctx context.Context, engine *check.Engine, id core.CheckID) (*core.Check, error) {
	for {
		current, err := engine.Status(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status.Terminal() {
			return current, nil
		}

		if err := engine.ProcessNext(ctx); err != nil {
			if check.IsNotFound(err) {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return nil, err
		}
	}
}

func checkIDArg(c *cli.Context) (core.CheckID, error) {
	if c.Args().Len() != 1 {
		return core.CheckID{}, fmt.Errorf("expected exactly one check id argument")
	}

	id, err := uuid.Parse(c.Args().First())
	if err != nil {
		return core.CheckID{}, fmt.Errorf("invalid check id %q: %w", c.Args().First(), err)
	}
	return id, nil
}

func statusCommand(c *cli.Context) error {
	id, err := checkIDArg(c)
	if err != nil {
		return err
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	current, err := svc.Engine().Status(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Printf("check:    %s\n", current.Id)
	fmt.Printf("status:   %s\n", current.Status)
	fmt.Printf("attempts: %d\n", current.Attempts)
	fmt.Printf("created:  %s\n", current.CreatedAt.Format(time.RFC3339))
	if !current.CompletedAt.IsZero() {
		fmt.Printf("finished: %s\n", current.CompletedAt.Format(time.RFC3339))
	}
	if current.ErrorMessage != "" {
		fmt.Printf("error:    %s\n", current.ErrorMessage)
	}
	return nil
}

func reportCommand(c *cli.Context) error {
	id, err := checkIDArg(c)
	if err != nil {
		return err
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.Engine().Report(context.Background(), id)
	if err != nil {
		return err
	}

	printReport(os.Stdout, report)
	return nil
}

func cancelCommand(c *cli.Context) error {
	id, err := checkIDArg(c)
	if err != nil {
		return err
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	cancelled, err := svc.Engine().Cancel(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Printf("check %s %s\n", cancelled.Id, cancelled.Status)
	if cancelled.Status == core.StatusProcessing {
		fmt.Println("cancellation requested; the worker will stop at the next stage boundary")
	}
	return nil
}

func workerCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	// A worker that cannot embed can only burn attempts; refuse to start.
	if err := svc.ConnectEmbedder(); err != nil {
		return fmt.Errorf("embedding service unavailable: %w", err)
	}

	opts := []check.WorkerOption{
		check.WithPollInterval(c.Duration("poll-interval")),
		check.WithSweepInterval(c.Duration("sweep-interval")),
		check.WithStuckAfter(c.Duration("stuck-after")),
	}
	if n := c.Int("concurrency"); n > 0 {
		opts = append(opts, check.WithConcurrency(n))
	}

	worker, err := svc.NewWorker(opts...)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}
	defer worker.Release()

	slog.Info("worker started", "poll_interval", c.Duration("poll-interval"))

	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("worker stopped: %w", err)
	}

	slog.Info("worker shut down")
	return nil
}

func sweepCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	touched, err := svc.Engine().Sweep(context.Background(), c.Duration("stuck-after"))
	if err != nil {
		return err
	}

	fmt.Printf("swept %d check(s)\n", touched)
	return nil
}

func printReport(w io.Writer, report *core.Report) {
	fmt.Fprintf(w, "overall score: %.1f (%s risk)\n", report.OverallScore, report.RiskLevel)
	fmt.Fprintf(w, "summary:       %s\n", report.Summary)
	fmt.Fprintf(w, "sources:       %d checked, %d skipped\n", report.SourcesChecked, report.SourcesSkipped)
	fmt.Fprintf(w, "segments:      %d\n", report.ChunkCount)

	for i, match := range report.Matches {
		fmt.Fprintf(w, "\n%d. %s (%s)\n", i+1, match.Title, match.SourceType)
		fmt.Fprintf(w, "   %s\n", match.Identifier)
		fmt.Fprintf(w, "   score %.1f (%s risk), best similarity %.0f%%, coverage %.0f%%, %d match(es)\n",
			match.WeightedScore, match.RiskLevel, float64(match.MaxScore)*100, float64(match.Coverage)*100, match.MatchCount)
		if match.Explanation != "" {
			fmt.Fprintf(w, "   %s\n", match.Explanation)
		}
		if match.Snippet != "" {
			fmt.Fprintf(w, "   \"%s\"\n", match.Snippet)
		}
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
