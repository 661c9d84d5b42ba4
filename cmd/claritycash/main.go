package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aforti1/clarity-cash/internal/logger"
	"github.com/aforti1/clarity-cash/internal/model"
	"github.com/aforti1/clarity-cash/internal/notifier"
	"github.com/aforti1/clarity-cash/internal/strategy"

	"cloud.google.com/go/civil"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "score":
		err = runScore(args)
	case "analyze":
		err = runAnalyze(args)
	case "watch":
		err = runWatch(args)
	case "history":
		err = runHistory(args)
	case "taxonomy":
		err = runTaxonomy(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	// Commands return instead of exiting so their deferred cleanup runs.
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("Command failed")
	}
}

func printUsage() {
	fmt.Println("Clarity Cash")
	fmt.Println("\nUsage:")
	fmt.Println("  claritycash <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  score     Score a transaction batch once and print the report")
	fmt.Println("  analyze   Score a prospective purchase against a batch")
	fmt.Println("  watch     Score on the configured cron schedule")
	fmt.Println("  history   List recorded scoring runs")
	fmt.Println("  taxonomy  Print the category taxonomy")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'claritycash <command> -h' for more information on a command.")
}

// windowFlags resolves -start/-end, falling back to the trailing window.
func windowFlags(start, end string, days int) (model.Window, error) {
	if start == "" && end == "" {
		return model.TrailingWindow(civil.DateOf(time.Now()), days), nil
	}
	w := model.Window{End: civil.DateOf(time.Now())}
	var err error
	if end != "" {
		if w.End, err = civil.ParseDate(end); err != nil {
			return model.Window{}, fmt.Errorf("-end must be YYYY-MM-DD: %w", err)
		}
	}
	if start == "" {
		return model.TrailingWindow(w.End, days), nil
	}
	if w.Start, err = civil.ParseDate(start); err != nil {
		return model.Window{}, fmt.Errorf("-start must be YYYY-MM-DD: %w", err)
	}
	return w, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func runScore(args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	input := fs.String("input", "", "JSON transaction file (overrides source config)")
	start := fs.String("start", "", "window start date YYYY-MM-DD")
	end := fs.String("end", "", "window end date YYYY-MM-DD (default today)")
	asJSON := fs.Bool("json", false, "print the scored batch as JSON")
	rolling := fs.Bool("rolling", false, "print the 7-day rolling mean score per day")
	publish := fs.Bool("publish", false, "send the report to the configured webhook")
	fs.Parse(args)

	app, err := setup(*input, *publish)
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.requireSource(); err != nil {
		return err
	}

	w, err := windowFlags(*start, *end, app.Config.WindowDays)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := app.Scheduler.Run(ctx, w)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	switch {
	case *asJSON:
		return printJSON(res.Record.Batch)
	case *rolling:
		for _, d := range strategy.RollingMean(res.Record.Batch.Results, w, 7) {
			fmt.Printf("%s  %6.2f  (%d)\n", d.Date, d.Mean, d.Count)
		}
	default:
		fmt.Print(res.Report)
	}
	return nil
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	input := fs.String("input", "", "JSON transaction file (overrides source config)")
	start := fs.String("start", "", "window start date YYYY-MM-DD")
	end := fs.String("end", "", "window end date YYYY-MM-DD (default today)")
	amount := fs.Float64("amount", 0, "purchase amount")
	category := fs.Int("category", 0, "category id of the purchase")
	on := fs.String("date", "", "purchase date YYYY-MM-DD (default window end)")
	merchant := fs.String("merchant", "", "merchant name")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	fs.Parse(args)

	if *amount <= 0 || *category == 0 {
		return errors.New("usage: claritycash analyze -amount N -category ID [-date YYYY-MM-DD]")
	}

	app, err := setup(*input, false)
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.requireSource(); err != nil {
		return err
	}

	w, err := windowFlags(*start, *end, app.Config.WindowDays)
	if err != nil {
		return err
	}
	candidate := model.Transaction{Date: w.End, Amount: *amount, CategoryID: *category, Merchant: *merchant}
	if *on != "" {
		if candidate.Date, err = civil.ParseDate(*on); err != nil {
			return fmt.Errorf("-date must be YYYY-MM-DD: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	txns, source, err := app.Collector.Collect(ctx, w)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	res, err := app.Engine.ScoreHypothetical(txns, w, candidate)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	app.Log.Debug().Str("source", source).Int("transactions", len(txns)).Msg("purchase analyzed")

	if *asJSON {
		return printJSON(res)
	}
	fmt.Println(notifier.FormatResult(res))
	if res.Capacity != nil {
		fmt.Printf("Safe discretionary budget: $%.2f\n", res.Capacity.SafeDiscretionary)
	}
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	runOnStart := fs.Bool("run-on-start", os.Getenv("RUN_ON_START") == "true", "score once before waiting for the schedule")
	fs.Parse(args)

	app, err := setup("", true)
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.requireSource(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Scheduler.Register(ctx, app.Config.Schedule.ScoreCron); err != nil {
		return fmt.Errorf("register cron task: %w", err)
	}
	app.Scheduler.Start()
	defer app.Scheduler.Stop()

	if *runOnStart {
		app.Log.Info().Msg("run-on-start enabled, scoring now")
		go func() {
			if _, err := app.Scheduler.RunNow(ctx); err != nil {
				app.Log.Error().Err(err).Msg("Initial scoring run failed")
			}
		}()
	}

	app.Log.Info().Str("cron", app.Config.Schedule.ScoreCron).Msg("Clarity Cash is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	app.Log.Info().Msg("Shutdown signal received, stopping...")
	cancel()
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "number of runs to list")
	fs.Parse(args)

	app, err := setup("", false)
	if err != nil {
		return err
	}
	defer app.Close()

	runs, err := app.Recorder.ListRuns(context.Background(), *limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}
	for _, r := range runs {
		distress := ""
		if r.InDistress {
			distress = " distress"
		}
		fmt.Printf("%s  %s  %s..%s  %-6s %3d/%-3d avg %6.2f%s\n",
			r.ScoredAt.Format("2006-01-02 15:04"), r.RunID, r.WindowStart, r.WindowEnd,
			r.Source, r.Scoreable, r.Total, r.AverageScore, distress)
	}
	return nil
}

func runTaxonomy(args []string) error {
	fs := flag.NewFlagSet("taxonomy", flag.ExitOnError)
	profile := fs.String("profile", "", "only list categories of this spend profile")
	fs.Parse(args)

	app, err := setup("", false)
	if err != nil {
		return err
	}
	defer app.Close()

	for _, e := range app.Taxonomy.Entries() {
		if *profile != "" && string(e.Profile) != *profile {
			continue
		}
		scored := "no"
		if e.IsScored {
			scored = "yes"
		}
		fmt.Printf("%4d  %-28s %-20s %-24s scored=%s\n", e.CategoryID, e.Label, e.Profile, e.Bucket, scored)
	}
	return nil
}
