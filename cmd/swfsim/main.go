// Command swfsim runs a discrete-event simulation of a batch job
// scheduler against a Standard Workload Format trace, and reports
// slowdown and wait/flow-time statistics.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joeycumines/go-swfsim/event"
	"github.com/joeycumines/go-swfsim/logging"
	"github.com/joeycumines/go-swfsim/scheduler"
	"github.com/joeycumines/go-swfsim/sim"
	"github.com/joeycumines/go-swfsim/stats"
	"github.com/joeycumines/go-swfsim/workload"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr *os.File) (exitCode int) {
	fs := flag.NewFlagSet("swfsim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	numProcessors := fs.Int("num-processors", 0, "total processors on the simulated machine (required, positive)")
	schedName := fs.String("scheduler", "fcfs", "scheduler: fcfs, conservative, easy, easy++, maui, greedy-easy")
	weightsList := fs.String("weights-list", "1,0,0,0,0,0", "Maui head-selection weights: w_wtime,w_sld,w_user,w_bypass,w_admin,w_size")
	weightsBackfill := fs.String("weights-backfill", "1,0,0,0,0,0", "Maui backfill-ordering weights, same format as -weights-list")
	inputPath := fs.String("input", "", "input SWF trace path (default: stdin)")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *numProcessors <= 0 {
		fmt.Fprintln(stderr, "swfsim: -num-processors must be a positive integer")
		return 1
	}

	level, err := parseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(stderr, "swfsim:", err)
		return 1
	}
	logger := logging.NewWriterLogger(stderr, level)

	newScheduler, err := resolveScheduler(*schedName, *numProcessors, *weightsList, *weightsBackfill)
	if err != nil {
		fmt.Fprintln(stderr, "swfsim:", err)
		return 1
	}

	input := io.Reader(stdin)
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			fmt.Fprintln(stderr, "swfsim:", err)
			return 1
		}
		defer f.Close()
		input = f
	}

	records, skips, err := workload.Parse(input)
	if err != nil {
		fmt.Fprintln(stderr, "swfsim:", err)
		return 1
	}
	for _, s := range skips {
		logging.Debug(logger, "skipped line", logging.F("line", s.Line), logging.F("reason", s.Reason.String()))
	}
	if len(records) == 0 {
		fmt.Fprintln(stderr, "swfsim: no jobs parsed from input")
		return 1
	}

	jobs := make([]*event.Job, len(records))
	for i, r := range records {
		jobs[i] = r.ToJob()
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(stderr, "swfsim: simulation failed:", r)
			exitCode = 2
		}
	}()

	s := sim.New(jobs, *numProcessors, newScheduler, sim.WithLogger(logger))
	s.Run()

	agg := stats.Compute(s.Terminated())
	printStats(stdout, agg)
	return 0
}

func printStats(w *os.File, agg stats.Aggregate) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STATISTICS:")
	fmt.Fprintln(w, "Number of jobs:", agg.NumJobs)
	fmt.Fprintln(w, "Average slowdown:", agg.AverageSlowdown)
	fmt.Fprintln(w, "Average bounded slowdown:", agg.AverageBoundedSlowdown)
	fmt.Fprintln(w, "Average wait time:", agg.AverageWaitTime)
	fmt.Fprintln(w, "Average flow time:", agg.AverageFlowTime)
}

func parseLevel(s string) (logging.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return logging.LevelDebug, nil
	case "info":
		return logging.LevelInfo, nil
	case "warn":
		return logging.LevelWarn, nil
	case "error":
		return logging.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown -log-level %q", s)
	}
}

func parseWeights(s string) (scheduler.Weights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return scheduler.Weights{}, fmt.Errorf("weights must have 6 comma-separated values, got %d", len(parts))
	}
	var v [6]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return scheduler.Weights{}, fmt.Errorf("weights: %w", err)
		}
		v[i] = f
	}
	return scheduler.Weights{
		WTime:  v[0],
		SLD:    v[1],
		User:   v[2],
		Bypass: v[3],
		Admin:  v[4],
		Size:   v[5],
	}, nil
}

func resolveScheduler(name string, numProcessors int, weightsList, weightsBackfill string) (sim.NewScheduler, error) {
	switch strings.ToLower(name) {
	case "fcfs":
		return func(q *event.Queue) scheduler.Scheduler { return scheduler.NewFCFS(numProcessors) }, nil
	case "conservative":
		return func(q *event.Queue) scheduler.Scheduler { return scheduler.NewConservative(numProcessors) }, nil
	case "easy":
		return func(q *event.Queue) scheduler.Scheduler { return scheduler.NewEASY(numProcessors) }, nil
	case "easy++":
		return func(q *event.Queue) scheduler.Scheduler { return scheduler.NewEasyPlusPlus(numProcessors, q) }, nil
	case "maui":
		list, err := parseWeights(weightsList)
		if err != nil {
			return nil, fmt.Errorf("-weights-list: %w", err)
		}
		backfill, err := parseWeights(weightsBackfill)
		if err != nil {
			return nil, fmt.Errorf("-weights-backfill: %w", err)
		}
		return func(q *event.Queue) scheduler.Scheduler { return scheduler.NewMaui(numProcessors, list, backfill) }, nil
	case "greedy-easy":
		return func(q *event.Queue) scheduler.Scheduler { return scheduler.NewGreedyEASY(numProcessors, nil, nil) }, nil
	default:
		return nil, fmt.Errorf("unknown -scheduler %q", name)
	}
}
