package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"pack-manager/src/singleinstance"
)

type stressOptions struct {
	n        int
	mode     string
	deadline time.Duration
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-resident",
		Short:         "Stress test the running pack manager's single-instance port",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.mode != "ping" && opts.mode != "show" {
				return fmt.Errorf("unknown mode %q, expected ping or show", opts.mode)
			}
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.mode, "mode", "ping", "ping|show: probe the resident or ask it to raise its window")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

type result struct {
	ok, missing, errs int32
}

func runWithOptions(opts stressOptions) error {
	start := time.Now()
	r := stress(opts, probe(opts.mode))
	elapsed := time.Since(start)
	fmt.Fprintf(os.Stdout, "launched=%d ok=%d missing=%d err=%d elapsed=%s\n", opts.n, r.ok, r.missing, r.errs, elapsed)
	return nil
}

// probe returns (found, err) for one client.
func probe(mode string) func(ctx context.Context) (bool, error) {
	if mode == "show" {
		return func(ctx context.Context) (bool, error) {
			return true, singleinstance.RequestShow(ctx)
		}
	}
	return func(ctx context.Context) (bool, error) {
		_, ok := singleinstance.DetectResidentPort(ctx)
		return ok, nil
	}
}

func stress(opts stressOptions, one func(ctx context.Context) (bool, error)) result {
	var wg sync.WaitGroup
	var r result
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			found, err := one(ctx)
			switch {
			case err != nil:
				atomic.AddInt32(&r.errs, 1)
			case !found:
				atomic.AddInt32(&r.missing, 1)
			default:
				atomic.AddInt32(&r.ok, 1)
			}
		}()
	}
	wg.Wait()
	return r
}
