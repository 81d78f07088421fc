package qthought

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// RunResult is the outcome of one run of an ensemble.
type RunResult struct {
	Run    int
	ID     uuid.UUID
	Trace  *Trace
	Report *Report

	// Err is the step error that stopped the run, if any. Failed runs are
	// not checked for consistency.
	Err error
}

/*
EnsembleResult summarizes many independent runs of the same protocol.
Frequencies maps the index of every measurement step to the fraction of
completed runs in which each outcome occurred.
*/
type EnsembleResult struct {
	Protocol       string
	Interpretation string
	Runs           []RunResult
	Completed      int
	Frequencies    map[int][]float64

	// FactsByAgent counts the examined facts of each agent over all
	// completed runs.
	FactsByAgent map[string]int

	// InconsistentMean is the fraction of completed runs whose facts were
	// inconsistent; InconsistentStd is the sample deviation of that indicator.
	InconsistentMean float64
	InconsistentStd  float64

	Metrics *EnsembleMetrics
}

/*
RunEnsemble runs the protocol cfg.Runs times from the same initial state, on at
most cfg.Workers goroutines, and checks every completed run for consistency.
Run i draws its outcomes from a PCG source seeded with (cfg.Seed, i), so the
result does not depend on scheduling.

A run stopped by a step error is kept in the result with its error. Context
cancellation, and traces the reasoner cannot read, abort the whole ensemble.
*/
func RunEnsemble(
	ctx context.Context, cfg EnsembleConfig, p *Protocol, initial *QuantumSystem, interp Interpretation,
) (*EnsembleResult, error) {
	if p == nil {
		return nil, ErrNoProtocol
	}
	if initial == nil {
		return nil, fmt.Errorf("%w: no initial system", ErrDimensionMismatch)
	}
	if cfg.Runs < 1 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", cfg.Runs)
	}
	if interp == nil {
		return nil, fmt.Errorf("%w: none supplied", ErrUnsupportedInterpretation)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	errnie.Info(
		"RunEnsemble - %s: %d runs on %d workers under %s, seed %d",
		p.Name(), cfg.Runs, workers, interp.Name(), cfg.Seed,
	)

	metrics := NewEnsembleMetrics(workers)
	runs := make([]RunResult, cfg.Runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < cfg.Runs; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)))

			trace, err := p.Run(gctx, initial, interp, rng)
			result := RunResult{Run: i, Trace: trace}
			if trace != nil {
				result.ID = trace.ID
			} else {
				result.ID = uuid.New()
			}

			var stepErr *StepError
			if err != nil {
				if !errors.As(err, &stepErr) {
					return err
				}
				result.Err = err
				runs[i] = result
				metrics.recordRun(start, true, false)
				return nil
			}

			report, err := Check(trace, interp)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			result.Report = report
			runs[i] = result
			metrics.recordRun(start, false, !report.Consistent())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		errnie.Info("RunEnsemble - %s aborted: %v", p.Name(), err)
		return nil, err
	}

	out := summarize(runs)
	out.Protocol = p.Name()
	out.Interpretation = interp.Name()
	out.Metrics = metrics

	errnie.Info(
		"RunEnsemble - %s done: %d/%d completed, inconsistent fraction %.3f",
		p.Name(), out.Completed, cfg.Runs, out.InconsistentMean,
	)

	return out, nil
}

func summarize(runs []RunResult) *EnsembleResult {
	out := &EnsembleResult{
		Runs:         runs,
		Frequencies:  make(map[int][]float64),
		FactsByAgent: make(map[string]int),
	}

	indicator := make([]float64, 0, len(runs))
	for _, run := range runs {
		if run.Err != nil || run.Report == nil {
			continue
		}
		out.Completed++

		for agent, n := range run.Report.Agents {
			out.FactsByAgent[agent] += n
		}

		if run.Report.Consistent() {
			indicator = append(indicator, 0)
		} else {
			indicator = append(indicator, 1)
		}

		for _, entry := range run.Trace.Entries {
			if entry.Step.Kind() != MeasurementStep || entry.Fact == nil {
				continue
			}
			counts, ok := out.Frequencies[entry.Index]
			if !ok {
				counts = make([]float64, entry.Step.Basis().Dim())
				out.Frequencies[entry.Index] = counts
			}
			counts[entry.Fact.Proposition.Outcome]++
		}
	}

	if out.Completed == 0 {
		return out
	}

	for _, counts := range out.Frequencies {
		for k := range counts {
			counts[k] /= float64(out.Completed)
		}
	}

	if len(indicator) == 1 {
		out.InconsistentMean = indicator[0]
		return out
	}
	out.InconsistentMean, out.InconsistentStd = stat.MeanStdDev(indicator, nil)
	return out
}
