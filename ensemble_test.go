package qthought

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRunEnsemble(t *testing.T) {
	Convey("Given Wigner's friend with incompatible bases", t, func() {
		qs, p := wignersFriend(BellBasis())
		cfg := EnsembleConfig{Runs: 200, Workers: 8, Seed: 42}

		Convey("When sampling many runs", func() {
			result, err := RunEnsemble(context.Background(), cfg, p, qs, NewCopenhagen())
			So(err, ShouldBeNil)

			Convey("Then every run should complete and be inconsistent", func() {
				So(result.Completed, ShouldEqual, 200)
				So(result.Runs, ShouldHaveLength, 200)
				So(result.InconsistentMean, ShouldEqual, 1)
				So(result.InconsistentStd, ShouldEqual, 0)
			})

			Convey("Then every agent's facts should be counted across runs", func() {
				So(result.FactsByAgent, ShouldResemble, map[string]int{"friend": 200, "wigner": 200})
			})

			Convey("Then the friend's outcomes should follow the Born rule", func() {
				friend := result.Frequencies[1]
				So(friend, ShouldHaveLength, 2)
				So(friend[0]+friend[1], ShouldAlmostEqual, 1, 1e-12)
				So(friend[0], ShouldBeBetween, 0.35, 0.65)
			})

			Convey("Then Wigner should only ever see Φ±", func() {
				wigner := result.Frequencies[2]
				So(wigner, ShouldHaveLength, 4)
				So(wigner[2], ShouldEqual, 0)
				So(wigner[3], ShouldEqual, 0)
			})

			Convey("Then each run should carry its own identity", func() {
				seen := make(map[string]bool)
				for i, run := range result.Runs {
					So(run.Run, ShouldEqual, i)
					seen[run.ID.String()] = true
				}
				So(seen, ShouldHaveLength, 200)
			})

			Convey("Then the metrics should account for every run", func() {
				So(result.Metrics.RunCount, ShouldEqual, 200)
				So(result.Metrics.Inconsistent, ShouldEqual, 200)
				So(result.Metrics.SuccessRate(), ShouldEqual, 1)
				So(result.Metrics.P99RunLatency, ShouldBeGreaterThanOrEqualTo, result.Metrics.P95RunLatency)
			})
		})

		Convey("When the same seed is used with a different number of workers", func() {
			a, err := RunEnsemble(context.Background(), cfg, p, qs, NewCopenhagen())
			So(err, ShouldBeNil)
			cfg.Workers = 1
			b, err := RunEnsemble(context.Background(), cfg, p, qs, NewCopenhagen())
			So(err, ShouldBeNil)

			Convey("Then the frequencies should be identical", func() {
				So(b.Frequencies, ShouldResemble, a.Frequencies)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := RunEnsemble(ctx, cfg, p, qs, NewCopenhagen())

			Convey("Then the ensemble should abort", func() {
				So(err, ShouldWrap, context.Canceled)
			})
		})

		Convey("When the protocol or the initial system is missing", func() {
			_, errProtocol := RunEnsemble(context.Background(), cfg, nil, qs, NewCopenhagen())
			_, errInitial := RunEnsemble(context.Background(), cfg, p, nil, NewCopenhagen())

			Convey("Then it should fail instead of panicking", func() {
				So(errProtocol, ShouldWrap, ErrNoProtocol)
				So(errInitial, ShouldWrap, ErrDimensionMismatch)
			})
		})

		Convey("When there are no runs", func() {
			cfg.Runs = 0
			_, err := RunEnsemble(context.Background(), cfg, p, qs, NewCopenhagen())

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a protocol that fails on a missing subsystem", t, func() {
		qs, err := NewQuantumSystem(Qubit("q"))
		So(err, ShouldBeNil)
		p := NewProtocol("broken", mustStep(NewUnitaryStep("lost", PauliX(), []string{"ghost"})))

		Convey("When sampling it", func() {
			result, err := RunEnsemble(context.Background(), EnsembleConfig{Runs: 5, Workers: 2}, p, qs, NewCopenhagen())
			So(err, ShouldBeNil)

			Convey("Then every run should be kept with its error", func() {
				So(result.Completed, ShouldEqual, 0)
				for _, run := range result.Runs {
					So(run.Err, ShouldWrap, ErrUnknownSubsystem)
				}
				So(result.Metrics.FailedRuns, ShouldEqual, 5)
				So(result.Metrics.SuccessRate(), ShouldEqual, 0)
			})
		})
	})
}

func TestEnsembleMetrics(t *testing.T) {
	Convey("Given ensemble metrics", t, func() {
		m := NewEnsembleMetrics(3)

		Convey("When recording runs", func() {
			for i := 0; i < 10; i++ {
				m.recordRun(time.Now().Add(-time.Duration(i+1)*time.Millisecond), i == 0, i%2 == 0)
			}

			Convey("Then the counts should be kept", func() {
				So(m.RunCount, ShouldEqual, 10)
				So(m.FailedRuns, ShouldEqual, 1)
				So(m.Inconsistent, ShouldEqual, 5)
				So(m.SuccessRate(), ShouldAlmostEqual, 0.9, 1e-12)
			})

			Convey("Then the latency percentiles should be ordered", func() {
				So(m.AverageRunLatency, ShouldBeGreaterThan, 0)
				So(m.P95RunLatency, ShouldBeGreaterThanOrEqualTo, m.AverageRunLatency)
				So(m.P99RunLatency, ShouldBeGreaterThanOrEqualTo, m.P95RunLatency)
			})

			Convey("Then the export should carry the headline numbers", func() {
				exported := m.Export()
				So(exported["workers"], ShouldEqual, 3)
				So(exported["runs"], ShouldEqual, 10)
				So(exported["failed"], ShouldEqual, 1)
			})
		})

		Convey("When nothing was recorded", func() {
			Convey("Then the success rate should be zero", func() {
				So(m.SuccessRate(), ShouldEqual, 0)
				So(m.Export()["success_rate"], ShouldEqual, 0)
			})
		})
	})
}
