package qthought

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func zFact(agent string, outcome int) Fact {
	return Fact{
		Agent:       agent,
		Proposition: Definite(ComputationalBasis(2), outcome, "q"),
		Probability: 1,
	}
}

func TestRecord(t *testing.T) {
	Convey("Given an empty ledger", t, func() {
		ledger := NewFactLedger()

		Convey("When recording facts", func() {
			first := ledger.Record(zFact("friend", 0))
			second := ledger.Record(zFact("wigner", 1))

			Convey("Then each fact should get the next sequence number", func() {
				So(first.Sequence, ShouldEqual, 0)
				So(second.Sequence, ShouldEqual, 1)
				So(ledger.Len(), ShouldEqual, 2)
			})

			Convey("Then the returned copy should not alias the ledger", func() {
				first.Proposition.Subject[0] = "other"
				So(ledger.History(0)[0].Proposition.Subject, ShouldResemble, []string{"q"})
			})
		})

		Convey("When the caller changes a fact after recording it", func() {
			f := zFact("friend", 0)
			ledger.Record(f)
			f.Proposition.Subject[0] = "other"

			Convey("Then the ledger should keep its own copy", func() {
				So(ledger.History(0)[0].Proposition.Subject, ShouldResemble, []string{"q"})
			})
		})

		Convey("When recording concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(outcome int) {
					defer wg.Done()
					ledger.Record(zFact("agent", outcome%2))
				}(i)
			}
			wg.Wait()

			Convey("Then all facts should be recorded in order", func() {
				history := ledger.History(0)
				So(history, ShouldHaveLength, 10)
				for i := 0; i < len(history)-1; i++ {
					So(history[i].Sequence, ShouldBeLessThan, history[i+1].Sequence)
				}
			})
		})
	})
}

func TestHistory(t *testing.T) {
	Convey("Given a ledger with facts", t, func() {
		ledger := NewFactLedger()
		ledger.Record(zFact("friend", 0))
		ledger.Record(zFact("wigner", 1))
		ledger.Record(zFact("friend", 1))

		Convey("When getting the complete history", func() {
			history := ledger.History(0)

			Convey("Then all facts should be returned in order", func() {
				So(history, ShouldHaveLength, 3)
				So(history[0].Agent, ShouldEqual, "friend")
				So(history[1].Agent, ShouldEqual, "wigner")
				So(history[2].Proposition.Outcome, ShouldEqual, 1)
			})
		})

		Convey("When getting partial history", func() {
			history := ledger.History(1)

			Convey("Then only later facts should be returned", func() {
				So(history, ShouldHaveLength, 2)
				So(history[0].Sequence, ShouldEqual, 1)
			})
		})

		Convey("When the sequence is past the end", func() {
			history := ledger.History(999)

			Convey("Then an empty slice should be returned", func() {
				So(history, ShouldHaveLength, 0)
			})
		})

		Convey("When grouping by agent", func() {
			grouped := ledger.ByAgent()

			Convey("Then each agent should keep its own order", func() {
				So(grouped["friend"], ShouldHaveLength, 2)
				So(grouped["friend"][0].Sequence, ShouldEqual, 0)
				So(grouped["friend"][1].Sequence, ShouldEqual, 2)
				So(grouped["wigner"], ShouldHaveLength, 1)
			})
		})
	})
}

func TestProposition(t *testing.T) {
	Convey("Given propositions", t, func() {
		Convey("When negating an outcome claim", func() {
			p := Definite(HadamardBasis(), 1, "q")
			n := p.Negate()

			Convey("Then only the copy should be negated", func() {
				So(n.Negated, ShouldBeTrue)
				So(p.Negated, ShouldBeFalse)
				So(n.String(), ShouldEqual, "q[hadamard] ≠ -")
				So(n.Negate().String(), ShouldEqual, p.String())
			})
		})

		Convey("When an outcome lies outside the basis", func() {
			err := Definite(ComputationalBasis(2), 2, "q").validate()

			Convey("Then it should be invalid", func() {
				So(err, ShouldWrap, ErrInvalidProposition)
			})
		})

		Convey("When a superposition claim is not normalized", func() {
			err := InSuperposition([]complex128{1, 1}, -1, "q").validate()

			Convey("Then it should be invalid", func() {
				So(err, ShouldWrap, ErrInvalidProposition)
			})
		})

		Convey("When a superposition claim is negated", func() {
			err := InSuperposition([]complex128{1, 0}, -1, "q").Negate().validate()

			Convey("Then it should be invalid", func() {
				So(err, ShouldWrap, ErrInvalidProposition)
			})
		})

		Convey("When a fact refers to an earlier step", func() {
			f := Fact{Time: 4, Proposition: InSuperposition([]complex128{1, 0}, 1, "q")}

			Convey("Then its event time should be that step", func() {
				So(f.EventTime(), ShouldEqual, 1)
				So(Fact{Time: 4, Proposition: Definite(ComputationalBasis(2), 0, "q")}.EventTime(), ShouldEqual, 4)
			})
		})
	})
}
