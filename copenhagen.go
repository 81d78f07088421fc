package qthought

import (
	"math/rand/v2"
)

const CopenhagenName = "copenhagen"

/*
Copenhagen samples an outcome with the Born rule and collapses the state onto
the measured eigenspace: the post-state is the renormalized projection.
*/
type Copenhagen struct{}

func NewCopenhagen() *Copenhagen {
	return &Copenhagen{}
}

func (c *Copenhagen) Name() string {
	return CopenhagenName
}

func (c *Copenhagen) Resolve(system *QuantumSystem, m Measurement, rng *rand.Rand) (Resolution, error) {
	branches, err := system.Branches(m.Basis, m.Targets...)
	if err != nil {
		return Resolution{}, err
	}

	probs, err := branchWeights(branches, system.Tolerance())
	if err != nil {
		return Resolution{}, err
	}

	k := sample(probs, rng)
	post := branches[k]
	normalize(post)

	return Resolution{
		Outcome:       k,
		Label:         m.Basis.Label(k),
		Probability:   probs[k],
		Probabilities: probs,
		Post:          post,
		Definite:      true,
	}, nil
}

// Admits accepts every recorded fact: collapse is always complete.
func (c *Copenhagen) Admits(Fact) bool {
	return true
}
