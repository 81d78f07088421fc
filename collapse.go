package qthought

import (
	"math"
	"math/rand/v2"
)

const CollapseName = "collapse"

/*
Collapse is a spontaneous-localization style dynamical collapse model. The
outcome is drawn with the Born rule, as in Copenhagen, but the branches that
were not selected are only damped, not removed. After the measurement has run
for Duration at localization Rate, each rejected branch keeps an amplitude
factor of exp(-Rate·Duration/2), so its weight decays as exp(-Rate·Duration).

The post-state therefore approaches the Copenhagen projection as
Rate·Duration grows, and equals the pre-state when it is zero. A measurement
whose leftover weight outside the selected eigenspace stays above Threshold
does not produce a definite fact.
*/
type Collapse struct {
	Rate      float64
	Duration  float64
	Threshold float64
}

func NewCollapse(cfg CollapseConfig) *Collapse {
	return &Collapse{
		Rate:      cfg.Rate,
		Duration:  cfg.Duration,
		Threshold: cfg.Threshold,
	}
}

func (c *Collapse) Name() string {
	return CollapseName
}

// WithDuration returns a copy of the model that lets the measurement run for d.
func (c *Collapse) WithDuration(d float64) *Collapse {
	next := *c
	next.Duration = d
	return &next
}

// Suppression is the amplitude factor applied to every rejected branch.
func (c *Collapse) Suppression() float64 {
	exponent := c.Rate * c.Duration
	if exponent <= 0 {
		return 1
	}
	return math.Exp(-exponent / 2)
}

func (c *Collapse) Resolve(system *QuantumSystem, m Measurement, rng *rand.Rand) (Resolution, error) {
	branches, err := system.Branches(m.Basis, m.Targets...)
	if err != nil {
		return Resolution{}, err
	}

	probs, err := branchWeights(branches, system.Tolerance())
	if err != nil {
		return Resolution{}, err
	}

	k := sample(probs, rng)
	s := complex(c.Suppression(), 0)

	post := make([]complex128, len(branches[k]))
	for j, branch := range branches {
		factor := s
		if j == k {
			factor = 1
		}
		for i, a := range branch {
			post[i] += factor * a
		}
	}
	normalize(post)

	// The branches are orthogonal, so the leftover weight has a closed form.
	s2 := real(s) * real(s)
	rest := s2 * (1 - probs[k])
	residual := rest / (probs[k] + rest)

	return Resolution{
		Outcome:       k,
		Label:         m.Basis.Label(k),
		Probability:   probs[k],
		Probabilities: probs,
		Post:          post,
		Residual:      residual,
		Definite:      residual <= c.Threshold,
	}, nil
}

// Admits rejects outcome facts whose measurement left too much weight behind.
func (c *Collapse) Admits(f Fact) bool {
	if f.Proposition.Kind != DefiniteOutcome {
		return true
	}
	return f.Residual <= c.Threshold
}
