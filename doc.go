/*
Package qthought simulates quantum thought experiments.

A QuantumSystem holds the state of named subsystems, and a Protocol lists the
unitaries, measurements and assertions that agents perform on it. Running a
protocol under an Interpretation (Copenhagen or a dynamical collapse model)
yields a Trace of states and facts. Check then reasons about whether the facts
the agents hold can all be true at once; RunEnsemble repeats that over many
seeded runs.

Scenarios can also be written in YAML and loaded with LoadScenario.
*/
package qthought
