package qthought

import (
	"math/cmplx"
)

/*
Snapshot is a copy of a system's state taken at one point of a protocol.
Traces keep snapshots, never live systems.
*/
type Snapshot struct {
	Subsystems []Subsystem
	Amplitudes []complex128
}

// Equal reports exact equality of layout and amplitudes.
func (s Snapshot) Equal(other Snapshot) bool {
	if !sameSubsystems(s.Subsystems, other.Subsystems) || len(s.Amplitudes) != len(other.Amplitudes) {
		return false
	}
	for i, a := range s.Amplitudes {
		if a != other.Amplitudes[i] {
			return false
		}
	}
	return true
}

// ApproxEqual compares amplitudes entry-wise within tol.
func (s Snapshot) ApproxEqual(other Snapshot, tol float64) bool {
	if !sameSubsystems(s.Subsystems, other.Subsystems) || len(s.Amplitudes) != len(other.Amplitudes) {
		return false
	}
	for i, a := range s.Amplitudes {
		if cmplx.Abs(a-other.Amplitudes[i]) > tol {
			return false
		}
	}
	return true
}

func (s Snapshot) Norm() float64 {
	return norm(s.Amplitudes)
}

// System rebuilds a live system from the snapshot.
func (s Snapshot) System() (*QuantumSystem, error) {
	return NewQuantumSystemFromState(s.Subsystems, s.Amplitudes)
}

func sameSubsystems(a, b []Subsystem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
