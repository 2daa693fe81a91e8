package dynamo

// Trajectory holds time-ordered samples of one or more integration runs.
// Times are strictly increasing.
type Trajectory struct {
	Times  []float64
	States []State
}

func NewTrajectory(capacity int) *Trajectory {
	return &Trajectory{
		Times:  make([]float64, 0, capacity),
		States: make([]State, 0, capacity),
	}
}

// Append records a sample. Samples at or before the last time are ignored.
func (tr *Trajectory) Append(t float64, x State) bool {
	if n := len(tr.Times); n > 0 && t <= tr.Times[n-1] {
		return false
	}
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, x.Clone())
	return true
}

func (tr *Trajectory) Len() int {
	if tr == nil {
		return 0
	}
	return len(tr.Times)
}

// Last returns the final sample. ok is false for an empty trajectory.
func (tr *Trajectory) Last() (t float64, x State, ok bool) {
	n := tr.Len()
	if n == 0 {
		return 0, nil, false
	}
	return tr.Times[n-1], tr.States[n-1], true
}

// Splice appends next after tr. The boundary sample of tr is replaced by
// next's first sample when they share a time; later samples of next at or
// before tr's last time are dropped.
func (tr *Trajectory) Splice(next *Trajectory) *Trajectory {
	out := NewTrajectory(tr.Len() + next.Len())
	out.Times = append(out.Times, tr.Times...)
	out.States = append(out.States, tr.States...)

	for i := 0; i < next.Len(); i++ {
		t := next.Times[i]
		n := len(out.Times)
		if n > 0 && t == out.Times[n-1] {
			out.States[n-1] = next.States[i].Clone()
			continue
		}
		out.Append(t, next.States[i])
	}
	return out
}

// Component extracts one state component as a series.
func (tr *Trajectory) Component(idx int) []float64 {
	out := make([]float64, tr.Len())
	for i, s := range tr.States {
		if idx < len(s) {
			out[i] = s[idx]
		}
	}
	return out
}
