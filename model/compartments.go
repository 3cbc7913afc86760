// Package model implements an age-structured SEIR-type epidemic model with
// Erlang-distributed sojourn times and a time-windowed vaccination mechanism.
package model

import "fmt"

// Kind identifies a compartment of the epidemic model.
type Kind int

const (
	Susceptible Kind = iota
	Exposed
	Infectious
	Hospitalized
	Critical
	CriticalRecovery
	Vaccinated
	Recovered
	Dead
	numKinds
)

// kindTags are the short compartment tags used in state labels and in the
// persisted target-variable names (i_max, ic_max, d_max).
var kindTags = [numKinds]string{"s", "e", "i", "h", "ic", "icr", "v", "r", "d"}

// String returns the short tag of the compartment kind.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindTags[k]
}

// KindFromTag resolves a short compartment tag ("s", "e", "ic", ...) back to
// its Kind. Used when parsing target-variable names such as "ic_max".
func KindFromTag(tag string) (Kind, error) {
	for k, t := range kindTags {
		if t == tag {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown compartment tag %q", tag)
}

// StageCounts configures the number of Erlang sub-stages for every
// multi-stage compartment. All counts must be at least 1.
type StageCounts struct {
	E   int `yaml:"e"`
	I   int `yaml:"i"`
	H   int `yaml:"h"`
	IC  int `yaml:"ic"`
	ICR int `yaml:"icr"`
	V   int `yaml:"v"`
}

// Validate checks that every stage count is a positive integer.
func (sc StageCounts) Validate() error {
	for _, c := range []struct {
		kind Kind
		n    int
	}{
		{Exposed, sc.E},
		{Infectious, sc.I},
		{Hospitalized, sc.H},
		{Critical, sc.IC},
		{CriticalRecovery, sc.ICR},
		{Vaccinated, sc.V},
	} {
		if c.n < 1 {
			return fmt.Errorf("stage count for compartment %q must be a positive integer, got %d", c.kind, c.n)
		}
	}
	return nil
}

// Tag encodes the stage counts as a short filename-safe string, in the
// block order of the multi-stage compartments.
func (sc StageCounts) Tag() string {
	return fmt.Sprintf("%d_%d_%d_%d_%d_%d", sc.E, sc.I, sc.H, sc.IC, sc.ICR, sc.V)
}

// stages returns the number of sub-stages of a kind (1 for scalar kinds).
func (sc StageCounts) stages(k Kind) int {
	switch k {
	case Exposed:
		return sc.E
	case Infectious:
		return sc.I
	case Hospitalized:
		return sc.H
	case Critical:
		return sc.IC
	case CriticalRecovery:
		return sc.ICR
	case Vaccinated:
		return sc.V
	default:
		return 1
	}
}

// Layout is the immutable mapping from (kind, stage, age) to the offset of a
// cell in the flattened state vector. The vector is compartment-major and
// age-minor: all age groups of a compartment occupy one contiguous block,
// and blocks follow the order s, e_0..e_{nE-1}, i_0.., h_0.., ic_0..,
// icr_0.., v_0.., r, d.
type Layout struct {
	nAge   int
	stages StageCounts
	nComp  int
	base   [numKinds]int // compartment index of stage 0 of each kind
	labels []string      // compartment labels in block order
}

// NewLayout builds and validates the compartment layout.
func NewLayout(stages StageCounts, nAge int) (*Layout, error) {
	if nAge < 1 {
		return nil, fmt.Errorf("number of age groups must be positive, got %d", nAge)
	}
	if err := stages.Validate(); err != nil {
		return nil, err
	}

	l := &Layout{nAge: nAge, stages: stages}
	comp := 0
	for k := Kind(0); k < numKinds; k++ {
		l.base[k] = comp
		n := stages.stages(k)
		for s := 0; s < n; s++ {
			if n > 1 {
				l.labels = append(l.labels, fmt.Sprintf("%s_%d", k, s))
			} else {
				l.labels = append(l.labels, k.String())
			}
		}
		comp += n
	}
	l.nComp = comp

	// Completeness check: every offset in [0, Total) assigned exactly once.
	seen := make([]bool, l.Total())
	for k := Kind(0); k < numKinds; k++ {
		for s := 0; s < stages.stages(k); s++ {
			for a := 0; a < nAge; a++ {
				off, err := l.Offset(k, s, a)
				if err != nil {
					return nil, err
				}
				if seen[off] {
					return nil, fmt.Errorf("layout offset %d assigned twice (compartment %s stage %d age %d)", off, k, s, a)
				}
				seen[off] = true
			}
		}
	}
	for off, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("layout offset %d never assigned", off)
		}
	}
	return l, nil
}

// NAge returns the number of age groups.
func (l *Layout) NAge() int { return l.nAge }

// NComp returns the number of compartments including all sub-stages.
func (l *Layout) NComp() int { return l.nComp }

// Stages returns the configured stage counts.
func (l *Layout) Stages() StageCounts { return l.stages }

// Total returns the length of the flattened state vector.
func (l *Layout) Total() int { return l.nComp * l.nAge }

// Offset returns the flat index of (kind, stage, age).
func (l *Layout) Offset(k Kind, stage, age int) (int, error) {
	if k < 0 || k >= numKinds {
		return 0, fmt.Errorf("invalid compartment kind %d", int(k))
	}
	if stage < 0 || stage >= l.stages.stages(k) {
		return 0, fmt.Errorf("compartment %q has %d stages, stage %d requested", k, l.stages.stages(k), stage)
	}
	if age < 0 || age >= l.nAge {
		return 0, fmt.Errorf("age index %d out of range [0,%d)", age, l.nAge)
	}
	return (l.base[k] + stage) * l.nAge + age, nil
}

// mustOffset is Offset for indices already validated by the layout itself.
func (l *Layout) mustOffset(k Kind, stage, age int) int {
	return (l.base[k] + stage) * l.nAge + age
}

// KindOffsets returns the flat indices of every (stage, age) cell of a kind,
// stage-major. Used for aggregating trajectories by compartment.
func (l *Layout) KindOffsets(k Kind) []int {
	n := l.stages.stages(k)
	out := make([]int, 0, n*l.nAge)
	for s := 0; s < n; s++ {
		for a := 0; a < l.nAge; a++ {
			out = append(out, l.mustOffset(k, s, a))
		}
	}
	return out
}

// Labels returns the state labels in flat-vector order ("s[0]", "e_0[1]", ...).
func (l *Layout) Labels() []string {
	out := make([]string, 0, l.Total())
	for _, comp := range l.labels {
		for a := 0; a < l.nAge; a++ {
			out = append(out, fmt.Sprintf("%s[%d]", comp, a))
		}
	}
	return out
}
