package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// SpecType determines what kind of specification a Spec is. A Spec
// can specify the layout of an action, an observation, or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Reward
)

func (s SpecType) String() string {
	switch s {
	case Action:
		return "Action"
	case Observation:
		return "Observation"
	default:
		return "Reward"
	}
}

// Cardinality determines the cardinality of a number (discrete or
// continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action, observation, or reward in an
// environment. Bounds are per-dimension closed intervals.
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification. The shape
// argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions, observations, etc.). The cardinality
// argument describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds "+
			"length %v", shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match upper bounds "+
			"length %v", shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// Dims returns the number of dimensions of the described data
func (s Spec) Dims() int {
	return s.Shape.Len()
}

// Bounds returns the bounds of dimension i as an interval
func (s Spec) Bounds(i int) r1.Interval {
	return r1.Interval{Min: s.LowerBound.AtVec(i), Max: s.UpperBound.AtVec(i)}
}

// Validate checks a batched value against the specification: every
// row must have as many columns as the spec has dimensions, and every
// entry must lie within the per-dimension bounds.
func (s Spec) Validate(value *mat.Dense) error {
	rows, cols := value.Dims()
	if cols != s.Dims() {
		return fmt.Errorf("validate: %v has %d dimensions, want %d",
			s.Type, cols, s.Dims())
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			bounds := s.Bounds(j)
			v := value.At(i, j)
			if v < bounds.Min || v > bounds.Max {
				return fmt.Errorf("validate: %v (%d, %d) out of bounds "+
					"[%v, %v]: %v", s.Type, i, j, bounds.Min, bounds.Max, v)
			}
		}
	}
	return nil
}
