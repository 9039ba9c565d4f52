package model

// MotionSource indicates how a station's location is determined.
type MotionSource int

const (
	MotionSourceStatic MotionSource = iota
	MotionSourceTLE                 // SGP4 propagation of a two-line element set
)

// Location is a position in the plane. Units are whatever the scenario
// uses; the interference model only cares about ratios of distances.
type Location struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Station is a wireless transmitter/receiver. IDs run 1..N and double as
// hypergraph vertex IDs.
type Station struct {
	ID       int
	Name     string
	Location Location

	MotionSource MotionSource
	TLELine1     string // set when MotionSource == MotionSourceTLE
	TLELine2     string
}
