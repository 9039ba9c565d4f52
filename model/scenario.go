package model

// PlacementUniformCircle spaces Count stations evenly on a circle.
const PlacementUniformCircle = "uniform_circle"

// Scenario is the on-disk description of a wireless network <S, gamma, beta>.
// Either Stations or Placement supplies the locations; when both are set,
// explicit stations come first.
type Scenario struct {
	Name      string        `yaml:"name" json:"name"`
	Exponent  float64       `yaml:"exponent,omitempty" json:"exponent,omitempty"`
	Threshold float64       `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Stations  []StationSpec `yaml:"stations,omitempty" json:"stations,omitempty"`
	Placement *Placement    `yaml:"placement,omitempty" json:"placement,omitempty"`
}

// StationSpec is one explicitly listed station. A two-line TLE makes it an
// orbital station; X and Y are then ignored.
type StationSpec struct {
	Name string   `yaml:"name,omitempty" json:"name,omitempty"`
	X    float64  `yaml:"x" json:"x"`
	Y    float64  `yaml:"y" json:"y"`
	TLE  []string `yaml:"tle,omitempty" json:"tle,omitempty"`
}

// Placement generates station locations.
type Placement struct {
	Kind   string  `yaml:"kind" json:"kind"`
	Count  int     `yaml:"count" json:"count"`
	Radius float64 `yaml:"radius,omitempty" json:"radius,omitempty"` // default 1
	// Centre adds a station at the origin ahead of the circle.
	Centre bool `yaml:"centre,omitempty" json:"centre,omitempty"`
}
