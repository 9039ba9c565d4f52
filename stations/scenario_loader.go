package stations

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/interference-hypergraph/core"
	"github.com/signalsfoundry/interference-hypergraph/model"
)

// Format is a scenario file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	ErrUnknownFormat    = errors.New("unknown scenario format")
	ErrUnknownPlacement = errors.New("unknown placement kind")
	ErrEmptyScenario    = errors.New("scenario defines no stations")
)

// FormatFromPath picks the format from the file extension, defaulting to
// YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// LoadScenario decodes a scenario from r.
func LoadScenario(r io.Reader, format Format) (*model.Scenario, error) {
	var s model.Scenario
	switch format {
	case FormatYAML, "":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("LoadScenario: decode yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("LoadScenario: decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &s, nil
}

// LoadScenarioFile opens path and decodes it according to its extension.
func LoadScenarioFile(path string) (*model.Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadScenarioFile: %w", err)
	}
	defer f.Close()
	return LoadScenario(f, FormatFromPath(path))
}

// BuildStations expands a scenario into stations with IDs 1..N: explicit
// stations first, then any placement.
func BuildStations(s *model.Scenario) ([]model.Station, error) {
	if s == nil {
		return nil, ErrEmptyScenario
	}
	var out []model.Station
	next := func() int { return len(out) + 1 }

	for _, spec := range s.Stations {
		st := model.Station{
			ID:       next(),
			Name:     spec.Name,
			Location: model.Location{X: spec.X, Y: spec.Y},
		}
		switch len(spec.TLE) {
		case 0:
		case 2:
			st.MotionSource = model.MotionSourceTLE
			st.TLELine1, st.TLELine2 = spec.TLE[0], spec.TLE[1]
		default:
			return nil, fmt.Errorf("%w: station %d has %d TLE lines", ErrBadTLE, st.ID, len(spec.TLE))
		}
		if st.Name == "" {
			st.Name = fmt.Sprintf("s%d", st.ID)
		}
		out = append(out, st)
	}

	if p := s.Placement; p != nil {
		pts, err := placementPoints(p)
		if err != nil {
			return nil, err
		}
		for _, pt := range pts {
			id := next()
			out = append(out, model.Station{
				ID:       id,
				Name:     fmt.Sprintf("s%d", id),
				Location: model.Location{X: pt.X, Y: pt.Y},
			})
		}
	}

	if len(out) == 0 {
		return nil, ErrEmptyScenario
	}
	return out, nil
}

func placementPoints(p *model.Placement) ([]core.Point, error) {
	switch strings.ToLower(p.Kind) {
	case model.PlacementUniformCircle, "":
		radius := p.Radius
		if radius == 0 {
			radius = 1
		}
		if p.Count < 0 || radius < 0 {
			return nil, fmt.Errorf("%w: count %d radius %v", ErrUnknownPlacement, p.Count, radius)
		}
		pts := OnCircle(p.Count, radius)
		if p.Centre {
			pts = WithCentre(core.Point{}, pts)
		}
		return pts, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlacement, p.Kind)
	}
}

// Locations returns each station's location as a core.Point, in order.
func Locations(stations []model.Station) []core.Point {
	out := make([]core.Point, len(stations))
	for i, st := range stations {
		out[i] = core.Point{X: st.Location.X, Y: st.Location.Y}
	}
	return out
}

// OrbitalStations builds SGP4 models for every TLE-backed station.
func OrbitalStations(stations []model.Station) ([]*OrbitalStation, error) {
	var out []*OrbitalStation
	for _, st := range stations {
		if st.MotionSource != model.MotionSourceTLE {
			continue
		}
		o, err := NewOrbitalStation(st.ID, st.TLELine1, st.TLELine2)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
