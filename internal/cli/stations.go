package cli

import (
	"fmt"

	"github.com/signalsfoundry/interference-hypergraph/core"
	"github.com/signalsfoundry/interference-hypergraph/internal/config"
	"github.com/signalsfoundry/interference-hypergraph/model"
	"github.com/signalsfoundry/interference-hypergraph/stations"
)

// networkFlags are the station and parameter overrides shared by the
// generate, degree, search and sweep commands.
type networkFlags struct {
	scenario  string
	count     int
	centre    bool
	exponent  float64
	threshold float64
}

// network is a resolved station layout with its physical parameters.
type network struct {
	name     string
	stations []model.Station
	params   core.Params
}

// resolveNetwork picks stations from a scenario file when one is given,
// otherwise from a uniform circle. Parameters come from the config, then the
// scenario, then flags, later sources winning.
func resolveNetwork(cfg *config.Config, f networkFlags) (*network, error) {
	params := cfg.Params()
	path := cfg.Stations.Scenario
	if f.scenario != "" {
		path = f.scenario
	}

	n := &network{}
	if path != "" && f.count == 0 {
		s, err := stations.LoadScenarioFile(path)
		if err != nil {
			return nil, err
		}
		sts, err := stations.BuildStations(s)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", path, err)
		}
		if s.Exponent != 0 {
			params.Exponent = s.Exponent
		}
		if s.Threshold != 0 {
			params.Threshold = s.Threshold
		}
		n.name, n.stations = s.Name, sts
	} else {
		count := cfg.Stations.Count
		if f.count != 0 {
			count = f.count
		}
		if count < 0 {
			return nil, fmt.Errorf("station count must not be negative, got %d", count)
		}
		s := &model.Scenario{Placement: &model.Placement{
			Kind:   model.PlacementUniformCircle,
			Count:  count,
			Radius: cfg.Stations.Radius,
			Centre: cfg.Stations.Centre || f.centre,
		}}
		n.name = fmt.Sprintf("U%d", count)
		if s.Placement.Centre {
			n.name += "+centre"
		}
		if count > 0 || s.Placement.Centre {
			sts, err := stations.BuildStations(s)
			if err != nil {
				return nil, err
			}
			n.stations = sts
		}
	}

	if f.exponent != 0 {
		params.Exponent = f.exponent
	}
	if f.threshold != 0 {
		params.Threshold = f.threshold
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	n.params = params
	return n, nil
}

// locations returns the current station locations in ID order.
func (n *network) locations() []core.Point {
	return stations.Locations(n.stations)
}
