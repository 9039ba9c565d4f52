package stations

import (
	"errors"
	"fmt"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/interference-hypergraph/core"
)

var ErrBadTLE = errors.New("malformed two-line element set")

// OrbitalStation is a satellite whose position comes from SGP4.
type OrbitalStation struct {
	ID  int
	sat satellite.Satellite
}

// NewOrbitalStation parses a TLE. go-satellite does not report parse
// errors, so the line shape is checked here first.
func NewOrbitalStation(id int, line1, line2 string) (*OrbitalStation, error) {
	line1 = strings.TrimRight(line1, " \r\n")
	line2 = strings.TrimRight(line2, " \r\n")
	if len(line1) < 69 || !strings.HasPrefix(line1, "1 ") {
		return nil, fmt.Errorf("%w: station %d line 1 %q", ErrBadTLE, id, line1)
	}
	if len(line2) < 69 || !strings.HasPrefix(line2, "2 ") {
		return nil, fmt.Errorf("%w: station %d line 2 %q", ErrBadTLE, id, line2)
	}
	return &OrbitalStation{
		ID:  id,
		sat: satellite.TLEToSat(line1, line2, satellite.GravityWGS72),
	}, nil
}

// Position propagates the satellite to t and returns its ECEF position in
// kilometres.
func (o *OrbitalStation) Position(t time.Time) core.Vec3 {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(o.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	return core.Vec3{X: posECEF.X, Y: posECEF.Y, Z: posECEF.Z}
}

// ProjectKm maps an ECEF position onto the equatorial plane, in units of
// scaleKm kilometres. A non-positive scale leaves kilometres unchanged.
func ProjectKm(pos core.Vec3, scaleKm float64) core.Point {
	p := pos.Project()
	if scaleKm <= 0 {
		return p
	}
	return core.Point{X: p.X / scaleKm, Y: p.Y / scaleKm}
}

// SnapshotLocations propagates every station to t and returns their
// projected locations in station order.
func SnapshotLocations(t time.Time, orbitals []*OrbitalStation, scaleKm float64) []core.Point {
	out := make([]core.Point, len(orbitals))
	for i, o := range orbitals {
		out[i] = ProjectKm(o.Position(t), scaleKm)
	}
	return out
}
