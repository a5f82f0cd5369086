/*
Copyright © 2025 the WRFPolar authors.
This file is part of WRFPolar.

WRFPolar is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WRFPolar is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WRFPolar.  If not, see <http://www.gnu.org/licenses/>.
*/

package wrfpp

import (
	"fmt"
	"math"

	"github.com/ctessum/geom/proj"
)

// earthRadius is the radius of the sphere the WRF model runs on [m].
const earthRadius = 6.370e6

// ProjectionKind discriminates the supported map projections.
type ProjectionKind int

// The supported projections.
const (
	LambertConformalKind ProjectionKind = iota + 1
	PolarStereographicKind
)

func (k ProjectionKind) String() string {
	switch k {
	case LambertConformalKind:
		return "Lambert Conformal Conic"
	case PolarStereographicKind:
		return "Polar Stereographic"
	default:
		return fmt.Sprintf("unknown projection kind %d", int(k))
	}
}

// A Projection describes the map projection of a WRF domain and
// provides the corresponding coordinate transforms. forward converts
// (longitude, latitude) in degrees to planar (x, y) in meters;
// inverse is its exact opposite.
type Projection interface {
	Kind() ProjectionKind
	Transformers() (forward, inverse proj.Transformer, err error)
}

// LambertConformal is a Lambert Conformal Conic projection descriptor.
type LambertConformal struct {
	CenLat, CenLon     float64 // projection center [degrees]
	TrueLat1, TrueLat2 float64 // standard parallels [degrees]
}

// Kind fulfills the Projection interface.
func (p *LambertConformal) Kind() ProjectionKind { return LambertConformalKind }

// Transformers fulfills the Projection interface by building the
// forward and inverse transforms through the proj library.
func (p *LambertConformal) Transformers() (forward, inverse proj.Transformer, err error) {
	// The parameters are formatted with %f: the proj-string parser
	// splits tokens on '+', so exponent notation would be cut apart.
	sr, err := proj.Parse(fmt.Sprintf(
		"+proj=lcc +lat_1=%f +lat_2=%f +lat_0=%f +lon_0=%f +x_0=0 +y_0=0 +a=%f +b=%f +to_meter=1 +no_defs",
		p.TrueLat1, p.TrueLat2, p.CenLat, p.CenLon, earthRadius, earthRadius))
	if err != nil {
		return nil, nil, fmt.Errorf("wrfpp: parsing Lambert projection: %v", err)
	}
	ll, err := proj.Parse(fmt.Sprintf("+proj=longlat +a=%f +b=%f +no_defs", earthRadius, earthRadius))
	if err != nil {
		return nil, nil, fmt.Errorf("wrfpp: parsing geographic projection: %v", err)
	}
	forward, err = ll.NewTransform(sr)
	if err != nil {
		return nil, nil, fmt.Errorf("wrfpp: creating Lambert forward transform: %v", err)
	}
	inverse, err = sr.NewTransform(ll)
	if err != nil {
		return nil, nil, fmt.Errorf("wrfpp: creating Lambert inverse transform: %v", err)
	}
	return forward, inverse, nil
}

// PolarStereographic is a polar stereographic projection descriptor.
type PolarStereographic struct {
	PoleLat float64 // +90 or -90 [degrees]
	TrueLat float64 // latitude of true scale [degrees]
	CenLon  float64 // central longitude [degrees]
}

// Kind fulfills the Projection interface.
func (p *PolarStereographic) Kind() ProjectionKind { return PolarStereographicKind }

// Transformers fulfills the Projection interface. The proj library
// does not register a stereographic projection, so the spherical
// polar stereographic equations are implemented here in the same form
// the library uses for its other projections.
func (p *PolarStereographic) Transformers() (forward, inverse proj.Transformer, err error) {
	const deg2rad = math.Pi / 180

	south := p.PoleLat < 0
	lon0 := p.CenLon * deg2rad
	latTS := p.TrueLat * deg2rad

	// Scale factor giving true scale at latTS.
	var k0 float64
	if south {
		k0 = (1 - math.Sin(latTS)) / 2
	} else {
		k0 = (1 + math.Sin(latTS)) / 2
	}
	if k0 <= 0 {
		return nil, nil, fmt.Errorf("wrfpp: invalid true latitude %g for polar stereographic projection", p.TrueLat)
	}

	forward = func(lon, lat float64) (x, y float64, err error) {
		λ := lon*deg2rad - lon0
		φ := lat * deg2rad
		if south {
			ρ := 2 * earthRadius * k0 * math.Tan(math.Pi/4+φ/2)
			return ρ * math.Sin(λ), ρ * math.Cos(λ), nil
		}
		ρ := 2 * earthRadius * k0 * math.Tan(math.Pi/4-φ/2)
		return ρ * math.Sin(λ), -ρ * math.Cos(λ), nil
	}
	inverse = func(x, y float64) (lon, lat float64, err error) {
		ρ := math.Hypot(x, y)
		var λ, φ float64
		if south {
			φ = -math.Pi/2 + 2*math.Atan(ρ/(2*earthRadius*k0))
			λ = lon0
			if ρ > 0 {
				λ += math.Atan2(x, y)
			}
		} else {
			φ = math.Pi/2 - 2*math.Atan(ρ/(2*earthRadius*k0))
			λ = lon0
			if ρ > 0 {
				λ += math.Atan2(x, -y)
			}
		}
		return adjustLon(λ) / deg2rad, φ / deg2rad, nil
	}
	return forward, inverse, nil
}

// adjustLon wraps a longitude in radians into [-π,π].
func adjustLon(λ float64) float64 {
	for λ > math.Pi {
		λ -= 2 * math.Pi
	}
	for λ < -math.Pi {
		λ += 2 * math.Pi
	}
	return λ
}

// ResolveProjection translates the global grid metadata of a dataset
// into a validated projection descriptor. All validation failures are
// fatal: callers must treat an error as "coordinate conversion
// unavailable".
func ResolveProjection(ds GriddedDataset) (Projection, error) {
	attrs := ds.Attrs()

	poleLon, err := attrs.Float("POLE_LON")
	if err != nil {
		return nil, err
	}
	if poleLon != 0 {
		return nil, &ProjectionMetadataError{Reason: fmt.Sprintf("invalid POLE_LON: %f", poleLon)}
	}
	poleLat, err := attrs.Float("POLE_LAT")
	if err != nil {
		return nil, err
	}
	if poleLat != 90 && poleLat != -90 {
		return nil, &ProjectionMetadataError{Reason: fmt.Sprintf("invalid POLE_LAT: %f", poleLat)}
	}

	code, err := attrs.Int("MAP_PROJ")
	if err != nil {
		return nil, err
	}
	switch code {
	case 1:
		return resolveLambert(attrs)
	case 2:
		return resolvePolarStereo(attrs, poleLat)
	case 0, 102, 3, 4, 5, 6, 105, 203:
		return nil, &UnsupportedProjectionError{Code: code}
	default:
		return nil, &InvalidProjectionCodeError{Code: code}
	}
}

// checkProjName validates the optional descriptive projection name
// attribute.
func checkProjName(attrs Attributes, want string) error {
	if !attrs.Has("MAP_PROJ_CHAR") {
		return nil
	}
	name, err := attrs.String("MAP_PROJ_CHAR")
	if err != nil {
		return err
	}
	if name != want {
		return &ProjectionMetadataError{Reason: fmt.Sprintf("MAP_PROJ_CHAR is %q, want %q", name, want)}
	}
	return nil
}

func resolveLambert(attrs Attributes) (Projection, error) {
	if err := checkProjName(attrs, "Lambert Conformal Conic"); err != nil {
		return nil, err
	}
	standLon, err := attrs.Float("STAND_LON")
	if err != nil {
		return nil, err
	}
	cenLon, err := attrs.Float("CEN_LON")
	if err != nil {
		return nil, err
	}
	if standLon != cenLon {
		return nil, &ProjectionMetadataError{Reason: "inconsistency in central longitude values"}
	}
	moadCenLat, err := attrs.Float("MOAD_CEN_LAT")
	if err != nil {
		return nil, err
	}
	cenLat, err := attrs.Float("CEN_LAT")
	if err != nil {
		return nil, err
	}
	if moadCenLat != cenLat {
		return nil, &ProjectionMetadataError{Reason: "inconsistency in central latitude values"}
	}
	trueLat1, err := attrs.Float("TRUELAT1")
	if err != nil {
		return nil, err
	}
	trueLat2, err := attrs.Float("TRUELAT2")
	if err != nil {
		return nil, err
	}
	return &LambertConformal{
		CenLat:   cenLat,
		CenLon:   cenLon,
		TrueLat1: trueLat1,
		TrueLat2: trueLat2,
	}, nil
}

func resolvePolarStereo(attrs Attributes, poleLat float64) (Projection, error) {
	if err := checkProjName(attrs, "Polar Stereographic"); err != nil {
		return nil, err
	}
	standLon, err := attrs.Float("STAND_LON")
	if err != nil {
		return nil, err
	}
	cenLon, err := attrs.Float("CEN_LON")
	if err != nil {
		return nil, err
	}
	if standLon != cenLon {
		return nil, &ProjectionMetadataError{Reason: "inconsistency in central longitude values"}
	}
	cenLat, err := attrs.Float("CEN_LAT")
	if err != nil {
		return nil, err
	}
	// The true latitudes are compared after rounding because wrfout
	// files store them in single precision.
	for _, which := range []string{"TRUELAT1", "TRUELAT2", "MOAD_CEN_LAT"} {
		v, err := attrs.Float(which)
		if err != nil {
			return nil, err
		}
		if round4(v) != round4(cenLat) {
			return nil, &ProjectionMetadataError{Reason: "inconsistency in true latitude values"}
		}
	}
	trueLat, err := attrs.Float("TRUELAT1")
	if err != nil {
		return nil, err
	}
	return &PolarStereographic{
		PoleLat: poleLat,
		TrueLat: trueLat,
		CenLon:  cenLon,
	}, nil
}

// round4 rounds to 4 decimal places.
func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
