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

	"github.com/ctessum/sparse"
)

const (
	g       = 9.81      // m/s2
	thetaT0 = 300.      // K, WRF potential temperature offset
	pref    = 1.e5      // Pa, reference pressure
	rr      = 287.      // J/(kg K), specific gas constant for dry air
	cpd     = 1004.5    // J/(kg K), specific heat of dry air at constant pressure
	mwDry   = 28.966e-3 // kg/mol, molar mass of dry air
	mwWater = 18.015e-3 // kg/mol, molar mass of water
	gammaStd = 0.0065   // K/m, standard atmosphere lapse rate
)

// WRF derives physical variables from the prognostic fields of a
// WRF-Chem output dataset.
type WRF struct {
	ds GriddedDataset
}

// NewWRF creates a derived-variable engine for the given dataset.
func NewWRF(ds GriddedDataset) *WRF {
	return &WRF{ds: ds}
}

// read loads a sub-range of the named variable after checking that its
// units match what the derivation assumes.
func (w *WRF) read(name, units string, s Slice) (*Field, error) {
	v, err := w.ds.Variable(name)
	if err != nil {
		return nil, err
	}
	if err := CheckUnits(v, units); err != nil {
		return nil, err
	}
	return ReadField(v, s)
}

// Geopotential calculates geopotential [m2 s-2] as the sum of the
// perturbation and base-state components. The vertical dimension stays
// staggered; use Destagger to move it to mass levels.
func (w *WRF) Geopotential(s Slice) (*Field, error) {
	ph, err := w.read("PH", "m2 s-2", s)
	if err != nil {
		return nil, err
	}
	phb, err := w.read("PHB", "m2 s-2", s)
	if err != nil {
		return nil, err
	}
	data := ph.Data.Copy()
	data.AddDense(phb.Data)
	return &Field{
		Name:     "geopotential",
		LongName: "geopotential",
		Units:    "m2 s-2",
		Dims:     ph.Dims,
		Data:     data,
	}, nil
}

// PotentialTemperature calculates potential temperature [K] from the
// WRF perturbation potential temperature.
func (w *WRF) PotentialTemperature(s Slice) (*Field, error) {
	t, err := w.read("T", "K", s)
	if err != nil {
		return nil, err
	}
	data := t.Data.Copy()
	for i, v := range data.Elements {
		data.Elements[i] = v + thetaT0
	}
	return &Field{
		Name:     "theta",
		LongName: "potential temperature",
		Units:    "K",
		Dims:     t.Dims,
		Data:     data,
	}, nil
}

// AtmPressure calculates pressure [Pa] as the sum of the perturbation
// and base-state components.
func (w *WRF) AtmPressure(s Slice) (*Field, error) {
	p, err := w.read("P", "Pa", s)
	if err != nil {
		return nil, err
	}
	pb, err := w.read("PB", "Pa", s)
	if err != nil {
		return nil, err
	}
	data := p.Data.Copy()
	data.AddDense(pb.Data)
	return &Field{
		Name:     "pressure",
		LongName: "air pressure",
		Units:    "Pa",
		Dims:     p.Dims,
		Data:     data,
	}, nil
}

// AirTemperature calculates air temperature [K] from potential
// temperature and pressure using the Poisson relation.
func (w *WRF) AirTemperature(s Slice) (*Field, error) {
	theta, err := w.PotentialTemperature(s)
	if err != nil {
		return nil, err
	}
	p, err := w.AtmPressure(s)
	if err != nil {
		return nil, err
	}
	data := theta.Data.Copy()
	for i, θ := range data.Elements {
		data.Elements[i] = θ * math.Pow(p.Data.Elements[i]/pref, rr/cpd)
	}
	return &Field{
		Name:     "temperature",
		LongName: "air temperature",
		Units:    "K",
		Dims:     theta.Dims,
		Data:     data,
	}, nil
}

// DensityOfDryAir calculates dry air density [kg m-3] from the ideal
// gas law.
func (w *WRF) DensityOfDryAir(s Slice) (*Field, error) {
	p, err := w.AtmPressure(s)
	if err != nil {
		return nil, err
	}
	t, err := w.AirTemperature(s)
	if err != nil {
		return nil, err
	}
	data := p.Data.Copy()
	for i, pv := range data.Elements {
		data.Elements[i] = pv / (rr * t.Data.Elements[i])
	}
	return &Field{
		Name:     "rho",
		LongName: "dry air density",
		Units:    "kg m-3",
		Dims:     p.Dims,
		Data:     data,
	}, nil
}

// satVaporPressure is the Magnus approximation to the saturation vapor
// pressure [Pa] over water at air temperature t [K].
func satVaporPressure(t float64) float64 {
	tc := t - 273.15
	return 611.2 * math.Exp(17.67*tc/(tc+243.5))
}

// RelativeHumidity calculates relative humidity [%] from the water
// vapor mixing ratio, temperature, and pressure.
func (w *WRF) RelativeHumidity(s Slice) (*Field, error) {
	q, err := w.read("QVAPOR", "kg kg-1", s)
	if err != nil {
		return nil, err
	}
	t, err := w.AirTemperature(s)
	if err != nil {
		return nil, err
	}
	p, err := w.AtmPressure(s)
	if err != nil {
		return nil, err
	}
	data := q.Data.Copy()
	for i, qv := range data.Elements {
		psat := satVaporPressure(t.Data.Elements[i])
		qsat := mwWater / mwDry * psat / (p.Data.Elements[i] - psat)
		data.Elements[i] = 100 * qv / qsat
	}
	return &Field{
		Name:     "rh",
		LongName: "relative humidity",
		Units:    "%",
		Dims:     q.Dims,
		Data:     data,
	}, nil
}

// AccumulatedPrecipitation calculates total accumulated precipitation
// [mm] as the sum of the cumulus and grid-scale components.
func (w *WRF) AccumulatedPrecipitation(s Slice) (*Field, error) {
	rainc, err := w.read("RAINC", "mm", s)
	if err != nil {
		return nil, err
	}
	rainnc, err := w.read("RAINNC", "mm", s)
	if err != nil {
		return nil, err
	}
	data := rainc.Data.Copy()
	data.AddDense(rainnc.Data)
	return &Field{
		Name:     "precip",
		LongName: "accumulated total precipitation",
		Units:    "mm",
		Dims:     rainc.Dims,
		Data:     data,
	}, nil
}

// pressureOffset is how far above the surface, in Pa, sea level
// pressure extrapolation starts, following the WRF compute_seaprs
// routine.
const pressureOffset = 10000.

// SeaLevelPressure calculates sea level pressure [hPa] by
// extrapolating temperature downward from roughly 100 hPa above the
// surface with a constant lapse rate, as in the WRF compute_seaprs
// routine. The whole vertical column is needed, so any bottom_top
// component of the slice is ignored; the slice applies to the
// resulting (Time, south_north, west_east) field.
func (w *WRF) SeaLevelPressure(s Slice) (*Field, error) {
	p, err := w.AtmPressure(Slice{})
	if err != nil {
		return nil, err
	}
	t, err := w.AirTemperature(Slice{})
	if err != nil {
		return nil, err
	}
	q, err := w.read("QVAPOR", "kg kg-1", Slice{})
	if err != nil {
		return nil, err
	}
	geo, err := w.Geopotential(Slice{})
	if err != nil {
		return nil, err
	}
	geo, err = Destagger(geo, DimBottomTop)
	if err != nil {
		return nil, err
	}
	if len(p.Dims) != 4 {
		return nil, fmt.Errorf("wrfpp: sea level pressure needs 4-d pressure, got dimensions %v", p.Dims)
	}
	nt := p.Data.Shape[0]
	nz := p.Data.Shape[1]
	ny := p.Data.Shape[2]
	nx := p.Data.Shape[3]

	out := sparse.ZerosDense(nt, ny, nx)
	for it := 0; it < nt; it++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				psfc := p.Data.Get(it, 0, j, i)
				pTarget := psfc - pressureOffset
				k := 0
				for k < nz && p.Data.Get(it, k, j, i) > pTarget {
					k++
				}
				if k == nz {
					return nil, fmt.Errorf("wrfpp: sea level pressure: no level %g Pa above the surface at (%d,%d,%d)",
						pressureOffset, it, j, i)
				}
				klo := k - 1
				if klo < 0 {
					klo = 0
				}
				khi := klo + 1

				plo := p.Data.Get(it, klo, j, i)
				phi := p.Data.Get(it, khi, j, i)
				tlo := t.Data.Get(it, klo, j, i) * (1 + 0.608*q.Data.Get(it, klo, j, i))
				thi := t.Data.Get(it, khi, j, i) * (1 + 0.608*q.Data.Get(it, khi, j, i))
				zlo := geo.Data.Get(it, klo, j, i) / g
				zhi := geo.Data.Get(it, khi, j, i) / g

				frac := math.Log(pTarget/phi) / math.Log(plo/phi)
				tAt := thi - (thi-tlo)*frac
				zAt := zhi - (zhi-zlo)*frac

				tSurf := tAt * math.Pow(psfc/pTarget, gammaStd*rr/g)
				tSea := tAt + gammaStd*zAt

				z0 := geo.Data.Get(it, 0, j, i) / g
				slp := psfc * math.Exp(2*g*z0/(rr*(tSea+tSurf)))
				out.Set(slp/100, it, j, i)
			}
		}
	}

	if len(s.Start) == 4 && len(s.End) == 4 {
		s = Slice{
			Start: []int{s.Start[0], s.Start[2], s.Start[3]},
			End:   []int{s.End[0], s.End[2], s.End[3]},
		}
	}
	dims := []string{p.Dims[0], p.Dims[2], p.Dims[3]}
	v := NewMemVariable("slp", dims, Attributes{"units": "hPa"}, out)
	data, err := v.Read(s)
	if err != nil {
		return nil, err
	}
	return &Field{
		Name:     "slp",
		LongName: "sea level pressure",
		Units:    "hPa",
		Dims:     dims,
		Data:     data,
	}, nil
}
