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
	"math"
	"reflect"
	"testing"
)

const derivedTolerance = 1.e-8

func TestAtmPressure(t *testing.T) {
	w := NewWRF(testDataset())
	p, err := w.AtmPressure(Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Units != "Pa" {
		t.Errorf("units: got %q", p.Units)
	}
	if got := p.Data.Get(0, 0, 1, 2); got != 100000 {
		t.Errorf("lowest level: got %g, want 100000", got)
	}
	if got := p.Data.Get(1, 1, 0, 0); got != 85000 {
		t.Errorf("upper level: got %g, want 85000", got)
	}

	// Reading only the upper level.
	p, err = w.AtmPressure(Slice{
		Start: []int{0, 1, 0, 0},
		End:   []int{testNt, 2, testNy, testNx},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.Data.Shape, []int{testNt, 1, testNy, testNx}) {
		t.Fatalf("sliced shape: got %v", p.Data.Shape)
	}
	if got := p.Data.Get(0, 0, 0, 0); got != 85000 {
		t.Errorf("sliced read: got %g, want 85000", got)
	}
}

func TestPotentialTemperature(t *testing.T) {
	w := NewWRF(testDataset())
	theta, err := w.PotentialTemperature(Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if theta.Units != "K" {
		t.Errorf("units: got %q", theta.Units)
	}
	for _, v := range theta.Data.Elements {
		if v != 310 {
			t.Fatalf("got %g, want 310", v)
		}
	}
}

func TestAirTemperature(t *testing.T) {
	w := NewWRF(testDataset())
	temp, err := w.AirTemperature(Slice{})
	if err != nil {
		t.Fatal(err)
	}
	// At the reference pressure air temperature equals potential
	// temperature.
	if got := temp.Data.Get(0, 0, 0, 0); math.Abs(got-310) > derivedTolerance {
		t.Errorf("lowest level: got %g, want 310", got)
	}
	want := 310 * math.Pow(0.85, rr/cpd)
	if got := temp.Data.Get(0, 1, 0, 0); math.Abs(got-want) > derivedTolerance {
		t.Errorf("upper level: got %g, want %g", got, want)
	}
}

func TestDensityOfDryAir(t *testing.T) {
	w := NewWRF(testDataset())
	rho, err := w.DensityOfDryAir(Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if rho.Units != "kg m-3" {
		t.Errorf("units: got %q", rho.Units)
	}
	want := 100000. / (rr * 310)
	if got := rho.Data.Get(0, 0, 2, 3); math.Abs(got-want) > derivedTolerance {
		t.Errorf("got %g, want %g", got, want)
	}
}

func TestRelativeHumidity(t *testing.T) {
	w := NewWRF(testDataset())
	rh, err := w.RelativeHumidity(Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if rh.Units != "%" {
		t.Errorf("units: got %q", rh.Units)
	}
	// Hand calculation for q = 0.005, T = 310 K, p = 1e5 Pa:
	// psat = 611.2 exp(17.67*36.85/280.35) = 6236 Pa,
	// qsat = 0.6219*6236/93764 = 0.04136, RH = 12.09 %.
	if got := rh.Data.Get(0, 0, 0, 0); math.Abs(got-12.09) > 0.05 {
		t.Errorf("got %g, want about 12.09", got)
	}
	for _, v := range rh.Data.Elements {
		if v <= 0 || v >= 100 {
			t.Fatalf("implausible relative humidity %g", v)
		}
	}
}

func TestGeopotential(t *testing.T) {
	w := NewWRF(testDataset())
	geo, err := w.Geopotential(Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if geo.Units != "m2 s-2" {
		t.Errorf("units: got %q", geo.Units)
	}
	if !reflect.DeepEqual(geo.Dims, []string{DimTime, DimBottomTop + StagSuffix, DimSouthNorth, DimWestEast}) {
		t.Fatalf("dims: got %v", geo.Dims)
	}
	if got := geo.Data.Get(0, 1, 0, 0); math.Abs(got-500*g) > derivedTolerance {
		t.Errorf("staggered level 1: got %g, want %g", got, 500*g)
	}

	geo, err = Destagger(geo, "")
	if err != nil {
		t.Fatal(err)
	}
	// The lowest mass level is at height zero.
	if got := geo.Data.Get(0, 0, 0, 0); got != 0 {
		t.Errorf("destaggered level 0: got %g, want 0", got)
	}
	if got := geo.Data.Get(0, 1, 0, 0); math.Abs(got-1000*g) > derivedTolerance {
		t.Errorf("destaggered level 1: got %g, want %g", got, 1000*g)
	}
}

func TestAccumulatedPrecipitation(t *testing.T) {
	w := NewWRF(testDataset())
	precip, err := w.AccumulatedPrecipitation(Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if precip.Units != "mm" {
		t.Errorf("units: got %q", precip.Units)
	}
	if !reflect.DeepEqual(precip.Data.Shape, []int{testNt, testNy, testNx}) {
		t.Fatalf("shape: got %v", precip.Data.Shape)
	}
	for _, v := range precip.Data.Elements {
		if v != 7 {
			t.Fatalf("got %g, want 7", v)
		}
	}
}

func TestSeaLevelPressure(t *testing.T) {
	w := NewWRF(testDataset())
	slp, err := w.SeaLevelPressure(Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if slp.Units != "hPa" {
		t.Errorf("units: got %q", slp.Units)
	}
	if !reflect.DeepEqual(slp.Data.Shape, []int{testNt, testNy, testNx}) {
		t.Fatalf("shape: got %v", slp.Data.Shape)
	}
	// The lowest mass level of the test dataset is at sea level, so
	// the extrapolation changes nothing.
	for _, v := range slp.Data.Elements {
		if math.Abs(v-1000) > derivedTolerance {
			t.Fatalf("got %g, want 1000", v)
		}
	}
}

func TestSeaLevelPressureSlice(t *testing.T) {
	w := NewWRF(testDataset())
	slp, err := w.SeaLevelPressure(Slice{
		Start: []int{0, 0, 1, 1},
		End:   []int{1, 2, 2, 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(slp.Data.Shape, []int{1, 1, 1}) {
		t.Fatalf("shape: got %v", slp.Data.Shape)
	}
	if got := slp.Data.Get(0, 0, 0); math.Abs(got-1000) > derivedTolerance {
		t.Errorf("got %g, want 1000", got)
	}
}

func TestDerivedUnitChecks(t *testing.T) {
	d := testDataset()
	v, err := d.Variable("T")
	if err != nil {
		t.Fatal(err)
	}
	data, err := v.Read(Slice{})
	if err != nil {
		t.Fatal(err)
	}
	d.AddVariable("T", v.Dims(), "perturbation potential temperature", "degC", data)

	w := NewWRF(d)
	_, err = w.PotentialTemperature(Slice{})
	if err == nil {
		t.Fatal("expected unit mismatch error")
	}
	if _, ok := err.(*UnitMismatchError); !ok {
		t.Errorf("expected *UnitMismatchError, got %T", err)
	}
}
