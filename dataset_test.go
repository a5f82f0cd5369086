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

	"github.com/ctessum/sparse"
)

// Test grid: 2 time steps, 2 mass levels (3 staggered), 3 rows, 4
// columns, over a polar stereographic domain centered on 70N 45W.
const (
	testNt = 2
	testNz = 3 // staggered vertical levels; testNz-1 mass levels
	testNy = 3
	testNx = 4
)

func testAttrs() Attributes {
	return Attributes{
		"MAP_PROJ":      []int32{2},
		"MAP_PROJ_CHAR": "Polar Stereographic",
		"CEN_LAT":       []float32{70},
		"CEN_LON":       []float32{-45},
		"TRUELAT1":      []float32{70},
		"TRUELAT2":      []float32{70},
		"MOAD_CEN_LAT":  []float32{70},
		"STAND_LON":     []float32{-45},
		"POLE_LAT":      []float32{90},
		"POLE_LON":      []float32{0},
		"DX":            []float32{24000},
		"DY":            []float32{24000},
	}
}

// constDense creates an array with every element set to v.
func constDense(v float64, shape ...int) *sparse.DenseArray {
	a := sparse.ZerosDense(shape...)
	for i := range a.Elements {
		a.Elements[i] = v
	}
	return a
}

// testDataset creates a synthetic dataset with analytically known
// derived values: pressure 1e5 Pa at the lowest level and 8.5e4 Pa
// above it, potential temperature 310 K everywhere, and geopotential
// heights of 0 and 1000 m on the mass levels.
func testDataset() *Dataset {
	d := NewDataset(testAttrs())

	dims3 := []string{DimTime, DimSouthNorth, DimWestEast}
	dims4 := []string{DimTime, DimBottomTop, DimSouthNorth, DimWestEast}
	dims4Stag := []string{DimTime, DimBottomTop + StagSuffix, DimSouthNorth, DimWestEast}

	pb := sparse.ZerosDense(testNt, testNz-1, testNy, testNx)
	for it := 0; it < testNt; it++ {
		for j := 0; j < testNy; j++ {
			for i := 0; i < testNx; i++ {
				pb.Set(100000, it, 0, j, i)
				pb.Set(85000, it, 1, j, i)
			}
		}
	}
	phb := sparse.ZerosDense(testNt, testNz, testNy, testNx)
	for it := 0; it < testNt; it++ {
		for k, z := range []float64{-500, 500, 1500} {
			for j := 0; j < testNy; j++ {
				for i := 0; i < testNx; i++ {
					phb.Set(z*g, it, k, j, i)
				}
			}
		}
	}

	d.AddVariable("T", dims4, "perturbation potential temperature", "K",
		constDense(10, testNt, testNz-1, testNy, testNx))
	d.AddVariable("P", dims4, "perturbation pressure", "Pa",
		constDense(0, testNt, testNz-1, testNy, testNx))
	d.AddVariable("PB", dims4, "base state pressure", "Pa", pb)
	d.AddVariable("PH", dims4Stag, "perturbation geopotential", "m2 s-2",
		constDense(0, testNt, testNz, testNy, testNx))
	d.AddVariable("PHB", dims4Stag, "base-state geopotential", "m2 s-2", phb)
	d.AddVariable("QVAPOR", dims4, "water vapor mixing ratio", "kg kg-1",
		constDense(0.005, testNt, testNz-1, testNy, testNx))
	d.AddVariable("RAINC", dims3, "accumulated cumulus precipitation", "mm",
		constDense(2.5, testNt, testNy, testNx))
	d.AddVariable("RAINNC", dims3, "accumulated grid scale precipitation", "mm",
		constDense(4.5, testNt, testNy, testNx))

	xlat := sparse.ZerosDense(testNt, testNy, testNx)
	xlong := sparse.ZerosDense(testNt, testNy, testNx)
	for it := 0; it < testNt; it++ {
		for j := 0; j < testNy; j++ {
			for i := 0; i < testNx; i++ {
				xlat.Set(70+0.2*float64(j), it, j, i)
				xlong.Set(-45+0.6*float64(i), it, j, i)
			}
		}
	}
	d.AddVariable("XLAT", dims3, "latitude, south is negative", "degree_north", xlat)
	d.AddVariable("XLONG", dims3, "longitude, west is negative", "degree_east", xlong)

	return d
}

func TestSliceBounds(t *testing.T) {
	shape := []int{2, 3, 4}

	start, end, err := Slice{}.bounds(shape)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(start, []int{0, 0, 0}) || !reflect.DeepEqual(end, shape) {
		t.Errorf("empty slice: got [%v,%v)", start, end)
	}

	s := Slice{Start: []int{1, 0, 2}, End: []int{2, 2, 4}}
	start, end, err = s.bounds(shape)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(start, s.Start) || !reflect.DeepEqual(end, s.End) {
		t.Errorf("got [%v,%v), want [%v,%v)", start, end, s.Start, s.End)
	}

	bad := []Slice{
		{Start: []int{0, 0, 0}, End: []int{2, 3, 5}}, // past the end
		{Start: []int{-1, 0, 0}, End: []int{2, 3, 4}},
		{Start: []int{0, 2, 0}, End: []int{2, 2, 4}}, // empty range
		{Start: []int{0, 0}, End: []int{2, 3}},       // wrong rank
	}
	for i, s := range bad {
		if _, _, err := s.bounds(shape); err == nil {
			t.Errorf("case %d: expected error for slice [%v,%v)", i, s.Start, s.End)
		}
	}
}

func TestMemVariableRead(t *testing.T) {
	data := sparse.ZerosDense(2, 3)
	for i := range data.Elements {
		data.Elements[i] = float64(i)
	}
	v := NewMemVariable("x", []string{"a", "b"}, nil, data)

	full, err := v.Read(Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(full.Elements, data.Elements) {
		t.Errorf("full read: got %v, want %v", full.Elements, data.Elements)
	}

	sub, err := v.Read(Slice{Start: []int{1, 1}, End: []int{2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{4, 5}
	if !reflect.DeepEqual(sub.Elements, want) {
		t.Errorf("sub-range read: got %v, want %v", sub.Elements, want)
	}
	if !reflect.DeepEqual(sub.Shape, []int{1, 2}) {
		t.Errorf("sub-range shape: got %v, want [1 2]", sub.Shape)
	}
}

func TestAttributes(t *testing.T) {
	attrs := testAttrs()

	dx, err := attrs.Float("DX")
	if err != nil {
		t.Fatal(err)
	}
	if dx != 24000 {
		t.Errorf("DX: got %g, want 24000", dx)
	}

	mp, err := attrs.Int("MAP_PROJ")
	if err != nil {
		t.Fatal(err)
	}
	if mp != 2 {
		t.Errorf("MAP_PROJ: got %d, want 2", mp)
	}

	name, err := attrs.String("MAP_PROJ_CHAR")
	if err != nil {
		t.Fatal(err)
	}
	if name != "Polar Stereographic" {
		t.Errorf("MAP_PROJ_CHAR: got %q", name)
	}

	if _, err := attrs.Float("NO_SUCH_ATTR"); err == nil {
		t.Error("expected error for missing attribute")
	} else if _, ok := err.(*MissingAttributeError); !ok {
		t.Errorf("expected *MissingAttributeError, got %T", err)
	}
}

func TestDatasetVariables(t *testing.T) {
	d := testDataset()

	if _, err := d.Variable("NO_SUCH_VAR"); err == nil {
		t.Error("expected error for missing variable")
	} else if _, ok := err.(*MissingVariableError); !ok {
		t.Errorf("expected *MissingVariableError, got %T", err)
	}

	sizes := d.Sizes()
	for dim, want := range map[string]int{
		DimTime:                   testNt,
		DimBottomTop:              testNz - 1,
		DimBottomTop + StagSuffix: testNz,
		DimSouthNorth:             testNy,
		DimWestEast:               testNx,
	} {
		if sizes[dim] != want {
			t.Errorf("dimension %s: got %d, want %d", dim, sizes[dim], want)
		}
	}
}

func TestReadField(t *testing.T) {
	d := testDataset()
	v, err := d.Variable("T")
	if err != nil {
		t.Fatal(err)
	}
	f, err := ReadField(v, Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if f.Units != "K" {
		t.Errorf("units: got %q, want K", f.Units)
	}
	if f.LongName != "perturbation potential temperature" {
		t.Errorf("long name: got %q", f.LongName)
	}
	if !reflect.DeepEqual(f.Dims, []string{DimTime, DimBottomTop, DimSouthNorth, DimWestEast}) {
		t.Errorf("dims: got %v", f.Dims)
	}
	if f.Data.Get(0, 0, 0, 0) != 10 {
		t.Errorf("data: got %g, want 10", f.Data.Get(0, 0, 0, 0))
	}
}

// allClose reports whether every element of a and b matches within
// tolerance.
func allClose(a, b *sparse.DenseArray, tolerance float64) bool {
	if !reflect.DeepEqual(a.Shape, b.Shape) {
		return false
	}
	for i, av := range a.Elements {
		if math.Abs(av-b.Elements[i]) > tolerance {
			return false
		}
	}
	return true
}
