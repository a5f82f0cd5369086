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

// Package wrfpp derives physical quantities from WRF and WRF-Chem model
// output and translates the grid metadata of such output into map
// projections and coordinate transforms.
package wrfpp

import (
	"fmt"

	"github.com/ctessum/sparse"
	"github.com/spf13/cast"
)

// Dimension names used in WRF output files. A dimension carrying the
// StagSuffix is staggered, i.e. defined at cell faces rather than cell
// centers.
const (
	DimTime       = "Time"
	DimBottomTop  = "bottom_top"
	DimSouthNorth = "south_north"
	DimWestEast   = "west_east"

	StagSuffix = "_stag"
)

// Attributes holds NetCDF-style attributes. Values are kept in the
// types the file reader produces (string, []float64, []float32, []int32
// and friends); the accessor methods take care of coercion.
type Attributes map[string]interface{}

// attrScalar unwraps single-element attribute slices so that they can
// be coerced to scalars.
func attrScalar(v interface{}) interface{} {
	switch vv := v.(type) {
	case []float64:
		if len(vv) == 1 {
			return vv[0]
		}
	case []float32:
		if len(vv) == 1 {
			return vv[0]
		}
	case []int32:
		if len(vv) == 1 {
			return vv[0]
		}
	case []int:
		if len(vv) == 1 {
			return vv[0]
		}
	}
	return v
}

// Has reports whether the attribute is present.
func (a Attributes) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Float returns the named attribute as a float64.
func (a Attributes) Float(name string) (float64, error) {
	v, ok := a[name]
	if !ok {
		return 0, &MissingAttributeError{Attr: name}
	}
	f, err := cast.ToFloat64E(attrScalar(v))
	if err != nil {
		return 0, fmt.Errorf("wrfpp: attribute %s: %v", name, err)
	}
	return f, nil
}

// Int returns the named attribute as an int.
func (a Attributes) Int(name string) (int, error) {
	v, ok := a[name]
	if !ok {
		return 0, &MissingAttributeError{Attr: name}
	}
	i, err := cast.ToIntE(attrScalar(v))
	if err != nil {
		return 0, fmt.Errorf("wrfpp: attribute %s: %v", name, err)
	}
	return i, nil
}

// String returns the named attribute as a string.
func (a Attributes) String(name string) (string, error) {
	v, ok := a[name]
	if !ok {
		return "", &MissingAttributeError{Attr: name}
	}
	s, err := cast.ToStringE(attrScalar(v))
	if err != nil {
		return "", fmt.Errorf("wrfpp: attribute %s: %v", name, err)
	}
	return s, nil
}

// A Slice selects a sub-range of a variable: element i of Start and End
// give the half-open index range [Start[i],End[i]) along dimension i.
// The zero value selects the entire variable; a nil Start starts every
// dimension at zero and a nil End extends every dimension to its full
// length.
type Slice struct {
	Start, End []int
}

// bounds resolves the slice against the given shape, filling in
// defaults and checking ranges.
func (s Slice) bounds(shape []int) (start, end []int, err error) {
	if s.Start != nil && len(s.Start) != len(shape) {
		return nil, nil, fmt.Errorf("wrfpp: slice start has %d dimensions but variable has %d",
			len(s.Start), len(shape))
	}
	if s.End != nil && len(s.End) != len(shape) {
		return nil, nil, fmt.Errorf("wrfpp: slice end has %d dimensions but variable has %d",
			len(s.End), len(shape))
	}
	start = make([]int, len(shape))
	end = make([]int, len(shape))
	for i, n := range shape {
		if s.Start != nil {
			start[i] = s.Start[i]
		}
		end[i] = n
		if s.End != nil {
			end[i] = s.End[i]
		}
		if start[i] < 0 || end[i] > n || start[i] >= end[i] {
			return nil, nil, fmt.Errorf("wrfpp: slice [%d,%d) out of range for dimension of length %d",
				start[i], end[i], n)
		}
	}
	return start, end, nil
}

// A Variable is a named array in a gridded dataset. Read returns the
// requested sub-range of the data; implementations backed by files are
// expected to read only that sub-range.
type Variable interface {
	Name() string
	Dims() []string
	Sizes() map[string]int
	Attrs() Attributes
	Read(s Slice) (*sparse.DenseArray, error)
}

// A GriddedDataset is a collection of variables sharing a coordinate
// system, along with global attributes describing the grid and its map
// projection. Implementations must not be mutated while derivations
// are in progress.
type GriddedDataset interface {
	Variable(name string) (Variable, error)
	VariableNames() []string
	Sizes() map[string]int
	Attrs() Attributes
}

// MemVariable is an in-memory Variable.
type MemVariable struct {
	name  string
	dims  []string
	attrs Attributes
	data  *sparse.DenseArray
}

// NewMemVariable creates an in-memory variable. The length of dims must
// match the number of dimensions of data.
func NewMemVariable(name string, dims []string, attrs Attributes, data *sparse.DenseArray) *MemVariable {
	if len(dims) != len(data.Shape) {
		panic(fmt.Errorf("wrfpp: variable %s: %d dimension names for a %d-d array",
			name, len(dims), len(data.Shape)))
	}
	if attrs == nil {
		attrs = make(Attributes)
	}
	return &MemVariable{name: name, dims: dims, attrs: attrs, data: data}
}

// Name returns the variable name.
func (v *MemVariable) Name() string { return v.name }

// Dims returns the dimension names in array order.
func (v *MemVariable) Dims() []string { return v.dims }

// Sizes returns the mapping from dimension name to length.
func (v *MemVariable) Sizes() map[string]int {
	s := make(map[string]int, len(v.dims))
	for i, d := range v.dims {
		s[d] = v.data.Shape[i]
	}
	return s
}

// Attrs returns the variable attributes.
func (v *MemVariable) Attrs() Attributes { return v.attrs }

// Read returns the requested sub-range of the variable data.
func (v *MemVariable) Read(s Slice) (*sparse.DenseArray, error) {
	start, end, err := s.bounds(v.data.Shape)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %v", v.name, err)
	}
	return sliceDense(v.data, start, end), nil
}

// sliceDense extracts the half-open region [start,end) from a.
func sliceDense(a *sparse.DenseArray, start, end []int) *sparse.DenseArray {
	shape := make([]int, len(start))
	for i := range shape {
		shape[i] = end[i] - start[i]
	}
	out := sparse.ZerosDense(shape...)
	idx := make([]int, len(start))
	copy(idx, start)
	outIdx := make([]int, len(start))
	for {
		for i := range idx {
			outIdx[i] = idx[i] - start[i]
		}
		out.Set(a.Get(idx...), outIdx...)
		d := len(idx) - 1
		for d >= 0 {
			idx[d]++
			if idx[d] < end[d] {
				break
			}
			idx[d] = start[d]
			d--
		}
		if d < 0 {
			break
		}
	}
	return out
}

// Dataset is an in-memory GriddedDataset.
type Dataset struct {
	vars     map[string]Variable
	varNames []string
	attrs    Attributes
}

// NewDataset creates an empty in-memory dataset with the given global
// attributes.
func NewDataset(attrs Attributes) *Dataset {
	if attrs == nil {
		attrs = make(Attributes)
	}
	return &Dataset{vars: make(map[string]Variable), attrs: attrs}
}

// AddVariable adds a variable with the given dimension names,
// descriptive name, units and data to the dataset, replacing any
// existing variable with the same name.
func (d *Dataset) AddVariable(name string, dims []string, description, units string, data *sparse.DenseArray) {
	attrs := Attributes{"long_name": description, "units": units}
	d.Add(NewMemVariable(name, dims, attrs, data))
}

// Add adds a variable to the dataset, replacing any existing variable
// with the same name.
func (d *Dataset) Add(v Variable) {
	if _, ok := d.vars[v.Name()]; !ok {
		d.varNames = append(d.varNames, v.Name())
	}
	d.vars[v.Name()] = v
}

// Variable returns the named variable.
func (d *Dataset) Variable(name string) (Variable, error) {
	v, ok := d.vars[name]
	if !ok {
		return nil, &MissingVariableError{Name: name}
	}
	return v, nil
}

// VariableNames returns the names of all variables in the order they
// were added.
func (d *Dataset) VariableNames() []string { return d.varNames }

// Sizes returns the mapping from dimension name to length over all
// variables in the dataset.
func (d *Dataset) Sizes() map[string]int {
	sizes := make(map[string]int)
	for _, name := range d.varNames {
		for dim, n := range d.vars[name].Sizes() {
			sizes[dim] = n
		}
	}
	return sizes
}

// Attrs returns the dataset global attributes.
func (d *Dataset) Attrs() Attributes { return d.attrs }

// A Field is the labeled result of a calculation: an array with a
// name, a descriptive name and canonical units attached.
type Field struct {
	Name     string
	LongName string
	Units    string
	Dims     []string
	Data     *sparse.DenseArray
}

// ReadField reads the requested sub-range of a raw variable and labels
// it with its canonical units.
func ReadField(v Variable, s Slice) (*Field, error) {
	units, err := CanonicalUnits(v)
	if err != nil {
		return nil, err
	}
	data, err := v.Read(s)
	if err != nil {
		return nil, err
	}
	longName := v.Name()
	if ln, err := v.Attrs().String("description"); err == nil && ln != "" {
		longName = ln
	} else if ln, err := v.Attrs().String("long_name"); err == nil && ln != "" {
		longName = ln
	}
	return &Field{
		Name:     v.Name(),
		LongName: longName,
		Units:    units,
		Dims:     v.Dims(),
		Data:     data,
	}, nil
}
