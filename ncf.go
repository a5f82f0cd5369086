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
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// A File is a GriddedDataset backed by a NetCDF file on disk.
// Variable data is read lazily; only the requested sub-range of a
// variable is read from disk.
type File struct {
	f       *os.File
	ff      *cdf.File
	attrs   Attributes
	numRecs int
}

// OpenFile opens the NetCDF file at path for reading.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	ff, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("wrfpp: opening netcdf file %s: %v", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{
		f:       f,
		ff:      ff,
		attrs:   ncfAttrs(ff, ""),
		numRecs: int(ff.Header.NumRecs(fi.Size())),
	}, nil
}

// Close closes the underlying file.
func (f *File) Close() error { return f.f.Close() }

// ncfAttrs decodes the attributes of variable v, or the global
// attributes if v is empty.
func ncfAttrs(ff *cdf.File, v string) Attributes {
	attrs := make(Attributes)
	for _, a := range ff.Header.Attributes(v) {
		attrs[a] = ff.Header.GetAttribute(v, a)
	}
	return attrs
}

// lengths returns the dimension lengths of variable v with the record
// dimension resolved to its actual length.
func (f *File) lengths(v string) []int {
	dims := f.ff.Header.Lengths(v)
	out := make([]int, len(dims))
	copy(out, dims)
	if len(out) > 0 && out[0] == 0 {
		out[0] = f.numRecs
	}
	return out
}

// Variable returns the named variable, or a *MissingVariableError if
// the file does not contain it.
func (f *File) Variable(name string) (Variable, error) {
	if len(f.ff.Header.Lengths(name)) == 0 {
		return nil, &MissingVariableError{Name: name}
	}
	return &fileVariable{name: name, f: f, attrs: ncfAttrs(f.ff, name)}, nil
}

// VariableNames returns the names of all variables in the file.
func (f *File) VariableNames() []string {
	return f.ff.Header.Variables()
}

// Sizes returns the lengths of all dimensions in the file.
func (f *File) Sizes() map[string]int {
	sizes := make(map[string]int)
	for _, v := range f.ff.Header.Variables() {
		dims := f.ff.Header.Dimensions(v)
		lengths := f.lengths(v)
		for i, d := range dims {
			sizes[d] = lengths[i]
		}
	}
	return sizes
}

// Attrs returns the global file attributes.
func (f *File) Attrs() Attributes { return f.attrs }

// fileVariable is a Variable backed by a NetCDF file.
type fileVariable struct {
	name  string
	f     *File
	attrs Attributes
}

func (v *fileVariable) Name() string { return v.name }

func (v *fileVariable) Dims() []string {
	return v.f.ff.Header.Dimensions(v.name)
}

func (v *fileVariable) Sizes() map[string]int {
	dims := v.Dims()
	lengths := v.f.lengths(v.name)
	sizes := make(map[string]int, len(dims))
	for i, d := range dims {
		sizes[d] = lengths[i]
	}
	return sizes
}

func (v *fileVariable) Attrs() Attributes { return v.attrs }

// Read reads the requested sub-range of the variable from disk.
func (v *fileVariable) Read(s Slice) (*sparse.DenseArray, error) {
	start, end, err := s.bounds(v.f.lengths(v.name))
	if err != nil {
		return nil, fmt.Errorf("variable %s: %v", v.name, err)
	}
	shape := make([]int, len(start))
	nread := 1
	for i := range shape {
		shape[i] = end[i] - start[i]
		nread *= shape[i]
	}
	r := v.f.ff.Reader(v.name, start, end)
	buf := r.Zero(nread)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("wrfpp: reading netcdf variable %s: %v", v.name, err)
	}
	data := sparse.ZerosDense(shape...)
	switch b := buf.(type) {
	case []float32:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	case []float64:
		copy(data.Elements, b)
	case []int32:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("wrfpp: netcdf variable %s has unsupported type %T", v.name, buf)
	}
	return data, nil
}
