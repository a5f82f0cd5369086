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

	"github.com/ctessum/sparse"
)

// staggerableDims are the dimensions that may occur in staggered form.
var staggerableDims = [3]string{DimWestEast, DimSouthNorth, DimBottomTop}

// StaggeredDims returns the names of the staggered dimensions in the
// given dimension list, without the StagSuffix. name identifies the
// variable in error messages. It returns an *InvalidGridError if a
// dimension is present in both staggered and unstaggered form.
func StaggeredDims(name string, dims []string) ([]string, error) {
	has := make(map[string]bool, len(dims))
	for _, d := range dims {
		has[d] = true
	}
	var out []string
	for _, d := range staggerableDims {
		notStaggered := has[d]
		staggered := has[d+StagSuffix]
		if notStaggered && staggered {
			return nil, &InvalidGridError{Var: name, Dim: d}
		} else if staggered {
			out = append(out, d)
		}
	}
	return out, nil
}

// Destagger converts the given field from a staggered to an
// unstaggered grid along dimension dim (given without the StagSuffix)
// by averaging adjacent cell-face values; the destaggered dimension is
// one element shorter than the staggered one. If dim is empty it is
// inferred, in which case the field must have exactly one staggered
// dimension; otherwise an *AmbiguousAxisError is returned.
func Destagger(f *Field, dim string) (*Field, error) {
	if dim == "" {
		staggered, err := StaggeredDims(f.Name, f.Dims)
		if err != nil {
			return nil, err
		}
		if len(staggered) != 1 {
			return nil, &AmbiguousAxisError{Var: f.Name, Dims: f.Dims}
		}
		dim = staggered[0]
	}
	dimStag := dim + StagSuffix
	idx := -1
	for i, d := range f.Dims {
		if d == dimStag {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("wrfpp: variable %s has no dimension %s", f.Name, dimStag)
	}
	if f.Data.Shape[idx] < 2 {
		return nil, fmt.Errorf("wrfpp: variable %s: cannot destagger dimension %s of length %d",
			f.Name, dimStag, f.Data.Shape[idx])
	}

	shape := make([]int, len(f.Data.Shape))
	copy(shape, f.Data.Shape)
	shape[idx]--
	out := sparse.ZerosDense(shape...)

	// Average each pair of adjacent cell-face values.
	index := make([]int, len(shape))
	indexAbove := make([]int, len(shape))
	for {
		copy(indexAbove, index)
		indexAbove[idx]++
		out.Set((f.Data.Get(index...)+f.Data.Get(indexAbove...))/2, index...)
		d := len(index) - 1
		for d >= 0 {
			index[d]++
			if index[d] < shape[d] {
				break
			}
			index[d] = 0
			d--
		}
		if d < 0 {
			break
		}
	}

	dims := make([]string, len(f.Dims))
	copy(dims, f.Dims)
	dims[idx] = dim
	return &Field{
		Name:     f.Name,
		LongName: f.LongName,
		Units:    f.Units,
		Dims:     dims,
		Data:     out,
	}, nil
}
