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
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// A CoordTransform converts between geographic and projected planar
// coordinates for a resolved projection.
type CoordTransform struct {
	forward, inverse proj.Transformer
}

// NewCoordTransform creates a coordinate transform for the given
// projection.
func NewCoordTransform(p Projection) (*CoordTransform, error) {
	forward, inverse, err := p.Transformers()
	if err != nil {
		return nil, err
	}
	return &CoordTransform{forward: forward, inverse: inverse}, nil
}

// LonLatToXY converts a geographic coordinate in degrees to a planar
// coordinate in meters.
func (ct *CoordTransform) LonLatToXY(lon, lat float64) (x, y float64, err error) {
	return ct.forward(lon, lat)
}

// XYToLonLat converts a planar coordinate in meters to a geographic
// coordinate in degrees.
func (ct *CoordTransform) XYToLonLat(x, y float64) (lon, lat float64, err error) {
	return ct.inverse(x, y)
}

// LonLatToXYs is the elementwise version of LonLatToXY. lon and lat
// must have equal lengths.
func (ct *CoordTransform) LonLatToXYs(lon, lat []float64) (x, y []float64, err error) {
	return transformAll(ct.forward, lon, lat)
}

// XYToLonLats is the elementwise version of XYToLonLat. x and y must
// have equal lengths.
func (ct *CoordTransform) XYToLonLats(x, y []float64) (lon, lat []float64, err error) {
	return transformAll(ct.inverse, x, y)
}

func transformAll(t proj.Transformer, a, b []float64) ([]float64, []float64, error) {
	if len(a) != len(b) {
		return nil, nil, fmt.Errorf("wrfpp: coordinate slices have different lengths (%d and %d)",
			len(a), len(b))
	}
	outA := make([]float64, len(a))
	outB := make([]float64, len(b))
	for i := range a {
		var err error
		outA[i], outB[i], err = t(a[i], b[i])
		if err != nil {
			return nil, nil, err
		}
	}
	return outA, outB, nil
}

// greatCircleDistance returns the great-circle distance in meters
// between two geographic points given in degrees, on the WRF sphere.
func greatCircleDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const deg2rad = math.Pi / 180
	φ1 := lat1 * deg2rad
	φ2 := lat2 * deg2rad
	Δφ := (lat2 - lat1) * deg2rad
	Δλ := (lon2 - lon1) * deg2rad
	a := math.Pow(math.Sin(Δφ/2), 2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Pow(math.Sin(Δλ/2), 2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}

// A Gridpoint is the result of a nearest-gridpoint query: the absolute
// indices of the nearest cell, its distance from the query point, and
// a subset of the dataset around that cell. When the query requested
// neighbors, Data covers the 3x3 neighborhood of the nearest cell,
// padded with NaN where the neighborhood extends past a domain edge;
// JIndex and IIndex give the absolute south-north and west-east index
// of each row and column of the subset, with -1 marking padding.
type Gridpoint struct {
	J, I           int
	Distance       float64 // m
	JIndex, IIndex []int
	Data           *Dataset
}

// NearestGridpoint finds the grid cell whose center is closest to the
// given location along a great circle and returns a subset of the
// dataset at that cell. It returns an *OutsideDomainError if the
// closest cell center is more than half a grid spacing away. When
// withNeighbors is true the subset covers the 3x3 neighborhood of the
// nearest cell.
func NearestGridpoint(ds GriddedDataset, lat, lon float64, withNeighbors bool) (*Gridpoint, error) {
	xlat, xlong, err := latLonGrids(ds)
	if err != nil {
		return nil, err
	}
	ny := xlat.Shape[0]
	nx := xlat.Shape[1]

	dists := make([]float64, ny*nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			dists[j*nx+i] = greatCircleDistance(lat, lon, xlat.Get(j, i), xlong.Get(j, i))
		}
	}
	imin := floats.MinIdx(dists)
	j, i := imin/nx, imin%nx
	dist := dists[imin]

	dx, err := ds.Attrs().Float("DX")
	if err != nil {
		return nil, err
	}
	dy, err := ds.Attrs().Float("DY")
	if err != nil {
		return nil, err
	}
	limit := math.Min(dx, dy) / 2
	if dist > limit {
		return nil, &OutsideDomainError{Distance: dist, Limit: limit}
	}

	gp := &Gridpoint{J: j, I: i, Distance: dist}
	if withNeighbors {
		gp.JIndex = windowIndex(j, ny)
		gp.IIndex = windowIndex(i, nx)
	} else {
		gp.JIndex = []int{j}
		gp.IIndex = []int{i}
	}
	gp.Data, err = subsetAround(ds, gp.JIndex, gp.IIndex)
	if err != nil {
		return nil, err
	}
	return gp, nil
}

// latLonGrids reads the 2-d latitude and longitude coordinate grids,
// dropping a leading time dimension if there is one.
func latLonGrids(ds GriddedDataset) (xlat, xlong *sparse.DenseArray, err error) {
	for i, name := range []string{"XLAT", "XLONG"} {
		v, err := ds.Variable(name)
		if err != nil {
			return nil, nil, err
		}
		s := Slice{}
		if len(v.Dims()) == 3 {
			// Keep the first time step only; the coordinates do
			// not change over time.
			sizes := v.Sizes()
			s = Slice{
				Start: []int{0, 0, 0},
				End:   []int{1, sizes[v.Dims()[1]], sizes[v.Dims()[2]]},
			}
		}
		data, err := v.Read(s)
		if err != nil {
			return nil, nil, err
		}
		if len(data.Shape) == 3 {
			data = reshape2d(data)
		}
		if len(data.Shape) != 2 {
			return nil, nil, fmt.Errorf("wrfpp: coordinate variable %s is %d-dimensional", name, len(data.Shape))
		}
		if i == 0 {
			xlat = data
		} else {
			xlong = data
		}
	}
	if xlat.Shape[0] != xlong.Shape[0] || xlat.Shape[1] != xlong.Shape[1] {
		return nil, nil, fmt.Errorf("wrfpp: XLAT and XLONG have different shapes")
	}
	return xlat, xlong, nil
}

// reshape2d drops the leading length-1 dimension of a 3-d array.
func reshape2d(a *sparse.DenseArray) *sparse.DenseArray {
	out := sparse.ZerosDense(a.Shape[1], a.Shape[2])
	copy(out.Elements, a.Elements)
	return out
}

// windowIndex returns the absolute indices of the 3-cell window
// centered on c in a dimension of length n, with -1 marking positions
// beyond the domain edge.
func windowIndex(c, n int) []int {
	out := make([]int, 3)
	for k := 0; k < 3; k++ {
		idx := c - 1 + k
		if idx < 0 || idx >= n {
			idx = -1
		}
		out[k] = idx
	}
	return out
}

// subsetAround extracts the given south-north and west-east absolute
// indices from every variable defined on the unstaggered horizontal
// grid, padding with NaN where an index is -1. Variables on staggered
// horizontal axes are omitted because their cells do not line up with
// the window.
func subsetAround(ds GriddedDataset, jIndex, iIndex []int) (*Dataset, error) {
	out := NewDataset(ds.Attrs())
	for _, name := range ds.VariableNames() {
		v, err := ds.Variable(name)
		if err != nil {
			return nil, err
		}
		jDim, iDim := -1, -1
		for k, d := range v.Dims() {
			switch d {
			case DimSouthNorth:
				jDim = k
			case DimWestEast:
				iDim = k
			}
		}
		if jDim < 0 || iDim < 0 {
			continue
		}
		data, err := v.Read(Slice{})
		if err != nil {
			return nil, err
		}
		shape := make([]int, len(data.Shape))
		copy(shape, data.Shape)
		shape[jDim] = len(jIndex)
		shape[iDim] = len(iIndex)
		sub := sparse.ZerosDense(shape...)

		idx := make([]int, len(shape))
		srcIdx := make([]int, len(shape))
		for {
			copy(srcIdx, idx)
			srcIdx[jDim] = jIndex[idx[jDim]]
			srcIdx[iDim] = iIndex[idx[iDim]]
			if srcIdx[jDim] < 0 || srcIdx[iDim] < 0 {
				sub.Set(math.NaN(), idx...)
			} else {
				sub.Set(data.Get(srcIdx...), idx...)
			}
			d := len(idx) - 1
			for d >= 0 {
				idx[d]++
				if idx[d] < shape[d] {
					break
				}
				idx[d] = 0
				d--
			}
			if d < 0 {
				break
			}
		}
		out.Add(NewMemVariable(name, v.Dims(), v.Attrs(), sub))
	}
	return out, nil
}
