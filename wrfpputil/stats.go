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

package wrfpputil

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/wrfpolar/wrfpp"
)

// derivedDims gives the dimensions of each derived variable, so that
// a sub-range can be composed without computing the variable first.
var derivedDims = map[string][]string{
	"geopotential": {wrfpp.DimTime, wrfpp.DimBottomTop + wrfpp.StagSuffix, wrfpp.DimSouthNorth, wrfpp.DimWestEast},
	"theta":        {wrfpp.DimTime, wrfpp.DimBottomTop, wrfpp.DimSouthNorth, wrfpp.DimWestEast},
	"pressure":     {wrfpp.DimTime, wrfpp.DimBottomTop, wrfpp.DimSouthNorth, wrfpp.DimWestEast},
	"temperature":  {wrfpp.DimTime, wrfpp.DimBottomTop, wrfpp.DimSouthNorth, wrfpp.DimWestEast},
	"rho":          {wrfpp.DimTime, wrfpp.DimBottomTop, wrfpp.DimSouthNorth, wrfpp.DimWestEast},
	"rh":           {wrfpp.DimTime, wrfpp.DimBottomTop, wrfpp.DimSouthNorth, wrfpp.DimWestEast},
	"precip":       {wrfpp.DimTime, wrfpp.DimSouthNorth, wrfpp.DimWestEast},
	"slp":          {wrfpp.DimTime, wrfpp.DimSouthNorth, wrfpp.DimWestEast},
}

// fieldDims returns the dimensions of the named raw or derived
// variable.
func fieldDims(ds wrfpp.GriddedDataset, name string) ([]string, error) {
	if dims, ok := derivedDims[name]; ok {
		return dims, nil
	}
	v, err := ds.Variable(name)
	if err != nil {
		return nil, err
	}
	return v.Dims(), nil
}

// fieldSlice composes the sub-range selecting time steps
// [time0,time1) and vertical layers [layer0,layer1) of a variable
// with the given dimensions. Negative end indices select the full
// extent of the axis.
func fieldSlice(ds wrfpp.GriddedDataset, dims []string, time0, time1, layer0, layer1 int) (wrfpp.Slice, error) {
	sizes := ds.Sizes()
	var s wrfpp.Slice
	for _, dim := range dims {
		n, ok := sizes[dim]
		if !ok {
			return wrfpp.Slice{}, fmt.Errorf("wrfpp: file has no dimension %s", dim)
		}
		start, end := 0, n
		switch dim {
		case wrfpp.DimTime:
			start = time0
			if time1 >= 0 {
				end = time1
			}
		case wrfpp.DimBottomTop, wrfpp.DimBottomTop + wrfpp.StagSuffix:
			start = layer0
			if layer1 >= 0 {
				end = layer1
			}
		}
		s.Start = append(s.Start, start)
		s.End = append(s.End, end)
	}
	return s, nil
}

// VarStats summarizes the raw or derived variable varName of the
// wrfout file at path over the selected time steps and vertical
// layers, writing the result to w. Missing values (NaN) are skipped.
func VarStats(w io.Writer, path, varName string, time0, time1, layer0, layer1 int) error {
	f, err := wrfpp.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dims, err := fieldDims(f, varName)
	if err != nil {
		return err
	}
	s, err := fieldSlice(f, dims, time0, time1, layer0, layer1)
	if err != nil {
		return err
	}

	cache := wrfpp.NewFieldCache(f, 1)
	field, err := cache.Field(context.Background(), varName, s)
	if err != nil {
		return err
	}

	var d stats.Stats
	missing := 0
	for _, v := range field.Data.Elements {
		if math.IsNaN(v) {
			missing++
			continue
		}
		d.Update(v)
	}

	fmt.Fprintf(w, "%s (%s) [%s] %v\n", field.Name, field.LongName, field.Units, field.Data.Shape)
	if d.Count() == 0 {
		fmt.Fprintln(w, "no valid values in the selected range")
		return nil
	}
	fmt.Fprintf(w, "count:   %d\n", d.Count())
	if missing > 0 {
		fmt.Fprintf(w, "missing: %d\n", missing)
	}
	fmt.Fprintf(w, "mean:    %g\n", d.Mean())
	fmt.Fprintf(w, "min:     %g\n", d.Min())
	fmt.Fprintf(w, "max:     %g\n", d.Max())
	if d.Count() > 1 {
		fmt.Fprintf(w, "stddev:  %g\n", d.SampleStandardDeviation())
	}
	return nil
}
