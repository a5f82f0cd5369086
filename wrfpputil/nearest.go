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
	"fmt"
	"io"
	"strings"

	"github.com/wrfpolar/wrfpp"
)

// Nearest reports the grid cell of the wrfout file at path whose
// center is closest to the given location, and, when withNeighbors is
// true, its 3x3 neighborhood.
func Nearest(w io.Writer, path string, lat, lon float64, withNeighbors bool) error {
	f, err := wrfpp.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gp, err := wrfpp.NearestGridpoint(f, lat, lon, withNeighbors)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "query:    (%g, %g)\n", lat, lon)
	fmt.Fprintf(w, "cell:     south_north=%d west_east=%d\n", gp.J, gp.I)
	fmt.Fprintf(w, "distance: %.1f m\n", gp.Distance)
	if err := printCell(w, gp, "XLAT"); err != nil {
		return err
	}
	if err := printCell(w, gp, "XLONG"); err != nil {
		return err
	}
	if withNeighbors {
		fmt.Fprintf(w, "south_north rows:  %s\n", indexList(gp.JIndex))
		fmt.Fprintf(w, "west_east columns: %s\n", indexList(gp.IIndex))
	}
	fmt.Fprintf(w, "subset variables: %s\n", strings.Join(gp.Data.VariableNames(), " "))
	return nil
}

// printCell writes the values of the named coordinate variable over
// the subset at the first time step.
func printCell(w io.Writer, gp *wrfpp.Gridpoint, name string) error {
	v, err := gp.Data.Variable(name)
	if err != nil {
		return err
	}
	// The subset retains the Time dimension; report the first step.
	end := []int{1}
	sizes := v.Sizes()
	for _, d := range v.Dims()[1:] {
		end = append(end, sizes[d])
	}
	data, err := v.Read(wrfpp.Slice{End: end})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s:\n", name)
	ny, nx := data.Shape[1], data.Shape[2]
	for j := 0; j < ny; j++ {
		fmt.Fprint(w, "\t")
		for i := 0; i < nx; i++ {
			fmt.Fprintf(w, "%10.4f", data.Get(0, j, i))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func indexList(idx []int) string {
	parts := make([]string, len(idx))
	for i, v := range idx {
		if v < 0 {
			parts[i] = "-"
		} else {
			parts[i] = fmt.Sprintf("%d", v)
		}
	}
	return strings.Join(parts, " ")
}
