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

	"github.com/wrfpolar/wrfpp"
)

// transformer resolves the map projection of the wrfout file at path
// and returns the corresponding coordinate transform.
func transformer(path string) (*wrfpp.CoordTransform, error) {
	f, err := wrfpp.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := wrfpp.ResolveProjection(f)
	if err != nil {
		return nil, err
	}
	return wrfpp.NewCoordTransform(p)
}

// LL2XY converts a geographic coordinate in degrees to projected
// coordinates in meters, using the map projection of the wrfout file
// at path.
func LL2XY(w io.Writer, path string, lon, lat float64) error {
	ct, err := transformer(path)
	if err != nil {
		return err
	}
	x, y, err := ct.LonLatToXY(lon, lat)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "x = %f m\ny = %f m\n", x, y)
	return nil
}

// XY2LL converts projected coordinates in meters to a geographic
// coordinate in degrees, using the map projection of the wrfout file
// at path.
func XY2LL(w io.Writer, path string, x, y float64) error {
	ct, err := transformer(path)
	if err != nil {
		return err
	}
	lon, lat, err := ct.XYToLonLat(x, y)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "lat = %f deg\nlon = %f deg\n", lat, lon)
	return nil
}
