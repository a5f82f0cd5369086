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
	"sort"

	"github.com/wrfpolar/wrfpp"
)

// Info writes a description of the wrfout file at path to w: its
// dimensions, its map projection and its global attributes.
func Info(w io.Writer, path string) error {
	f, err := wrfpp.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(w, "file: %s\n", path)

	fmt.Fprintln(w, "dimensions:")
	sizes := f.Sizes()
	dims := make([]string, 0, len(sizes))
	for d := range sizes {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	for _, d := range dims {
		fmt.Fprintf(w, "\t%s = %d\n", d, sizes[d])
	}

	fmt.Fprint(w, "projection: ")
	if p, err := wrfpp.ResolveProjection(f); err != nil {
		fmt.Fprintf(w, "unresolved (%v)\n", err)
	} else {
		fmt.Fprintf(w, "%s\n", p.Kind())
	}

	fmt.Fprintln(w, "variables:")
	for _, name := range f.VariableNames() {
		v, err := f.Variable(name)
		if err != nil {
			return err
		}
		units, err := wrfpp.VarUnits(v)
		if err != nil {
			units = "?"
		}
		fmt.Fprintf(w, "\t%s%v [%s]\n", name, v.Dims(), units)
	}

	fmt.Fprintln(w, "global attributes:")
	attrs := f.Attrs()
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "\t%s = %v\n", name, attrs[name])
	}
	return nil
}
