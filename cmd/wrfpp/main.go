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

// Command wrfpp is a command-line interface for the WRFPolar
// post-processor.
package main

import (
	"fmt"
	"os"

	"github.com/wrfpolar/wrfpp/wrfpputil"
)

func main() {
	if err := wrfpputil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
