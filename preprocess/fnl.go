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

package preprocess

import (
	"context"
	"fmt"
	"time"
)

// fnlDateFormat specifies the format for inputting FNL dates.
const fnlDateFormat = "2006-01-02 15"

// FNLConfig specifies a range of NCEP FNL reanalysis files to
// download from the NCAR research data archive. The analyses are
// 6-hourly; Start and End are in the format "2006-01-02 15".
type FNLConfig struct {
	Start, End string

	// URL is the archive root. If empty, the public rda.ucar.edu
	// dataset ds083.2 location is used.
	URL string
}

const fnlDefaultURL = "https://data.rda.ucar.edu/ds083.2/grib2/"

// FNL downloads the GRIB2 FNL analyses for the configured period, one
// file every 6 hours.
func FNL(ctx context.Context, d *Downloader, cfg FNLConfig) error {
	start, err := time.Parse(fnlDateFormat, cfg.Start)
	if err != nil {
		return fmt.Errorf("preprocess: parsing FNL start time: %v", err)
	}
	end, err := time.Parse(fnlDateFormat, cfg.End)
	if err != nil {
		return fmt.Errorf("preprocess: parsing FNL end time: %v", err)
	}
	if end.Before(start) {
		return fmt.Errorf("preprocess: FNL end time %v is before start time %v", end, start)
	}
	root := cfg.URL
	if root == "" {
		root = fnlDefaultURL
	}

	for t := start; !t.After(end); t = t.Add(6 * time.Hour) {
		name := fmt.Sprintf("fnl_%04d%02d%02d_%02d_00.grib2",
			t.Year(), t.Month(), t.Day(), t.Hour())
		url := fmt.Sprintf("%s%04d/%04d.%02d/%s", root, t.Year(), t.Year(), t.Month(), name)
		if err := d.fetch(ctx, url, name); err != nil {
			return err
		}
	}
	return nil
}
