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

	"github.com/wrfpolar/wrfpp/preprocess"
)

// Download fetches the dataset named by which (fnl, finn, era5 or
// chlorophyll) according to the specification file at specPath. When
// dir is non-empty it overrides the download directory in the
// specification.
func Download(ctx context.Context, which, specPath, dir string) error {
	cfg, err := preprocess.LoadConfig(specPath)
	if err != nil {
		return err
	}
	if dir != "" {
		cfg.Dir = dir
	}
	d := &preprocess.Downloader{Dir: cfg.Dir, Log: logger}
	switch which {
	case "fnl":
		return preprocess.FNL(ctx, d, cfg.FNL)
	case "finn":
		return preprocess.FINN(ctx, d, cfg.FINN)
	case "era5":
		return preprocess.ERA5(ctx, d, cfg.ERA5)
	case "chlorophyll":
		return preprocess.Chlorophyll(ctx, d, cfg.Chlorophyll)
	default:
		return fmt.Errorf("wrfpp: unknown dataset %s", which)
	}
}
