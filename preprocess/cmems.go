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
	"net/url"
	"strconv"
)

// CMEMSConfig specifies a subset of a Copernicus Marine dataset. The
// default dataset and variable give the daily 0.25 degree surface
// chlorophyll concentration used for marine organic aerosol
// emissions.
type CMEMSConfig struct {
	DatasetID string
	Variables []string

	// Bounding box [degrees].
	MinLon, MaxLon float64
	MinLat, MaxLat float64

	// Depth range [m]. The chlorophyll product's shallowest layer is
	// at 0.50576 m.
	MinDepth, MaxDepth float64

	Start, End string // in the format "2006-01-02"

	// URL is the subset service root; it must be set, as Copernicus
	// Marine has no single stable download host.
	URL string
}

// defaults fills in the chlorophyll product parameters for fields
// left empty.
func (c CMEMSConfig) defaults() CMEMSConfig {
	if c.DatasetID == "" {
		c.DatasetID = "cmems_mod_glo_bgc_my_0.25deg_P1D-m"
	}
	if len(c.Variables) == 0 {
		c.Variables = []string{"chl"}
	}
	if c.MinDepth == 0 && c.MaxDepth == 0 {
		c.MinDepth = 0.50576
		c.MaxDepth = 0.50576
	}
	return c
}

// Chlorophyll downloads a subset of the CMEMS ocean chlorophyll
// product as a single NetCDF file.
func Chlorophyll(ctx context.Context, d *Downloader, cfg CMEMSConfig) error {
	cfg = cfg.defaults()
	if cfg.URL == "" {
		return fmt.Errorf("preprocess: no CMEMS subset service URL configured")
	}

	q := url.Values{}
	q.Set("dataset-id", cfg.DatasetID)
	for _, v := range cfg.Variables {
		q.Add("variable", v)
	}
	q.Set("minimum-longitude", formatFloat(cfg.MinLon))
	q.Set("maximum-longitude", formatFloat(cfg.MaxLon))
	q.Set("minimum-latitude", formatFloat(cfg.MinLat))
	q.Set("maximum-latitude", formatFloat(cfg.MaxLat))
	q.Set("minimum-depth", formatFloat(cfg.MinDepth))
	q.Set("maximum-depth", formatFloat(cfg.MaxDepth))
	q.Set("start-datetime", cfg.Start+"T00:00:00")
	q.Set("end-datetime", cfg.End+"T00:00:00")

	name := fmt.Sprintf("%s_%s_%s.nc", cfg.DatasetID, cfg.Start, cfg.End)
	return d.fetch(ctx, cfg.URL+"?"+q.Encode(), name)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
