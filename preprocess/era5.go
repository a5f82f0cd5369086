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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
)

// ERA5Config specifies a range of daily ERA5 single-level analyses to
// retrieve through the Copernicus Climate Data Store API.
type ERA5Config struct {
	Start, End string // days, in the format "2006-01-02"

	// Area is the bounding box as north, west, south, east [degrees].
	Area []float64

	// Variables are the CDS single-level variable names. If empty,
	// the surface fields WPS needs for polar domains are requested.
	Variables []string

	// URL is the API root and Key the "UID:key" credential from the
	// CDS user profile.
	URL string
	Key string
}

const era5DefaultURL = "https://cds.climate.copernicus.eu/api/v2"

// era5DefaultVariables are the surface fields the polar WPS
// configuration ingests.
var era5DefaultVariables = []string{
	"10m_u_component_of_wind", "10m_v_component_of_wind", "2m_dewpoint_temperature",
	"2m_temperature", "mean_sea_level_pressure", "sea_ice_cover",
	"sea_surface_temperature", "skin_temperature", "snow_depth",
	"soil_temperature_level_1", "soil_temperature_level_2", "soil_temperature_level_3",
	"soil_temperature_level_4", "surface_pressure", "volumetric_soil_water_layer_1",
	"volumetric_soil_water_layer_2", "volumetric_soil_water_layer_3", "volumetric_soil_water_layer_4",
}

// era5Request is the retrieval request body for the
// reanalysis-era5-single-levels dataset.
type era5Request struct {
	ProductType    []string  `json:"product_type"`
	Variable       []string  `json:"variable"`
	Year           string    `json:"year"`
	Month          string    `json:"month"`
	Day            string    `json:"day"`
	Time           []string  `json:"time"`
	Area           []float64 `json:"area"`
	DataFormat     string    `json:"data_format"`
	DownloadFormat string    `json:"download_format"`
}

// era5Task is the state of a submitted retrieval.
type era5Task struct {
	State     string `json:"state"`
	RequestID string `json:"request_id"`
	Location  string `json:"location"`
	Error     struct {
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

// ERA5 retrieves one GRIB file per day for the configured period:
// each day is submitted as a retrieval request, polled until the
// archive has staged it, and then downloaded.
func ERA5(ctx context.Context, d *Downloader, cfg ERA5Config) error {
	start, err := time.Parse("2006-01-02", cfg.Start)
	if err != nil {
		return fmt.Errorf("preprocess: parsing ERA5 start day: %v", err)
	}
	end, err := time.Parse("2006-01-02", cfg.End)
	if err != nil {
		return fmt.Errorf("preprocess: parsing ERA5 end day: %v", err)
	}
	if len(cfg.Area) != 4 {
		return fmt.Errorf("preprocess: ERA5 area must be [north, west, south, east], got %v", cfg.Area)
	}
	vars := cfg.Variables
	if len(vars) == 0 {
		vars = era5DefaultVariables
	}
	root := cfg.URL
	if root == "" {
		root = era5DefaultURL
	}

	for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
		name := fmt.Sprintf("e5.sfc.%04d%02d%02d.grib", t.Year(), t.Month(), t.Day())
		req := &era5Request{
			ProductType:    []string{"reanalysis"},
			Variable:       vars,
			Year:           fmt.Sprintf("%04d", t.Year()),
			Month:          fmt.Sprintf("%02d", t.Month()),
			Day:            fmt.Sprintf("%02d", t.Day()),
			Time:           []string{"00:00", "06:00", "12:00", "18:00"},
			Area:           cfg.Area,
			DataFormat:     "grib",
			DownloadFormat: "unarchived",
		}
		if err := era5Retrieve(ctx, d, root, cfg.Key, req, name); err != nil {
			return err
		}
	}
	return nil
}

func era5Retrieve(ctx context.Context, d *Downloader, root, key string, req *era5Request, dest string) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	task, err := era5Do(ctx, d, key, http.MethodPost,
		root+"/resources/reanalysis-era5-single-levels", body)
	if err != nil {
		return err
	}

	// Poll until the archive has staged the request.
	poll := func() error {
		if task.State == "completed" {
			return nil
		}
		if task.State == "failed" {
			return backoff.Permanent(fmt.Errorf("retrieval failed: %s: %s",
				task.Error.Message, task.Error.Reason))
		}
		task, err = era5Do(ctx, d, key, http.MethodGet,
			root+"/tasks/"+task.RequestID, nil)
		if err != nil {
			return err
		}
		return fmt.Errorf("retrieval %s is %s", task.RequestID, task.State)
	}
	err = backoff.Retry(poll, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 20), ctx))
	if err != nil {
		return fmt.Errorf("preprocess: ERA5 retrieval: %v", err)
	}

	return d.fetch(ctx, task.Location, dest)
}

// era5Do performs one authenticated CDS API call.
func era5Do(ctx context.Context, d *Downloader, key, method, url string, body []byte) (*era5Task, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.SetBasicAuth(splitKey(key))
	}
	resp, err := d.client().Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("preprocess: CDS API %s %s: status %s", method, url, resp.Status)
	}
	task := new(era5Task)
	if err := json.NewDecoder(resp.Body).Decode(task); err != nil {
		return nil, fmt.Errorf("preprocess: decoding CDS API reply: %v", err)
	}
	return task, nil
}

// splitKey splits a CDS "UID:key" credential into its two parts.
func splitKey(key string) (user, password string) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
