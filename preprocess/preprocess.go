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

// Package preprocess downloads the input datasets a WRF-Chem-Polar
// simulation is built from: FNL reanalysis for initial and boundary
// conditions, FINN fire emissions, ERA5 surface fields, and CMEMS
// ocean chlorophyll. Files are fetched as-is for WPS and the
// emissions preprocessor to consume; no format conversion happens
// here.
package preprocess

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// Config holds the download specifications. It is normally loaded
// from a TOML file.
type Config struct {
	// Dir is the directory downloads are saved to.
	Dir string

	FNL         FNLConfig
	FINN        FINNConfig
	ERA5        ERA5Config
	Chlorophyll CMEMSConfig
}

// LoadConfig reads the download specifications from the TOML file at
// path.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Dir: "."}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("preprocess: reading configuration file %s: %v", path, err)
	}
	return cfg, nil
}

// A Downloader fetches files over HTTP with retries.
type Downloader struct {
	// Client is the HTTP client to use. If nil, http.DefaultClient
	// is used.
	Client *http.Client

	// Dir is the directory downloaded files are saved to.
	Dir string

	// MaxRetries is the number of times a failed download is retried
	// with exponential backoff. If zero, defaultMaxRetries is used.
	MaxRetries uint64

	// Log receives progress messages. If nil, the logrus standard
	// logger is used.
	Log *logrus.Logger
}

const defaultMaxRetries = 5

func (d *Downloader) maxRetries() uint64 {
	if d.MaxRetries > 0 {
		return d.MaxRetries
	}
	return defaultMaxRetries
}

func (d *Downloader) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return http.DefaultClient
}

func (d *Downloader) logger() *logrus.Logger {
	if d.Log != nil {
		return d.Log
	}
	return logrus.StandardLogger()
}

// fetch downloads url to the file named dest inside the download
// directory, retrying on failure. Existing files are not downloaded
// again.
func (d *Downloader) fetch(ctx context.Context, url, dest string) error {
	path := filepath.Join(d.Dir, dest)
	if _, err := os.Stat(path); err == nil {
		d.logger().WithFields(logrus.Fields{"file": dest}).Info("already downloaded")
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	start := time.Now()
	op := func() error {
		return d.fetchOnce(ctx, url, path)
	}
	err := backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), d.maxRetries()), ctx))
	if err != nil {
		return fmt.Errorf("preprocess: downloading %s: %v", url, err)
	}
	d.logger().WithFields(logrus.Fields{
		"file":     dest,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("downloaded")
	return nil
}

func (d *Downloader) fetchOnce(ctx context.Context, url, path string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := d.client().Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("status %s", resp.Status)
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized ||
			resp.StatusCode == http.StatusForbidden {
			return backoff.Permanent(err)
		}
		return err
	}

	// Download to a temporary name so a partial file is never
	// mistaken for a finished one.
	tmp := path + ".part"
	w, err := os.Create(tmp)
	if err != nil {
		return backoff.Permanent(err)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		w.Close()
		os.Remove(tmp)
		return err
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
