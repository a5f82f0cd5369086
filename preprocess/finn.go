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
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FINNConfig specifies a range of daily FINN fire emission inventory
// files. StartDay and EndDay are days of the year (1-366, inclusive).
type FINNConfig struct {
	Year             int
	StartDay, EndDay int

	// URL is the archive root. If empty, the public acom.ucar.edu
	// location is used.
	URL string
}

const finnDefaultURL = "https://www.acom.ucar.edu/acresp/MODELING/finn_emis_txt/"

// FINN downloads the daily MOZART-speciated FINN fire emissions for
// the configured days and decompresses them.
func FINN(ctx context.Context, d *Downloader, cfg FINNConfig) error {
	if cfg.StartDay < 1 || cfg.EndDay > 366 || cfg.EndDay < cfg.StartDay {
		return fmt.Errorf("preprocess: invalid FINN day range [%d,%d]", cfg.StartDay, cfg.EndDay)
	}
	root := cfg.URL
	if root == "" {
		root = finnDefaultURL
	}

	for day := cfg.StartDay; day <= cfg.EndDay; day++ {
		name := fmt.Sprintf("GLOB_MOZ4_%d%03d.txt.gz", cfg.Year, day)
		url := fmt.Sprintf("%sFINNv1_%d/%s", root, cfg.Year, name)
		if err := d.fetch(ctx, url, name); err != nil {
			return err
		}
		if err := gunzip(filepath.Join(d.Dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// gunzip decompresses the file at path to the same name without the
// .gz extension, removing the compressed file.
func gunzip(path string) error {
	out := strings.TrimSuffix(path, ".gz")
	if out == path {
		return fmt.Errorf("preprocess: %s has no .gz extension", path)
	}
	if _, err := os.Stat(out); err == nil {
		return os.Remove(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("preprocess: decompressing %s: %v", path, err)
	}
	w, err := os.Create(out)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, zr); err != nil {
		w.Close()
		os.Remove(out)
		return fmt.Errorf("preprocess: decompressing %s: %v", path, err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}
