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

package wrfpp

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/ctessum/requestcache"
)

// A FieldCache resolves raw and derived fields from a dataset,
// memoizing the results so that repeated requests for the same field
// and sub-range do not trigger repeated reads or recomputation.
// Derived fields are requested by the names the derivation methods
// assign: geopotential, theta, pressure, temperature, rho, rh, precip,
// and slp; any other name is read directly from the dataset.
type FieldCache struct {
	ds  GriddedDataset
	wrf *WRF

	// CacheSize is the maximum number of fields to hold in memory.
	CacheSize int

	cache     *requestcache.Cache
	cacheOnce sync.Once
}

// NewFieldCache creates a FieldCache holding at most cacheSize fields.
func NewFieldCache(ds GriddedDataset, cacheSize int) *FieldCache {
	return &FieldCache{ds: ds, wrf: NewWRF(ds), CacheSize: cacheSize}
}

type fieldRequest struct {
	name string
	s    Slice
}

// Field returns the named raw or derived field over the given
// sub-range, computing it if it is not already cached.
func (c *FieldCache) Field(ctx context.Context, name string, s Slice) (*Field, error) {
	c.cacheOnce.Do(func() {
		c.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			r := request.(*fieldRequest)
			return c.resolve(r.name, r.s)
		}, runtime.GOMAXPROCS(-1),
			requestcache.Deduplicate(), requestcache.Memory(c.CacheSize))
	})
	req := c.cache.NewRequest(ctx, &fieldRequest{name: name, s: s},
		fmt.Sprintf("%s_%v_%v", name, s.Start, s.End))
	result, err := req.Result()
	if err != nil {
		return nil, err
	}
	return result.(*Field), nil
}

func (c *FieldCache) resolve(name string, s Slice) (*Field, error) {
	switch name {
	case "geopotential":
		return c.wrf.Geopotential(s)
	case "theta":
		return c.wrf.PotentialTemperature(s)
	case "pressure":
		return c.wrf.AtmPressure(s)
	case "temperature":
		return c.wrf.AirTemperature(s)
	case "rho":
		return c.wrf.DensityOfDryAir(s)
	case "rh":
		return c.wrf.RelativeHumidity(s)
	case "precip":
		return c.wrf.AccumulatedPrecipitation(s)
	case "slp":
		return c.wrf.SeaLevelPressure(s)
	}
	v, err := c.ds.Variable(name)
	if err != nil {
		return nil, err
	}
	return ReadField(v, s)
}
