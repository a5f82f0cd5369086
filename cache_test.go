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
	"math"
	"sync/atomic"
	"testing"

	"github.com/ctessum/sparse"
)

// countingDataset counts variable reads so that caching can be
// observed.
type countingDataset struct {
	GriddedDataset
	reads int64
}

func (d *countingDataset) Variable(name string) (Variable, error) {
	v, err := d.GriddedDataset.Variable(name)
	if err != nil {
		return nil, err
	}
	return &countingVariable{Variable: v, reads: &d.reads}, nil
}

type countingVariable struct {
	Variable
	reads *int64
}

func (v *countingVariable) Read(s Slice) (*sparse.DenseArray, error) {
	atomic.AddInt64(v.reads, 1)
	return v.Variable.Read(s)
}

func TestFieldCache(t *testing.T) {
	ds := &countingDataset{GriddedDataset: testDataset()}
	c := NewFieldCache(ds, 100)
	ctx := context.Background()

	f, err := c.Field(ctx, "pressure", Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Data.Get(0, 0, 0, 0); got != 100000 {
		t.Errorf("derived field: got %g, want 100000", got)
	}
	reads := atomic.LoadInt64(&ds.reads)
	if reads == 0 {
		t.Fatal("expected reads from the underlying dataset")
	}

	// The same request again should come from the cache.
	f2, err := c.Field(ctx, "pressure", Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt64(&ds.reads) != reads {
		t.Errorf("second request read the dataset again: %d reads, was %d",
			atomic.LoadInt64(&ds.reads), reads)
	}
	if got := f2.Data.Get(0, 0, 0, 0); got != 100000 {
		t.Errorf("cached field: got %g, want 100000", got)
	}

	// A different sub-range is a different cache entry.
	f3, err := c.Field(ctx, "pressure", Slice{
		Start: []int{0, 1, 0, 0},
		End:   []int{testNt, 2, testNy, testNx},
	})
	if err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt64(&ds.reads) == reads {
		t.Error("different sub-range should not hit the cache")
	}
	if got := f3.Data.Get(0, 0, 0, 0); got != 85000 {
		t.Errorf("sliced field: got %g, want 85000", got)
	}
}

func TestFieldCacheRawAndDerived(t *testing.T) {
	c := NewFieldCache(testDataset(), 100)
	ctx := context.Background()

	// Raw variable.
	f, err := c.Field(ctx, "RAINC", Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if f.Units != "mm" || f.Data.Get(0, 0, 0) != 2.5 {
		t.Errorf("raw field: %q %g", f.Units, f.Data.Get(0, 0, 0))
	}

	// Derived variables by name.
	f, err = c.Field(ctx, "slp", Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f.Data.Get(0, 0, 0)-1000) > derivedTolerance {
		t.Errorf("slp: got %g, want 1000", f.Data.Get(0, 0, 0))
	}

	f, err = c.Field(ctx, "theta", Slice{})
	if err != nil {
		t.Fatal(err)
	}
	if f.Data.Get(0, 0, 0, 0) != 310 {
		t.Errorf("theta: got %g, want 310", f.Data.Get(0, 0, 0, 0))
	}

	if _, err := c.Field(ctx, "NO_SUCH_VAR", Slice{}); err == nil {
		t.Error("expected error for unknown field")
	}
}
