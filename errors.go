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
	"fmt"
	"strings"
)

// A MissingVariableError is returned when a requested variable is not
// present in the dataset.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("wrfpp: variable %s not in dataset", e.Name)
}

// A MissingAttributeError is returned when a required attribute is
// missing from a variable or from the dataset global attributes.
// Var is empty for global attributes.
type MissingAttributeError struct {
	Var, Attr string
}

func (e *MissingAttributeError) Error() string {
	if e.Var == "" {
		return fmt.Sprintf("wrfpp: missing global attribute %s", e.Attr)
	}
	return fmt.Sprintf("wrfpp: variable %s: missing attribute %s", e.Var, e.Attr)
}

// A UnitMismatchError is returned when a variable does not have the
// units a calculation requires. SameDimensions reports whether both
// unit strings are known to have the same physical dimensions, in
// which case the mismatch is one of scale or spelling rather than of
// physical quantity.
type UnitMismatchError struct {
	Var, Expected, Actual string
	SameDimensions        bool
}

func (e *UnitMismatchError) Error() string {
	msg := fmt.Sprintf("wrfpp: variable %s: bad units: expected %q, got %q",
		e.Var, e.Expected, e.Actual)
	if e.SameDimensions {
		msg += " (same physical dimensions; check the scale)"
	}
	return msg
}

// A MalformedUnitsError is returned when a unit string cannot be
// processed for display.
type MalformedUnitsError struct {
	Units string
}

func (e *MalformedUnitsError) Error() string {
	return fmt.Sprintf("wrfpp: could not process units %q", e.Units)
}

// An InvalidGridError is returned when a variable carries both the
// staggered and unstaggered form of the same dimension.
type InvalidGridError struct {
	Var, Dim string
}

func (e *InvalidGridError) Error() string {
	return fmt.Sprintf("wrfpp: variable %s: dimension %s present in both staggered and unstaggered forms",
		e.Var, e.Dim)
}

// An AmbiguousAxisError is returned when the dimension to destagger
// cannot be inferred because a variable has zero or several staggered
// dimensions.
type AmbiguousAxisError struct {
	Var  string
	Dims []string
}

func (e *AmbiguousAxisError) Error() string {
	return fmt.Sprintf("wrfpp: variable %s has zero or more than one staggered dimension(s): [%s]",
		e.Var, strings.Join(e.Dims, " "))
}

// An UnsupportedProjectionError is returned for WRF projection codes
// that are documented but not handled here.
type UnsupportedProjectionError struct {
	Code int
}

func (e *UnsupportedProjectionError) Error() string {
	return fmt.Sprintf("wrfpp: unsupported projection code %d", e.Code)
}

// An InvalidProjectionCodeError is returned for MAP_PROJ values that do
// not correspond to any documented WRF projection.
type InvalidProjectionCodeError struct {
	Code int
}

func (e *InvalidProjectionCodeError) Error() string {
	return fmt.Sprintf("wrfpp: invalid projection code %d", e.Code)
}

// A ProjectionMetadataError is returned when the projection attributes
// of a dataset are internally inconsistent.
type ProjectionMetadataError struct {
	Reason string
}

func (e *ProjectionMetadataError) Error() string {
	return "wrfpp: inconsistent projection metadata: " + e.Reason
}

// An OutsideDomainError is returned when a requested location is
// farther from every grid cell center than half a grid spacing.
type OutsideDomainError struct {
	Distance, Limit float64 // m
}

func (e *OutsideDomainError) Error() string {
	return fmt.Sprintf("wrfpp: location is outside of the simulation domain (%g m from the nearest cell; limit %g m)",
		e.Distance, e.Limit)
}
