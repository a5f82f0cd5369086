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
	"strings"

	"github.com/ctessum/unit"
)

// VarUnits returns the units of the given variable as written in the
// file. WRF and WRF-Chem files are inconsistent about the attribute
// name, so both "units" and "unit" are accepted.
func VarUnits(v Variable) (string, error) {
	attrs := v.Attrs()
	if u, err := attrs.String("units"); err == nil {
		return u, nil
	}
	if u, err := attrs.String("unit"); err == nil {
		return u, nil
	}
	return "", &MissingAttributeError{Var: v.Name(), Attr: "units"}
}

// unitReplacements maps the unit spellings that occur in WRF output to
// a canonical form: single spaces between dimensions, negative
// exponents instead of division symbols, dimensions ordered mass,
// length, time, and no parentheses. Dimensionless spellings map to the
// empty string.
var unitReplacements = map[string]string{
	"-":         "",
	"1":         "",
	"m2/s2":     "m2 s-2",
	"kg/m2":     "kg m-2",
	"kg/(s*m2)": "kg m-2 s-1",
	"kg/(m2*s)": "kg m-2 s-1",
	"kg/m2/s":   "kg m-2 s-1",
	"W m{-2}":   "W m-2",
}

// CanonicalUnits returns the units of the given variable in canonical
// form. Spellings that are not in the replacement table pass through
// unchanged. The empty string denotes a dimensionless variable.
func CanonicalUnits(v Variable) (string, error) {
	units, err := VarUnits(v)
	if err != nil {
		return "", err
	}
	if r, ok := unitReplacements[units]; ok {
		return r, nil
	}
	return units, nil
}

// CheckUnits makes sure the canonical units of the given variable are
// as expected, returning a *UnitMismatchError otherwise. When both
// unit strings have known dimension vectors, the error records
// whether the physical dimensions agree, so that a scale difference
// (mm where m was expected) can be told from a wrong quantity.
func CheckUnits(v Variable, expected string) error {
	actual, err := CanonicalUnits(v)
	if err != nil {
		return err
	}
	if actual != expected {
		return &UnitMismatchError{
			Var:            v.Name(),
			Expected:       expected,
			Actual:         actual,
			SameDimensions: sameDimensions(expected, actual),
		}
	}
	return nil
}

// sameDimensions reports whether two canonical unit strings are known
// to share a dimension vector.
func sameDimensions(a, b string) bool {
	da, ok := UnitDimensions(a)
	if !ok {
		return false
	}
	db, ok := UnitDimensions(b)
	if !ok {
		return false
	}
	return da.Matches(db)
}

// CheckRawUnits is like CheckUnits but compares against the units
// exactly as written in the file.
func CheckRawUnits(v Variable, expected string) error {
	actual, err := VarUnits(v)
	if err != nil {
		return err
	}
	if actual != expected {
		return &UnitMismatchError{Var: v.Name(), Expected: expected, Actual: actual}
	}
	return nil
}

// DisplayUnits rewrites a canonical unit string for display on plot
// labels, wrapping the trailing numeric exponent of each token in
// TeX superscript markup (e.g. "kg m-2 s-1" becomes
// "kg m$^{-2}$ s$^{-1}$"). It returns a *MalformedUnitsError if a
// token consists entirely of signs and digits.
func DisplayUnits(units string) (string, error) {
	split := strings.Fields(units)
	for i, s := range split {
		n := len(s) - 1
		for n >= 0 && strings.ContainsRune("-0123456789", rune(s[n])) {
			n--
		}
		if n < 0 {
			return "", &MalformedUnitsError{Units: units}
		}
		if n != len(s)-1 {
			split[i] = s[:n+1] + "$^{" + s[n+1:] + "}$"
		}
	}
	return strings.Join(split, " "), nil
}

// unitDims maps canonical unit strings to their dimension vectors.
var unitDims = map[string]unit.Dimensions{
	"":           unit.Dimless,
	"K":          unit.Kelvin,
	"Pa":         unit.Pascal,
	"m":          unit.Meter,
	"mm":         unit.Meter,
	"m s-1":      unit.MeterPerSecond,
	"m s-2":      unit.MeterPerSecond2,
	"m2 s-2":     {unit.LengthDim: 2, unit.TimeDim: -2},
	"kg m-3":     unit.KilogramPerMeter3,
	"kg m-2":     {unit.MassDim: 1, unit.LengthDim: -2},
	"kg kg-1":    unit.Dimless,
	"kg m-2 s-1": {unit.MassDim: 1, unit.LengthDim: -2, unit.TimeDim: -1},
	"W m-2":      {unit.MassDim: 1, unit.TimeDim: -3},
	"%":          unit.Dimless,
}

// UnitDimensions returns the dimension vector corresponding to a
// canonical unit string, when known.
func UnitDimensions(canonical string) (unit.Dimensions, bool) {
	d, ok := unitDims[canonical]
	return d, ok
}
