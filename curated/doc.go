// This file is part of Framegate.
//
// Framegate is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Framegate is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Framegate.  If not, see <https://www.gnu.org/licenses/>.

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. It takes a
// formatting pattern and placeholder values, like fmt.Errorf(), and returns
// an error. The pattern doubles as the error's identity: the Is() function
// reports whether an error was created with a specific pattern and the Has()
// function reports whether the pattern occurs anywhere in the error chain.
//
//	e := curated.Errorf("gate: %v", underlying)
//
//	if curated.Has(e, "gate: %v") {
//		...
//	}
//
// Sentinel patterns should be stored as a const string, suitably named and
// commented, and tested for with Is() or Has().
//
// The Error() function for curated errors normalises the message chain so
// that duplicate adjacent parts are removed. This alleviates the problem of
// when and how to wrap errors: wrapping an already wrapped error with the
// same pattern does not produce a stuttering message.
//
// For the purposes of this package a chain is composed of parts separated by
// the sub-string ': ' as suggested on p239 of "The Go Programming Language"
// (Donovan, Kernighan).
package curated
