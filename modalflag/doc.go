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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes (and
// sub-modes) and allows different flags for each mode.
//
// Whereas with flag.FlagSet you call Parse() with the array of strings as
// the only argument, with modalflag you first call NewArgs() with the array
// of arguments and then Parse() with no arguments:
//
//	md := Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	_, _ = md.Parse()
//
// A mode is a special command line argument that, when specified, puts the
// program into a different mode of operation, in the manner of the go
// command (build, doc, get, test, etc). Modes are added with AddSubModes()
// and the selected mode queried with Mode() after a Parse():
//
//	md.AddSubModes("run", "control", "version")
//	_, _ = md.Parse()
//	switch md.Mode() {
//	case "RUN":
//		...
//	}
//
// Once a mode has been selected, NewMode() starts a fresh layer of flags and
// the remaining arguments can be parsed again. Flags are added with the
// AddBool(), AddString(), etc. functions, which return a pointer to the
// value in the manner of the flag package. Non-flag arguments are available
// with RemainingArgs() and GetArg() after parsing. Sub-mode comparisons are
// case insensitive.
package modalflag
