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

package recorder

// fields of each input line in a recording file
const (
	fieldFrame int = iota
	fieldSnapshot
	fieldHash
	numFields
)

const fieldSep = ", "

// recording file header format
// ----------------------------
//
// <format version>
// <session id>
// <start frame>
// <creation date>

const (
	lineVersion int = iota
	lineSessionID
	lineStartFrame
	lineDate
	numHeaderLines
)

// magic is the format version written to and expected in the first header
// line.
const magic = "framegate recording v1.0"
