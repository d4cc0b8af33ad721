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

// Package paths contains functions to prepare paths to framegate resources.
//
// The ResourcePath() function prepends the supplied resource string with the
// appropriate config directory. For example, the path to a named recording:
//
//	p := paths.ResourcePath("recordings", "breakout")
//
// The policy is simple: if the base resource directory, currently defined to
// be ".framegate", is present in the program's current directory then that
// is the base path that is used. If it is not present then the user's config
// directory is used, as reported by os.UserConfigDir().
package paths

import (
	"os"
	"path/filepath"
)

// the base directory for all resources. not used directly except in the
// getBasePath() function.
const baseResourcePath = ".framegate"

// ResourcePath returns the resource string (representing the resource to be
// loaded) prepended with operating system specific details. The path up to
// but not including the resource itself is created if necessary.
func ResourcePath(resource ...string) (string, error) {
	p := make([]string, 0, len(resource)+1)
	p = append(p, getBasePath())
	p = append(p, resource...)
	pth := filepath.Join(p...)

	if err := os.MkdirAll(filepath.Dir(pth), 0700); err != nil {
		return "", err
	}

	return pth, nil
}

// getBasePath returns baseResourcePath in the current directory if it
// exists; or baseResourcePath inside the user's config directory otherwise.
func getBasePath() string {
	if _, err := os.Stat(baseResourcePath); err == nil {
		return baseResourcePath
	}

	cnf, err := os.UserConfigDir()
	if err != nil {
		return baseResourcePath
	}

	return filepath.Join(cnf, "framegate")
}
