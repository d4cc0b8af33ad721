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

// Package prefs loads and saves controller preferences. Preferences live
// in an ini file in the user's resource directory; a missing file is not
// an error and yields the defaults.
package prefs

import (
	"os"
	"strconv"

	"gopkg.in/ini.v1"

	"github.com/framegate/framegate/curated"
	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/link"
	"github.com/framegate/framegate/paths"
)

// name of the preferences file in the resource directory
const prefsFile = "framegate.ini"

const (
	sectionLink     = "link"
	sectionRecorder = "recorder"
	sectionHotkeys  = "hotkeys"
)

// Preferences for the controller and launcher.
type Preferences struct {
	// filesystem path the link socket is bound at
	SocketPath string

	// directory recordings are saved to and loaded from
	RecordingDir string

	// hotkey scancodes for the capture window
	Hotkeys input.Hotkeys
}

// Load reads preferences from the resource directory, filling in defaults
// for anything not present. A missing preferences file yields defaults
// without error.
func Load() (*Preferences, error) {
	p := &Preferences{
		SocketPath:   link.DefaultSocketPath,
		RecordingDir: ".",
		Hotkeys:      input.DefaultHotkeys(),
	}

	pth, err := paths.ResourcePath(prefsFile)
	if err != nil {
		return nil, curated.Errorf("prefs: %v", err)
	}

	if _, err := os.Stat(pth); os.IsNotExist(err) {
		return p, nil
	}

	f, err := ini.Load(pth)
	if err != nil {
		return nil, curated.Errorf("prefs: %v", err)
	}

	lnk := f.Section(sectionLink)
	if k := lnk.Key("socket"); k.String() != "" {
		p.SocketPath = k.String()
	}

	rec := f.Section(sectionRecorder)
	if k := rec.Key("directory"); k.String() != "" {
		p.RecordingDir = k.String()
	}

	hk := f.Section(sectionHotkeys)
	for a := input.Action(0); a < input.NumActions; a++ {
		k := hk.Key(a.String())
		if k.String() == "" {
			continue
		}
		v, err := k.Int()
		if err != nil {
			return nil, curated.Errorf("prefs: hotkey %s: %v", a, err)
		}
		p.Hotkeys[a] = input.Key(v)
	}

	return p, nil
}

// Save writes preferences to the resource directory, creating the file if
// necessary.
func (p *Preferences) Save() error {
	pth, err := paths.ResourcePath(prefsFile)
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	f := ini.Empty()
	f.Section(sectionLink).Key("socket").SetValue(p.SocketPath)
	f.Section(sectionRecorder).Key("directory").SetValue(p.RecordingDir)

	hk := f.Section(sectionHotkeys)
	for a := input.Action(0); a < input.NumActions; a++ {
		hk.Key(a.String()).SetValue(strconv.Itoa(int(p.Hotkeys[a])))
	}

	if err := f.SaveTo(pth); err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	return nil
}
