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

package curated_test

import (
	"errors"
	"testing"

	"github.com/framegate/framegate/curated"
	"github.com/framegate/framegate/test"
)

const sentinel = "test error: %s"

func TestIs(t *testing.T) {
	e := curated.Errorf(sentinel, "detail")

	test.ExpectSuccess(t, curated.IsAny(e))
	test.ExpectSuccess(t, curated.Is(e, sentinel))
	test.ExpectFailure(t, curated.Is(e, "some other pattern: %s"))

	// plain errors are never curated
	p := errors.New("plain error")
	test.ExpectFailure(t, curated.IsAny(p))
	test.ExpectFailure(t, curated.Is(p, sentinel))
	test.ExpectFailure(t, curated.Is(nil, sentinel))
}

func TestHas(t *testing.T) {
	e := curated.Errorf(sentinel, "detail")
	f := curated.Errorf("fatal: %v", e)

	// f matches its own pattern but not the wrapped pattern
	test.ExpectSuccess(t, curated.Is(f, "fatal: %v"))
	test.ExpectFailure(t, curated.Is(f, sentinel))

	// Has() searches the chain
	test.ExpectSuccess(t, curated.Has(f, sentinel))
	test.ExpectSuccess(t, curated.Has(f, "fatal: %v"))
	test.ExpectFailure(t, curated.Has(f, "never seen: %v"))
}

func TestNormalisation(t *testing.T) {
	// wrapping with the same leading part should not stutter
	e := curated.Errorf("recorder: %v", errors.New("file not found"))
	f := curated.Errorf("recorder: %v", e)

	test.ExpectEquality(t, f.Error(), "recorder: file not found")
}
