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

package digest_test

import (
	"testing"

	"github.com/framegate/framegate/digest"
	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/test"
)

func TestChaining(t *testing.T) {
	var a input.Snapshot
	a.Set(10, true)
	var b input.Snapshot
	b.Set(20, true)

	// the same sequence always folds to the same fingerprint
	d1 := digest.NewInput()
	d2 := digest.NewInput()
	d1.Fold(a)
	d2.Fold(a)
	test.ExpectEquality(t, d1.Hash(), d2.Hash())
	d1.Fold(b)
	d2.Fold(b)
	test.ExpectEquality(t, d1.Hash(), d2.Hash())

	// order matters. the chain distinguishes a,b from b,a
	d3 := digest.NewInput()
	d3.Fold(b)
	d3.Fold(a)
	test.ExpectInequality(t, d1.Hash(), d3.Hash())
}

func TestReset(t *testing.T) {
	d := digest.NewInput()
	initial := d.Hash()

	var snap input.Snapshot
	snap.Set(0, true)
	d.Fold(snap)
	test.ExpectInequality(t, d.Hash(), initial)

	d.ResetDigest()
	test.ExpectEquality(t, d.Hash(), initial)
}
