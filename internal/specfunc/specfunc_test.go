/*
Copyright © 2024 the pairdisk authors.
This file is part of pairdisk.

pairdisk is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

pairdisk is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with pairdisk.  If not, see <http://www.gnu.org/licenses/>.
*/

package specfunc

import (
	"math"
	"testing"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func TestKn(t *testing.T) {
	for _, test := range []struct {
		n    int
		x    float64
		want float64
	}{
		{n: 0, x: 1, want: 0.42102443824070834},
		{n: 1, x: 1, want: 0.6019072301972346},
		{n: 2, x: 1, want: 1.6248388986351774},
		{n: 0, x: 3, want: 0.03473950438627925},
		{n: 1, x: 3, want: 0.04015643112819418},
		{n: 2, x: 3, want: 0.06151045847174204},
		{n: -2, x: 3, want: 0.06151045847174204},
		{n: 1, x: 0.1, want: 9.853844780870606},
	} {
		have := Kn(test.n, test.x)
		if different(have, test.want, 1.e-6) {
			t.Errorf("K%d(%g): have %g, want %g", test.n, test.x, have, test.want)
		}
	}
}

func TestKneLargeArgument(t *testing.T) {
	const x = 500.
	// Two-term Hankel expansion; the next term is O(1/x²).
	want := math.Sqrt(math.Pi/(2*x)) * (1 + 15/(8*x))
	have := Kne(2, x)
	if different(have, want, 1.e-4) {
		t.Errorf("have %g, want %g", have, want)
	}
}

func TestSafeKn(t *testing.T) {
	if have, want := SafeKn(2, 200), math.Exp(-200)*math.Sqrt(math.Pi/400); have != want {
		t.Errorf("have %g, want %g", have, want)
	}
	if have, want := SafeKn(1, 3), Kn(1, 3); have != want {
		t.Errorf("have %g, want %g", have, want)
	}
}

func TestErfcAsymptotic(t *testing.T) {
	for _, x := range []float64{5, 6, 8, 12} {
		have, want := ErfcAsymptotic(x), math.Erfc(x)
		if different(have, want, 1.e-3) {
			t.Errorf("erfc(%g): have %g, want %g", x, have, want)
		}
	}
}

func TestErfDiff(t *testing.T) {
	if have, want := ErfDiff(-1, 1), 2*math.Erf(1); different(have, want, 1.e-12) {
		t.Errorf("have %g, want %g", have, want)
	}
	// Both erf values round to -1 here.
	if math.Erf(-6)-math.Erf(-8) != 0 {
		t.Skip("direct difference is resolved on this platform")
	}
	have, want := ErfDiff(-8, -6), math.Erfc(6)-math.Erfc(8)
	if different(have, want, 1.e-4) {
		t.Errorf("tail difference: have %g, want %g", have, want)
	}
	have, want = ErfDiff(6, 8), math.Erfc(6)-math.Erfc(8)
	if different(have, want, 1.e-4) {
		t.Errorf("upper tail difference: have %g, want %g", have, want)
	}
	if have := ErfDiff(-7, 7); different(have, 2, 1.e-12) {
		t.Errorf("opposite tails: have %g, want 2", have)
	}
}

func TestGammaP(t *testing.T) {
	for _, x := range []float64{0.1, 1, 4} {
		if have, want := GammaP(1, x), 1-math.Exp(-x); different(have, want, 1.e-10) {
			t.Errorf("P(1, %g): have %g, want %g", x, have, want)
		}
	}
	if have := GammaP(0, 2); have != 1 {
		t.Errorf("P(0, 2): have %g, want 1", have)
	}
	if have := GammaP(-1, 2); have != 1 {
		t.Errorf("P(-1, 2): have %g, want 1", have)
	}
	if have := GammaP(2, 0); have != 0 {
		t.Errorf("P(2, 0): have %g, want 0", have)
	}
}

func TestUpperGamma(t *testing.T) {
	if have, want := UpperGamma(1, 2), math.Exp(-2); different(have, want, 1.e-10) {
		t.Errorf("have %g, want %g", have, want)
	}
	if have, want := UpperGamma(5.5, 0), math.Gamma(5.5); have != want {
		t.Errorf("have %g, want %g", have, want)
	}
	// Γ(2, x) = (1 + x)·e^{-x}
	if have, want := UpperGamma(2, 3), 4*math.Exp(-3); different(have, want, 1.e-10) {
		t.Errorf("have %g, want %g", have, want)
	}
}
