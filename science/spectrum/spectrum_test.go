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

package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/spatialmodel/pairdisk/internal/rootfind"
	"github.com/spatialmodel/pairdisk/internal/specfunc"
	"github.com/spatialmodel/pairdisk/science/rates"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

const tol = 1e-8

func TestSelfAbsorptionRoot(t *testing.T) {
	for _, test := range []struct {
		a      float64
		lo, hi float64 // log10 bracket for the check
	}{
		{a: 1e-3, lo: 0, hi: 2},
		{a: 1e-6, lo: 1, hi: 3},
	} {
		r := SelfAbsorptionRoot(test.a, tol)
		if r.Status != rootfind.Converged {
			t.Fatalf("a=%g: %v", test.a, r.Status)
		}
		check := rootfind.Bisect(func(lx float64) float64 {
			x := math.Pow(10, lx)
			return emissivity(x) - test.a*x
		}, test.lo, test.hi, 1e-13, 10000)
		if err := check.Err(); err != nil {
			t.Fatal(err)
		}
		if want := math.Pow(10, check.X); different(r.X, want, 1e-6) {
			t.Errorf("a=%g: have %g, want %g", test.a, r.X, want)
		}
	}
}

func TestEmissivityDeriv(t *testing.T) {
	for _, x := range []float64{0.1, 1, 30, 1000} {
		h := x * 1e-6
		want := (emissivity(x+h) - emissivity(x-h)) / (2 * h)
		if have := emissivityDeriv(x); different(have, want, 1e-5) {
			t.Errorf("x=%g: have %g, want %g", x, have, want)
		}
	}
}

func TestTransition(t *testing.T) {
	z, tau, np, theta := 0.01, 10., 1e15, 0.1
	xm, err := Transition(z, tau, np, theta, tol)
	if err != nil {
		t.Fatal(err)
	}
	if xm <= 1e-50*theta || xm >= 700*theta {
		t.Fatalf("x_m=%g outside the search bracket", xm)
	}
	have := rates.BremAbsorption(xm, z, np, theta)
	if want := transitionLHS(z, tau, np, theta); different(have, want, 1e-4) {
		t.Errorf("absorption at x_m: have %g, want %g", have, want)
	}

	// An extremely thin layer is never thick enough at any frequency.
	_, err = Transition(z, 1e-100, np, theta, tol)
	if !errors.Is(err, rootfind.ErrNotBracketed) {
		t.Errorf("have error %v, want %v", err, rootfind.ErrNotBracketed)
	}
}

func TestWienFraction(t *testing.T) {
	theta := 0.1
	if have := WienFraction(10*theta, 0.5, theta); have != 1 {
		t.Errorf("above 3θ: have %g, want 1", have)
	}
	x, tau := 1e-6, 3.
	jm := math.Log(3*theta/x) / math.Log(1+4*theta+16*theta*theta)
	if have, want := WienFraction(x, tau, theta), math.Exp(-jm/(tau*tau)); different(have, want, 1e-12) {
		t.Errorf("thick: have %g, want %g", have, want)
	}
	tau = 0.5
	if have, want := WienFraction(x, tau, theta), specfunc.GammaP(jm, tau+tau*tau); different(have, want, 1e-12) {
		t.Errorf("thin: have %g, want %g", have, want)
	}
	if WienFraction(1e-6, tau, theta) >= WienFraction(1e-2, tau, theta) {
		t.Error("fraction should rise with starting frequency")
	}
}

func TestBremFraction(t *testing.T) {
	theta := 0.5
	lo, hi := BremFraction(1e3, 2, theta, 1e-6), BremFraction(1e3+1e-9, 2, theta, 1e-6)
	if different(lo, hi, 1e-4) {
		t.Errorf("have %g below and %g above y=1e3", lo, hi)
	}

	tau, xm := 0.5, 1e-5
	have := BremFraction(0, tau, theta, xm)
	la := math.Log(1 + 4*theta + 16*theta*theta)
	u := floats.Span(make([]float64, 10001), 0, math.Log(theta/xm))
	f := make([]float64, len(u))
	for i, ui := range u {
		f[i] = ui * specfunc.GammaP((ui+math.Log(3))/la, tau+tau*tau)
	}
	if want := integrate.Trapezoidal(u, f); different(have, want, 1e-3) {
		t.Errorf("thin: have %g, want %g", have, want)
	}
	if have := BremFraction(0, tau, theta, 2*theta); have != 0 {
		t.Errorf("turnover above θ: have %g, want 0", have)
	}
}

func TestSynchrotron(t *testing.T) {
	fs, ns, err := Synchrotron(0.1, 10, 1e15, 0.01, 1e13, 0, tol)
	if err != nil || fs != 0 || ns != 0 {
		t.Errorf("no field: have %g, %g, %v", fs, ns, err)
	}
	for _, test := range []struct {
		theta, tau, b float64
	}{
		{theta: 0.1, tau: 10, b: 100},
		{theta: 50, tau: 0.01, b: 1e4},
	} {
		fs, ns, err := Synchrotron(test.theta, test.tau, 1e15, 0.01, 1e13, test.b, tol)
		if err != nil {
			t.Fatal(err)
		}
		if fs < 0 || fs > 1 {
			t.Errorf("θ=%g: fraction %g outside [0, 1]", test.theta, fs)
		}
		if !(ns > 0) || math.IsInf(ns, 0) {
			t.Errorf("θ=%g: rate %g should be finite and positive", test.theta, ns)
		}
	}
}
