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

package pairs

import (
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/pairdisk"
	"github.com/spatialmodel/pairdisk/internal/rootfind"
	"github.com/spatialmodel/pairdisk/science/opticaldepth"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

const (
	np  = 1e15
	tol = 1e-12
)

// relaxation returns a rate that relaxes z toward zeq at rate k [s⁻¹],
// for which the backward Euler solution is known exactly.
func relaxation(k, zeq float64) RateFunc {
	return func(z float64) (float64, error) { return np * k * (zeq - z), nil }
}

func implicitSolution(z0, dt, k, zeq float64) float64 {
	return (z0 + dt*k*zeq) / (1 + dt*k)
}

func TestAdvanceExplicit(t *testing.T) {
	z0, k, zeq, dt := 1e-3, 1., 2e-3, 1e-6
	out, err := Advance(z0, np, dt, 1, tol, 1e-8, relaxation(k, zeq))
	if err != nil {
		t.Fatal(err)
	}
	if out.State != ExplicitApplied {
		t.Fatalf("state: have %v, want %v", out.State, ExplicitApplied)
	}
	if want := z0 + dt*k*(zeq-z0); different(out.Z, want, 1e-14) {
		t.Errorf("have %g, want %g", out.Z, want)
	}
}

func TestAdvanceImplicit(t *testing.T) {
	for _, tc := range []struct {
		name           string
		z0, k, zeq, dt float64
	}{
		{name: "creation", z0: 1e-3, k: 1, zeq: 2e-3, dt: 10},
		{name: "annihilation", z0: 1e-2, k: 1, zeq: 2e-3, dt: 10},
		{name: "no positrons", z0: 0, k: 1, zeq: 1e-3, dt: 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Advance(tc.z0, np, tc.dt, 0.1, tol, 1e-8, relaxation(tc.k, tc.zeq))
			if err != nil {
				t.Fatal(err)
			}
			if out.State != Converged {
				t.Fatalf("state: have %v, want %v", out.State, Converged)
			}
			if want := implicitSolution(tc.z0, tc.dt, tc.k, tc.zeq); different(out.Z, want, 1e-9) {
				t.Errorf("have %g, want %g", out.Z, want)
			}
		})
	}
}

// With a small step the implicit and explicit updates agree.
func TestExplicitImplicitConsistency(t *testing.T) {
	z0, k, zeq, dt := 1e-3, 1., 2e-3, 1e-6
	ex, err := Advance(z0, np, dt, 1, tol, 1e-8, relaxation(k, zeq))
	if err != nil {
		t.Fatal(err)
	}
	im, err := Advance(z0, np, dt, 1e-7, tol, 1e-8, relaxation(k, zeq))
	if err != nil {
		t.Fatal(err)
	}
	if ex.State != ExplicitApplied || im.State != Converged {
		t.Fatalf("states: %v and %v", ex.State, im.State)
	}
	if different(ex.Z, im.Z, 1e-8) {
		t.Errorf("explicit %g, implicit %g", ex.Z, im.Z)
	}
}

// A cell already in balance is left alone, and the implicit solution
// satisfies the backward Euler equation.
func TestAdvanceIdempotent(t *testing.T) {
	rate := relaxation(1, 2e-3)
	out, err := Advance(2e-3, np, 10, 0.1, tol, 1e-8, rate)
	if err != nil {
		t.Fatal(err)
	}
	if out.State != RatesComputed || out.Z != 2e-3 {
		t.Errorf("balanced cell: state %v, z %g", out.State, out.Z)
	}

	z0, dt := 1e-3, 10.
	out, err = Advance(z0, np, dt, 0.1, tol, 1e-8, rate)
	if err != nil {
		t.Fatal(err)
	}
	r, _ := rate(out.Z)
	if resid := (out.Z - z0) - dt*r/np; math.Abs(resid) > 1e-9*out.Z {
		t.Errorf("residual %g", resid)
	}
}

func TestAdvanceFailures(t *testing.T) {
	// g(z) = -z - z0 never changes sign.
	dt := 1.
	noRoot := func(z float64) (float64, error) { return 2 * np * z / dt, nil }
	_, err := Advance(1e-3, np, dt, 0.1, tol, 1e-8, noRoot)
	var ce *CellError
	if !errors.As(err, &ce) || ce.Stage != StageBracket || !ce.Fatal() {
		t.Errorf("have %v, want a fatal bracket error", err)
	}

	errRate := errors.New("rate failure")
	calls := 0
	failing := func(z float64) (float64, error) {
		calls++
		if calls > 1 {
			return 0, errRate
		}
		return np, nil
	}
	if _, err := Advance(1e-3, np, 10, 0.1, tol, 1e-8, failing); !errors.Is(err, errRate) {
		t.Errorf("have %v, want %v", err, errRate)
	}

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		calls = 0
		nonFinite := func(z float64) (float64, error) {
			calls++
			return bad, nil
		}
		out, err := Advance(1e-3, np, 1, 0.1, tol, 1e-8, nonFinite)
		if !errors.As(err, &ce) || ce.Stage != StageBracket || !ce.Fatal() {
			t.Errorf("rate %g: have %v, want a fatal bracket error", bad, err)
		}
		if !errors.Is(err, rootfind.ErrNonFinite) {
			t.Errorf("rate %g: have %v, want %v", bad, err, rootfind.ErrNonFinite)
		}
		if out.State != Failed || calls != 1 {
			t.Errorf("rate %g: state %v after %d rate evaluations, want %v after 1", bad, out.State, calls, Failed)
		}
	}

	old := MaxBisectionIterations
	MaxBisectionIterations = 2
	defer func() { MaxBisectionIterations = old }()
	out, err := Advance(1e-3, np, 10, 0.1, tol, 1e-8, relaxation(1, 2e-3))
	if !errors.As(err, &ce) || ce.Stage != StageBisection || ce.Fatal() {
		t.Errorf("have %v, want a non-fatal bisection error", err)
	}
	if !errors.Is(err, rootfind.ErrExceededIterations) {
		t.Errorf("have %v, want %v", err, rootfind.ErrExceededIterations)
	}
	if out.State != Failed {
		t.Errorf("state: have %v, want %v", out.State, Failed)
	}
}

func TestCellError(t *testing.T) {
	e := &CellError{I: 3, J: 4, K: 5, Stage: StageTransition, Err: rootfind.ErrNotBracketed}
	want := "pairs: cell (3,4,5): transition: rootfind: root is not bracketed"
	if e.Error() != want {
		t.Errorf("have %q, want %q", e.Error(), want)
	}
	if !errors.Is(e, rootfind.ErrNotBracketed) {
		t.Error("errors.Is should see the wrapped error")
	}
}

var scenarios = []struct {
	name string
	cond Conditions
}{
	{
		name: "cold thick",
		cond: Conditions{NProt: 1e15, ThetaE: 0.1, Tau: 10, B: 100, H: 10 / (pairdisk.SigmaT * 1e15)},
	},
	{
		name: "hot thin",
		cond: Conditions{NProt: 1e15, ThetaE: 50, Tau: 0.01, B: 1e4, H: 0.01 / (pairdisk.SigmaT * 1e15)},
	},
}

func TestNetRate(t *testing.T) {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	for _, s := range scenarios {
		t.Run(s.name, func(t *testing.T) {
			b, err := NetRate(0.01, s.cond, 1e-8)
			if err != nil {
				t.Fatal(err)
			}
			if !finite(b.Net) || !finite(b.Creation) || b.Creation < 0 || !(b.Annihilation > 0) {
				t.Errorf("rates: %+v", b)
			}
			if b.XM <= 0 || b.XM >= s.cond.ThetaE {
				t.Errorf("x_m=%g", b.XM)
			}
			sum := b.EE + b.WW + b.WP + b.WE + b.WF
			if different(sum, b.Creation, 1e-12) {
				t.Errorf("creation %g, channel sum %g", b.Creation, sum)
			}

			b0, err := NetRate(0, s.cond, 1e-8)
			if err != nil {
				t.Fatal(err)
			}
			if b0.Annihilation != 0 {
				t.Errorf("annihilation at z=0: %g", b0.Annihilation)
			}
			if !finite(b0.Creation) || b0.Creation < 0 || b0.Net != b0.Creation {
				t.Errorf("creation at z=0: %g, net %g", b0.Creation, b0.Net)
			}
		})
	}
}

// A cold, thick cell is a net pair source fed by Wien photon collisions.
// In a hot, thin cell lepton collisions alone outpace annihilation at
// every z, so the net rate stays positive.
func TestNetRateSign(t *testing.T) {
	cold, hot := scenarios[0].cond, scenarios[1].cond
	b, err := NetRate(0.01, cold, 1e-8)
	if err != nil {
		t.Fatal(err)
	}
	if !(b.Net > 0) {
		t.Errorf("cold thick: net %g should be positive", b.Net)
	}
	for _, ch := range []float64{b.EE, b.WP, b.WE, b.WF} {
		if ch >= b.WW {
			t.Errorf("cold thick: channel %g exceeds Wien–Wien %g", ch, b.WW)
		}
	}

	for _, z := range []float64{0.01, 1, 100} {
		b, err := NetRate(z, hot, 1e-8)
		if err != nil {
			t.Fatalf("hot thin, z=%g: %v", z, err)
		}
		if !(b.Net > 0) || !(b.EE > b.Annihilation) {
			t.Errorf("hot thin, z=%g: net %g, EE %g, annihilation %g", z, b.Net, b.EE, b.Annihilation)
		}
	}
}

// The branch taken follows dt against alpha times the pair timescale.
func TestScenarioBranch(t *testing.T) {
	for _, s := range scenarios {
		t.Run(s.name, func(t *testing.T) {
			z0 := 0.01
			rate := func(z float64) (float64, error) {
				b, err := NetRate(z, s.cond, 1e-8)
				return b.Net, err
			}
			r0, err := rate(z0)
			if err != nil {
				t.Fatal(err)
			}
			q := math.Abs(z0 * s.cond.NProt / r0)
			alpha := 0.5

			out, err := Advance(z0, s.cond.NProt, 0.5*alpha*q, alpha, 1e-8, 1e-8, rate)
			if err != nil {
				t.Fatal(err)
			}
			if out.State != ExplicitApplied {
				t.Errorf("short step: have %v, want %v", out.State, ExplicitApplied)
			}

			out, err = Advance(z0, s.cond.NProt, 10*alpha*q, alpha, 1e-8, 1e-8, rate)
			if err != nil {
				t.Fatal(err)
			}
			if out.State != Converged {
				t.Errorf("long step: have %v, want %v", out.State, Converged)
			}
			if !(out.Z > 0) {
				t.Errorf("implicit z=%g should be positive", out.Z)
			}
		})
	}
}

func TestElectronTemperature(t *testing.T) {
	te, err := NewElectronTemperature(ConstantModel, 1e9, 0)
	if err != nil {
		t.Fatal(err)
	}
	if have, want := te(123), pairdisk.KBol*1e9/pairdisk.ElectronRestEnergy; different(have, want, 1e-12) {
		t.Errorf("constant: have %g, want %g", have, want)
	}
	te, err = NewElectronTemperature(RatioModel, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	// Equal temperatures in kelvin when the ratio is 1.
	if have, want := FixedRatioTe(1)(1e-3), 1e-3*pairdisk.MP/pairdisk.ME; different(have, want, 1e-12) {
		t.Errorf("ratio 1: have %g, want %g", have, want)
	}
	if have, want := te(1e-3), 1e-3*pairdisk.MP/pairdisk.ME/3; different(have, want, 1e-12) {
		t.Errorf("ratio 3: have %g, want %g", have, want)
	}
	for _, bad := range []struct {
		model     string
		te, ratio float64
	}{{"constant", 0, 1}, {"ratio", 1e9, 0}, {"two-temperature", 1e9, 1}} {
		if _, err := NewElectronTemperature(bad.model, bad.te, bad.ratio); err == nil {
			t.Errorf("%+v should fail", bad)
		}
	}
}

func TestUpdater(t *testing.T) {
	g := pairdisk.Grid{N1: 2, N2: 4, N3: 1, NG: 1}
	geom, err := pairdisk.NewSphericalGeometry(g, 10, 20)
	if err != nil {
		t.Fatal(err)
	}
	d := &pairdisk.Disk{
		InitFuncs: []pairdisk.DomainManipulator{
			pairdisk.Allocate(g, geom, pairdisk.NewUnitSystem(10, 1e12), 13./9.),
			pairdisk.SetTimestep(1e-3),
			pairdisk.Torus(pairdisk.TorusConfig{Rho0: 1, HR: 1, ThetaP: 0.01, Beta: 10, Rin: 10}),
			pairdisk.InitPositrons(1e-3),
		},
	}
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	depth, err := opticaldepth.New(opticaldepth.GaussianName, 1)
	if err != nil {
		t.Fatal(err)
	}
	logger, hook := test.NewNullLogger()
	u := &Updater{
		Alpha:     0.1,
		Tolerance: 1e-8,
		Floor:     1e-8,
		Depth:     depth,
		Electrons: ConstantTe(1e9),
		Log:       logger,
	}

	c := d.Cell(g.NG, g.NG+1, g.NG)
	cond := u.Conditions(c)
	if different(cond.Z(), 1e-3, 1e-10) {
		t.Errorf("z: have %g, want 1e-3", cond.Z())
	}
	if !(cond.B > 0) || !(cond.Tau > 0) || !(cond.H > 0) || !(cond.CoulombRatio > 0) {
		t.Errorf("conditions: %+v", cond)
	}

	d.RunFuncs = []pairdisk.DomainManipulator{
		pairdisk.SnapshotState(),
		pairdisk.Calculations(u.Update()),
		pairdisk.AdvanceTime(),
		pairdisk.StepLimit(1, 0),
	}
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	s := u.Stats()
	if n := s.Explicit + s.Implicit + s.Skipped + s.Unchanged; n != int64(g.NumCells()) {
		t.Errorf("counted %d cells, want %d (%+v)", n, g.NumCells(), s)
	}
	for _, z := range d.PositronFractions() {
		if math.IsNaN(z) || z < 0 {
			t.Errorf("positron fraction %g", z)
		}
	}

	if err := u.LogStats(logger)(d); err != nil {
		t.Fatal(err)
	}
	e := hook.LastEntry()
	if e.Level != logrus.InfoLevel || e.Data["explicit"].(int64) != s.Explicit {
		t.Errorf("unexpected log entry %v", e)
	}
	if u.Stats() != (Stats{}) {
		t.Errorf("stats not reset: %+v", u.Stats())
	}
}
