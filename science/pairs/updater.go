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
	"fmt"
	"math"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pairdisk"
	"github.com/spatialmodel/pairdisk/science/opticaldepth"
	"github.com/spatialmodel/pairdisk/science/rates"
)

// ElectronTemperature returns the electron temperature kT_e/(m_e c²) of
// a cell with proton temperature thetaP = kT_p/(m_p c²).
type ElectronTemperature func(thetaP float64) float64

// ConstantTe returns a model with the electron temperature fixed at
// te kelvin everywhere.
func ConstantTe(te float64) ElectronTemperature {
	thetaE := pairdisk.KBol * te / pairdisk.ElectronRestEnergy
	return func(float64) float64 { return thetaE }
}

// FixedRatioTe returns a model in which T_p/T_e = ratio.
func FixedRatioTe(ratio float64) ElectronTemperature {
	return func(thetaP float64) float64 {
		return thetaP / pairdisk.MEMP / ratio
	}
}

// Electron temperature model names.
const (
	ConstantModel = "constant"
	RatioModel    = "ratio"
)

// NewElectronTemperature returns the named electron temperature model.
// te [K] is used by the constant model and ratio by the ratio model.
func NewElectronTemperature(model string, te, ratio float64) (ElectronTemperature, error) {
	switch model {
	case ConstantModel:
		if te <= 0 {
			return nil, fmt.Errorf("pairs: electron temperature %g K should be >0", te)
		}
		return ConstantTe(te), nil
	case RatioModel:
		if ratio <= 0 {
			return nil, fmt.Errorf("pairs: temperature ratio %g should be >0", ratio)
		}
		return FixedRatioTe(ratio), nil
	default:
		return nil, fmt.Errorf("pairs: invalid electron temperature model '%s'; valid options are '%s' and '%s'",
			model, ConstantModel, RatioModel)
	}
}

// Stats counts the outcomes of cell updates.
type Stats struct {
	Explicit  int64 // explicit updates
	Implicit  int64 // converged implicit updates
	Skipped   int64 // implicit updates that did not converge
	Unchanged int64 // cells with zero net rate or no matter
}

// Updater advances the positron density of grid cells.
type Updater struct {
	// Alpha is the fraction of the pair timescale |n₊/ṅ| below which
	// the time step is applied explicitly.
	Alpha float64

	// Tolerance is the relative tolerance of every root finder.
	Tolerance float64

	// Floor is the positron fraction used to start the implicit
	// bracket search in cells without positrons.
	Floor float64

	Depth     opticaldepth.Estimator
	Electrons ElectronTemperature

	Log logrus.FieldLogger

	explicit, implicit, skipped, unchanged atomic.Int64
}

// Conditions returns the plasma state of cell c.
func (u *Updater) Conditions(c *pairdisk.Cell) Conditions {
	d := c.Disk()
	cond := Conditions{
		NProt:  c.ProtonDensity(),
		NPos:   c.PositronDensity(),
		ThetaP: c.ProtonTheta(),
		B:      c.BField(),
		AngVel: c.AngularVelocity(),
	}
	cond.ThetaE = u.Electrons(cond.ThetaP)
	cond.Tau, cond.H = u.Depth.Estimate(c)

	ue := c.LeptonDensity() * cond.ThetaE * pairdisk.ElectronRestEnergy / (d.Gamma - 1)
	up := c.Prim(pairdisk.UU) * d.Units.U
	qc := rates.Coulomb(cond.ThetaP, cond.ThetaE, cond.NProt, cond.NPos)
	if qc == 0 {
		cond.CoulombRatio = math.Inf(1)
	} else {
		tcoul := math.Min(math.Abs(ue/qc), math.Abs(up/qc))
		tomega := d.Units.T / math.Abs(cond.AngVel)
		cond.CoulombRatio = tcoul / tomega
	}
	return cond
}

// Update returns a function that advances the positron density of a
// cell by one time step. The time step passed to it is in code units.
// Cells whose implicit solve does not converge are logged, counted and
// left unchanged; every other failure is returned as a *CellError.
func (u *Updater) Update() pairdisk.CellManipulator {
	return func(c *pairdisk.Cell, dt float64) error {
		cond := u.Conditions(c)
		if cond.NProt <= 0 {
			u.unchanged.Add(1)
			return nil
		}
		d := c.Disk()
		rate := func(z float64) (float64, error) {
			b, err := NetRate(z, cond, u.Tolerance)
			return b.Net, err
		}
		out, err := Advance(cond.Z(), cond.NProt, dt*d.Units.T, u.Alpha, u.Tolerance, u.Floor, rate)
		if err != nil {
			var ce *CellError
			if !errors.As(err, &ce) {
				ce = &CellError{Stage: StageBisection, Err: err}
			}
			ce.I, ce.J, ce.K = c.I, c.J, c.K
			if ce.Fatal() {
				return ce
			}
			u.skipped.Add(1)
			if u.Log != nil {
				u.Log.WithFields(logrus.Fields{
					"i": c.I, "j": c.J, "k": c.K, "stage": ce.Stage.String(),
				}).Warnf("implicit pair update did not converge: %v", ce.Err)
			}
			return nil
		}
		switch out.State {
		case RatesComputed:
			u.unchanged.Add(1)
			return nil
		case ExplicitApplied:
			u.explicit.Add(1)
		case Converged:
			u.implicit.Add(1)
			if u.Log != nil {
				u.Log.WithFields(logrus.Fields{
					"i": c.I, "j": c.J, "k": c.K, "steps": out.Steps,
				}).Debug("net rate too steep; used implicit update")
			}
		}
		c.SetFinal(pairdisk.RPL, d.Units.PositronMass(out.Z*cond.NProt))
		return nil
	}
}

// Stats returns the update counts accumulated so far.
func (u *Updater) Stats() Stats {
	return Stats{
		Explicit:  u.explicit.Load(),
		Implicit:  u.implicit.Load(),
		Skipped:   u.skipped.Load(),
		Unchanged: u.unchanged.Load(),
	}
}

// LogStats returns a function that logs the update counts of the last
// step and resets them.
func (u *Updater) LogStats(l logrus.FieldLogger) pairdisk.DomainManipulator {
	return func(d *pairdisk.Disk) error {
		s := Stats{
			Explicit:  u.explicit.Swap(0),
			Implicit:  u.implicit.Swap(0),
			Skipped:   u.skipped.Swap(0),
			Unchanged: u.unchanged.Swap(0),
		}
		l.WithFields(logrus.Fields{
			"step":      d.NStep,
			"explicit":  s.Explicit,
			"implicit":  s.Implicit,
			"skipped":   s.Skipped,
			"unchanged": s.Unchanged,
		}).Info("pair updates")
		return nil
	}
}
