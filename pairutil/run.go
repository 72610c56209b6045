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

package pairutil

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pairdisk"
	"github.com/spatialmodel/pairdisk/internal/hash"
	"github.com/spatialmodel/pairdisk/science/pairs"
	"gonum.org/v1/gonum/floats"
)

// conditionNames are the diagnostic variables computed from the plasma
// conditions of each cell.
var conditionNames = []string{
	"tau", "h", "thetae", "coulomb_ratio",
	"net_rate", "creation", "annihilation",
}

// diagnosticNames returns every variable name available to
// OutputVariables expressions.
func diagnosticNames() []string {
	names := append([]string{}, conditionNames...)
	for k := range pairdisk.BaseVariables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// conditionVariables returns a function that adds the optical depth,
// scale height, electron temperature, Coulomb coupling ratio and pair
// rates of a cell to its diagnostic variables.
func conditionVariables(u *pairs.Updater) pairdisk.CellVariables {
	return func(c *pairdisk.Cell, vars map[string]interface{}) error {
		cond := u.Conditions(c)
		vars["tau"] = cond.Tau
		vars["h"] = cond.H
		vars["thetae"] = cond.ThetaE
		vars["coulomb_ratio"] = cond.CoulombRatio
		if cond.NProt <= 0 {
			vars["net_rate"], vars["creation"], vars["annihilation"] = 0., 0., 0.
			return nil
		}
		b, err := pairs.NetRate(cond.Z(), cond, u.Tolerance)
		if err != nil {
			return err
		}
		vars["net_rate"] = b.Net
		vars["creation"] = b.Creation
		vars["annihilation"] = b.Annihilation
		return nil
	}
}

// fingerprint identifies the settings that change the physics of a run.
func (c *RunConfig) fingerprint() string {
	return hash.Hash(struct {
		BlackHoleMass, MassUnit, Gamma float64
		Pairs                          PairsConfig
	}{c.BlackHoleMass, c.MassUnit, c.Gamma, c.Pairs})
}

// Run builds a disk from c and runs it to completion, logging to l. The
// disk is returned in its final state.
func Run(c *RunConfig, l logrus.FieldLogger) (*pairdisk.Disk, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	geom, err := pairdisk.NewSphericalGeometry(c.Grid, c.Rin, c.Rout)
	if err != nil {
		return nil, err
	}
	u, err := c.Pairs.Updater(l)
	if err != nil {
		return nil, err
	}
	var reporter *pairdisk.Reporter
	if c.OutputFile != "" {
		reporter, err = pairdisk.NewReporter(c.OutputVariables, nil, conditionVariables(u), conditionNames...)
		if err != nil {
			return nil, err
		}
	}

	units := pairdisk.NewUnitSystem(c.BlackHoleMass, c.MassUnit)
	initFuncs := []pairdisk.DomainManipulator{
		pairdisk.Allocate(c.Grid, geom, units, c.Gamma),
		pairdisk.SetTimestep(c.Dt),
	}
	if c.Restart != "" {
		l.WithField("file", c.Restart).Info("restarting from checkpoint")
		initFuncs = append(initFuncs, pairdisk.ReadCheckpoint(c.Restart, c.KeepUnits))
	} else {
		initFuncs = append(initFuncs,
			pairdisk.Torus(c.Torus),
			pairdisk.InitPositrons(c.InitialFraction),
		)
	}

	runFuncs := []pairdisk.DomainManipulator{
		pairdisk.SnapshotState(),
		pairdisk.Calculations(u.Update()),
		pairdisk.AdvanceTime(),
		pairdisk.StepLimit(c.NSteps, c.TFinal),
		pairdisk.Log(l),
		u.LogStats(l),
	}
	if c.CheckpointDir != "" {
		runFuncs = append(runFuncs, pairdisk.Checkpoint(c.CheckpointDir, c.CheckpointEvery, c.TFinal))
	}

	var cleanupFuncs []pairdisk.DomainManipulator
	if reporter != nil {
		cleanupFuncs = append(cleanupFuncs, func(d *pairdisk.Disk) error {
			l.WithField("file", c.OutputFile).Info("writing diagnostics")
			fields, err := reporter.Report(d)
			if err != nil {
				return err
			}
			return pairdisk.WriteFields(c.OutputFile, fields)
		})
	}

	d := &pairdisk.Disk{
		ConfigHash:   c.fingerprint(),
		InitFuncs:    initFuncs,
		RunFuncs:     runFuncs,
		CleanupFuncs: cleanupFuncs,
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	if d.RestartHash != "" && d.RestartHash != d.ConfigHash {
		l.WithFields(logrus.Fields{
			"checkpoint": d.RestartHash,
			"config":     d.ConfigHash,
		}).Warn("restarting with different physics settings than the checkpoint was written with")
	}
	l.WithFields(logrus.Fields{
		"n1": d.N1, "n2": d.N2, "n3": d.N3,
		"mbh": d.Units.BlackHoleMass, "dt_s": d.Dt * d.Units.T,
		"optical_depth": u.Depth.Name(),
	}).Info("starting simulation")
	if err := d.Run(); err != nil {
		return d, err
	}
	l.WithFields(logrus.Fields{
		"step":  d.NStep,
		"t":     d.Time,
		"z_max": floats.Max(d.PositronFractions()),
	}).Info("simulation complete")
	return d, nil
}
