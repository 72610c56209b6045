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
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kr/pretty"
	"github.com/spatialmodel/pairdisk"
	"github.com/spatialmodel/pairdisk/science/pairs"
	"github.com/spatialmodel/pairdisk/science/rates"
)

// Scenario describes the plasma in a single cell.
type Scenario struct {
	Name string

	NP     float64 // proton density [cm⁻³]
	Z      float64 // positron fraction
	ThetaE float64 // electron temperature kT/(m_e c²); overrides Te
	Te     float64 // electron temperature [K]
	B      float64 // magnetic field [G]
	Tau    float64 // Thomson optical depth
	H      float64 // scale height [cm]

	// Dt [s], if > 0, is a time step to advance the positron fraction by.
	Dt float64
}

// scenarioFile is the layout of a scenario file:
//
//	[[Scenario]]
//	Name = "cold"
//	NP = 1e15
//	...
type scenarioFile struct {
	Scenario []Scenario
}

// ReadScenarios reads the scenarios in TOML file r.
func ReadScenarios(r io.Reader) ([]Scenario, error) {
	var f scenarioFile
	if _, err := toml.DecodeReader(r, &f); err != nil {
		return nil, fmt.Errorf("pairdisk: reading scenarios: %v", err)
	}
	if len(f.Scenario) == 0 {
		return nil, fmt.Errorf("pairdisk: reading scenarios: no [[Scenario]] tables")
	}
	for i, s := range f.Scenario {
		if s.Name == "" {
			f.Scenario[i].Name = fmt.Sprintf("scenario %d", i+1)
		}
		if err := f.Scenario[i].validate(); err != nil {
			return nil, err
		}
	}
	return f.Scenario, nil
}

func (s Scenario) validate() error {
	if s.ThetaE <= 0 && s.Te <= 0 {
		return fmt.Errorf("pairdisk: scenario '%s': either ThetaE or Te should be >0", s.Name)
	}
	vars := []float64{s.NP, s.Tau, s.H}
	varNames := []string{"NP", "Tau", "H"}
	for i, v := range vars {
		if !(v > 0) {
			return fmt.Errorf("pairdisk: scenario '%s': %s=%g but should be >0", s.Name, varNames[i], v)
		}
	}
	if s.Z < 0 {
		return fmt.Errorf("pairdisk: scenario '%s': Z=%g but should be >=0", s.Name, s.Z)
	}
	return nil
}

// Conditions returns the plasma conditions of the scenario.
func (s Scenario) Conditions() pairs.Conditions {
	theta := s.ThetaE
	if theta <= 0 {
		theta = pairdisk.KBol * s.Te / pairdisk.ElectronRestEnergy
	}
	return pairs.Conditions{
		NProt:  s.NP,
		NPos:   s.Z * s.NP,
		ThetaE: theta,
		B:      s.B,
		Tau:    s.Tau,
		H:      s.H,
	}
}

// ScenarioResult holds the rates of a scenario and, if it has a time
// step, the outcome of advancing it.
type ScenarioResult struct {
	Scenario    Scenario
	Breakdown   pairs.Breakdown
	Equilibrium float64 // fraction at which the cold Boltzmann limit balances
	Outcome     *pairs.Outcome
}

// Evaluate computes the pair rates of s with the settings in p.
func (s Scenario) Evaluate(p PairsConfig) (*ScenarioResult, error) {
	cond := s.Conditions()
	b, err := pairs.NetRate(s.Z, cond, p.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("pairdisk: scenario '%s': %w", s.Name, err)
	}
	r := &ScenarioResult{
		Scenario:    s,
		Breakdown:   b,
		Equilibrium: rates.EquilibriumFraction(s.NP, cond.ThetaE),
	}
	if s.Dt > 0 {
		rate := func(z float64) (float64, error) {
			b, err := pairs.NetRate(z, cond, p.Tolerance)
			return b.Net, err
		}
		out, err := pairs.Advance(s.Z, s.NP, s.Dt, p.Alpha, p.Tolerance, p.Floor, rate)
		if err != nil {
			return nil, fmt.Errorf("pairdisk: scenario '%s': %w", s.Name, err)
		}
		r.Outcome = &out
	}
	return r, nil
}

// Rates evaluates the scenarios in files and prints the results to w.
// If verbose is true every intermediate quantity is printed.
func Rates(w io.Writer, p PairsConfig, verbose bool, files ...string) error {
	for _, file := range files {
		f, err := os.Open(os.ExpandEnv(file))
		if err != nil {
			return fmt.Errorf("pairdisk: opening scenario file: %v", err)
		}
		scenarios, err := ReadScenarios(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%v (file %s)", err, file)
		}
		for _, s := range scenarios {
			r, err := s.Evaluate(p)
			if err != nil {
				return err
			}
			b := r.Breakdown
			fmt.Fprintf(w, "%s: θe=%.4g z=%.4g x_m=%.4g n_γ=%.4g creation=%.4g annihilation=%.4g net=%.4g z_eq=%.4g\n",
				s.Name, s.Conditions().ThetaE, b.Z, b.XM, b.NGamma, b.Creation, b.Annihilation, b.Net, r.Equilibrium)
			if r.Outcome != nil {
				fmt.Fprintf(w, "%s: after %g s: z=%.6g (%v, %d root finder steps)\n",
					s.Name, s.Dt, r.Outcome.Z, r.Outcome.State, r.Outcome.Steps)
			}
			if verbose {
				pretty.Fprintf(w, "%# v\n", b)
			}
		}
	}
	return nil
}
