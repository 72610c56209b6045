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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pairdisk"
	"github.com/spatialmodel/pairdisk/science/opticaldepth"
	"github.com/spatialmodel/pairdisk/science/pairs"
	"github.com/spf13/cast"
)

// PairsConfig holds the settings of the pair balance update.
type PairsConfig struct {
	Alpha, Tolerance, Floor float64

	// OpticalDepth names the optical depth method; HR is the
	// half-thickness used by the gaussian method.
	OpticalDepth string
	HR           float64

	// ElectronModel names the electron temperature model, which uses Te
	// [K] or TemperatureRatio.
	ElectronModel    string
	Te               float64
	TemperatureRatio float64
}

// Updater returns a pair updater that logs to l.
func (p PairsConfig) Updater(l logrus.FieldLogger) (*pairs.Updater, error) {
	vars := []float64{p.Alpha, p.Tolerance, p.Floor}
	varNames := []string{"Pairs.Alpha", "Pairs.Tolerance", "Pairs.Floor"}
	for i, v := range vars {
		if !(v > 0) {
			return nil, fmt.Errorf("pairdisk: parsing pairs configuration: %s=%g but should be >0", varNames[i], v)
		}
	}
	depth, err := opticaldepth.New(p.OpticalDepth, p.HR)
	if err != nil {
		return nil, err
	}
	te, err := pairs.NewElectronTemperature(p.ElectronModel, p.Te, p.TemperatureRatio)
	if err != nil {
		return nil, err
	}
	return &pairs.Updater{
		Alpha:     p.Alpha,
		Tolerance: p.Tolerance,
		Floor:     p.Floor,
		Depth:     depth,
		Electrons: te,
		Log:       l,
	}, nil
}

// RunConfig holds the settings of a disk simulation.
type RunConfig struct {
	Grid      pairdisk.Grid
	Rin, Rout float64 // radial extent of the grid [GM/c²]

	BlackHoleMass, MassUnit float64
	KeepUnits               bool // keep the configured units on restart
	Gamma                   float64

	Torus           pairdisk.TorusConfig
	InitialFraction float64

	Dt      float64
	NSteps  int
	TFinal  float64
	Restart string // checkpoint to restart from

	CheckpointDir   string
	CheckpointEvery int

	Pairs PairsConfig

	OutputFile      string
	OutputVariables map[string]string
}

// PairsConfigFromViper unmarshals the pair update settings of a viper
// configuration.
func PairsConfigFromViper(cfg *viper.Viper) PairsConfig {
	p := PairsConfig{
		Alpha:            cfg.GetFloat64("Pairs.Alpha"),
		Tolerance:        cfg.GetFloat64("Pairs.Tolerance"),
		Floor:            cfg.GetFloat64("Pairs.Floor"),
		OpticalDepth:     os.ExpandEnv(cfg.GetString("Pairs.OpticalDepth")),
		HR:               cfg.GetFloat64("Pairs.HR"),
		ElectronModel:    os.ExpandEnv(cfg.GetString("Pairs.ElectronModel")),
		Te:               cfg.GetFloat64("Pairs.Te"),
		TemperatureRatio: cfg.GetFloat64("Pairs.TemperatureRatio"),
	}
	// Empty string settings come from a command that does not set them.
	if p.OpticalDepth == "" {
		p.OpticalDepth = opticaldepth.ColumnMomentName
	}
	if p.ElectronModel == "" {
		p.ElectronModel = pairs.RatioModel
	}
	return p
}

// RunConfigFromViper unmarshals a viper configuration for a disk
// simulation.
func RunConfigFromViper(cfg *viper.Viper) (*RunConfig, error) {
	shape, err := toIntSliceE(cfg.Get("Grid.Shape"))
	if err != nil {
		return nil, fmt.Errorf("pairdisk: parsing grid configuration: Grid.Shape: %v", err)
	}
	if len(shape) != 3 {
		return nil, fmt.Errorf("pairdisk: parsing grid configuration: Grid.Shape has %d elements but should have 3", len(shape))
	}
	p := PairsConfigFromViper(cfg)
	outputFile, err := checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return nil, err
	}
	outputVars, err := GetStringMapString("OutputVariables", cfg)
	if err != nil {
		return nil, err
	}
	if outputVars, err = checkOutputVars(outputVars); err != nil {
		return nil, err
	}
	c := &RunConfig{
		Grid: pairdisk.Grid{
			N1: shape[0],
			N2: shape[1],
			N3: shape[2],
			NG: cfg.GetInt("Grid.Ghosts"),
		},
		Rin:           cfg.GetFloat64("Grid.Rin"),
		Rout:          cfg.GetFloat64("Grid.Rout"),
		BlackHoleMass: cfg.GetFloat64("Units.BlackHoleMass"),
		MassUnit:      cfg.GetFloat64("Units.MassUnit"),
		KeepUnits:     cfg.GetBool("Units.Keep"),
		Gamma:         cfg.GetFloat64("Gamma"),
		Torus: pairdisk.TorusConfig{
			Rho0:   cfg.GetFloat64("Torus.Rho0"),
			Slope:  cfg.GetFloat64("Torus.Slope"),
			HR:     cfg.GetFloat64("Torus.HR"),
			ThetaP: cfg.GetFloat64("Torus.ThetaP"),
			Beta:   cfg.GetFloat64("Torus.Beta"),
			Rin:    cfg.GetFloat64("Torus.Rin"),
		},
		InitialFraction: cfg.GetFloat64("Pairs.InitialFraction"),
		Dt:              cfg.GetFloat64("Run.Dt"),
		NSteps:          cfg.GetInt("Run.NumSteps"),
		TFinal:          cfg.GetFloat64("Run.TFinal"),
		Restart:         os.ExpandEnv(cfg.GetString("Run.Restart")),
		CheckpointDir:   os.ExpandEnv(cfg.GetString("Run.CheckpointDir")),
		CheckpointEvery: cfg.GetInt("Run.CheckpointEvery"),
		Pairs:           p,
		OutputFile:      outputFile,
		OutputVariables: outputVars,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the settings that are not checked when the
// simulation is initialized.
func (c *RunConfig) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	vars := []float64{c.BlackHoleMass, c.MassUnit}
	varNames := []string{"Units.BlackHoleMass", "Units.MassUnit"}
	for i, v := range vars {
		if !(v > 0) {
			return fmt.Errorf("pairdisk: parsing units configuration: %s=%g but should be >0", varNames[i], v)
		}
	}
	if !(c.InitialFraction >= 0) {
		return fmt.Errorf("pairdisk: parsing pairs configuration: Pairs.InitialFraction=%g but should be >=0", c.InitialFraction)
	}
	if c.Restart != "" {
		if _, err := os.Stat(c.Restart); err != nil {
			return fmt.Errorf("pairdisk: the Run.Restart file can't be read: %v", err)
		}
	}
	return nil
}

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again.")
	}
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o, nil
}

// checkOutputFile makes sure that the output file directory exists, and
// expands any environment variables. An empty path means no output.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", nil
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("pairdisk: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" && outputFile != "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// toIntSliceE converts s to a slice of integers. Values set from the
// command line arrive as a string such as "[64,64,1]".
func toIntSliceE(s interface{}) ([]int, error) {
	str, ok := s.(string)
	if !ok {
		return cast.ToIntSliceE(s)
	}
	str = strings.TrimSpace(str)
	if !strings.HasPrefix(str, "[") {
		str = "[" + str + "]"
	}
	var o []int
	if err := json.Unmarshal([]byte(str), &o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		if v == "" {
			return make(map[string]string), nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("pairdisk: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("pairdisk: invalid type for %s: %#v", varName, i)
	}
}
