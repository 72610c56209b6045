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

// Package pairutil holds the command-line interface to the pairdisk
// pair balance model.
package pairutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/pairdisk"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to pairdisk.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to print.
              Options are panic, fatal, error, warn, info, debug and trace.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. If it is
              not specified, the log file is written next to OutputFile with
              a .log extension.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Units.BlackHoleMass",
			usage: `
              Units.BlackHoleMass is the black hole mass in solar masses.
              Together with Units.MassUnit it fixes the conversion between
              code units and cgs units.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Units.MassUnit",
			usage: `
              Units.MassUnit is the mass unit in grams. The density unit is
              the mass unit divided by the cube of the length unit GM/c².`,
			defaultVal: 1.0e10,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Units.Keep",
			usage: `
              Units.Keep specifies whether a restarted simulation keeps the
              configured units instead of the units stored in the checkpoint.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Shape",
			usage: `
              Grid.Shape is the number of interior cells in the radial, polar
              and azimuthal directions.`,
			defaultVal: []int{64, 64, 1},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Ghosts",
			usage: `
              Grid.Ghosts is the number of ghost cells padding each side of
              the grid.`,
			defaultVal: 3,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Rin",
			usage: `
              Grid.Rin is the inner radius of the grid in units of GM/c².`,
			defaultVal: 6.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Rout",
			usage: `
              Grid.Rout is the outer radius of the grid in units of GM/c².`,
			defaultVal: 60.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Gamma",
			usage: `
              Gamma is the adiabatic index of the fluid.`,
			defaultVal: 13. / 9.,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Torus.Rho0",
			usage: `
              Torus.Rho0 is the midplane density of the initial disk at
              Torus.Rin, in code units.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Torus.Slope",
			usage: `
              Torus.Slope is the power-law index of the radial density
              profile of the initial disk.`,
			defaultVal: 1.5,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Torus.HR",
			usage: `
              Torus.HR is the Gaussian half-thickness h/r of the initial disk.`,
			defaultVal: 0.2,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Torus.ThetaP",
			usage: `
              Torus.ThetaP is the proton temperature kT/(m_p c²) of the
              initial disk.`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Torus.Beta",
			usage: `
              Torus.Beta is the ratio of gas to magnetic pressure of the
              initial disk. Values ≤ 0 give no magnetic field.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Torus.Rin",
			usage: `
              Torus.Rin is the reference radius of the initial density
              profile in units of GM/c².`,
			defaultVal: 6.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Pairs.InitialFraction",
			usage: `
              Pairs.InitialFraction is the positron fraction n₊/n_p that every
              cell starts with.`,
			defaultVal: 1.0e-8,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Pairs.Alpha",
			usage: `
              Pairs.Alpha is the fraction of the pair timescale |n₊/ṅ| below
              which the time step is applied explicitly. Longer time steps
              use an implicit update.`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), ratesCmd.Flags()},
		},
		{
			name: "Pairs.Tolerance",
			usage: `
              Pairs.Tolerance is the relative tolerance of the root finders.`,
			defaultVal: 1.0e-8,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), ratesCmd.Flags()},
		},
		{
			name: "Pairs.Floor",
			usage: `
              Pairs.Floor is the positron fraction that starts the implicit
              bracket search in cells without positrons.`,
			defaultVal: 1.0e-8,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), ratesCmd.Flags()},
		},
		{
			name: "Pairs.OpticalDepth",
			usage: `
              Pairs.OpticalDepth is the method used to estimate the Thomson
              optical depth and scale height of each cell. Options are
              column-moment, column-path and gaussian.`,
			defaultVal: "column-moment",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Pairs.HR",
			usage: `
              Pairs.HR is the half-thickness h/r assumed by the gaussian
              optical depth method.`,
			defaultVal: 0.2,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Pairs.ElectronModel",
			usage: `
              Pairs.ElectronModel sets the electron temperature. 'constant'
              uses Pairs.Te everywhere; 'ratio' uses T_p/T_e = Pairs.TemperatureRatio.`,
			defaultVal: "ratio",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Pairs.Te",
			usage: `
              Pairs.Te is the electron temperature in kelvin used by the
              constant electron temperature model.`,
			defaultVal: 1.0e9,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Pairs.TemperatureRatio",
			usage: `
              Pairs.TemperatureRatio is T_p/T_e for the ratio electron
              temperature model.`,
			defaultVal: 3.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Run.Dt",
			usage: `
              Run.Dt is the time step in code units of GM/c³.`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Run.NumSteps",
			usage: `
              Run.NumSteps is the step number at which to stop. Values ≤ 0
              are ignored.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Run.TFinal",
			usage: `
              Run.TFinal is the simulation time at which to stop, in code
              units. Values ≤ 0 are ignored.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Run.Restart",
			usage: `
              Run.Restart is the path to a checkpoint file to restart from.
              If it is empty, the simulation starts from the initial disk.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Run.CheckpointDir",
			usage: `
              Run.CheckpointDir is the directory checkpoints are written to.
              If it is empty, no checkpoints are written.`,
			defaultVal: "checkpoints",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Run.CheckpointEvery",
			usage: `
              Run.CheckpointEvery is the number of steps between checkpoints.
              Values ≤ 0 write a checkpoint only at the end of the run.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the netCDF file that diagnostic fields
              are written to at the end of the run. It can include
              environment variables.`,
			defaultVal: "pairdisk.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which diagnostic fields to write.
              It maps output names to expressions of the cell variables
              ` + strings.Join(diagnosticNames(), ", ") + `.
              The functions exp, log, log10, sqrt and abs are available.`,
			defaultVal: map[string]string{
				"Z":          "z",
				"NPos":       "npos",
				"Tau":        "tau",
				"ThetaE":     "thetae",
				"NetRate":    "net_rate",
				"PairTime":   "abs(npos / net_rate)",
				"Coulomb":    "coulomb_ratio",
				"LogDensity": "log10(np)",
			},
			flagsets: []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "verbose",
			usage: `
              verbose specifies whether to print every intermediate quantity
              of the rate calculation.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{ratesCmd.Flags()},
		},
		{
			name: "Plot.NP",
			usage: `
              Plot.NP is the proton density [cm⁻³] of the plotted cell.`,
			defaultVal: 1.0e15,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Plot.Z",
			usage: `
              Plot.Z is the positron fraction of the plotted cell.`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Plot.NGamma",
			usage: `
              Plot.NGamma is the Wien peak photon density [cm⁻³] of the
              plotted cell.`,
			defaultVal: 1.0e15,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Plot.ThetaMin",
			usage: `
              Plot.ThetaMin is the lowest electron temperature kT/(m_e c²)
              to plot.`,
			defaultVal: 0.05,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Plot.ThetaMax",
			usage: `
              Plot.ThetaMax is the highest electron temperature kT/(m_e c²)
              to plot.`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Plot.Points",
			usage: `
              Plot.Points is the number of temperatures to evaluate.`,
			defaultVal: 200,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Plot.File",
			usage: `
              Plot.File is the image file to write. The format follows the
              file extension.`,
			defaultVal: "pairrates.png",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "view",
			usage: `
              view specifies whether to open the plot after it is written.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("PAIRDISK")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(ratesCmd)
	Root.AddCommand(plotCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("pairdisk: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "pairdisk",
	Short: "Electron–positron pair balance in accretion disks.",
	Long: `pairdisk evolves the electron–positron pair density of every cell of
an accretion disk by balancing pair creation against annihilation.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'PAIRDISK_var' where 'var' is the
name of the variable to be set, with '.' replaced by '_'.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of pairdisk.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("pairdisk v%s\n", pairdisk.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs a disk simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run evolves the pair density of a disk, either built from the Torus
configuration or restarted from a checkpoint, writes checkpoints to
Run.CheckpointDir and writes the OutputVariables diagnostics to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := RunConfigFromViper(Cfg)
		if err != nil {
			return err
		}
		l, closeLog, err := NewLogger(cmd.OutOrStdout(),
			checkLogFile(os.ExpandEnv(Cfg.GetString("LogFile")), c.OutputFile),
			Cfg.GetString("LogLevel"))
		if err != nil {
			return err
		}
		defer closeLog()
		_, err = Run(c, l)
		return err
	},
	DisableAutoGenTag: true,
}

// ratesCmd is a command that evaluates single-cell scenarios.
var ratesCmd = &cobra.Command{
	Use:   "rates [scenario.toml...]",
	Short: "Calculate pair rates for single cells.",
	Long: `rates reads one or more TOML files, each holding [[Scenario]] tables
that describe the plasma in a single cell, and prints the pair creation
and annihilation rates of each. Scenarios that set Dt also advance the
positron fraction by one time step.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Rates(cmd.OutOrStdout(), PairsConfigFromViper(Cfg), Cfg.GetBool("verbose"), args...)
	},
	DisableAutoGenTag: true,
}

// plotCmd is a command that plots pair rates against temperature.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot pair rates against temperature.",
	Long: `plot evaluates the pair creation channels and the annihilation rate
over a range of electron temperatures and writes a log–log plot to Plot.File.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := PlotConfigFromViper(Cfg)
		if err != nil {
			return err
		}
		if err := PlotRates(p); err != nil {
			return err
		}
		cmd.Printf("wrote %s\n", p.File)
		if Cfg.GetBool("view") {
			return open.Run(p.File)
		}
		return nil
	},
	DisableAutoGenTag: true,
}
