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
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/pairdisk"
)

func TestVersion(t *testing.T) {
	var b bytes.Buffer
	Root.SetOut(&b)
	defer Root.SetOut(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "pairdisk v" + pairdisk.Version + "\n"; b.String() != want {
		t.Errorf("have %q, want %q", b.String(), want)
	}
}

func TestRunAndRestart(t *testing.T) {
	dir := t.TempDir()
	Cfg.Set("config", "testdata/config.toml")
	Cfg.Set("OutputFile", filepath.Join(dir, "out.nc"))
	Cfg.Set("Run.CheckpointDir", filepath.Join(dir, "checkpoints"))
	var b bytes.Buffer
	Root.SetOut(&b)
	defer Root.SetOut(nil)
	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{
		"out.nc", "out.log",
		filepath.Join("checkpoints", pairdisk.CheckpointName(1)),
		filepath.Join("checkpoints", pairdisk.CheckpointName(2)),
	} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("missing output: %v", err)
		}
	}

	Cfg.Set("Run.Restart", filepath.Join(dir, "checkpoints", pairdisk.LastCheckpoint))
	Cfg.Set("Run.NumSteps", 3)
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "checkpoints", pairdisk.CheckpointName(3))); err != nil {
		t.Errorf("restarted run did not continue from step 2: %v", err)
	}
}

func TestRestartSettingsWarning(t *testing.T) {
	l, hook := test.NewNullLogger()
	c := testRunConfig(t)
	c.CheckpointDir = t.TempDir()
	if _, err := Run(c, l); err != nil {
		t.Fatal(err)
	}
	warned := func() bool {
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.WarnLevel && strings.HasPrefix(e.Message, "restarting with different") {
				return true
			}
		}
		return false
	}

	c.Restart = filepath.Join(c.CheckpointDir, pairdisk.LastCheckpoint)
	c.NSteps = 2
	hook.Reset()
	d, err := Run(c, l)
	if err != nil {
		t.Fatal(err)
	}
	if d.RestartHash != d.ConfigHash || warned() {
		t.Errorf("same settings: checkpoint %s, config %s", d.RestartHash, d.ConfigHash)
	}

	c.Pairs.Alpha = 0.5
	c.NSteps = 3
	c.Restart = filepath.Join(c.CheckpointDir, pairdisk.CheckpointName(2))
	hook.Reset()
	if _, err := Run(c, l); err != nil {
		t.Fatal(err)
	}
	if !warned() {
		t.Error("changed settings were not reported")
	}
}

func testRunConfig(t *testing.T) *RunConfig {
	g := pairdisk.Grid{N1: 2, N2: 4, N3: 1, NG: 1}
	return &RunConfig{
		Grid:            g,
		Rin:             10,
		Rout:            20,
		BlackHoleMass:   10,
		MassUnit:        1e12,
		Gamma:           13. / 9.,
		Torus:           pairdisk.TorusConfig{Rho0: 1, HR: 1, ThetaP: 0.01, Beta: 10, Rin: 10},
		InitialFraction: 1e-3,
		Dt:              1e-3,
		NSteps:          1,
		Pairs: PairsConfig{
			Alpha:         0.1,
			Tolerance:     1e-8,
			Floor:         1e-8,
			OpticalDepth:  "column-path",
			ElectronModel: "constant",
			Te:            1e9,
		},
		OutputFile:      filepath.Join(t.TempDir(), "out.nc"),
		OutputVariables: map[string]string{"Z": "z", "H": "h", "Coulomb": "coulomb_ratio"},
	}
}

func TestRun(t *testing.T) {
	l, hook := test.NewNullLogger()
	c := testRunConfig(t)
	d, err := Run(c, l)
	if err != nil {
		t.Fatal(err)
	}
	if d.NStep != 1 {
		t.Errorf("step: have %d, want 1", d.NStep)
	}
	for _, z := range d.PositronFractions() {
		if !(z >= 0) {
			t.Errorf("positron fraction %g", z)
		}
	}
	if _, err := os.Stat(c.OutputFile); err != nil {
		t.Error(err)
	}
	if e := hook.LastEntry(); e == nil || e.Message != "simulation complete" {
		t.Errorf("unexpected last log entry %v", e)
	}
}

func TestRunConfigErrors(t *testing.T) {
	l, _ := test.NewNullLogger()
	for _, tc := range []struct {
		name   string
		modify func(c *RunConfig)
		want   string
	}{
		{
			name:   "grid",
			modify: func(c *RunConfig) { c.Grid.N2 = 0 },
			want:   "pairdisk: parsing grid configuration: N2=0 but should be >0",
		},
		{
			name:   "units",
			modify: func(c *RunConfig) { c.MassUnit = 0 },
			want:   "pairdisk: parsing units configuration: Units.MassUnit=0 but should be >0",
		},
		{
			name:   "alpha",
			modify: func(c *RunConfig) { c.Pairs.Alpha = -1 },
			want:   "pairdisk: parsing pairs configuration: Pairs.Alpha=-1 but should be >0",
		},
		{
			name:   "restart",
			modify: func(c *RunConfig) { c.Restart = "does/not/exist.nc" },
			want:   "pairdisk: the Run.Restart file can't be read",
		},
		{
			name:   "expression",
			modify: func(c *RunConfig) { c.OutputVariables = map[string]string{"x": "2*nonsense"} },
			want:   "undefined variable name 'nonsense'",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := testRunConfig(t)
			tc.modify(c)
			_, err := Run(c, l)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("have error %v, want %q", err, tc.want)
			}
		})
	}
}

func TestRunConfigFromViper(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Grid.Shape", "[8, 16, 1]")
	cfg.Set("Grid.Ghosts", 2)
	cfg.Set("Units.BlackHoleMass", 10.)
	cfg.Set("Units.MassUnit", 1e13)
	cfg.Set("OutputVariables", `{"Z": "z"}`)
	cfg.Set("Pairs.OpticalDepth", "gaussian")
	c, err := RunConfigFromViper(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if want := (pairdisk.Grid{N1: 8, N2: 16, N3: 1, NG: 2}); c.Grid != want {
		t.Errorf("grid: have %+v, want %+v", c.Grid, want)
	}
	if c.Pairs.ElectronModel != "ratio" || c.Pairs.OpticalDepth != "gaussian" {
		t.Errorf("pairs: %+v", c.Pairs)
	}
	if !reflect.DeepEqual(c.OutputVariables, map[string]string{"Z": "z"}) {
		t.Errorf("output variables: %v", c.OutputVariables)
	}

	cfg.Set("Grid.Shape", []interface{}{int64(8), int64(16)})
	if _, err := RunConfigFromViper(cfg); err == nil || !strings.Contains(err.Error(), "Grid.Shape has 2 elements") {
		t.Errorf("have %v, want a Grid.Shape error", err)
	}
}

func TestToIntSliceE(t *testing.T) {
	want := []int{4, 8, 1}
	for _, in := range []interface{}{"[4,8,1]", "4, 8, 1", []interface{}{int64(4), int64(8), int64(1)}, []int{4, 8, 1}} {
		have, err := toIntSliceE(in)
		if err != nil {
			t.Errorf("%#v: %v", in, err)
			continue
		}
		if !reflect.DeepEqual(have, want) {
			t.Errorf("%#v: have %v, want %v", in, have, want)
		}
	}
	if _, err := toIntSliceE("[4,x]"); err == nil {
		t.Error("invalid slice should fail")
	}
}

func TestGetStringMapString(t *testing.T) {
	cfg := viper.New()
	want := map[string]string{"a": "b"}
	for _, in := range []interface{}{`{"a": "b"}`, map[string]interface{}{"a": "b"}, map[string]string{"a": "b"}} {
		cfg.Set("x", in)
		have, err := GetStringMapString("x", cfg)
		if err != nil {
			t.Errorf("%#v: %v", in, err)
			continue
		}
		if !reflect.DeepEqual(have, want) {
			t.Errorf("%#v: have %v, want %v", in, have, want)
		}
	}
	cfg.Set("x", `{"a": `)
	if _, err := GetStringMapString("x", cfg); err == nil {
		t.Error("invalid json should fail")
	}
	if _, err := checkOutputVars(map[string]string{}); err == nil {
		t.Error("empty output variables should fail")
	}
}

func TestCheckLogFile(t *testing.T) {
	if have, want := checkLogFile("", "dir/out.nc"), "dir/out.log"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}
	if have, want := checkLogFile("my.log", "dir/out.nc"), "my.log"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}
	if have := checkLogFile("", ""); have != "" {
		t.Errorf("have %s, want no log file", have)
	}
}

func TestNewLogger(t *testing.T) {
	if _, _, err := NewLogger(&bytes.Buffer{}, "", "loud"); err == nil {
		t.Error("invalid level should fail")
	}
	var b bytes.Buffer
	path := filepath.Join(t.TempDir(), "test.log")
	l, closeLog, err := NewLogger(&b, path, "warn")
	if err != nil {
		t.Fatal(err)
	}
	l.Info("hidden")
	l.WithField("cell", 3).Warn("shown")
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}
	f, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{b.String(), string(f)} {
		if strings.Contains(s, "hidden") || !strings.Contains(s, "msg=shown cell=3") {
			t.Errorf("unexpected log output %q", s)
		}
	}
}

func TestRates(t *testing.T) {
	var b bytes.Buffer
	p := PairsConfig{Alpha: 0.1, Tolerance: 1e-8, Floor: 1e-8}
	if err := Rates(&b, p, true, "testdata/scenarios.toml"); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, s := range []string{"cold thick: ", "hot thin: ", "cold thick, one second: after 1 s", "hot thin, 100 μs: after 0.0001 s", "Annihilation:"} {
		if !strings.Contains(out, s) {
			t.Errorf("output does not contain %q:\n%s", s, out)
		}
	}
}

func TestReadScenarios(t *testing.T) {
	s, err := ReadScenarios(strings.NewReader(`
[[Scenario]]
NP = 1e15
Te = 1e9
Tau = 1.0
H = 1e12
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 1 || s[0].Name != "scenario 1" {
		t.Fatalf("scenarios: %+v", s)
	}
	c := s[0].Conditions()
	if want := pairdisk.KBol * 1e9 / pairdisk.ElectronRestEnergy; math.Abs(c.ThetaE/want-1) > 1e-12 {
		t.Errorf("θe: have %g, want %g", c.ThetaE, want)
	}

	for _, in := range []string{
		"",
		"[[Scenario]]\nNP = 1e15\nTau = 1.0\nH = 1e12\n",
		"[[Scenario]]\nNP = 1e15\nThetaE = 1.0\nH = 1e12\n",
		"[[Scenario]]\nNP = 1e15\nThetaE = 1.0\nTau = 1.0\nH = 1e12\nZ = -1.0\n",
		"[[Scenario]\n",
	} {
		if _, err := ReadScenarios(strings.NewReader(in)); err == nil {
			t.Errorf("%q should fail", in)
		}
	}
}

func TestPlotRates(t *testing.T) {
	p := PlotConfig{
		NP: 1e15, Z: 0.01, NGamma: 1e15,
		ThetaMin: 0.05, ThetaMax: 100, Points: 50,
		File: filepath.Join(t.TempDir(), "rates.png"),
	}
	if err := PlotRates(p); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(p.File)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() == 0 {
		t.Error("empty plot")
	}

	p.ThetaMax = p.ThetaMin
	if err := PlotRates(p); err == nil {
		t.Error("empty temperature range should fail")
	}
}
