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
	"os"
	"path/filepath"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/pairdisk/science/rates"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotConfig holds the settings of a rate plot.
type PlotConfig struct {
	NP, Z, NGamma      float64
	ThetaMin, ThetaMax float64
	Points             int
	File               string
}

// PlotConfigFromViper unmarshals a viper configuration for a rate plot.
func PlotConfigFromViper(cfg *viper.Viper) (PlotConfig, error) {
	p := PlotConfig{
		NP:       cfg.GetFloat64("Plot.NP"),
		Z:        cfg.GetFloat64("Plot.Z"),
		NGamma:   cfg.GetFloat64("Plot.NGamma"),
		ThetaMin: cfg.GetFloat64("Plot.ThetaMin"),
		ThetaMax: cfg.GetFloat64("Plot.ThetaMax"),
		Points:   cfg.GetInt("Plot.Points"),
		File:     os.ExpandEnv(cfg.GetString("Plot.File")),
	}
	return p, p.validate()
}

func (p PlotConfig) validate() error {
	vars := []float64{p.NP, p.Z, p.NGamma, p.ThetaMin}
	varNames := []string{"Plot.NP", "Plot.Z", "Plot.NGamma", "Plot.ThetaMin"}
	for i, v := range vars {
		if !(v > 0) {
			return fmt.Errorf("pairdisk: parsing plot configuration: %s=%g but should be >0", varNames[i], v)
		}
	}
	if !(p.ThetaMax > p.ThetaMin) {
		return fmt.Errorf("pairdisk: parsing plot configuration: Plot.ThetaMax=%g but should be >Plot.ThetaMin=%g", p.ThetaMax, p.ThetaMin)
	}
	if p.Points < 2 {
		return fmt.Errorf("pairdisk: parsing plot configuration: Plot.Points=%d but should be >=2", p.Points)
	}
	if p.File == "" {
		return fmt.Errorf("pairdisk: parsing plot configuration: Plot.File is not specified")
	}
	return nil
}

// rateSeries returns the positive values of f over theta.
func rateSeries(theta []float64, f func(theta float64) float64) plotter.XYs {
	var xy plotter.XYs
	for _, t := range theta {
		if v := f(t); v > 0 {
			xy = append(xy, plotter.XY{X: t, Y: v})
		}
	}
	return xy
}

// PlotRates plots each pair creation channel and the annihilation rate
// against electron temperature and saves the plot to p.File. The image
// format follows the file extension.
func PlotRates(p PlotConfig) error {
	if err := p.validate(); err != nil {
		return err
	}
	theta := floats.LogSpan(make([]float64, p.Points), p.ThetaMin, p.ThetaMax)
	series := []struct {
		name string
		f    func(theta float64) float64
	}{
		{"e±e", func(t float64) float64 { return rates.EE(p.NP, p.Z, t) }},
		{"γγ", func(t float64) float64 { return rates.WW(p.NGamma, t) }},
		{"γp", func(t float64) float64 { return rates.WP(p.NGamma, p.NP, t) }},
		{"γe", func(t float64) float64 { return rates.WE(p.NGamma, p.NP, p.Z, t) }},
		{"annihilation", func(t float64) float64 { return rates.Annihilation(p.NP, p.Z, t) }},
	}

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Pair rates at n_p=%.3g cm⁻³, z=%.3g, n_γ=%.3g cm⁻³", p.NP, p.Z, p.NGamma)
	pl.X.Label.Text = "kT_e/(m_e c²)"
	pl.Y.Label.Text = "rate (cm⁻³ s⁻¹)"
	pl.X.Scale = plot.LogScale{}
	pl.Y.Scale = plot.LogScale{}
	pl.X.Tick.Marker = plot.LogTicks{Prec: -1}
	pl.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	var lines []interface{}
	for _, s := range series {
		xy := rateSeries(theta, s.f)
		if len(xy) == 0 {
			continue
		}
		lines = append(lines, s.name, xy)
	}
	if len(lines) == 0 {
		return fmt.Errorf("pairdisk: plotting rates: all rates are zero")
	}
	if err := plotutil.AddLines(pl, lines...); err != nil {
		return fmt.Errorf("pairdisk: plotting rates: %v", err)
	}
	pl.Legend.Top = true

	if dir := filepath.Dir(p.File); dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("pairdisk: the Plot.File directory doesn't exist: %v", err)
		}
	}
	if err := pl.Save(6*vg.Inch, 4*vg.Inch, p.File); err != nil {
		return fmt.Errorf("pairdisk: saving rate plot: %v", err)
	}
	return nil
}
