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

package pairdisk

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// BaseVariables are the per-cell variables available to every
// diagnostic expression.
var BaseVariables = map[string]string{
	"rho":    "mass density [code units]",
	"uu":     "internal energy density [code units]",
	"rpl":    "positron mass density [code units]",
	"np":     "proton number density [cm-3]",
	"npos":   "positron number density [cm-3]",
	"z":      "positron fraction",
	"thetap": "proton temperature kT/(mp c2)",
	"r":      "radius [code units]",
	"theta":  "polar angle [radians]",
}

// CellVariables adds variables for cell c to vars. It lets callers
// expose quantities computed outside this package to diagnostic
// expressions.
type CellVariables func(c *Cell, vars map[string]interface{}) error

// Reporter evaluates a set of named expressions over every interior
// cell. Expressions may use the variables in BaseVariables, any extra
// variables the Reporter was created with, and the functions
// exp, log, log10, sqrt and abs.
type Reporter struct {
	names []string
	exprs map[string]*govaluate.EvaluableExpression
	extra CellVariables
}

func oneArg(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("pairdisk: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("pairdisk: argument of '%s' has type %T, want float64", name, args[0])
		}
		return f(x), nil
	}
}

// NewReporter parses the expressions in outputVariables, which maps
// output names to expressions. funcs adds to or replaces the default
// functions. extra, which may be nil, supplies the variables named in
// extraNames.
func NewReporter(outputVariables map[string]string, funcs map[string]govaluate.ExpressionFunction, extra CellVariables, extraNames ...string) (*Reporter, error) {
	allFuncs := map[string]govaluate.ExpressionFunction{
		"exp":   oneArg("exp", math.Exp),
		"log":   oneArg("log", math.Log),
		"log10": oneArg("log10", math.Log10),
		"sqrt":  oneArg("sqrt", math.Sqrt),
		"abs":   oneArg("abs", math.Abs),
	}
	for k, f := range funcs {
		allFuncs[k] = f
	}
	known := make(map[string]bool)
	for k := range BaseVariables {
		known[k] = true
	}
	for _, k := range extraNames {
		known[k] = true
	}
	if len(extraNames) > 0 && extra == nil {
		return nil, fmt.Errorf("pairdisk: extra diagnostic variables %v given without a function to compute them", extraNames)
	}

	r := &Reporter{
		exprs: make(map[string]*govaluate.EvaluableExpression),
		extra: extra,
	}
	for name, e := range outputVariables {
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(e, allFuncs)
		if err != nil {
			return nil, fmt.Errorf("pairdisk: parsing diagnostic '%s': %w", name, err)
		}
		for _, v := range expr.Vars() {
			if !known[v] {
				return nil, fmt.Errorf("pairdisk: diagnostic '%s': undefined variable name '%s'", name, v)
			}
		}
		r.exprs[name] = expr
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Names returns the output names in sorted order.
func (r *Reporter) Names() []string { return r.names }

func (r *Reporter) cellVars(c *Cell) (map[string]interface{}, error) {
	r0, th := c.Coord()
	np := c.ProtonDensity()
	npos := c.PositronDensity()
	z := 0.
	if np > 0 {
		z = npos / np
	}
	vars := map[string]interface{}{
		"rho":    c.Prim(RHO),
		"uu":     c.Prim(UU),
		"rpl":    c.Prim(RPL),
		"np":     np,
		"npos":   npos,
		"z":      z,
		"thetap": c.ProtonTheta(),
		"r":      r0,
		"theta":  th,
	}
	if r.extra != nil {
		if err := r.extra(c, vars); err != nil {
			return nil, err
		}
	}
	return vars, nil
}

// Report evaluates every expression over the interior cells of the
// Final state of d, which it first copies into the Start state. The
// returned fields have shape [N3, N2, N1].
func (r *Reporter) Report(d *Disk) (map[string]*sparse.DenseArray, error) {
	d.Start.CopyFrom(d.Final)
	out := make(map[string]*sparse.DenseArray, len(r.names))
	for _, name := range r.names {
		out[name] = sparse.ZerosDense(d.N3, d.N2, d.N1)
	}
	for _, c := range d.Cells() {
		vars, err := r.cellVars(c)
		if err != nil {
			return nil, fmt.Errorf("pairdisk: diagnostics at cell %v: %w", c, err)
		}
		for _, name := range r.names {
			v, err := r.exprs[name].Evaluate(vars)
			if err != nil {
				return nil, fmt.Errorf("pairdisk: diagnostic '%s' at cell %v: %w", name, c, err)
			}
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("pairdisk: diagnostic '%s' has type %T, want float64", name, v)
			}
			out[name].Set(f, c.K-d.NG, c.J-d.NG, c.I-d.NG)
		}
	}
	return out, nil
}

// WriteFields writes fields, each of shape [n3, n2, n1], to a netCDF
// file at path as single-precision variables.
func WriteFields(path string, fields map[string]*sparse.DenseArray) error {
	if len(fields) == 0 {
		return fmt.Errorf("pairdisk: writing diagnostics: no fields to write")
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	shape := fields[names[0]].Shape
	if len(shape) != 3 {
		return fmt.Errorf("pairdisk: writing diagnostics: field '%s' has %d dimensions, want 3", names[0], len(shape))
	}
	dims := []string{"n3", "n2", "n1"}
	h := cdf.NewHeader(dims, shape)
	h.AddAttribute("", "comment", "pairdisk diagnostic output")
	h.AddAttribute("", "version", Version)
	for _, name := range names {
		if len(fields[name].Elements) != len(fields[names[0]].Elements) {
			return fmt.Errorf("pairdisk: writing diagnostics: field '%s' has a different shape", name)
		}
		h.AddVariable(name, dims, []float32{0})
	}
	h.Define()

	ff, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pairdisk: writing diagnostics: %w", err)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return fmt.Errorf("pairdisk: writing diagnostics: %w", err)
	}
	for _, name := range names {
		data32 := make([]float32, len(fields[name].Elements))
		for i, e := range fields[name].Elements {
			data32[i] = float32(e)
		}
		end := f.Header.Lengths(name)
		w := f.Writer(name, make([]int, len(end)), end)
		if _, err = w.Write(data32); err != nil {
			ff.Close()
			return fmt.Errorf("pairdisk: writing diagnostic '%s': %w", name, err)
		}
	}
	if err = cdf.UpdateNumRecs(ff); err != nil {
		ff.Close()
		return fmt.Errorf("pairdisk: writing diagnostics: %w", err)
	}
	return ff.Close()
}
