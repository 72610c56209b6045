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
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// LastCheckpoint is the name of the link that points at the most
// recently written checkpoint in a checkpoint directory.
const LastCheckpoint = "restart.last"

// CheckpointName returns the file name of the checkpoint for step nstep.
func CheckpointName(nstep int) string {
	return fmt.Sprintf("restart_%08d.nc", nstep)
}

// WriteCheckpoint writes the interior of the Final state of d, along
// with the time and unit information needed to restart, to a netCDF
// file in dir, and points dir/restart.last at it. tf is the stopping
// time recorded in the file. It returns the path of the file written.
func WriteCheckpoint(dir string, tf float64, d *Disk) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("pairdisk: writing checkpoint: %w", err)
	}
	name := CheckpointName(d.NStep)
	path := filepath.Join(dir, name)

	h := cdf.NewHeader([]string{"var", "n3", "n2", "n1"},
		[]int{NVar, d.N3, d.N2, d.N1})
	h.AddAttribute("", "version", Version)
	h.AddAttribute("", "n1", []int32{int32(d.N1)})
	h.AddAttribute("", "n2", []int32{int32(d.N2)})
	h.AddAttribute("", "n3", []int32{int32(d.N3)})
	h.AddAttribute("", "nstep", []int32{int32(d.NStep)})
	h.AddAttribute("", "t", []float64{d.Time})
	h.AddAttribute("", "tf", []float64{tf})
	h.AddAttribute("", "dt", []float64{d.Dt})
	h.AddAttribute("", "gam", []float64{d.Gamma})
	h.AddAttribute("", "mbh", []float64{d.Units.BlackHoleMass})
	h.AddAttribute("", "mass_unit", []float64{d.Units.MassUnit})
	if d.ConfigHash != "" {
		h.AddAttribute("", "config_hash", d.ConfigHash)
	}
	h.AddVariable("p", []string{"var", "n3", "n2", "n1"}, []float64{0})
	h.AddAttribute("p", "description", "interior primitive variables: "+fmt.Sprint(VarNames))
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return "", fmt.Errorf("pairdisk: writing checkpoint: invalid header: %v", errs)
	}

	ff, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("pairdisk: writing checkpoint: %w", err)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return "", fmt.Errorf("pairdisk: writing checkpoint: %w", err)
	}
	data := make([]float64, 0, NVar*d.NumCells())
	for v := 0; v < NVar; v++ {
		for k := d.NG; k < d.NG+d.N3; k++ {
			for j := d.NG; j < d.NG+d.N2; j++ {
				for i := d.NG; i < d.NG+d.N1; i++ {
					data = append(data, d.Final.Get(v, i, j, k))
				}
			}
		}
	}
	end := f.Header.Lengths("p")
	w := f.Writer("p", make([]int, len(end)), end)
	if _, err = w.Write(data); err != nil {
		ff.Close()
		return "", fmt.Errorf("pairdisk: writing checkpoint variable p: %w", err)
	}
	if err = cdf.UpdateNumRecs(ff); err != nil {
		ff.Close()
		return "", fmt.Errorf("pairdisk: writing checkpoint: %w", err)
	}
	if err = ff.Close(); err != nil {
		return "", fmt.Errorf("pairdisk: writing checkpoint: %w", err)
	}

	link := filepath.Join(dir, LastCheckpoint)
	if err = os.Remove(link); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("pairdisk: updating %s: %w", LastCheckpoint, err)
	}
	if err = os.Symlink(name, link); err != nil {
		return "", fmt.Errorf("pairdisk: updating %s: %w", LastCheckpoint, err)
	}
	return path, nil
}

// Checkpoint returns a function that writes a checkpoint to dir every
// `every` steps and when the simulation is done. every ≤ 0 writes only
// at the end.
func Checkpoint(dir string, every int, tf float64) DomainManipulator {
	return func(d *Disk) error {
		if d.Done || (every > 0 && d.NStep%every == 0) {
			_, err := WriteCheckpoint(dir, tf, d)
			return err
		}
		return nil
	}
}

func checkpointFloat(f *cdf.File, name string) (float64, error) {
	v, ok := f.Header.GetAttribute("", name).([]float64)
	if !ok || len(v) != 1 {
		return 0, fmt.Errorf("pairdisk: reading checkpoint: missing attribute %s", name)
	}
	return v[0], nil
}

func checkpointInt(f *cdf.File, name string) (int, error) {
	v, ok := f.Header.GetAttribute("", name).([]int32)
	if !ok || len(v) != 1 {
		return 0, fmt.Errorf("pairdisk: reading checkpoint: missing attribute %s", name)
	}
	return int(v[0]), nil
}

// ReadCheckpoint returns a function that restores the state saved at
// path into a disk that has already been allocated. The grid stored in
// the file must match the allocated grid. The unit system is taken from
// the file unless overwriteUnits is true, in which case the configured
// units are kept. Ghost cells are filled from the nearest interior cell.
func ReadCheckpoint(path string, overwriteUnits bool) DomainManipulator {
	return func(d *Disk) error {
		if d.Final == nil || d.Start == nil {
			return fmt.Errorf("pairdisk: reading checkpoint: disk must be allocated first")
		}
		ff, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("pairdisk: reading checkpoint: %w", err)
		}
		defer ff.Close()
		f, err := cdf.Open(ff)
		if err != nil {
			return fmt.Errorf("pairdisk: reading checkpoint %s: %w", path, err)
		}

		var n [3]int
		for i, name := range []string{"n1", "n2", "n3"} {
			if n[i], err = checkpointInt(f, name); err != nil {
				return err
			}
		}
		if n[0] != d.N1 || n[1] != d.N2 || n[2] != d.N3 {
			return fmt.Errorf("pairdisk: reading checkpoint: grid %dx%dx%d does not match configured grid %dx%dx%d",
				n[0], n[1], n[2], d.N1, d.N2, d.N3)
		}
		if d.NStep, err = checkpointInt(f, "nstep"); err != nil {
			return err
		}
		if d.Time, err = checkpointFloat(f, "t"); err != nil {
			return err
		}
		if d.Dt, err = checkpointFloat(f, "dt"); err != nil {
			return err
		}
		if d.Gamma, err = checkpointFloat(f, "gam"); err != nil {
			return err
		}
		if hash, ok := f.Header.GetAttribute("", "config_hash").(string); ok {
			d.RestartHash = hash
		}
		if !overwriteUnits {
			mbh, err := checkpointFloat(f, "mbh")
			if err != nil {
				return err
			}
			mu, err := checkpointFloat(f, "mass_unit")
			if err != nil {
				return err
			}
			d.Units = NewUnitSystem(mbh, mu)
		}

		r := f.Reader("p", nil, nil)
		buf := r.Zero(-1)
		if _, err = r.Read(buf); err != nil {
			return fmt.Errorf("pairdisk: reading checkpoint variable p: %w", err)
		}
		vals, ok := buf.([]float64)
		if !ok {
			return fmt.Errorf("pairdisk: reading checkpoint: variable p has type %T, want []float64", buf)
		}
		p := sparse.ZerosDense(NVar, d.N3, d.N2, d.N1)
		if len(vals) != len(p.Elements) {
			return fmt.Errorf("pairdisk: reading checkpoint: variable p has %d values, want %d", len(vals), len(p.Elements))
		}
		copy(p.Elements, vals)

		clamp := func(idx, n int) int {
			idx -= d.NG
			if idx < 0 {
				return 0
			}
			if idx >= n {
				return n - 1
			}
			return idx
		}
		n3, n2, n1 := d.Padded()
		for v := 0; v < NVar; v++ {
			for k := 0; k < n3; k++ {
				for j := 0; j < n2; j++ {
					for i := 0; i < n1; i++ {
						val := p.Get(v, clamp(k, d.N3), clamp(j, d.N2), clamp(i, d.N1))
						d.Final.Set(val, v, i, j, k)
					}
				}
			}
		}
		d.Start.CopyFrom(d.Final)
		return nil
	}
}
