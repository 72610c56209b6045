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

	"github.com/spatialmodel/pairdisk/internal/rootfind"
)

// Stage identifies the solver step at which a cell update failed.
type Stage int

// Solver stages.
const (
	StageSelfAbsorption Stage = iota
	StageTransition
	StageBracket
	StageBisection
)

func (s Stage) String() string {
	switch s {
	case StageSelfAbsorption:
		return "self-absorption"
	case StageTransition:
		return "transition"
	case StageBracket:
		return "bracket"
	case StageBisection:
		return "bisection"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// CellError reports a failed cell update. Indices are padded grid
// indices, or -1 when the error did not come from a grid cell.
type CellError struct {
	I, J, K int
	Stage   Stage
	Err     error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("pairs: cell (%d,%d,%d): %s: %v", e.I, e.J, e.K, e.Stage, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// Fatal reports whether the failure should end the grid pass. Only an
// implicit bisection that runs out of iterations is not fatal; the cell
// is then left unchanged.
func (e *CellError) Fatal() bool {
	return !(e.Stage == StageBisection && errors.Is(e.Err, rootfind.ErrExceededIterations))
}
