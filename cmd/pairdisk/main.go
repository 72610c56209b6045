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

// Command pairdisk is a command-line interface for the pairdisk
// electron–positron pair balance model.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/pairdisk/pairutil"
)

func main() {
	if err := pairutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
