/*
Copyright © 2023 the EVCharge authors.
This file is part of EVCharge.

EVCharge is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EVCharge is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EVCharge.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command evcharge is a command-line interface for the EVCharge tools.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/evcharge/evutil"
)

func main() {
	if err := evutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
