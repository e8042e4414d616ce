// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/mezuri/mezuri/cmd/mezuri"

func main() {
	cmd.Execute()
}
