// The main package for the dinodash executable.
package main

import (
	"github.com/JakeFAU/dinodash/cmd"
)

func main() {
	cmd.Execute()
}
