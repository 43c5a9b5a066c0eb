// Command clinic manages a small clinic's patient records and serves them to
// the desktop UI.
package main

import "github.com/mesh-intelligence/clinic/internal/cli"

func main() {
	cli.Execute()
}
