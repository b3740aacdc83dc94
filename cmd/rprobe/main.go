// Command rprobe locates a local R installation and prints the directives a
// build needs to link against libR.
package main

import "github.com/goplus/librsys/cmd/rprobe/internal"

func main() {
	internal.Execute()
}
