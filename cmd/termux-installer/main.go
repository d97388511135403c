package main

import (
	"os"

	installer "github.com/grandchild/termux_installer"
)

func main() {
	os.Exit(installer.Run())
}
