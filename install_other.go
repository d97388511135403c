//go:build !unix

package termux_installer

import "os"

func osFileWriteAccess(path string) bool {
	f, err := os.CreateTemp(path, ".write-test")
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(f.Name())
	return true
}

func osDiskSpace(path string) int64 { return -1 }
