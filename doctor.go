package termux_installer

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

// Check statuses.
const (
	CheckPass = "pass"
	CheckWarn = "warn"
	CheckFail = "fail"
)

// minFreeSpace is roughly what python, git and the application's wheels need.
const minFreeSpace = 300 * MB

const (
	KB int64 = 1 << (10 * (iota + 1))
	MB
	GB
	TB
)

// CheckResult is the outcome of one environment check.
type CheckResult struct {
	Name    string
	Status  string
	Message string
}

// Doctor inspects the environment the installer would work in. It changes nothing.
type Doctor struct {
	Config     *Config
	Translator *Translator
	// LookPath finds programs; exec.LookPath if nil.
	LookPath func(string) (string, error)
	// DiskSpace reports free bytes for a path; osDiskSpace if nil.
	DiskSpace func(string) int64
}

// Run performs all checks in a fixed order.
func (d *Doctor) Run() []CheckResult {
	lookPath := d.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	diskSpace := d.DiskSpace
	if diskSpace == nil {
		diskSpace = osDiskSpace
	}
	t := d.Translator
	var results []CheckResult

	for _, program := range []string{d.Config.PackageManager, "git", pythonBinary} {
		if path, err := lookPath(program); err == nil {
			results = append(results, CheckResult{program, CheckPass, t.Get("doctor_found") + " " + path})
		} else {
			results = append(results, CheckResult{program, CheckWarn, t.Get("doctor_missing")})
		}
	}

	parent := existingParent(d.Config.InstallDir)
	free := diskSpace(parent)
	switch {
	case free < 0:
		results = append(results, CheckResult{"disk", CheckWarn, parent})
	case free < minFreeSpace:
		results = append(results, CheckResult{"disk", CheckFail, FormatSize(free) + " " + t.Get("doctor_free")})
	default:
		results = append(results, CheckResult{"disk", CheckPass, FormatSize(free) + " " + t.Get("doctor_free")})
	}

	results = append(results,
		presence("checkout", filepath.Join(d.Config.InstallDir, ".git"), t),
		presence("venv", d.Config.VenvPython(), t),
	)

	envPath := d.Config.EnvFilePath()
	values, err := ReadEnvFile(envPath)
	switch {
	case err != nil:
		results = append(results, CheckResult{"env", CheckWarn, t.Get("doctor_absent")})
	case values["API_ID"] == "" || values["API_HASH"] == "":
		results = append(results, CheckResult{"env", CheckWarn, t.Get("doctor_credentials_missing")})
	default:
		results = append(results, CheckResult{"env", CheckPass, envPath})
	}
	return results
}

// Healthy reports whether none of the results failed.
func Healthy(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == CheckFail {
			return false
		}
	}
	return true
}

func presence(name, path string, t *Translator) CheckResult {
	if isDir(path) || isFile(path) {
		return CheckResult{name, CheckPass, t.Get("doctor_present")}
	}
	return CheckResult{name, CheckWarn, t.Get("doctor_absent")}
}

// existingParent walks up from path to the first directory that exists.
func existingParent(path string) string {
	for {
		if isDir(path) {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

// FormatSize returns a human-readable size, appending a size suffix as needed.
func FormatSize(size int64) string {
	switch {
	case size < KB:
		return fmt.Sprintf("%dB", size)
	case size < MB:
		return fmt.Sprintf("%.2fKB", float64(size)/float64(KB))
	case size < GB:
		return fmt.Sprintf("%.2fMB", float64(size)/float64(MB))
	case size < TB:
		return fmt.Sprintf("%.2fGB", float64(size)/float64(GB))
	default:
		return fmt.Sprintf("%.2fTB", float64(size)/float64(TB))
	}
}
