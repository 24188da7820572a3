package types

import (
	"runtime"
)

var carch = map[string]string{
	"amd64":   "x86_64",
	"386":     "i686",
	"arm64":   "aarch64",
	"arm":     "armv7h",
	"riscv64": "riscv64",
}

// HostArch returns the machine name makepkg uses for the running
// host, falling back to the Go name for unmapped platforms.
func HostArch() string {
	if a, ok := carch[runtime.GOARCH]; ok {
		return a
	}
	return runtime.GOARCH
}
