package main

import (
	"os"
	"runtime/debug"

	"github.com/llehouerou/ripple/cmd"
)

func main() {
	if err := cmd.Root(appVersion()).Execute(); err != nil {
		os.Exit(1)
	}
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "dev"
	}
	return bi.Main.Version
}
