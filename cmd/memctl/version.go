package main

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// VersionInfo is the version command's report.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Built     string `json:"built"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	CPU       string `json:"cpu"`
	CacheLine int    `json:"cache_line"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and platform information",
	Long: `The version command prints build information together with the CPU
details that influence allocator layout (pool pages are aligned to the
cache line size).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo()
		if jsonOut {
			return printJSON(info)
		}
		printInfo("memctl %s\n", info.Version)
		printInfo("  commit: %s\n", info.Commit)
		printInfo("  built: %s\n", info.Built)
		printVerbose("  go: %s (%s)\n", info.GoVersion, info.Platform)
		printVerbose("  cpu: %s, %d byte cache line\n", info.CPU, info.CacheLine)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func versionInfo() VersionInfo {
	brand := cpuid.CPU.BrandName
	if brand == "" {
		brand = "unknown"
	}
	return VersionInfo{
		Version:   version,
		Commit:    commit,
		Built:     date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		CPU:       brand,
		CacheLine: cpuid.CPU.CacheLine,
	}
}
