package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags "-X main.Version=... -X main.GitCommit=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// VersionInfo is the build and environment summary the version command emits.
type VersionInfo struct {
	Version        string `json:"version"`
	GitCommit      string `json:"git_commit"`
	BuildDate      string `json:"build_date"`
	GoVersion      string `json:"go_version"`
	Platform       string `json:"platform"`
	DefaultNetwork string `json:"default_network"`
	HomeDir        string `json:"home_dir"`
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and environment information",
		Long: `Show the sendora build version together with the environment this
invocation would use: the active network and the home directory holding
config.toml, the message log, and the transaction count cache.`,
		RunE: runVersion,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := VersionInfo{
		Version:        Version,
		GitCommit:      GitCommit,
		BuildDate:      BuildDate,
		GoVersion:      runtime.Version(),
		Platform:       fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		DefaultNetwork: networkName,
		HomeDir:        homeDir,
	}

	if jsonMode {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("sendora %s\n", info.Version)
	fmt.Printf("  Git commit: %s\n", info.GitCommit)
	fmt.Printf("  Build date: %s\n", info.BuildDate)
	fmt.Printf("  Go version: %s\n", info.GoVersion)
	fmt.Printf("  Platform:   %s\n", info.Platform)
	fmt.Printf("  Network:    %s\n", info.DefaultNetwork)
	fmt.Printf("  Home:       %s\n", info.HomeDir)
	return nil
}
