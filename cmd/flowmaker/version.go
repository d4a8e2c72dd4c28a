package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"mercator-hq/flowmaker/pkg/telemetry/health"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"
)

// versionOutput is the version command result.
type versionOutput struct {
	health.VersionInfo
	Platform string `json:"platform"`
}

func (v versionOutput) Text() string {
	return fmt.Sprintf("Flowmaker %s\nGit Commit: %s\nBuild Date: %s\nGo Version: %s\nOS/Arch: %s\n",
		v.Version, v.Commit, v.BuildTime, v.GoVersion, v.Platform)
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Long:        `Print detailed version information including Git commit and build date.`,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := formatter()
		if err != nil {
			return err
		}
		return f.FormatTo(cmd.OutOrStdout(), versionOutput{
			VersionInfo: health.NewVersionInfo(Version, GitCommit, BuildDate),
			Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
