package cmd

import (
	"fmt"
	"os"

	"pcadmin/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// envDir is the directory the .env file is read from.
var envDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "pcadmin",
	Short: "Private cloud admin toolkit",
	Long: `pcadmin keeps a private cloud's shared state in line with its sources.

It imports OVA and ISO images from an object storage bucket into a vCenter
content library, and maintains the forward and reverse DNS records of the
virtual machine inventory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding with the development config gives readable
		// timestamps for CLI users.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&envDir, "env-dir", ".", "Directory containing the .env file")
}
