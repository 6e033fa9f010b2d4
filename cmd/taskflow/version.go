package main

import (
	"github.com/spf13/cobra"

	"github.com/loqalabs/taskflow/internal/server"
	"github.com/loqalabs/taskflow/internal/updater"
)

func newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the taskflow version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("taskflow v%s\n", server.Version)
			if !check {
				return
			}
			result := updater.CheckVersion(background(cmd), server.Version)
			switch {
			case result.UpdateAvailable:
				cmd.Printf("Update available: v%s -> v%s\n  Release: %s\n",
					result.CurrentVersion, result.LatestVersion, result.ReleaseURL)
			case result.LatestVersion != "":
				cmd.Println("Already at the latest version.")
			default:
				cmd.Println("Could not check for updates.")
			}
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
