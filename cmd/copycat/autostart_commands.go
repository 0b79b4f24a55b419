package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"copycat/internal/autostart"
)

func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "install",
		Short:       "Start copycat automatically at login",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := autostart.Executable()
			if err != nil {
				return err
			}
			if err := autostart.Install(exe); err != nil {
				return fmt.Errorf("install autostart entry: %w", err)
			}
			status, err := autostart.Installed()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Autostart entry written to %s\n", status.Location)
			fmt.Fprintf(out, "Command: %s\n", status.Command)
			return nil
		},
	}
}

func newUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "uninstall",
		Short:       "Remove the login autostart entry",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := autostart.Installed()
			if err != nil {
				return err
			}
			if !status.Installed {
				fmt.Fprintln(cmd.OutOrStdout(), "Autostart entry not installed")
				return nil
			}
			if err := autostart.Uninstall(); err != nil {
				return fmt.Errorf("remove autostart entry: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed autostart entry %s\n", status.Location)
			return nil
		},
	}
}
