// Package cli defines the cobra command tree for the sprout CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev" // set via ldflags at build time

var rootCmd = &cobra.Command{
	Use:   "sprout",
	Short: "HobbySprout command-line client",
	Long: `Sprout talks to a HobbySprout concept API: manage your account,
declare hobbies, track milestone goals step by step, and take the
matchmaking quiz.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(hobbyCmd)
	rootCmd.AddCommand(quizCmd)
}
