package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reservations",
	Short: "Restaurant reservations service",
	Long:  "Reservation intake, deposit payment intents, and provider webhook reconciliation for the Internity restaurant site.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
