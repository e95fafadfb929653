package cli

import (
	"github.com/spf13/cobra"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run a one-shot risk assessment over stored readings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Assess(cmd.Context())
	},
}
