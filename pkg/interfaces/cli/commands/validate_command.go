package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/blend/pkg/domain/services"
	"github.com/vsinha/blend/pkg/infrastructure/repositories/yamlfile"
)

func newValidateCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate PROBLEM.yaml",
		Short: "Check a problem file and list advisory warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instance, err := yamlfile.NewLoader().Load(args[0])
			if err != nil {
				return err
			}

			report := services.NewInstanceValidator().Validate(instance)
			out := cmd.OutOrStdout()
			for _, msg := range report.Errors {
				fmt.Fprintf(out, "error: %s\n", msg)
			}
			for _, msg := range report.Warnings {
				fmt.Fprintf(out, "warning: %s\n", msg)
			}
			if !report.Valid() {
				return fmt.Errorf("%s: %d validation errors", args[0], len(report.Errors))
			}
			fmt.Fprintf(out, "%s: %d ingredients, %d windows, %d warnings\n",
				args[0], len(instance.Ingredients), len(instance.Windows), len(report.Warnings))
			return nil
		},
	}
}
