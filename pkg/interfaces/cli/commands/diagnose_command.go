package commands

import (
	"github.com/spf13/cobra"

	"github.com/vsinha/blend/pkg/infrastructure/repositories/yamlfile"
	"github.com/vsinha/blend/pkg/interfaces/cli/output"
)

func newDiagnoseCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose PROBLEM.yaml",
		Short: "Rank likely causes of infeasibility without solving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instance, err := yamlfile.NewLoader().Load(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			report, err := a.service.Diagnose(instance)
			if err != nil {
				return err
			}

			w, closeOutput, err := opts.writer(cmd)
			if err != nil {
				return err
			}
			defer closeOutput()
			if err := output.WriteDiagnostics(w, report, opts.Format); err != nil {
				return err
			}
			return a.close(opts)
		},
	}
}
