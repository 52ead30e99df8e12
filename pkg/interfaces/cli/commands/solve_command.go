package commands

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/vsinha/blend/pkg/application/dto"
	"github.com/vsinha/blend/pkg/application/services/interpret"
	"github.com/vsinha/blend/pkg/infrastructure/repositories/yamlfile"
	"github.com/vsinha/blend/pkg/interfaces/cli/output"
)

func newSolveCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "solve PROBLEM.yaml",
		Short: "Find the minimum-cost blend for a problem file",
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
			w, closeOutput, err := opts.writer(cmd)
			if err != nil {
				return err
			}
			defer closeOutput()

			result, runErr := a.service.Run(cmd.Context(), instance)
			if writeErr := writeRunOutcome(w, result, runErr, opts.Format); writeErr != nil {
				return writeErr
			}
			if err := a.close(opts); err != nil {
				return err
			}
			return runErr
		},
	}
}

// writeRunOutcome renders the result, the diagnostics of a failed run, or
// the incumbent of a timed-out run
func writeRunOutcome(w io.Writer, result *dto.BlendResult, runErr error, format string) error {
	if runErr == nil {
		return output.WriteResult(w, result, format)
	}

	var infeasible *interpret.InfeasibleError
	var unbounded *interpret.UnboundedError
	var timeout *interpret.SolveTimeoutError
	switch {
	case errors.As(runErr, &infeasible) && infeasible.Diagnostics != nil:
		return output.WriteDiagnostics(w, infeasible.Diagnostics, format)
	case errors.As(runErr, &unbounded) && unbounded.Diagnostics != nil:
		return output.WriteDiagnostics(w, unbounded.Diagnostics, format)
	case errors.As(runErr, &timeout) && timeout.Incumbent != nil:
		return output.WriteResult(w, timeout.Incumbent, format)
	}
	return nil
}
