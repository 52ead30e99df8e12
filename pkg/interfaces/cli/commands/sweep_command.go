package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsinha/blend/pkg/application/services"
	"github.com/vsinha/blend/pkg/domain/entities"
	"github.com/vsinha/blend/pkg/infrastructure/repositories/yamlfile"
	"github.com/vsinha/blend/pkg/interfaces/cli/output"
)

type sweepOptions struct {
	param  string
	values []string
}

func newSweepCommand(opts *Options) *cobra.Command {
	sweep := &sweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep PROBLEM.yaml --param NAME --values V1,V2,...",
		Short: "Solve a problem once per value of one parameter",
		Long: `sweep re-solves a problem for each value of one parameter, in parallel.
Parameters: batch-max, batch-min, max-distinct, inventory:<ingredient id>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instance, err := yamlfile.NewLoader().Load(args[0])
			if err != nil {
				return err
			}
			items, err := sweepItems(instance, sweep.param, sweep.values)
			if err != nil {
				return err
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			points, err := a.service.Sweep(cmd.Context(), items, a.config.Sweep.Workers)
			if err != nil {
				return err
			}

			w, closeOutput, err := opts.writer(cmd)
			if err != nil {
				return err
			}
			defer closeOutput()
			if err := output.WriteSweep(w, points, opts.Format); err != nil {
				return err
			}
			return a.close(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&sweep.param, "param", "", "Parameter to sweep")
	flags.StringSliceVar(&sweep.values, "values", nil, "Comma-separated parameter values")
	flags.Int("workers", 4, "Maximum parallel solves")
	_ = cmd.MarkFlagRequired("param")
	_ = cmd.MarkFlagRequired("values")
	return cmd
}

// sweepItems expands a parameter name and its raw values into sweep items
func sweepItems(base *entities.ProblemInstance, param string, raw []string) ([]services.SweepItem, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no sweep values given")
	}

	if param == "max-distinct" {
		values := make([]int, len(raw))
		for i, s := range raw {
			v, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("invalid max-distinct value %q: %w", s, err)
			}
			values[i] = v
		}
		return services.MaxDistinctSweep(base, values)
	}

	values := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", param, s, err)
		}
		values[i] = v
	}

	switch {
	case param == "batch-max":
		return services.BatchMaxSweep(base, values)
	case param == "batch-min":
		return services.BatchMinSweep(base, values)
	case strings.HasPrefix(param, "inventory:"):
		id := entities.IngredientID(strings.TrimPrefix(param, "inventory:"))
		if _, ok := base.Ingredient(id); !ok {
			return nil, fmt.Errorf("unknown ingredient %q", id)
		}
		return services.InventorySweep(base, id, values)
	default:
		return nil, fmt.Errorf("unknown sweep parameter %q", param)
	}
}
