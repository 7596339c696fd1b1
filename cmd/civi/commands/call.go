package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civigo-io/civigo/pkg/civi"
)

// NewCallCommand creates the generic call command.
func NewCallCommand() *cobra.Command {
	var (
		jsonParams string
		filter     string
	)

	cmd := &cobra.Command{
		Use:   "call <entity> <action> [field=value ...]",
		Short: "Perform an API call",
		Long: `Perform an API call against any entity/action pair.

Parameters can be given as field=value arguments (values are parsed as JSON
where possible, so id=3 stays a number), or as a full JSON mapping via
--json for structured APIv4 parameters.`,
		Example: `  civi call Contact get contact_type=Individual
  civi call Contact create contact_type=Organization organization_name="Super Org"
  civi call Contact get --json '{"select":["id"],"where":[["contact_type","=","Individual"]],"limit":5}'
  civi call Contact get --filter 'contact_type == "Individual"'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, action := args[0], args[1]

			params, err := callParams(jsonParams, args[2:])
			if err != nil {
				return err
			}

			client, err := clientFromViper()
			if err != nil {
				return err
			}

			result, err := client.Invoke(context.Background(), entity, action, params)
			if err != nil {
				return err
			}

			result, err = filterResult(result, filter)
			if err != nil {
				return err
			}

			return renderResult(stdout, result)
		},
	}

	cmd.Flags().StringVar(&jsonParams, "json", "", "parameters as a JSON mapping (overrides field=value args)")
	cmd.Flags().StringVar(&filter, "filter", "", "keep only records matching this expression")

	return cmd
}

// callParams builds the call parameters from --json or field=value args.
func callParams(jsonParams string, args []string) (civi.Params, error) {
	if jsonParams != "" {
		var params civi.Params
		if err := json.Unmarshal([]byte(jsonParams), &params); err != nil {
			return nil, fmt.Errorf("invalid --json parameters: %w", err)
		}

		return params, nil
	}

	return paramsFromArgs(args)
}
