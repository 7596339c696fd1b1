package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/expr-lang/expr"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/civigo-io/civigo/pkg/civi"
)

// renderResult writes a normalized result in the configured output format.
func renderResult(out io.Writer, result civi.Result) error {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(result)

	case OutputFormatYAML:
		encoder := yaml.NewEncoder(out)

		return encoder.Encode(result)

	default:
		return renderTable(out, result)
	}
}

// renderTable writes the result as a table with one row per record and the
// union of record fields as columns.
func renderTable(out io.Writer, result civi.Result) error {
	if len(result) == 0 {
		_, err := fmt.Fprintln(out, "No records found")

		return err
	}

	columns := recordColumns(result)

	table := tablewriter.NewWriter(out)
	table.Header(toAnySlice(columns)...)

	for _, record := range result {
		row := make([]any, 0, len(columns))
		for _, column := range columns {
			row = append(row, cellValue(record[column]))
		}

		_ = table.Append(row...)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// toAnySlice widens a string slice for the tablewriter variadics.
func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}

	return out
}

// filterResult keeps the records for which the expression evaluates to
// true. Each record's fields are the expression environment, e.g.
// `contact_type == "Individual"`.
func filterResult(result civi.Result, expression string) (civi.Result, error) {
	if expression == "" {
		return result, nil
	}

	program, err := expr.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	filtered := make(civi.Result, 0, len(result))

	for _, record := range result {
		value, err := expr.Run(program, map[string]any(record))
		if err != nil {
			return nil, fmt.Errorf("evaluating filter: %w", err)
		}

		keep, ok := value.(bool)
		if !ok {
			return nil, ErrFilterNotBoolean
		}

		if keep {
			filtered = append(filtered, record)
		}
	}

	return filtered, nil
}

// stdout is indirected for tests.
var stdout io.Writer = os.Stdout
