package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/civigo-io/civigo/pkg/civi"
	"github.com/civigo-io/civigo/pkg/civiclient"
)

// Output formats.
const (
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
	OutputFormatTable = "table"
)

// Common static errors used throughout the commands package.
var (
	ErrEntityRequired       = errors.New("entity is required")
	ErrActionRequired       = errors.New("action is required")
	ErrInvalidParamFormat   = errors.New("parameters must be given as field=value")
	ErrFilterNotBoolean     = errors.New("filter expression must evaluate to a boolean")
	ErrConfigKeyRequired    = errors.New("config key is required")
	ErrUnknownAPIVersionArg = errors.New("api-version must be 3 or 4")
)

// clientFromViper assembles a client from the merged flag/env/file
// configuration.
func clientFromViper() (*civi.API, error) {
	config := &civi.Config{
		BaseURL:        viper.GetString("url"),
		APIKey:         viper.GetString("api_key"),
		SiteKey:        viper.GetString("site_key"),
		Version:        viper.GetString("api_version"),
		Transport:      civi.TransportKind(viper.GetString("transport")),
		CV:             viper.GetString("cv"),
		CWD:            viper.GetString("cwd"),
		ContextCommand: viper.GetString("context_command"),
		SkipTLSVerify:  viper.GetBool("skip_ssl_validation"),
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = newZerologAdapter()
	}

	return civiclient.New(config)
}

// versionFromViper resolves the descriptor for the configured API version.
func versionFromViper() (*civi.Version, error) {
	switch strings.TrimPrefix(viper.GetString("api_version"), "v") {
	case "", "4":
		return civi.V4, nil
	case "3":
		return civi.V3, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAPIVersionArg, viper.GetString("api_version"))
	}
}

// paramsFromArgs parses field=value arguments into call parameters. Values
// that parse as JSON keep their JSON type (numbers, booleans, arrays,
// objects); everything else stays a string.
func paramsFromArgs(args []string) (civi.Params, error) {
	if len(args) == 0 {
		return nil, nil
	}

	params := make(civi.Params, len(args))

	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidParamFormat, arg)
		}

		params[field] = parseValue(value)
	}

	return params, nil
}

// parseValue keeps JSON-typed values typed and falls back to the raw
// string.
func parseValue(value string) any {
	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err == nil {
		return decoded
	}

	return value
}

// recordColumns collects the union of field names across all records,
// sorted, with "id" first when present. Used for table output.
func recordColumns(result civi.Result) []string {
	seen := make(map[string]struct{})

	var columns []string

	for _, record := range result {
		for field := range record {
			if _, ok := seen[field]; ok {
				continue
			}

			seen[field] = struct{}{}
			columns = append(columns, field)
		}
	}

	sort.Strings(columns)

	for i, column := range columns {
		if column == "id" && i > 0 {
			copy(columns[1:i+1], columns[:i])
			columns[0] = "id"

			break
		}
	}

	return columns
}

// cellValue renders a record field for table output.
func cellValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64, bool:
		return fmt.Sprintf("%v", v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	}
}
