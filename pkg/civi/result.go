package civi

import (
	"sort"
	"strconv"
)

// Record is a single result row as returned by the remote API.
type Record map[string]any

// Result is the library's uniform return shape: an ordered sequence of
// records, regardless of which envelope the source transport and API
// version produced.
type Result []Record

// NormalizeResult reduces the four native reply envelopes (two versions,
// two transports) to a single shape. A bare sequence is returned as-is; a
// mapping carrying a "values" key is unwrapped to that key's payload. Any
// other shape is an invalid response.
//
// When the values payload is itself a mapping keyed by id (APIv3 with
// sequential=0), the records are emitted in ascending key order and each
// record keeps its fields untouched.
func NormalizeResult(decoded any) (Result, error) {
	switch value := decoded.(type) {
	case []any:
		return recordsFromSequence(value)

	case map[string]any:
		values, ok := value["values"]
		if !ok {
			return nil, &InvalidResponseError{
				Raw: decoded,
				Err: ErrMissingValues,
			}
		}

		return recordsFromValues(values)

	default:
		return nil, &InvalidResponseError{
			Raw: decoded,
			Err: ErrUnexpectedShape,
		}
	}
}

// recordsFromValues normalizes the payload of a "values" envelope key.
func recordsFromValues(values any) (Result, error) {
	switch value := values.(type) {
	case []any:
		return recordsFromSequence(value)

	case map[string]any:
		// Id-keyed mapping. Preserve each record as-is.
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}

		sortNumericAware(keys)

		result := make(Result, 0, len(keys))

		for _, key := range keys {
			record, ok := value[key].(map[string]any)
			if !ok {
				return nil, &InvalidResponseError{
					Raw: values,
					Err: ErrUnexpectedShape,
				}
			}

			result = append(result, Record(record))
		}

		return result, nil

	default:
		return nil, &InvalidResponseError{
			Raw: values,
			Err: ErrUnexpectedShape,
		}
	}
}

// recordsFromSequence converts a decoded JSON array into a Result. Elements
// that are not objects make the reply invalid.
func recordsFromSequence(sequence []any) (Result, error) {
	result := make(Result, 0, len(sequence))

	for _, element := range sequence {
		record, ok := element.(map[string]any)
		if !ok {
			return nil, &InvalidResponseError{
				Raw: sequence,
				Err: ErrUnexpectedShape,
			}
		}

		result = append(result, Record(record))
	}

	return result, nil
}

// sortNumericAware sorts id-like string keys numerically where possible so
// "10" sorts after "9", falling back to lexical order for non-numeric keys.
func sortNumericAware(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		left, leftErr := strconv.Atoi(keys[i])
		right, rightErr := strconv.Atoi(keys[j])

		if leftErr == nil && rightErr == nil {
			return left < right
		}

		return keys[i] < keys[j]
	})
}
