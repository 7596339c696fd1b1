package civi

import "sort"

// Params is a flat, order-irrelevant mapping of field name to value supplied
// by the caller. Values may be scalars, sequences, or nested mappings. For
// APIv4 the reserved keys "select", "where", "values", "join", "limit", and
// "sequential" express the structured calling convention directly; when none
// of them is present NormalizeParams infers the structured form from the
// target action.
type Params map[string]any

// structuredKeys are the reserved APIv4 keys whose presence means the
// caller has taken full structured control of the request.
var structuredKeys = []string{"select", "where", "values", "join", "limit", "sequential"}

// NormalizeParams transforms a flat field/value mapping into the wire
// parameter form appropriate for the given action and API version.
//
// APIv3 parameters are already flat on the wire and pass through unchanged,
// as do empty parameter sets and parameter sets that already use the
// structured APIv4 keys. Only the canonical APIv4 CRUD actions trigger
// inference:
//
//   - get/delete: fields become a where clause of [field, "=", value] triples
//   - create: fields become a values mapping
//   - update: an id field becomes the where clause, the rest become values
//
// When fields are present but no rule matches (e.g. update without an id),
// the parameters pass through unchanged and the caller is responsible for
// full structured correctness. The input map is never mutated.
func NormalizeParams(action string, version *Version, params Params) Params {
	if len(params) == 0 {
		return params
	}

	if version == nil || version.Name() != V4.Name() {
		return params
	}

	if hasStructuredKeys(params) {
		return params
	}

	switch action {
	case "get", "delete":
		return Params{"where": whereClauses(params)}

	case "create":
		return Params{"values": copyParams(params)}

	case "update":
		id, ok := params["id"]
		if !ok {
			return params
		}

		values := copyParams(params)
		delete(values, "id")

		return Params{
			"where":  [][]any{{"id", "=", id}},
			"values": values,
		}

	default:
		return params
	}
}

// hasStructuredKeys reports whether the caller already supplied any of the
// APIv4 structured keys.
func hasStructuredKeys(params Params) bool {
	for _, key := range structuredKeys {
		if _, ok := params[key]; ok {
			return true
		}
	}

	return false
}

// whereClauses wraps every field into a [field, "=", value] triple. Fields
// are sorted so the produced clause list is deterministic.
func whereClauses(params Params) [][]any {
	fields := make([]string, 0, len(params))
	for field := range params {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	clauses := make([][]any, 0, len(fields))
	for _, field := range fields {
		clauses = append(clauses, []any{field, "=", params[field]})
	}

	return clauses
}

// copyParams returns a shallow copy so normalization never mutates caller
// state.
func copyParams(params Params) Params {
	out := make(Params, len(params))
	for key, value := range params {
		out[key] = value
	}

	return out
}
