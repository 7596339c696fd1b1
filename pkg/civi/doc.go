// Package civi provides uniform programmatic access to CiviCRM's versioned
// API (v3 and v4), independent of the transport used to reach it.
//
// # Overview
//
// The civi package defines the version descriptors (V3, V4), the parameter
// and response normalizers, the error classifier, and the API/Entity/Action
// dispatch graph. Concrete transports (HTTP REST, the local cv command) and
// a ready-made constructor are provided by the civiclient package; most
// consumers should import civiclient to build an *API and go from there.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/civigo-io/civigo/pkg/civi"
//	  "github.com/civigo-io/civigo/pkg/civiclient"
//	)
//
//	func example() {
//	  api, err := civiclient.New(&civi.Config{
//	    BaseURL: "https://example.org",
//	    APIKey:  "your-api-key",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  result, err := api.Invoke(context.Background(), "Contact", "get", civi.Params{
//	    "contact_type": "Individual",
//	  })
//	  if err != nil { log.Fatal(err) }
//	  _ = result
//	}
//
// # Call styles
//
// The dispatch graph supports three equivalent call styles, all converging
// on the same path:
//
//	result, err := api.Invoke(ctx, "Contact", "get", params)
//	result, err := api.Entity("Contact").Invoke(ctx, "get", params)
//	result, err := api.Entity("Contact").Action("get").Invoke(ctx, params)
//
// # Parameters and results
//
// Params is a flat field/value mapping. For APIv4 the package infers the
// structured select/where/values form from the target action unless the
// caller already supplied structured keys; for APIv3 the flat form goes out
// on the wire unchanged. Results are always a Result, an ordered sequence of
// records, regardless of which envelope the remote API produced.
//
// # Errors
//
// Failures are typed: *TransportError (endpoint or command unreachable),
// *InvalidResponseError (reply not parseable as the expected envelope, raw
// payload attached), and *APIError (the remote API rejected the call).
// Helpers IsTransportError, IsInvalidResponse, and IsAPIError make it easy
// to branch on the failure kind. The package never retries and never
// swallows a failure.
package civi
