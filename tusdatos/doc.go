// Package tusdatos provides a client for the TusDatos.co background-check API.
//
// TusDatos aggregates many independent public and private data sources
// (judicial records, sanctions lists, vehicle registries, chambers of
// commerce) into a single background-check result for a person, a vehicle
// or a company.
//
// # Architecture
//
// The package is organized into a few components, leaves first:
//
//   - Environment: resolves "production" or "testing" to a fixed base URL
//   - Error: the single error type every call returns, tagged with a Kind
//   - dispatcher: the only place a request leaves the process; it owns
//     Basic Auth, default headers, the per-call timeout and error translation
//   - Client: one method per remote operation, each shaping a payload and
//     delegating to the dispatcher
//   - AsyncClient: the same method table, returning a Future per call
//
// # Usage
//
// Create a client for the testing environment:
//
//	logger := zerolog.New(os.Stdout)
//	client, err := tusdatos.NewClient(
//		tusdatos.Testing,
//		tusdatos.WithCredentials("user", "secret"),
//		tusdatos.WithLogger(logger),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Launch a background check and poll for its result
//	ctx := context.Background()
//	job, err := client.StartQuery(ctx, tusdatos.StartQueryRequest{
//		Document: "111",
//		DocType:  tusdatos.DocTypeCC,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := client.Results(ctx, job.JobID)
//
// The asynchronous variant returns futures instead of blocking:
//
//	async := client.Async()
//	f := async.Results(ctx, job.JobID)
//	// ... do other work ...
//	result, err := f.Await(ctx)
//
// # Error Handling
//
// Every failure is an *Error. Use errors.Is with the package sentinels to
// classify it:
//
//   - ErrConfiguration: invalid environment or missing production credentials
//   - ErrConnection: the exchange could not complete (DNS, refusal, timeout, TLS, cancellation)
//   - ErrHTTPStatus: the API answered outside the 2xx range; see Error.StatusCode
//   - ErrMissingField: a required request field was empty; nothing was sent
//   - ErrWebhookNotAllowed: a webhook was set on a testing client
//   - ErrInvalidResponse: a 2xx body could not be decoded
//
//	if errors.Is(err, tusdatos.ErrHTTPStatus) {
//		e, _ := tusdatos.AsError(err)
//		log.Printf("status %d", e.StatusCode)
//	}
//
// The client never retries. The Retry method is a distinct remote operation
// that re-runs the failed sources of a finished job.
package tusdatos
