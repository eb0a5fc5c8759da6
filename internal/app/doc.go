// Package app wires configuration, logging, telemetry, services and the HTTP
// router into a runnable application and manages its lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, YAML file, BIO_* environment)
//  2. Initialize the JSON logger and OpenTelemetry providers
//  3. Create the dashboard and health services
//  4. Build the chi router and middleware chain
//  5. Load the dataset and start serving
//  6. Shut down gracefully on SIGINT or SIGTERM
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// A failed initial load does not stop the server. Readiness stays
// not_ready and data endpoints answer 503 until POST /api/dashboard/reload
// succeeds.
package app
