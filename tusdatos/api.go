package tusdatos

import (
	"context"
)

// API defines the blocking TusDatos operations
type API interface {
	// StartQuery launches a background check for a person
	StartQuery(ctx context.Context, req StartQueryRequest, opts ...CallOption) (*LaunchResponse, error)

	// Results polls the status of a previous query
	Results(ctx context.Context, id string, opts ...CallOption) (*JobResult, error)

	// Retry re-runs the failed sources of a previous query
	Retry(ctx context.Context, req RetryRequest, opts ...CallOption) (Object, error)

	// VehicleQuery launches a check of a vehicle and its owner
	VehicleQuery(ctx context.Context, req VehicleQueryRequest, opts ...CallOption) (*LaunchResponse, error)

	// Report, ReportPDF and ReportJSON render a finished query
	Report(ctx context.Context, id string, opts ...CallOption) (string, error)
	ReportPDF(ctx context.Context, id string, opts ...CallOption) ([]byte, error)
	ReportJSON(ctx context.Context, id string, opts ...CallOption) (Report, error)

	// PlanStatus returns the account's plan
	PlanStatus(ctx context.Context, opts ...CallOption) (Object, error)

	// QueryHistory lists past queries
	QueryHistory(ctx context.Context, opts ...CallOption) (History, error)

	// LaunchVerify verifies a person's identity
	LaunchVerify(ctx context.Context, req VerifyRequest, opts ...CallOption) (*VerifyResponse, error)

	// LaunchVerifyNIT verifies a company by its NIT
	LaunchVerifyNIT(ctx context.Context, req VerifyNITRequest, opts ...CallOption) (*VerifyNITResponse, error)
}
