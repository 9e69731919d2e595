package tusdatos

// Environment selects which TusDatos deployment a client targets.
type Environment string

const (
	// Production is the live API.
	Production Environment = "production"
	// Testing is the sandbox API. It answers with fixture data.
	Testing Environment = "testing"
)

const (
	ProductionURL = "https://dash-board.tusdatos.co"
	TestingURL    = "https://docs.tusdatos.co"
)

// ResolveBaseURL returns the base URL for env. The match is case-sensitive.
func ResolveBaseURL(env Environment) (string, error) {
	switch env {
	case Production:
		return ProductionURL, nil
	case Testing:
		return TestingURL, nil
	default:
		return "", configError("invalid environment %q: must be %q or %q", string(env), Production, Testing)
	}
}

// String returns the environment name.
func (e Environment) String() string {
	return string(e)
}
