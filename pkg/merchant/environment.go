package merchant

import (
	"fmt"
	"strings"
)

const (
	// EnvProduction selects the live merchant API.
	EnvProduction = "production"
	// EnvSandbox selects the sandbox merchant API.
	EnvSandbox = "sandbox"

	productionBaseURL = "https://merchant.revolut.com/api/1.0/"
	sandboxBaseURL    = "https://sandbox-merchant.revolut.com/api/1.0/"
)

// Environment is a resolved API target.
type Environment struct {
	Name    string
	BaseURL string
	Live    bool
}

// ResolveEnvironment maps a symbolic environment name to its base URL and
// live flag. Only "production" and "sandbox" are known.
func ResolveEnvironment(name string) (Environment, error) {
	switch name {
	case EnvProduction:
		return Environment{Name: EnvProduction, BaseURL: productionBaseURL, Live: true}, nil
	case EnvSandbox:
		return Environment{Name: EnvSandbox, BaseURL: sandboxBaseURL, Live: false}, nil
	default:
		return Environment{}, fmt.Errorf("%w: %q matches neither %s nor %s", ErrUnknownEnvironment, name, EnvProduction, EnvSandbox)
	}
}

// withTrailingSlash makes sure relative paths resolve below the base path
// rather than replacing its last segment.
func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
