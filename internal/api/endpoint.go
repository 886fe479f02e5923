// Package api ties each HTTP route to the cobra command that calls it.
package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Endpoint defines both an HTTP route and its corresponding CLI command.
type Endpoint interface {
	// Route returns the HTTP method, path, and handler for this endpoint.
	Route() (method, path string, handler http.HandlerFunc)

	// RequiresGrader reports whether the route needs a configured LLM
	// provider. The server answers 503 for such routes until one exists.
	RequiresGrader() bool

	// Command returns a Cobra command that calls this endpoint via HTTP, or
	// nil for HTTP-only routes. getServerURL is evaluated after flag parsing.
	Command(getServerURL func() string) *cobra.Command
}
