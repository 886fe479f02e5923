package api

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

// Registry holds all registered endpoints.
type Registry struct {
	endpoints []Endpoint
}

// NewRegistry creates a new endpoint registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an endpoint to the registry.
func (r *Registry) Register(ep Endpoint) {
	r.endpoints = append(r.endpoints, ep)
}

// RegisterRoutes registers all endpoint HTTP routes with the given mux.
// graderGuard wraps handlers of endpoints that need an LLM provider.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, graderGuard func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if ep.RequiresGrader() {
			handler = graderGuard(handler)
		}
		mux.HandleFunc(method+" "+path, handler)
	}
}

// BuildCommands returns a cobra.Command tree for all registered endpoints.
// Commands are organized by their URL path structure.
// getServerURL is called at runtime to get the server URL.
func (r *Registry) BuildCommands(getServerURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running Draftly server via HTTP.

These commands require a running server (draftly serve).
Use --server to specify a custom server URL.

Examples:
  draftly api health                      # Check server health
  draftly api review nda.pdf              # Review a document as an NDA
  draftly api draft --doc-type NDA        # Download a draft .docx
  draftly api prompts list                # List embedded prompts`,
	}

	groups := map[string]*cobra.Command{}
	for _, ep := range r.endpoints {
		cmd := ep.Command(getServerURL)
		if cmd == nil {
			continue
		}
		group := commandGroup(ep)
		if group == "" {
			apiCmd.AddCommand(cmd)
			continue
		}
		parent, ok := groups[group]
		if !ok {
			parent = &cobra.Command{Use: group, Short: "Commands for /api/" + group}
			groups[group] = parent
			apiCmd.AddCommand(parent)
		}
		parent.AddCommand(cmd)
	}

	return apiCmd
}

// commandGroup nests commands for collection routes such as /api/prompts
// under a parent command named after the collection.
func commandGroup(ep Endpoint) string {
	_, path, _ := ep.Route()
	rest, ok := strings.CutPrefix(path, "/api/")
	if !ok {
		return ""
	}
	group, _, nested := strings.Cut(rest, "/")
	if !nested && !collections[group] {
		return ""
	}
	return group
}

// collections are route prefixes whose commands are grouped.
var collections = map[string]bool{"prompts": true}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}
