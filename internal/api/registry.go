package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// GroupHelp is the short help of each command group.
var GroupHelp = map[string]string{
	"sessions": "Create, inspect and delete sessions",
	"keys":     "Edit the output key list of a session",
	"mapping":  "Map segment headers to output keys",
	"lines":    "Toggle and delete source lines",
	"profile":  "Export or import a session profile",
}

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
// Middleware is applied in order, the first one outermost.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, mw ...Middleware) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		for i := len(mw) - 1; i >= 0; i-- {
			handler = mw[i](handler)
		}
		mux.HandleFunc(method+" "+path, handler)
	}
}

// BuildCommands returns a cobra.Command tree for all registered endpoints,
// with grouped endpoints nested under their group command.
// getServerURL is called at runtime to get the server URL.
func (r *Registry) BuildCommands(getServerURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running langsheet server via HTTP.

These commands require a running server (langsheet serve).
Use --server to specify a custom server URL.

Examples:
  langsheet api health                       # Check server health
  langsheet api sessions create              # Start a session
  langsheet api sessions load <id> ./sheets  # Load a folder of spreadsheets
  langsheet api mapping set <id> RTP rtp     # Map a header to a key
  langsheet api export <id>                  # Download the zip bundle`,
	}

	groups := make(map[string]*cobra.Command)
	for _, ep := range r.endpoints {
		cmd := ep.Command(getServerURL)
		g, ok := ep.(Grouped)
		if !ok || g.Group() == "" {
			apiCmd.AddCommand(cmd)
			continue
		}
		parent, ok := groups[g.Group()]
		if !ok {
			parent = &cobra.Command{Use: g.Group(), Short: GroupHelp[g.Group()]}
			groups[g.Group()] = parent
			apiCmd.AddCommand(parent)
		}
		parent.AddCommand(cmd)
	}

	return apiCmd
}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}
