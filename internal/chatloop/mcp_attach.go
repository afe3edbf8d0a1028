package chatloop

import (
	"context"

	"github.com/viant/qterm/internal/mcpsupervisor"
	"github.com/viant/qterm/internal/toolmanager"
)

// AttachMCPServers connects every server named in cf through supervisor
// and feeds its catalogue into tools, so namespaced tool-uses
// (`<server>⟐<tool>`) are dispatchable for the rest of the session. A
// server that fails to connect (spawn failure, bad handshake, ...) is
// simply omitted from the catalogue, matching mcpclient's
// ErrUnavailable contract; a server dropped from cf is detached from
// tools as well. Call this once at startup after the supervisor is
// reconciled, and again after every `/mcp add|remove|import`.
func AttachMCPServers(ctx context.Context, tools *toolmanager.Manager, supervisor *mcpsupervisor.Supervisor, cf *mcpsupervisor.ConfigFile) {
	if tools == nil || supervisor == nil || cf == nil {
		return
	}

	configured := make(map[string]bool, len(cf.Servers))
	for _, sc := range cf.Servers {
		configured[sc.Name] = true
		client, err := supervisor.Get(ctx, sc.Name)
		if err != nil {
			tools.RemoveServer(sc.Name)
			continue
		}
		if err := tools.AddServer(sc.Name, client, client.Tools()); err != nil {
			tools.RemoveServer(sc.Name)
		}
	}

	for _, name := range tools.ServerNames() {
		if !configured[name] {
			tools.RemoveServer(name)
		}
	}
}
