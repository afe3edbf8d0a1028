package cli

import (
	"context"

	"github.com/viant/qterm/internal/mcpclient"
	"github.com/viant/qterm/internal/mcpsupervisor"
)

// defaultConnector adapts mcpclient.Connect to mcpsupervisor.Connector,
// spawning a real child-process MCP server for a configured entry.
func defaultConnector(ctx context.Context, sc mcpsupervisor.ServerConfig) (mcpsupervisor.Client, error) {
	cli, err := mcpclient.Connect(ctx, mcpclient.Config{
		Name:    sc.Name,
		Command: sc.Command,
		Args:    sc.Args,
		Env:     sc.Env,
	})
	if err != nil {
		return nil, err
	}
	return cli, nil
}

// newSupervisor builds a Supervisor wired to spawn real MCP servers and
// reconciles it against the server config file at path. The loaded
// ConfigFile is returned alongside so the caller can attach each
// configured server's catalogue to a Tool Manager without reloading it;
// cf is nil if the config file could not be read.
func newSupervisor(path string) (*mcpsupervisor.Supervisor, *mcpsupervisor.ConfigFile) {
	sup := mcpsupervisor.New(defaultConnector, mcpsupervisor.DefaultTTL)
	cf, err := mcpsupervisor.LoadConfigFile(path)
	if err != nil {
		return sup, nil
	}
	sup.Reconcile(cf)
	return sup, cf
}
