package main

import (
	"github.com/urfave/cli/v3"
)

// getCommands lists the top-level commands: server lifecycle first, then the
// secret and token tooling used by operators.
func getCommands(version string) []*cli.Command {
	return append(getSystemCommands(version), getSecretsCommands(), getTokenCommands())
}
