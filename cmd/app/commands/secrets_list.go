package commands

import (
	"fmt"
	"io"
	"time"

	secretsService "github.com/allisson/nodeauth/internal/secrets/service"
)

type listedNode struct {
	Node         string    `json:"node"`
	Secrets      int       `json:"secrets"`
	CurrentSince time.Time `json:"current_since"`
}

// RunSecretsList prints the nodes known to the given secrets files with the
// number of secrets each one holds. Secret values are never printed.
func RunSecretsList(out io.Writer, paths []string, format string) error {
	if len(paths) == 0 {
		return fmt.Errorf("at least one --file is required")
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	store, err := secretsService.NewFileSecrets(paths...)
	if err != nil {
		return err
	}

	nodes := make([]listedNode, 0, len(store.Keys()))
	for _, node := range store.Keys() {
		entries := store.Entries(node)
		item := listedNode{Node: node, Secrets: len(entries)}
		if len(entries) > 0 {
			item.CurrentSince = time.Unix(entries[len(entries)-1].Timestamp, 0).UTC()
		}
		nodes = append(nodes, item)
	}

	if format == "json" {
		return writeJSON(out, map[string]any{"nodes": nodes})
	}

	for _, item := range nodes {
		if _, err := fmt.Fprintf(out, "%s\t%d secret(s)\tcurrent since %s\n",
			item.Node, item.Secrets, item.CurrentSince.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}
