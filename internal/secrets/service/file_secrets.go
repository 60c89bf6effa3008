package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	secretsDomain "github.com/allisson/nodeauth/internal/secrets/domain"
)

// FileSecrets holds per-node secrets loaded from CSV files.
//
// Each row is "node_id,ts1:secret1,ts2:secret2,...". Rows with fewer than two
// fields are ignored. A node may appear only once across all loaded files.
type FileSecrets struct {
	mu    sync.RWMutex
	nodes map[string][]secretsDomain.SecretEntry
	now   func() time.Time
}

// NewFileSecrets creates a store and loads paths into it.
func NewFileSecrets(paths ...string) (*FileSecrets, error) {
	f := &FileSecrets{
		nodes: make(map[string][]secretsDomain.SecretEntry),
		now:   time.Now,
	}
	if len(paths) > 0 {
		if err := f.Load(paths...); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Load parses paths in order and merges them into the store. Nothing is merged
// if any file fails.
func (f *FileSecrets) Load(paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	loaded := make(map[string][]secretsDomain.SecretEntry)
	for _, path := range paths {
		if err := f.loadFile(path, loaded); err != nil {
			return err
		}
	}

	for node, entries := range loaded {
		secretsDomain.SortEntries(entries)
		f.nodes[node] = entries
	}
	return nil
}

func (f *FileSecrets) loadFile(path string, loaded map[string][]secretsDomain.SecretEntry) error {
	file, err := os.Open(path) //nolint:gosec // operator supplied path
	if err != nil {
		return fmt.Errorf("failed to open secrets file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", secretsDomain.ErrInvalidSecretsFile, path, err)
		}
		line, _ := reader.FieldPos(0)

		if len(record) < 2 {
			continue
		}

		node := record[0]
		_, seen := loaded[node]
		_, known := f.nodes[node]
		if seen || known {
			return fmt.Errorf("%w: %s: duplicate node %q on line %d",
				secretsDomain.ErrInvalidSecretsFile, path, node, line)
		}

		entries := make([]secretsDomain.SecretEntry, 0, len(record)-1)
		for _, pair := range record[1:] {
			entry, err := parseSecretEntry(pair)
			if err != nil {
				return fmt.Errorf("%w: %s: invalid secret on line %d: %v",
					secretsDomain.ErrInvalidSecretsFile, path, line, err)
			}
			entries = append(entries, entry)
		}
		loaded[node] = entries
	}
}

func parseSecretEntry(pair string) (secretsDomain.SecretEntry, error) {
	parts := strings.Split(pair, ":")
	if len(parts) != 2 {
		return secretsDomain.SecretEntry{}, fmt.Errorf("expected timestamp:secret, got %d fields", len(parts))
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return secretsDomain.SecretEntry{}, fmt.Errorf("invalid timestamp %q", parts[0])
	}
	return secretsDomain.SecretEntry{Timestamp: ts, Secret: parts[1]}, nil
}

// Get returns the secrets of node, oldest first.
func (f *FileSecrets) Get(node string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return secretsDomain.Secrets(f.nodes[node])
}

// Entries returns a copy of the timestamped entries of node.
func (f *FileSecrets) Entries(node string) []secretsDomain.SecretEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]secretsDomain.SecretEntry(nil), f.nodes[node]...)
}

// Keys returns the known node ids, sorted.
func (f *FileSecrets) Keys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	keys := make([]string, 0, len(f.nodes))
	for node := range f.nodes {
		keys = append(keys, node)
	}
	sort.Strings(keys)
	return keys
}

// Add appends a fresh secret of size hex characters to node, stamped with the
// current second, and returns it. At most one secret per second can be added
// to a node.
func (f *FileSecrets) Add(node string, size int) (string, error) {
	raw, err := GenerateHexSecret(size)
	if err != nil {
		return "", err
	}
	secret := raw[:size]

	f.mu.Lock()
	defer f.mu.Unlock()

	ts := f.now().Unix()
	entries := f.nodes[node]
	if n := len(entries); n > 0 && entries[n-1].Timestamp >= ts {
		return "", fmt.Errorf("%w: node %q", secretsDomain.ErrDuplicateSecretInsertion, node)
	}
	f.nodes[node] = append(entries, secretsDomain.SecretEntry{Timestamp: ts, Secret: secret})
	return secret, nil
}

// Save writes every node to path, sorted by node id. The file is replaced
// atomically.
func (f *FileSecrets) Save(path string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".secrets-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary secrets file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	nodes := make([]string, 0, len(f.nodes))
	for node := range f.nodes {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	writer := csv.NewWriter(tmp)
	for _, node := range nodes {
		record := []string{node}
		for _, entry := range f.nodes[node] {
			record = append(record, fmt.Sprintf("%d:%s", entry.Timestamp, entry.Secret))
		}
		if err := writer.Write(record); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("failed to write secrets file: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close secrets file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("failed to set secrets file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace secrets file: %w", err)
	}
	return nil
}
