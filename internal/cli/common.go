// Package cli implements the client-side subcommands that talk to a
// running notes server through pkg/client.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/owaspnotes/notesapp/pkg/client"
)

const defaultServerURL = "http://localhost:5000"

// defaultSessionPath places the session database under the user's home
// directory so separate invocations share one login.
func defaultSessionPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.notesapp-session.db"
	}
	return filepath.Join(homeDir, ".notesapp", "session.db")
}

// openClient opens the session store and builds an API client around it.
// The caller must Close the returned store.
func openClient(serverURL, sessionPath string) (*client.Client, *client.BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(sessionPath), 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	store, err := client.NewBoltStore(sessionPath)
	if err != nil {
		return nil, nil, err
	}

	return client.New(serverURL, store), store, nil
}
