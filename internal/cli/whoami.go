package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/owaspnotes/notesapp/pkg/client"
)

// WhoamiCommand validates the stored session against the server and
// prints the authenticated identity.
type WhoamiCommand struct {
	ServerURL   string
	SessionPath string
	Offline     bool
}

// NewWhoamiCommand creates a new WhoamiCommand
func NewWhoamiCommand() *WhoamiCommand {
	return &WhoamiCommand{}
}

// ParseFlags parses command line flags
func (cmd *WhoamiCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)

	fs.StringVar(&cmd.ServerURL, "server", defaultServerURL, "Base URL of the notes server")
	fs.StringVar(&cmd.SessionPath, "session", defaultSessionPath(), "Path to the local session database")
	fs.BoolVar(&cmd.Offline, "offline", false, "Print the cached identity without contacting the server")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s whoami [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show the identity behind the stored session.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the whoami command
func (cmd *WhoamiCommand) Run() error {
	api, store, err := openClient(cmd.ServerURL, cmd.SessionPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if cmd.Offline {
		session := api.CurrentUser()
		if session == nil {
			return fmt.Errorf("not logged in")
		}
		fmt.Printf("👤 %s <%s> (cached, not validated)\n", session.Name, session.Email)
		return nil
	}

	user, err := api.Bootstrap(context.Background())
	if err != nil {
		if errors.Is(err, client.ErrNoSession) {
			return fmt.Errorf("not logged in")
		}
		if client.IsUnauthorized(err) {
			return fmt.Errorf("session expired; please log in again")
		}
		return fmt.Errorf("could not reach server (cached session kept): %w", err)
	}

	fmt.Printf("👤 %s <%s> (id %d)\n", user.Name, user.Email, user.ID)
	return nil
}
