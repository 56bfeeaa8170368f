package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
)

// LogoutCommand ends the session on the server and clears the local
// snapshot. The local snapshot is removed even when the server cannot be
// reached.
type LogoutCommand struct {
	ServerURL   string
	SessionPath string
}

// NewLogoutCommand creates a new LogoutCommand
func NewLogoutCommand() *LogoutCommand {
	return &LogoutCommand{}
}

// ParseFlags parses command line flags
func (cmd *LogoutCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)

	fs.StringVar(&cmd.ServerURL, "server", defaultServerURL, "Base URL of the notes server")
	fs.StringVar(&cmd.SessionPath, "session", defaultSessionPath(), "Path to the local session database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s logout [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Log out and remove the locally stored session.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the logout command
func (cmd *LogoutCommand) Run() error {
	api, store, err := openClient(cmd.ServerURL, cmd.SessionPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := api.Logout(context.Background()); err != nil {
		// The local session is already gone at this point.
		fmt.Printf("⚠️  %v\n", err)
	}

	fmt.Println("✅ Logged out")
	return nil
}
