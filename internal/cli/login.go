package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
)

// LoginCommand authenticates against the server and stores the session
// locally for later commands.
type LoginCommand struct {
	ServerURL   string
	SessionPath string
	Email       string
	Password    string
}

// NewLoginCommand creates a new LoginCommand
func NewLoginCommand() *LoginCommand {
	return &LoginCommand{}
}

// ParseFlags parses command line flags
func (cmd *LoginCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)

	fs.StringVar(&cmd.ServerURL, "server", defaultServerURL, "Base URL of the notes server")
	fs.StringVar(&cmd.SessionPath, "session", defaultSessionPath(), "Path to the local session database")
	fs.StringVar(&cmd.Email, "email", "", "Account email (required)")
	fs.StringVar(&cmd.Password, "password", "", "Account password (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s login -email <email> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Log in to the notes server and store the session locally.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s login -email user@example.com -password secret\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s login -server https://notes.example.com -email user@example.com -password secret\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("both -email and -password are required")
	}

	return nil
}

// Run executes the login command
func (cmd *LoginCommand) Run() error {
	api, store, err := openClient(cmd.ServerURL, cmd.SessionPath)
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := api.Login(context.Background(), cmd.Email, cmd.Password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Printf("✅ Logged in as %s <%s>\n", session.Name, session.Email)
	fmt.Printf("💾 Session stored at %s\n", cmd.SessionPath)
	return nil
}
