package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
)

// RegisterCommand creates a new account and stores the resulting session.
type RegisterCommand struct {
	ServerURL   string
	SessionPath string
	Username    string
	Email       string
	Password    string
}

// NewRegisterCommand creates a new RegisterCommand
func NewRegisterCommand() *RegisterCommand {
	return &RegisterCommand{}
}

// ParseFlags parses command line flags
func (cmd *RegisterCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)

	fs.StringVar(&cmd.ServerURL, "server", defaultServerURL, "Base URL of the notes server")
	fs.StringVar(&cmd.SessionPath, "session", defaultSessionPath(), "Path to the local session database")
	fs.StringVar(&cmd.Username, "name", "", "Display name (required)")
	fs.StringVar(&cmd.Email, "email", "", "Account email (required)")
	fs.StringVar(&cmd.Password, "password", "", "Account password (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s register -name <name> -email <email> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an account on the notes server and log in.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("-name, -email and -password are all required")
	}

	return nil
}

// Run executes the register command
func (cmd *RegisterCommand) Run() error {
	api, store, err := openClient(cmd.ServerURL, cmd.SessionPath)
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := api.Register(context.Background(), cmd.Username, cmd.Email, cmd.Password)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Account created for %s <%s>\n", session.Name, session.Email)
	fmt.Printf("💾 Session stored at %s\n", cmd.SessionPath)
	return nil
}
