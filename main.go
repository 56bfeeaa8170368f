package main

import (
	"fmt"
	"os"

	"github.com/owaspnotes/notesapp/internal/cli"
	"github.com/owaspnotes/notesapp/internal/config"
	"github.com/owaspnotes/notesapp/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "register":
		cmd = cli.NewRegisterCommand()
	case "login":
		cmd = cli.NewLoginCommand()
	case "logout":
		cmd = cli.NewLogoutCommand()
	case "whoami":
		cmd = cli.NewWhoamiCommand()
	case "notes":
		cmd = cli.NewNotesCommand()
	case "version":
		fmt.Printf("notesapp %s (%s)\n", Version, Commit)
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("notesapp - note-taking service with token authentication\n\n")
	fmt.Printf("Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Printf("Commands:\n")
	fmt.Printf("  serve      Run the HTTP server (default)\n")
	fmt.Printf("  register   Create an account and log in\n")
	fmt.Printf("  login      Log in and store the session locally\n")
	fmt.Printf("  logout     Log out and clear the stored session\n")
	fmt.Printf("  whoami     Show the identity behind the stored session\n")
	fmt.Printf("  notes      List and manage notes\n")
	fmt.Printf("  version    Print version information\n")
	fmt.Printf("  help       Show this help\n\n")
	fmt.Printf("Run '%s <command> -h' for command-specific options.\n", os.Args[0])
}
