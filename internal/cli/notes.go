package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/owaspnotes/notesapp/pkg/client"
)

// NotesCommand lists and manages the logged-in user's notes.
type NotesCommand struct {
	ServerURL   string
	SessionPath string

	action string

	Title    string
	Content  string
	Public   bool
	Password string
	NoteID   uint
}

// NewNotesCommand creates a new NotesCommand
func NewNotesCommand() *NotesCommand {
	return &NotesCommand{}
}

// ParseFlags parses command line flags
func (cmd *NotesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("notes", flag.ExitOnError)

	fs.StringVar(&cmd.ServerURL, "server", defaultServerURL, "Base URL of the notes server")
	fs.StringVar(&cmd.SessionPath, "session", defaultSessionPath(), "Path to the local session database")
	fs.StringVar(&cmd.Title, "title", "", "Note title (create/update)")
	fs.StringVar(&cmd.Content, "content", "", "Note content (create/update)")
	fs.BoolVar(&cmd.Public, "public", false, "Create the note as public instead of private")
	fs.StringVar(&cmd.Password, "password", "", "Account password, required to update a private note")
	fs.UintVar(&cmd.NoteID, "id", 0, "Note ID (get/update/delete)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s notes <list|create|get|update|delete> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Manage your notes. Requires a stored session (run 'login' first).\n\n")
		fmt.Fprintf(os.Stderr, "Updating a private note re-verifies your password first, so pass -password.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s notes list\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s notes create -title 'Shopping' -content 'milk, eggs'\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s notes update -id 3 -content 'updated' -password secret\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s notes delete -id 3\n", os.Args[0])
	}

	if len(args) == 0 {
		fs.Usage()
		return fmt.Errorf("an action is required: list, create, get, update or delete")
	}

	cmd.action = args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch cmd.action {
	case "list":
	case "create":
		if cmd.Title == "" || cmd.Content == "" {
			return fmt.Errorf("create requires -title and -content")
		}
	case "get", "delete":
		if cmd.NoteID == 0 {
			return fmt.Errorf("%s requires -id", cmd.action)
		}
	case "update":
		if cmd.NoteID == 0 {
			return fmt.Errorf("update requires -id")
		}
		if cmd.Title == "" && cmd.Content == "" {
			return fmt.Errorf("update requires -title or -content")
		}
	default:
		fs.Usage()
		return fmt.Errorf("unknown action %q", cmd.action)
	}

	return nil
}

// Run executes the notes command
func (cmd *NotesCommand) Run() error {
	api, store, err := openClient(cmd.ServerURL, cmd.SessionPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if api.CurrentUser() == nil {
		return fmt.Errorf("not logged in; run '%s login' first", os.Args[0])
	}

	ctx := context.Background()

	switch cmd.action {
	case "list":
		return cmd.runList(ctx, api)
	case "create":
		return cmd.runCreate(ctx, api)
	case "get":
		return cmd.runGet(ctx, api)
	case "update":
		return cmd.runUpdate(ctx, api)
	case "delete":
		return cmd.runDelete(ctx, api)
	}
	return nil
}

func (cmd *NotesCommand) runList(ctx context.Context, api *client.Client) error {
	notes, err := api.ListNotes(ctx)
	if err != nil {
		return err
	}

	if len(notes) == 0 {
		fmt.Println("📭 No notes yet")
		return nil
	}

	fmt.Printf("📝 %d notes\n\n", len(notes))
	for _, note := range notes {
		visibility := "🔒 private"
		if !note.IsPrivate {
			visibility = "🌐 public"
		}
		fmt.Printf("  [%d] %s (%s, updated %s)\n",
			note.ID, note.Title, visibility, note.UpdatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("      %s\n", preview(note.Content, 60))
	}
	return nil
}

func (cmd *NotesCommand) runCreate(ctx context.Context, api *client.Client) error {
	isPrivate := !cmd.Public
	note, err := api.CreateNote(ctx, cmd.Title, cmd.Content, &isPrivate)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Created note [%d] %s\n", note.ID, note.Title)
	return nil
}

func (cmd *NotesCommand) runGet(ctx context.Context, api *client.Client) error {
	note, err := api.GetNote(ctx, cmd.NoteID)
	if err != nil {
		return err
	}
	fmt.Printf("📖 [%d] %s\n\n%s\n", note.ID, note.Title, note.Content)
	return nil
}

func (cmd *NotesCommand) runUpdate(ctx context.Context, api *client.Client) error {
	note, err := api.GetNote(ctx, cmd.NoteID)
	if err != nil {
		return err
	}

	// Private notes demand a fresh password proof before any change.
	ticket := ""
	if note.IsPrivate {
		if cmd.Password == "" {
			return fmt.Errorf("note %d is private; pass -password to verify your identity", cmd.NoteID)
		}
		ticket, err = api.VerifyPassword(ctx, cmd.Password)
		if err != nil {
			return fmt.Errorf("password verification failed: %w", err)
		}
		fmt.Println("🔑 Password verified")
	}

	update := client.NoteUpdate{}
	if cmd.Title != "" {
		update.Title = &cmd.Title
	}
	if cmd.Content != "" {
		update.Content = &cmd.Content
	}

	updated, err := api.UpdateNote(ctx, cmd.NoteID, update, ticket)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Updated note [%d] %s\n", updated.ID, updated.Title)
	return nil
}

func (cmd *NotesCommand) runDelete(ctx context.Context, api *client.Client) error {
	if err := api.DeleteNote(ctx, cmd.NoteID); err != nil {
		return err
	}
	fmt.Printf("🗑️  Deleted note %d\n", cmd.NoteID)
	return nil
}

// preview shortens content for list output.
func preview(content string, max int) string {
	content = strings.ReplaceAll(content, "\n", " ")
	if len(content) <= max {
		return content
	}
	return content[:max] + "…"
}
