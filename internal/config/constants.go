package config

const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./notes.db"

	// DefaultCookieName is the cookie used for the credential token
	DefaultCookieName = "token"
)
