package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./openshelf.db"

	// DefaultMaxImportFileSize caps bulk-import uploads at 10 MiB
	DefaultMaxImportFileSize = 10 * 1024 * 1024
)
