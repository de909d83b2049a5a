// Package cli implements the command-line subcommands: bulk imports
// from local files and staff account management.
package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/importer"
)

// BooksImportCommand imports books from a local txt or excel file,
// using the same row workflow as the bulk-upload endpoint.
type BooksImportCommand struct {
	FilePath     string
	FileType     string
	DatabasePath string
	Verbose      bool
	DryRun       bool
}

func NewBooksImportCommand() *BooksImportCommand {
	return &BooksImportCommand{}
}

func (cmd *BooksImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-books", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the import file (required)")
	fs.StringVar(&cmd.FileType, "type", "", "File type: txt or excel (default: inferred from extension)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the file without writing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-books -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books from a pipe-delimited .txt file or an .xlsx/.xls workbook.\n\n")
		fmt.Fprintf(os.Stderr, "The text format expects this header line:\n")
		fmt.Fprintf(os.Stderr, "  title|author|isbn|publisher|publication_year|category|quantity\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import-books -file catalog.txt\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import-books -file catalog.xlsx -type excel -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	if cmd.FileType == "" {
		cmd.FileType = inferFileType(cmd.FilePath)
	}
	if cmd.FileType != importer.FileTypeText && cmd.FileType != importer.FileTypeExcel {
		return fmt.Errorf("unsupported file type %q (want txt or excel)", cmd.FileType)
	}

	return nil
}

func (cmd *BooksImportCommand) Run() error {
	fmt.Println("Book Import")
	fmt.Println("===========")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var store importer.BookStore = books.NewRepository(db.DB)
	if cmd.DryRun {
		store = &dryRunBookStore{inner: store}
	}

	outcome := importer.NewBookProcessor(store).ProcessFile(file, cmd.FileType)
	reportOutcome(outcome, "books", cmd.Verbose, cmd.DryRun)

	if !outcome.Success {
		return fmt.Errorf("import failed: no books were created")
	}
	return nil
}

// dryRunBookStore probes uniqueness against the real store but never
// writes.
type dryRunBookStore struct {
	inner importer.BookStore
}

func (s *dryRunBookStore) ExistsByISBN(isbn string) (bool, error) {
	return s.inner.ExistsByISBN(isbn)
}

func (s *dryRunBookStore) Create(*entities.Book) error {
	return nil
}

// inferFileType maps a filename extension to an import file type.
// Unknown extensions return an empty string and fail flag validation.
func inferFileType(path string) string {
	switch filepath.Ext(path) {
	case ".txt":
		return importer.FileTypeText
	case ".xlsx", ".xls":
		return importer.FileTypeExcel
	default:
		return ""
	}
}

// reportOutcome prints the import result to stdout.
func reportOutcome(outcome importer.Outcome, noun string, verbose, dryRun bool) {
	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}
	fmt.Printf("\n%s %d %s (%d rows failed)\n", verb, outcome.Created, noun, len(outcome.Errors))

	if len(outcome.Errors) > 0 && verbose {
		fmt.Println("\nRow errors:")
		for _, e := range outcome.Errors {
			fmt.Printf("  - %s\n", e)
		}
	} else if len(outcome.Errors) > 0 {
		fmt.Println("Use -verbose to see per-row errors")
	}
}
