package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/patrons"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/importer"
)

// PatronsImportCommand imports patrons from a local txt or excel file.
type PatronsImportCommand struct {
	FilePath     string
	FileType     string
	DatabasePath string
	Verbose      bool
	DryRun       bool
}

func NewPatronsImportCommand() *PatronsImportCommand {
	return &PatronsImportCommand{}
}

func (cmd *PatronsImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-patrons", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the import file (required)")
	fs.StringVar(&cmd.FileType, "type", "", "File type: txt or excel (default: inferred from extension)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the file without writing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-patrons -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import patrons from a pipe-delimited .txt file or an .xlsx/.xls workbook.\n\n")
		fmt.Fprintf(os.Stderr, "The text format expects this header line:\n")
		fmt.Fprintf(os.Stderr, "  full_name|email|phone|address|registration_number|is_active\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import-patrons -file members.txt\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import-patrons -file members.xlsx -dry-run -verbose\n", os.Args[0])
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

func (cmd *PatronsImportCommand) Run() error {
	fmt.Println("Patron Import")
	fmt.Println("=============")

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

	var store importer.PatronStore = patrons.NewRepository(db.DB)
	if cmd.DryRun {
		store = &dryRunPatronStore{inner: store}
	}

	outcome := importer.NewPatronProcessor(store).ProcessFile(file, cmd.FileType)
	reportOutcome(outcome, "patrons", cmd.Verbose, cmd.DryRun)

	if !outcome.Success {
		return fmt.Errorf("import failed: no patrons were created")
	}
	return nil
}

type dryRunPatronStore struct {
	inner importer.PatronStore
}

func (s *dryRunPatronStore) ExistsByRegistrationNumber(regNum string) (bool, error) {
	return s.inner.ExistsByRegistrationNumber(regNum)
}

func (s *dryRunPatronStore) ExistsByEmail(email string) (bool, error) {
	return s.inner.ExistsByEmail(email)
}

func (s *dryRunPatronStore) Create(*entities.Patron) error {
	return nil
}
