// Package importer implements bulk imports of books and patrons from
// uploaded files.
//
// Two file formats are supported per entity:
//
//   - txt: pipe-delimited text with a fixed header line
//   - excel: an .xlsx/.xls workbook whose first sheet carries a header row
//
// Both formats funnel into the same per-row workflow: decode the row,
// coerce the fields, check uniqueness against the store, create the
// record. Rows fail independently; one bad row never aborts the rest of
// the file. Only a malformed header (txt), missing required columns
// (excel) or a file with no data rows abort the whole import.
//
// Each row that passes all checks is committed on its own, so rows
// created before a later failure stay created. Two concurrent imports are
// not coordinated against each other; the unique indexes on the natural
// keys are the backstop for that race.
package importer

import (
	"io"

	"github.com/openshelf/openshelf/internal/entities"
)

// File types accepted by ProcessFile.
const (
	FileTypeText  = "txt"
	FileTypeExcel = "excel"
)

// BookStore is the persistence capability the book importer needs:
// a uniqueness probe on the natural key and a way to create rows.
type BookStore interface {
	ExistsByISBN(isbn string) (bool, error)
	Create(book *entities.Book) error
}

// PatronStore is the persistence capability the patron importer needs.
type PatronStore interface {
	ExistsByRegistrationNumber(regNum string) (bool, error)
	ExistsByEmail(email string) (bool, error)
	Create(patron *entities.Patron) error
}

// Outcome is the result of one bulk-import invocation. Success is true
// iff at least one row was committed; Errors preserves encounter order
// across the file.
type Outcome struct {
	Success bool     `json:"success"`
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

func failure(msg string) Outcome {
	return Outcome{Success: false, Created: 0, Errors: []string{msg}}
}

func outcome(created int, errs []string) Outcome {
	if errs == nil {
		errs = []string{}
	}
	return Outcome{Success: created > 0, Created: created, Errors: errs}
}

// Processor is the common surface of the book and patron importers.
type Processor interface {
	ProcessFile(r io.Reader, fileType string) Outcome
}
