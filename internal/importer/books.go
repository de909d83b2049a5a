package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/openshelf/openshelf/internal/entities"
)

// bookFields is the expected header, field-for-field and in order, for
// both file formats.
var bookFields = []string{
	"title",
	"author",
	"isbn",
	"publisher",
	"publication_year",
	"category",
	"quantity",
}

// rawBookRow is one decoded but uncoerced candidate book. All values are
// trimmed strings; coercion to typed fields happens in coerce.
type rawBookRow struct {
	title           string
	author          string
	isbn            string
	publisher       string
	publicationYear string
	category        string
	quantity        string
}

// BookProcessor imports books from uploaded txt or excel files.
type BookProcessor struct {
	store BookStore
}

// NewBookProcessor creates a book importer over the given store.
func NewBookProcessor(store BookStore) *BookProcessor {
	return &BookProcessor{store: store}
}

// ProcessFile dispatches on the declared file type.
func (p *BookProcessor) ProcessFile(r io.Reader, fileType string) Outcome {
	switch fileType {
	case FileTypeText:
		return p.processText(r)
	case FileTypeExcel:
		return p.processWorkbook(r)
	default:
		return failure("Unsupported file type: " + fileType)
	}
}

// processText handles the pipe-delimited format. The first line is the
// header; every later non-blank line is one candidate row. Line numbers
// in errors are 1-based with the header as line 1.
func (p *BookProcessor) processText(r io.Reader) Outcome {
	content, err := io.ReadAll(r)
	if err != nil {
		return failure("Error reading file: " + err.Error())
	}

	lines := splitLines(string(content))
	if len(lines) < 2 {
		return failure("File must contain at least a header and one data row")
	}

	header := strings.Split(strings.TrimSpace(lines[0]), "|")
	if !equalFields(header, bookFields) {
		return failure("Invalid header. Expected: " + strings.Join(bookFields, "|"))
	}

	created := 0
	var errs []string

	for i, line := range lines[1:] {
		lineNum := i + 2
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, "|")
		if len(fields) != len(bookFields) {
			errs = append(errs, fmt.Sprintf("Line %d: Expected %d fields, got %d",
				lineNum, len(bookFields), len(fields)))
			continue
		}

		raw := rawBookRow{
			title:           strings.TrimSpace(fields[0]),
			author:          strings.TrimSpace(fields[1]),
			isbn:            strings.TrimSpace(fields[2]),
			publisher:       strings.TrimSpace(fields[3]),
			publicationYear: strings.TrimSpace(fields[4]),
			category:        strings.TrimSpace(fields[5]),
			quantity:        strings.TrimSpace(fields[6]),
		}

		if msg := p.importRow(raw); msg != "" {
			errs = append(errs, fmt.Sprintf("Line %d: %s", lineNum, msg))
			continue
		}
		created++
	}

	return outcome(created, errs)
}

// processWorkbook handles the tabular format. Rows are addressed as
// "Row N" where the first data row below the header is row 2. Rows whose
// identifying fields (title, isbn) are empty are skipped silently.
func (p *BookProcessor) processWorkbook(r io.Reader) Outcome {
	t, err := readWorkbook(r)
	if err != nil {
		return failure("Error reading Excel file: " + err.Error())
	}

	if missing := t.missingColumns(bookFields); len(missing) > 0 {
		return failure("Missing required columns: " + strings.Join(missing, ", "))
	}

	created := 0
	var errs []string

	for i, row := range t.rows {
		rowNum := i + 2

		raw := rawBookRow{
			title:           t.cell(row, "title"),
			author:          t.cell(row, "author"),
			isbn:            t.cell(row, "isbn"),
			publisher:       t.cell(row, "publisher"),
			publicationYear: t.cell(row, "publication_year"),
			category:        t.cell(row, "category"),
			quantity:        t.cell(row, "quantity"),
		}

		// Skip rows without their identifying fields
		if raw.title == "" || raw.isbn == "" {
			continue
		}

		if msg := p.importRow(raw); msg != "" {
			errs = append(errs, fmt.Sprintf("Row %d: %s", rowNum, msg))
			continue
		}
		created++
	}

	return outcome(created, errs)
}

// importRow coerces, checks and persists one candidate row. It returns a
// human-readable message when the row must be skipped, "" on success.
func (p *BookProcessor) importRow(raw rawBookRow) string {
	book, err := coerceBook(raw)
	if err != nil {
		return err.Error()
	}

	exists, err := p.store.ExistsByISBN(book.ISBN)
	if err != nil {
		return err.Error()
	}
	if exists {
		return fmt.Sprintf("Book with ISBN %s already exists", book.ISBN)
	}

	if err := p.store.Create(book); err != nil {
		return err.Error()
	}
	return ""
}

// coerceBook converts the raw row into a Book. Publication year is
// optional; quantity is mandatory and also seeds the available-copy
// counter, because imports never carry partial availability.
func coerceBook(raw rawBookRow) (*entities.Book, error) {
	book := &entities.Book{
		Title:     raw.title,
		Author:    raw.author,
		ISBN:      raw.isbn,
		Publisher: raw.publisher,
		Category:  raw.category,
	}

	if raw.publicationYear != "" {
		year, err := parseInt(raw.publicationYear)
		if err != nil {
			return nil, fmt.Errorf("invalid publication_year: %v", err)
		}
		book.PublicationYear = &year
	}

	quantity, err := parseInt(raw.quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %v", err)
	}
	book.Quantity = quantity
	book.AvailableQuantity = quantity

	return book, nil
}

func equalFields(got, expected []string) bool {
	if len(got) != len(expected) {
		return false
	}
	for i := range got {
		if got[i] != expected[i] {
			return false
		}
	}
	return true
}
