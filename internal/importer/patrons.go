package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/openshelf/openshelf/internal/entities"
)

// patronFields is the expected header for patron imports.
var patronFields = []string{
	"full_name",
	"email",
	"phone",
	"address",
	"registration_number",
	"is_active",
}

// rawPatronRow is one decoded but uncoerced candidate patron.
type rawPatronRow struct {
	fullName           string
	email              string
	phone              string
	address            string
	registrationNumber string
	isActive           string

	// isActiveDefault is applied when isActive is empty: true for the
	// tabular format (an absent cell means "active"), false for text
	// (an empty field is just not a recognized true literal).
	isActiveDefault bool
}

// PatronProcessor imports patrons from uploaded txt or excel files.
type PatronProcessor struct {
	store PatronStore
}

// NewPatronProcessor creates a patron importer over the given store.
func NewPatronProcessor(store PatronStore) *PatronProcessor {
	return &PatronProcessor{store: store}
}

// ProcessFile dispatches on the declared file type.
func (p *PatronProcessor) ProcessFile(r io.Reader, fileType string) Outcome {
	switch fileType {
	case FileTypeText:
		return p.processText(r)
	case FileTypeExcel:
		return p.processWorkbook(r)
	default:
		return failure("Unsupported file type: " + fileType)
	}
}

func (p *PatronProcessor) processText(r io.Reader) Outcome {
	content, err := io.ReadAll(r)
	if err != nil {
		return failure("Error reading file: " + err.Error())
	}

	lines := splitLines(string(content))
	if len(lines) < 2 {
		return failure("File must contain at least a header and one data row")
	}

	header := strings.Split(strings.TrimSpace(lines[0]), "|")
	if !equalFields(header, patronFields) {
		return failure("Invalid header. Expected: " + strings.Join(patronFields, "|"))
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
		if len(fields) != len(patronFields) {
			errs = append(errs, fmt.Sprintf("Line %d: Expected %d fields, got %d",
				lineNum, len(patronFields), len(fields)))
			continue
		}

		raw := rawPatronRow{
			fullName:           strings.TrimSpace(fields[0]),
			email:              strings.TrimSpace(fields[1]),
			phone:              strings.TrimSpace(fields[2]),
			address:            strings.TrimSpace(fields[3]),
			registrationNumber: strings.TrimSpace(fields[4]),
			isActive:           strings.TrimSpace(fields[5]),
			isActiveDefault:    false,
		}

		if msg := p.importRow(raw); msg != "" {
			errs = append(errs, fmt.Sprintf("Line %d: %s", lineNum, msg))
			continue
		}
		created++
	}

	return outcome(created, errs)
}

func (p *PatronProcessor) processWorkbook(r io.Reader) Outcome {
	t, err := readWorkbook(r)
	if err != nil {
		return failure("Error reading Excel file: " + err.Error())
	}

	if missing := t.missingColumns(patronFields); len(missing) > 0 {
		return failure("Missing required columns: " + strings.Join(missing, ", "))
	}

	created := 0
	var errs []string

	for i, row := range t.rows {
		rowNum := i + 2

		raw := rawPatronRow{
			fullName:           t.cell(row, "full_name"),
			email:              t.cell(row, "email"),
			phone:              t.cell(row, "phone"),
			address:            t.cell(row, "address"),
			registrationNumber: t.cell(row, "registration_number"),
			isActive:           t.cell(row, "is_active"),
			isActiveDefault:    true,
		}

		// Skip rows without their identifying fields
		if raw.fullName == "" || raw.registrationNumber == "" {
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

// importRow coerces, checks and persists one candidate row. The
// registration-number check runs before the email check, so a row that
// collides on both reports the registration conflict.
func (p *PatronProcessor) importRow(raw rawPatronRow) string {
	patron := coercePatron(raw)

	exists, err := p.store.ExistsByRegistrationNumber(patron.RegistrationNumber)
	if err != nil {
		return err.Error()
	}
	if exists {
		return fmt.Sprintf("User with registration %s already exists", patron.RegistrationNumber)
	}

	exists, err = p.store.ExistsByEmail(patron.Email)
	if err != nil {
		return err.Error()
	}
	if exists {
		return fmt.Sprintf("User with email %s already exists", patron.Email)
	}

	if err := p.store.Create(patron); err != nil {
		return err.Error()
	}
	return ""
}

// coercePatron converts the raw row into a Patron. No field here can fail
// to parse: strings stay strings and is_active falls back to a literal
// table.
func coercePatron(raw rawPatronRow) *entities.Patron {
	return &entities.Patron{
		FullName:           raw.fullName,
		Email:              raw.email,
		Phone:              raw.phone,
		Address:            raw.address,
		RegistrationNumber: raw.registrationNumber,
		IsActive:           parseBool(raw.isActive, raw.isActiveDefault),
	}
}
