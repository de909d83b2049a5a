package entities

import "time"

type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "active"
	LoanStatusReturned LoanStatus = "returned"
	LoanStatusOverdue  LoanStatus = "overdue"
	LoanStatusRenewed  LoanStatus = "renewed"
)

// DefaultLoanPeriodDays is applied when a loan is created without an
// explicit due date.
const DefaultLoanPeriodDays = 14

// Loan links one Book to one Patron for a borrowing period. Creating a
// loan consumes one available copy of the book; marking it returned gives
// the copy back.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookID     uint       `gorm:"index" json:"book_id"`
	PatronID   uint       `gorm:"index" json:"patron_id"`
	Book       Book       `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Patron     Patron     `gorm:"foreignKey:PatronID" json:"patron,omitempty"`
	LoanDate   time.Time  `gorm:"index" json:"loan_date"`
	DueDate    time.Time  `gorm:"index" json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     LoanStatus `gorm:"index;size:20;default:'active'" json:"status"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsOverdue reports whether the loan is past due and still out.
func (l *Loan) IsOverdue(now time.Time) bool {
	if l.Status == LoanStatusReturned {
		return false
	}
	return now.After(l.DueDate)
}

// DaysOverdue returns how many whole days past due the loan is, zero if
// it is not overdue.
func (l *Loan) DaysOverdue(now time.Time) int {
	if !l.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(l.DueDate).Hours() / 24)
}
