package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/openshelf/openshelf/internal/entities"
)

// LoanGetter loads a loan with its book and patron for notice rendering.
type LoanGetter interface {
	GetByID(id uint) (*entities.Loan, error)
}

// NoticeRecorder records that a notice went out for a loan.
type NoticeRecorder interface {
	LogLoan(accountID uint, action string, loanID uint, description string, err error)
}

// OverdueNoticeTask notifies about a single overdue loan. Delivery is a
// log line plus an audit event; an SMTP hookup can replace the log line
// without touching the queue.
type OverdueNoticeTask struct {
	LoanID uint `json:"loan_id"`
}

// Config returns the queue configuration for overdue notice tasks.
func (t OverdueNoticeTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "overdue_notice",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// OverdueNoticeProcessor creates a processor function for
// OverdueNoticeTask.
func OverdueNoticeProcessor(loans LoanGetter, recorder NoticeRecorder) backlite.QueueProcessor[OverdueNoticeTask] {
	return func(ctx context.Context, task OverdueNoticeTask) error {
		if loans == nil {
			return fmt.Errorf("loan store not configured")
		}

		loan, err := loans.GetByID(task.LoanID)
		if err != nil {
			return fmt.Errorf("load loan %d: %w", task.LoanID, err)
		}

		// Loan may have been returned between enqueue and processing
		if loan.Status == entities.LoanStatusReturned {
			return nil
		}

		days := loan.DaysOverdue(time.Now())
		description := fmt.Sprintf(
			"Overdue notice: %q due %s (%d days overdue), patron %s <%s>",
			loan.Book.Title,
			loan.DueDate.Format("2006-01-02"),
			days,
			loan.Patron.FullName,
			loan.Patron.Email,
		)

		log.Printf("[TASK] %s", description)

		if recorder != nil {
			recorder.LogLoan(0, "overdue_notice", loan.ID, description, nil)
		}
		return nil
	}
}

// NewOverdueNoticeQueue creates a backlite queue for overdue notices.
func NewOverdueNoticeQueue(loans LoanGetter, recorder NoticeRecorder) backlite.Queue {
	return backlite.NewQueue(OverdueNoticeProcessor(loans, recorder))
}
