package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/wimotos/wimotos/internal/integration/blibsend"
	"github.com/wimotos/wimotos/internal/viewmodel"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskFinanceReminders scans pending payables due today or earlier.
	TaskFinanceReminders = "reminders:finance"
	// TaskInstallmentsDueSoon scans installments about to fall due.
	TaskInstallmentsDueSoon = "reminders:installments-due"
	// TaskInstallmentsOverdue scans installments past their due date.
	TaskInstallmentsOverdue = "reminders:installments-overdue"
)

// ScanPayload carries scheduling metadata for a reminder scan.
type ScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewScanTask constructs a reminder scan task of the given type.
func NewScanTask(taskType string, at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body, asynq.Queue(QueueDefault)), nil
}

// Sender delivers WhatsApp text messages.
type Sender interface {
	SendText(ctx context.Context, to []string, body string) (*blibsend.SendResult, error)
}

// ReminderConfig tunes the reminder scans.
type ReminderConfig struct {
	// OwnerNumber receives every reminder.
	OwnerNumber string
	// DueSoonDays is how many days ahead the due-soon scan looks.
	DueSoonDays int
	// BatchLimit caps rows claimed per scan.
	BatchLimit int
}

// Reminders runs the three WhatsApp reminder scans. Each row carries its
// own retry sub-state so a failed send backs off without blocking the
// rest of the batch.
type Reminders struct {
	logger *slog.Logger
	store  Store
	sender Sender
	config ReminderConfig
	now    func() time.Time
}

// NewReminders constructs the reminder processor.
func NewReminders(logger *slog.Logger, store Store, sender Sender, config ReminderConfig) *Reminders {
	if logger == nil {
		logger = slog.Default()
	}
	if config.DueSoonDays <= 0 {
		config.DueSoonDays = 3
	}
	if config.BatchLimit <= 0 {
		config.BatchLimit = 100
	}
	return &Reminders{logger: logger, store: store, sender: sender, config: config, now: time.Now}
}

// Mount registers the reminder handlers on the worker mux.
func (r *Reminders) Mount(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskFinanceReminders, r.handleFinance)
	mux.HandleFunc(TaskInstallmentsDueSoon, r.handleDueSoon)
	mux.HandleFunc(TaskInstallmentsOverdue, r.handleOverdue)
}

func (r *Reminders) handleFinance(ctx context.Context, t *asynq.Task) error {
	sent, err := r.ScanFinance(ctx)
	if err != nil {
		return err
	}
	if sent > 0 {
		r.logger.Info("finance reminders sent", slog.Int("count", sent))
	}
	return nil
}

func (r *Reminders) handleDueSoon(ctx context.Context, t *asynq.Task) error {
	sent, err := r.ScanInstallmentsDueSoon(ctx)
	if err != nil {
		return err
	}
	if sent > 0 {
		r.logger.Info("due-soon reminders sent", slog.Int("count", sent))
	}
	return nil
}

func (r *Reminders) handleOverdue(ctx context.Context, t *asynq.Task) error {
	sent, err := r.ScanInstallmentsOverdue(ctx)
	if err != nil {
		return err
	}
	if sent > 0 {
		r.logger.Info("overdue reminders sent", slog.Int("count", sent))
	}
	return nil
}

// ScanFinance notifies about pending payables due today or earlier.
func (r *Reminders) ScanFinance(ctx context.Context) (int, error) {
	now := r.now().UTC()
	rows, err := r.store.PendingFinance(ctx, now, r.config.BatchLimit)
	if err != nil {
		return 0, fmt.Errorf("scan finance: %w", err)
	}

	sent := 0
	for _, row := range rows {
		if err := r.store.FinanceSending(ctx, row.ID); err != nil {
			return sent, err
		}
		msg := financeMessage(row)
		if _, err := r.sender.SendText(ctx, []string{r.config.OwnerNumber}, msg); err != nil {
			r.failFinance(ctx, row, err)
			continue
		}
		if err := r.store.FinanceSent(ctx, row.ID, r.now().UTC()); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// ScanInstallmentsDueSoon notifies about installments falling due within
// the configured window.
func (r *Reminders) ScanInstallmentsDueSoon(ctx context.Context) (int, error) {
	now := r.now().UTC()
	until := now.AddDate(0, 0, r.config.DueSoonDays)
	rows, err := r.store.DueSoonInstallments(ctx, now, until, r.config.BatchLimit)
	if err != nil {
		return 0, fmt.Errorf("scan due-soon installments: %w", err)
	}
	return r.sendInstallments(ctx, rows, LaneDue, dueSoonMessage)
}

// ScanInstallmentsOverdue notifies about installments past their due date.
func (r *Reminders) ScanInstallmentsOverdue(ctx context.Context) (int, error) {
	now := r.now().UTC()
	rows, err := r.store.OverdueInstallments(ctx, now, r.config.BatchLimit)
	if err != nil {
		return 0, fmt.Errorf("scan overdue installments: %w", err)
	}
	return r.sendInstallments(ctx, rows, LaneOverdue, overdueMessage)
}

func (r *Reminders) sendInstallments(ctx context.Context, rows []InstallmentReminder, lane Lane, message func(InstallmentReminder) string) (int, error) {
	sent := 0
	for _, row := range rows {
		if err := r.store.InstallmentSending(ctx, row.ID, lane); err != nil {
			return sent, err
		}
		if _, err := r.sender.SendText(ctx, []string{r.config.OwnerNumber}, message(row)); err != nil {
			r.failInstallment(ctx, row, lane, err)
			continue
		}
		if err := r.store.InstallmentSent(ctx, row.ID, lane, r.now().UTC()); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (r *Reminders) failFinance(ctx context.Context, row FinanceReminder, sendErr error) {
	tries := row.Tries + 1
	retryAt := r.now().UTC().Add(Backoff(tries))
	if err := r.store.FinanceFailed(ctx, row.ID, truncateError(sendErr), tries, retryAt); err != nil {
		r.logger.Error("mark finance reminder failed", slog.Any("error", err), slog.Int64("id", row.ID))
	}
}

func (r *Reminders) failInstallment(ctx context.Context, row InstallmentReminder, lane Lane, sendErr error) {
	tries := row.Tries + 1
	retryAt := r.now().UTC().Add(Backoff(tries))
	if err := r.store.InstallmentFailed(ctx, row.ID, lane, truncateError(sendErr), tries, retryAt); err != nil {
		r.logger.Error("mark installment reminder failed", slog.Any("error", err), slog.Int64("id", row.ID))
	}
}

// Backoff returns the retry delay for the given attempt count.
func Backoff(tries int) time.Duration {
	switch {
	case tries <= 1:
		return time.Minute
	case tries == 2:
		return 5 * time.Minute
	case tries == 3:
		return 15 * time.Minute
	case tries == 4:
		return time.Hour
	default:
		return 6 * time.Hour
	}
}

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > 500 {
		msg = msg[:500]
	}
	return msg
}

func financeMessage(row FinanceReminder) string {
	return fmt.Sprintf("Conta a pagar pendente\nEmpresa: %s\nValor: %s\nVenc.: %s\nID: %d",
		row.Company,
		viewmodel.FormatMoney(row.Amount),
		viewmodel.FormatDate(row.DueDate.Format("2006-01-02")),
		row.ID)
}

func dueSoonMessage(row InstallmentReminder) string {
	return fmt.Sprintf("Parcela vence em breve\nContrato: %s\nParcela: %d\nVenc.: %s\nValor: %s",
		row.ContractPublicID,
		row.Number,
		viewmodel.FormatDate(row.DueDate.Format("2006-01-02")),
		viewmodel.FormatMoney(row.Amount))
}

func overdueMessage(row InstallmentReminder) string {
	return fmt.Sprintf("Parcela vencida\nContrato: %s\nParcela: %d\nVenc.: %s\nValor: %s",
		row.ContractPublicID,
		row.Number,
		viewmodel.FormatDate(row.DueDate.Format("2006-01-02")),
		viewmodel.FormatMoney(row.Amount))
}
