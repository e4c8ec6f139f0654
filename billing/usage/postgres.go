package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// counterColumns whitelists the column for each counter. Counter values are
// never interpolated into SQL directly.
var counterColumns = map[Counter]string{
	CounterBooks:           "books_used",
	CounterIllustrations:   "illustrations_used",
	CounterTemplateBooks:   "template_books_used",
	CounterBonusVariations: "bonus_variations_used",
}

// PostgresStore persists accounts in a single wide row per subscriber.
// Atomicity of TryConsume comes from the row-level lock a conditional UPDATE
// takes; Update wraps lifecycle transitions in SELECT ... FOR UPDATE so they
// serialize with consumes on the same row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given connection pool.
// Panics if pool is nil to fail fast during initialization.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("usage: pgx pool is required")
	}
	return &PostgresStore{pool: pool}
}

const accountColumns = `id, plan_id, status, cancel_at_period_end,
	trial_ends_at, current_period_start, current_period_end, last_payment_date,
	books_used, illustrations_used, template_books_used, bonus_variations_used,
	provider_customer_id, provider_sub_id, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, account *Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		account.ID, account.PlanID, account.Status, account.CancelAtPeriodEnd,
		account.TrialEndsAt, account.CurrentPeriodStart, account.CurrentPeriodEnd, account.LastPaymentDate,
		account.BooksUsed, account.IllustrationsUsed, account.TemplateBooksUsed, account.BonusVariationsUsed,
		account.ProviderCustomerID, account.ProviderSubID, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAccountAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, accountID uuid.UUID) (*Account, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE id = $1`, accountID)
	return scanAccount(row)
}

func (s *PostgresStore) Update(ctx context.Context, accountID uuid.UUID, fn func(*Account) error) (*Account, error) {
	var updated *Account

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT `+accountColumns+`
			FROM accounts WHERE id = $1 FOR UPDATE`, accountID)
		account, err := scanAccount(row)
		if err != nil {
			return err
		}

		if err := fn(account); err != nil {
			return err
		}
		account.UpdatedAt = time.Now().UTC()

		_, err = tx.Exec(ctx, `
			UPDATE accounts SET
				plan_id = $2, status = $3, cancel_at_period_end = $4,
				trial_ends_at = $5, current_period_start = $6, current_period_end = $7,
				last_payment_date = $8, books_used = $9, illustrations_used = $10,
				template_books_used = $11, bonus_variations_used = $12,
				provider_customer_id = $13, provider_sub_id = $14, updated_at = $15
			WHERE id = $1`,
			account.ID, account.PlanID, account.Status, account.CancelAtPeriodEnd,
			account.TrialEndsAt, account.CurrentPeriodStart, account.CurrentPeriodEnd,
			account.LastPaymentDate, account.BooksUsed, account.IllustrationsUsed,
			account.TemplateBooksUsed, account.BonusVariationsUsed,
			account.ProviderCustomerID, account.ProviderSubID, account.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update account: %w", err)
		}

		updated = account
		return nil
	})
	if err != nil {
		return nil, mapConflict(err)
	}
	return updated, nil
}

func (s *PostgresStore) TryConsume(ctx context.Context, accountID uuid.UUID, counter Counter, amount, limit int64) (ConsumeResult, error) {
	column, ok := counterColumns[counter]
	if !ok {
		return ConsumeResult{}, ErrUnknownCounter
	}
	if amount <= 0 {
		return ConsumeResult{}, ErrInvalidAmount
	}

	// Single conditional update: the row lock taken by UPDATE makes the
	// limit check and the increment indivisible. Room is checked by
	// subtraction so an oversized amount cannot wrap the counter negative or
	// push the increment out of bigint range.
	var newValue int64
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE accounts
		SET %[1]s = %[1]s + $2, updated_at = now()
		WHERE id = $1 AND (
			($3 = -1 AND %[1]s <= 9223372036854775807 - $2)
			OR ($3 <> -1 AND $2 <= $3 - %[1]s)
		)
		RETURNING %[1]s`, column),
		accountID, amount, limit,
	).Scan(&newValue)
	if err == nil {
		return ConsumeResult{
			Allowed:   true,
			NewValue:  newValue,
			Remaining: remaining(newValue, limit),
		}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return ConsumeResult{}, mapConflict(fmt.Errorf("consume %s: %w", counter, err))
	}

	// No row updated: either the account is missing or the increment would
	// overshoot. Read the current value to tell the two apart.
	var current int64
	err = s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, column),
		accountID,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ConsumeResult{}, ErrAccountNotFound
	}
	if err != nil {
		return ConsumeResult{}, fmt.Errorf("read counter %s: %w", counter, err)
	}

	return ConsumeResult{
		Allowed:   false,
		NewValue:  current,
		Remaining: remaining(current, limit),
	}, nil
}

func (s *PostgresStore) Refund(ctx context.Context, accountID uuid.UUID, counter Counter, amount int64) error {
	column, ok := counterColumns[counter]
	if !ok {
		return ErrUnknownCounter
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE accounts
		SET %[1]s = GREATEST(%[1]s - $2, 0), updated_at = now()
		WHERE id = $1`, column),
		accountID, amount,
	)
	if err != nil {
		return mapConflict(fmt.Errorf("refund %s: %w", counter, err))
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *PostgresStore) ResetPeriodCounters(ctx context.Context, accountID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts
		SET books_used = 0, illustrations_used = 0,
			template_books_used = 0, bonus_variations_used = 0,
			updated_at = now()
		WHERE id = $1`, accountID)
	if err != nil {
		return mapConflict(fmt.Errorf("reset counters: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.PlanID, &a.Status, &a.CancelAtPeriodEnd,
		&a.TrialEndsAt, &a.CurrentPeriodStart, &a.CurrentPeriodEnd, &a.LastPaymentDate,
		&a.BooksUsed, &a.IllustrationsUsed, &a.TemplateBooksUsed, &a.BonusVariationsUsed,
		&a.ProviderCustomerID, &a.ProviderSubID, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &a, nil
}

// mapConflict translates serialization and deadlock failures into
// ErrStorageConflict so callers know to retry.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return errors.Join(ErrStorageConflict, err)
	}
	return err
}
