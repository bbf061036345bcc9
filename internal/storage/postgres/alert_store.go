package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// AlertStore implements storage.AlertStore using PostgreSQL.
type AlertStore struct {
	pool *Pool
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(pool *Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

const alertColumns = `
	alert_id, wallet, market_id, question, outcome,
	fired_price, fired_ts, size_usd, signals, signal_key,
	confidence, sensitivity, status,
	peak_price, peak_ts,
	resolved_outcome, resolved_ts, hours_to_outcome,
	price_change, peak_price_change, profit_loss, is_correct
`

// Insert adds a new pending alert. Returns ErrDuplicateKey if alert_id exists.
func (s *AlertStore) Insert(ctx context.Context, a *domain.Alert) error {
	if a == nil || a.AlertID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alerts (
			alert_id, wallet, market_id, question, outcome,
			fired_price, fired_ts, size_usd, signals, signal_key,
			confidence, sensitivity, status
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13
		)
	`

	_, err := s.pool.Exec(ctx, query,
		a.AlertID, a.Wallet, a.MarketID, a.Question, a.Outcome,
		a.FiredPrice, a.FiredTime, a.SizeUSD, a.Signals, a.SignalKey,
		a.Confidence, a.Sensitivity, domain.AlertPending,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// GetByID retrieves an alert. Returns ErrNotFound if not exists.
func (s *AlertStore) GetByID(ctx context.Context, alertID string) (*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE alert_id = $1`

	row := s.pool.QueryRow(ctx, query, alertID)
	a, err := scanAlert(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get alert by id: %w", err)
	}
	return a, nil
}

// Pending retrieves all pending alerts ordered by fired time ASC.
func (s *AlertStore) Pending(ctx context.Context) ([]*domain.Alert, error) {
	return s.byStatus(ctx, domain.AlertPending)
}

// Resolved retrieves all resolved alerts ordered by fired time ASC.
func (s *AlertStore) Resolved(ctx context.Context) ([]*domain.Alert, error) {
	return s.byStatus(ctx, domain.AlertResolved)
}

func (s *AlertStore) byStatus(ctx context.Context, status string) ([]*domain.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE status = $1
		ORDER BY fired_ts ASC, alert_id ASC
	`

	rows, err := s.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("get alerts by status: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// UpdatePeak overwrites peak price/timestamp on a pending alert.
func (s *AlertStore) UpdatePeak(ctx context.Context, alertID string, peakPrice float64, peakTime int64) error {
	query := `
		UPDATE alerts
		SET peak_price = $2, peak_ts = $3
		WHERE alert_id = $1 AND status = 'pending'
	`

	tag, err := s.pool.Exec(ctx, query, alertID, peakPrice, peakTime)
	if err != nil {
		return fmt.Errorf("update alert peak: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Resolve applies the terminal resolution to a pending alert exactly once.
// The status predicate guards the transition at the database level.
func (s *AlertStore) Resolve(ctx context.Context, alertID string, res domain.AlertResolution) error {
	query := `
		UPDATE alerts
		SET status = 'resolved',
		    resolved_outcome  = $2,
		    resolved_ts       = $3,
		    hours_to_outcome  = $4,
		    price_change      = $5,
		    peak_price_change = $6,
		    profit_loss       = $7,
		    is_correct        = $8
		WHERE alert_id = $1 AND status = 'pending'
	`

	tag, err := s.pool.Exec(ctx, query, alertID,
		res.Outcome, res.ResolvedTime, res.HoursToOutcome,
		res.PriceChange, res.PeakPriceChange, res.ProfitLoss, res.IsCorrect,
	)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish missing from already-resolved for the caller.
		if _, getErr := s.GetByID(ctx, alertID); getErr != nil {
			return getErr
		}
		return storage.ErrAlreadyResolved
	}
	return nil
}

// RecentlyFired reports whether any alert for (wallet, market) fired at
// or after the cutoff.
func (s *AlertStore) RecentlyFired(ctx context.Context, wallet, marketID string, since int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE wallet = $1 AND market_id = $2 AND fired_ts >= $3
		)
	`

	var fired bool
	if err := s.pool.QueryRow(ctx, query, wallet, marketID, since).Scan(&fired); err != nil {
		return false, fmt.Errorf("check recently fired: %w", err)
	}
	return fired, nil
}

// scanAlert scans a single row into an Alert.
func scanAlert(row pgx.Row) (*domain.Alert, error) {
	var a domain.Alert

	err := row.Scan(
		&a.AlertID, &a.Wallet, &a.MarketID, &a.Question, &a.Outcome,
		&a.FiredPrice, &a.FiredTime, &a.SizeUSD, &a.Signals, &a.SignalKey,
		&a.Confidence, &a.Sensitivity, &a.Status,
		&a.PeakPrice, &a.PeakTime,
		&a.ResolvedOutcome, &a.ResolvedTime, &a.HoursToOutcome,
		&a.PriceChange, &a.PeakPriceChange, &a.ProfitLoss, &a.IsCorrect,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// scanAlerts scans multiple rows into a slice of Alert.
func scanAlerts(rows pgx.Rows) ([]*domain.Alert, error) {
	var alerts []*domain.Alert

	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rows: %w", err)
	}

	return alerts, nil
}
