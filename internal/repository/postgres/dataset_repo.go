// internal/repository/postgres/dataset_repo.go
package postgres

import (
	"context"
	"fmt"

	"planwise-service/internal/domain/dataset"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DatasetRepository loads the five recommendation relations as whole
// in-memory tables. Plan and subscription rows keep their table order;
// downstream tie-breaking depends on it.
type DatasetRepository struct {
	db *pgxpool.Pool
}

func NewDatasetRepository(db *pgxpool.Pool) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// LoadDataset reads all five relations. The result is a consistent unit of
// work for one model build; callers must not mutate it.
func (r *DatasetRepository) LoadDataset(ctx context.Context) (dataset.Dataset, error) {
	var ds dataset.Dataset
	var err error

	if ds.Users, err = r.loadUsers(ctx); err != nil {
		return dataset.Dataset{}, err
	}
	if ds.Plans, err = r.loadPlans(ctx); err != nil {
		return dataset.Dataset{}, err
	}
	if ds.Subscriptions, err = r.loadSubscriptions(ctx); err != nil {
		return dataset.Dataset{}, err
	}
	if ds.Logs, err = r.loadLogs(ctx); err != nil {
		return dataset.Dataset{}, err
	}
	if ds.Billing, err = r.loadBilling(ctx); err != nil {
		return dataset.Dataset{}, err
	}
	return ds, nil
}

func (r *DatasetRepository) loadUsers(ctx context.Context) ([]dataset.User, error) {
	query := `
		SELECT id, name, email, age
		FROM users
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (dataset.User, error) {
		var u dataset.User
		err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Age)
		return u, err
	})
}

func (r *DatasetRepository) loadPlans(ctx context.Context) ([]dataset.Plan, error) {
	query := `
		SELECT id, name, price, auto_renewal_allowed
		FROM subscription_plans
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load plans: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (dataset.Plan, error) {
		var p dataset.Plan
		err := row.Scan(&p.ID, &p.Name, &p.Price, &p.AutoRenewalAllowed)
		return p, err
	})
}

func (r *DatasetRepository) loadSubscriptions(ctx context.Context) ([]dataset.Subscription, error) {
	query := `
		SELECT id, user_id, plan_id, status
		FROM subscriptions
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (dataset.Subscription, error) {
		var s dataset.Subscription
		err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &s.Status)
		return s, err
	})
}

func (r *DatasetRepository) loadLogs(ctx context.Context) ([]dataset.SubscriptionLog, error) {
	query := `
		SELECT id, subscription_id, action
		FROM subscription_logs
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription logs: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (dataset.SubscriptionLog, error) {
		var l dataset.SubscriptionLog
		err := row.Scan(&l.ID, &l.SubscriptionID, &l.Action)
		return l, err
	})
}

func (r *DatasetRepository) loadBilling(ctx context.Context) ([]dataset.BillingRecord, error) {
	query := `
		SELECT subscription_id, amount, payment_status
		FROM billing_records
		ORDER BY subscription_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load billing records: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (dataset.BillingRecord, error) {
		var b dataset.BillingRecord
		err := row.Scan(&b.SubscriptionID, &b.Amount, &b.PaymentStatus)
		return b, err
	})
}

func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return out, nil
}
