package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/promptdeck/promptdeck/internal/model"
)

// CustomersRepository persists the user -> Stripe link and membership tier.
// Two distinct update keys on purpose: checkout events are the only ones
// carrying the internal user id, so they address rows by user_id; all later
// subscription events can only address rows by the Stripe customer id.
type CustomersRepository interface {
	Create(ctx context.Context, c model.Customer) error
	GetByUserID(ctx context.Context, userID string) (*model.Customer, error)
	UpdateByUserID(ctx context.Context, userID string, p model.CustomerPatch) (*model.Customer, error)
	UpdateByStripeCustomerID(ctx context.Context, stripeCustomerID string, p model.CustomerPatch) (*model.Customer, error)
}

type CustomersRepositoryImpl struct {
	db *sqlx.DB
}

func NewCustomersRepository(db *sqlx.DB) *CustomersRepositoryImpl {
	return &CustomersRepositoryImpl{db: db}
}

var _ CustomersRepository = (*CustomersRepositoryImpl)(nil)

func (r *CustomersRepositoryImpl) Create(ctx context.Context, c model.Customer) error {
	const q = `
		INSERT INTO customers
		    (user_id, membership, stripe_customer_id, stripe_subscription_id, created_at, updated_at)
		VALUES
		    (?, ?, ?, ?, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, q,
		c.UserID, c.Membership.String(), c.StripeCustomerID, c.StripeSubscriptionID,
	)
	return err
}

func (r *CustomersRepositoryImpl) GetByUserID(ctx context.Context, userID string) (*model.Customer, error) {
	var c model.Customer
	err := r.db.GetContext(ctx, &c, `
		SELECT user_id, membership, stripe_customer_id, stripe_subscription_id, created_at, updated_at
		  FROM customers
		 WHERE user_id = ? LIMIT 1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateByUserID rewrites membership and both Stripe ids on the row keyed by
// the internal user id. This is the checkout upsert path, where re-linking to
// a new Stripe customer is legitimate. Returns (nil, nil) when no row matched.
func (r *CustomersRepositoryImpl) UpdateByUserID(ctx context.Context, userID string, p model.CustomerPatch) (*model.Customer, error) {
	const q = `
		UPDATE customers
		   SET membership = ?, stripe_customer_id = ?, stripe_subscription_id = ?, updated_at = NOW()
		 WHERE user_id = ?
	`
	return r.updateAndReload(ctx, "user_id", userID, q,
		p.Membership.String(), p.StripeCustomerID, p.StripeSubscriptionID, userID)
}

// UpdateByStripeCustomerID sets membership and subscription id on the row
// keyed by the Stripe customer id (which itself stays untouched). Returns
// (nil, nil) when no row matched; the caller decides whether that is an
// anomaly or an error. stripe_customer_id carries no uniqueness constraint;
// if duplicates ever exist, all matching rows are updated and the first is
// returned.
func (r *CustomersRepositoryImpl) UpdateByStripeCustomerID(ctx context.Context, stripeCustomerID string, p model.CustomerPatch) (*model.Customer, error) {
	const q = `
		UPDATE customers
		   SET membership = ?, stripe_subscription_id = ?, updated_at = NOW()
		 WHERE stripe_customer_id = ?
	`
	return r.updateAndReload(ctx, "stripe_customer_id", stripeCustomerID, q,
		p.Membership.String(), p.StripeSubscriptionID, stripeCustomerID)
}

func (r *CustomersRepositoryImpl) updateAndReload(ctx context.Context, keyCol, key, q string, args ...any) (*model.Customer, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// MySQL reports 0 affected rows for no-op updates too, so check
		// whether the row exists before declaring a miss.
		var exists int
		err := tx.QueryRowxContext(ctx,
			"SELECT 1 FROM customers WHERE "+keyCol+" = ? LIMIT 1", key,
		).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}

	var c model.Customer
	err = tx.GetContext(ctx, &c, `
		SELECT user_id, membership, stripe_customer_id, stripe_subscription_id, created_at, updated_at
		  FROM customers
		 WHERE `+keyCol+` = ? LIMIT 1
	`, key)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &c, nil
}
