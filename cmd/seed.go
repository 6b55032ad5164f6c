package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/db"
	"github.com/promptdeck/promptdeck/internal/model"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo customers and prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Println(">> Seeding demo customers...")

		if err := seedCustomers(sqlDB); err != nil {
			return err
		}
		if err := seedPrompts(sqlDB); err != nil {
			return err
		}

		log.Println(">> Seed completed ✅")
		return nil
	},
}

// seedCustomers inserts deterministic demo customers (idempotent).
func seedCustomers(dbx *sqlx.DB) error {
	customers := []model.Customer{
		{
			UserID:     "user_demo_free",
			Membership: model.MembershipFree,
		},
		{
			UserID:               "user_demo_pro",
			Membership:           model.MembershipPro,
			StripeCustomerID:     strptr("cus_demo_000000000001"),
			StripeSubscriptionID: strptr("sub_demo_000000000001"),
		},
		{
			UserID:     "user_demo_churned",
			Membership: model.MembershipFree,
			// kept their customer link after cancellation
			StripeCustomerID: strptr("cus_demo_000000000002"),
		},
	}

	const q = `
INSERT INTO customers
    (user_id, membership, stripe_customer_id, stripe_subscription_id, created_at, updated_at)
VALUES
    (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    membership             = VALUES(membership),
    stripe_customer_id     = VALUES(stripe_customer_id),
    stripe_subscription_id = VALUES(stripe_subscription_id),
    updated_at             = VALUES(updated_at)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for _, c := range customers {
		if _, err := tx.Exec(q, c.UserID, c.Membership, c.StripeCustomerID, c.StripeSubscriptionID, now, now); err != nil {
			return fmt.Errorf("insert customer %q: %w", c.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit customers: %w", err)
	}
	return nil
}

// seedPrompts inserts a handful of sample prompts with fixed IDs (idempotent).
func seedPrompts(dbx *sqlx.DB) error {
	prompts := []model.Prompt{
		{
			ID:          "01J00000000000000000SEED01",
			UserID:      "user_demo_free",
			Name:        "Summarize meeting notes",
			Description: "Condense raw notes into action items",
			Content:     "Summarize the following meeting notes into a bullet list of decisions and action items:\n\n{{notes}}",
		},
		{
			ID:          "01J00000000000000000SEED02",
			UserID:      "user_demo_free",
			Name:        "Rewrite politely",
			Description: "Soften the tone of a message",
			Content:     "Rewrite the following message to be polite and professional while keeping the meaning:\n\n{{message}}",
		},
		{
			ID:          "01J00000000000000000SEED03",
			UserID:      "user_demo_pro",
			Name:        "SQL explainer",
			Description: "Explain a SQL query step by step",
			Content:     "Explain what the following SQL query does, table by table and clause by clause:\n\n{{query}}",
		},
	}

	const q = `
INSERT INTO prompts
    (id, user_id, name, description, content, created_at, updated_at)
VALUES
    (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    name        = VALUES(name),
    description = VALUES(description),
    content     = VALUES(content),
    updated_at  = VALUES(updated_at)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for _, p := range prompts {
		if _, err := tx.Exec(q, p.ID, p.UserID, p.Name, p.Description, p.Content, now, now); err != nil {
			return fmt.Errorf("insert prompt %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit prompts: %w", err)
	}
	return nil
}

func strptr(s string) *string { return &s }
