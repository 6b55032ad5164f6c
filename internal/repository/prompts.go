package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/promptdeck/promptdeck/internal/model"
)

// PromptsRepository defines persistence for the prompts table. Update and
// Delete are owner-scoped: they only touch rows belonging to the given user.
type PromptsRepository interface {
	Insert(ctx context.Context, p model.Prompt) error
	ListByUserID(ctx context.Context, userID string) ([]model.Prompt, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, userID string, p model.Prompt) (*model.Prompt, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type PromptsRepositoryImpl struct {
	db *sqlx.DB
}

func NewPromptsRepository(db *sqlx.DB) *PromptsRepositoryImpl {
	return &PromptsRepositoryImpl{db: db}
}

var _ PromptsRepository = (*PromptsRepositoryImpl)(nil)

func (r *PromptsRepositoryImpl) Insert(ctx context.Context, p model.Prompt) error {
	const q = `
		INSERT INTO prompts
		    (id, user_id, name, description, content, created_at, updated_at)
		VALUES
		    (?, ?, ?, ?, ?, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, q, p.ID, p.UserID, p.Name, p.Description, p.Content)
	return err
}

// ListByUserID returns the user's prompts, newest first.
func (r *PromptsRepositoryImpl) ListByUserID(ctx context.Context, userID string) ([]model.Prompt, error) {
	var rows []model.Prompt
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, name, description, content, created_at, updated_at
		  FROM prompts
		 WHERE user_id = ?
		 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PromptsRepositoryImpl) CountByUserID(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM prompts WHERE user_id = ?`, userID)
	return n, err
}

// Update rewrites name/description/content for the prompt owned by userID.
// Returns (nil, nil) when no owned row matched.
func (r *PromptsRepositoryImpl) Update(ctx context.Context, userID string, p model.Prompt) (*model.Prompt, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE prompts
		   SET name = ?, description = ?, content = ?, updated_at = NOW()
		 WHERE id = ? AND user_id = ?
	`, p.Name, p.Description, p.Content, p.ID, userID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowxContext(ctx,
			"SELECT 1 FROM prompts WHERE id = ? AND user_id = ? LIMIT 1", p.ID, userID,
		).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}

	var out model.Prompt
	err = tx.GetContext(ctx, &out, `
		SELECT id, user_id, name, description, content, created_at, updated_at
		  FROM prompts
		 WHERE id = ? AND user_id = ? LIMIT 1
	`, p.ID, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the prompt owned by userID. Returns false when no owned row matched.
func (r *PromptsRepositoryImpl) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prompts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
