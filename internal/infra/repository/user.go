package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/domain/user"
	"commerce-server/internal/infra"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/pgconv"
)

type UserRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewUserRepository(db DBTX, logger *slog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	var (
		name      string
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, `SELECT name, created_at FROM users WHERE id = $1`, id).Scan(&name, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Wrapf(errs.ErrUserNotFound, "user %d", id)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find user by ID", err)
	}
	return user.Reconstruct(id, name, createdAt), nil
}

func (r *UserRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to check user existence", err)
	}
	return exists, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (name, created_at) VALUES ($1, $2) RETURNING id`,
		u.Name(), u.CreatedAt(),
	).Scan(&id)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to create user", err)
	}
	u.AssignID(id)
	return nil
}
