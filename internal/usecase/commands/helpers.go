package commands

import (
	"context"
	"strconv"

	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/usecase/shared"
)

func validateID(id int64, kind string) error {
	if id <= 0 {
		return errs.Wrapf(errs.ErrInvalidID, "%s id %d", kind, id)
	}
	return nil
}

func ensureUserExists(ctx context.Context, tx shared.Tx, userID int64) error {
	exists, err := tx.Users().ExistsByID(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errs.Wrapf(errs.ErrUserNotFound, "user %d", userID)
	}
	return nil
}

func keyOf(id int64) string {
	return strconv.FormatInt(id, 10)
}
