// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vidtube/internal/database"
	"vidtube/internal/models"
	"vidtube/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// profileColumns projects the joined users row onto models.OwnerProfile (prefix profile_).
const profileColumns = "users.id AS profile_id, users.username AS profile_username, " +
	"users.full_name AS profile_full_name, users.avatar AS profile_avatar"

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// likeAggregates returns the likes_count and is_liked select expressions for rows of table
// whose likes have the given target type. Anonymous requesters never have liked anything.
func likeAggregates(table, targetType, requesterID string) (string, []any) {
	sel := fmt.Sprintf("(SELECT COUNT(*) FROM likes WHERE likes.target_type = ? AND likes.target_id = %s.id) AS likes_count", table)
	args := []any{targetType}
	if requesterID == "" {
		return sel + ", (1 = 0) AS is_liked", args
	}
	sel += fmt.Sprintf(", EXISTS(SELECT 1 FROM likes WHERE likes.target_type = ? AND likes.target_id = %s.id AND likes.liked_by = ?) AS is_liked", table)
	return sel, append(args, targetType, requesterID)
}

// toggle deletes the rows matching match; when nothing was deleted it inserts row,
// ignoring a concurrent insert of the same key. It reports whether the row now exists.
func toggle(ctx context.Context, db *gorm.DB, row any, match map[string]any) (bool, error) {
	res := db.WithContext(ctx).Where(match).Delete(row)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return true, nil
}

func pageOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound AppError and anything else to Internal.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// writeErr maps unique-index violations to Conflict and anything else to Internal.
func writeErr(err error, conflictMsg string) error {
	if isUniqueViolation(err) {
		return &models.AppError{Code: models.CodeConflict, Message: conflictMsg, Err: err}
	}
	return models.NewInternalError(err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func track(ctx context.Context, method, table string) (context.Context, func()) {
	done := observability.TrackQuery(method, table)
	ctx, span := observability.StartRepositorySpan(ctx, method, table)
	return ctx, func() {
		span.End()
		done()
	}
}
