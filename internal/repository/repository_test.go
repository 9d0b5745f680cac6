package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"vidtube/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestCommentRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	id := models.NewID()
	missing := models.NewID()

	tests := []struct {
		name         string
		commentID    string
		mockBehavior func()
		expectedCode string
	}{
		{
			name:      "Success",
			commentID: id,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "content", "video_id", "owner_id"}).
					AddRow(id, "first!", models.NewID(), models.NewID())
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE id = $1 ORDER BY "comments"."id" LIMIT $2`)).
					WithArgs(id, 1).
					WillReturnRows(rows)
			},
		},
		{
			name:      "Not Found",
			commentID: missing,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE id = $1 ORDER BY "comments"."id" LIMIT $2`)).
					WithArgs(missing, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
		{
			name:      "Driver failure",
			commentID: missing,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments"`)).
					WithArgs(missing, 1).
					WillReturnError(errors.New("connection reset"))
			},
			expectedCode: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			comment, err := repo.GetByID(ctx, tt.commentID)

			if tt.expectedCode != "" {
				assert.True(t, models.HasCode(err, tt.expectedCode), "got %v", err)
			} else if assert.NoError(t, err) {
				assert.Equal(t, "first!", comment.Content)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_UpdateFieldsConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.UpdateFields(context.Background(), models.NewID(), map[string]any{"email": "taken@example.com"})
	assert.True(t, models.HasCode(err, models.CodeConflict), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"sqlite message", errors.New("UNIQUE constraint failed: users.email"), true},
		{"other", errors.New("timeout"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestLikeAggregates(t *testing.T) {
	sel, args := likeAggregates("videos", models.LikeTargetVideo, "")
	assert.Contains(t, sel, "(1 = 0) AS is_liked")
	assert.Equal(t, []any{models.LikeTargetVideo}, args)

	sel, args = likeAggregates("comments", models.LikeTargetComment, "u1")
	assert.Contains(t, sel, "likes.target_id = comments.id AND likes.liked_by = ?")
	assert.Equal(t, []any{models.LikeTargetComment, models.LikeTargetComment, "u1"}, args)
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, pageOffset(0, 10))
	assert.Equal(t, 0, pageOffset(1, 10))
	assert.Equal(t, 20, pageOffset(3, 10))
}
