package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/repository/postgres"
)

func TestTokenBlacklistRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewTokenBlacklistRepository(db)
	ctx := context.Background()

	t.Run("Revoke", func(t *testing.T) {
		token := &domain.RevokedToken{JTI: "jti-1", UserID: 7, ExpiresAt: time.Now().Add(time.Hour)}

		mock.ExpectExec("INSERT INTO revoked_tokens").
			WithArgs("jti-1", int32(7), token.ExpiresAt, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Revoke(ctx, token))
		assert.False(t, token.RevokedAt.IsZero())
	})

	t.Run("RevokeIsIdempotent", func(t *testing.T) {
		token := &domain.RevokedToken{JTI: "jti-1", UserID: 7, ExpiresAt: time.Now().Add(time.Hour)}

		// ON CONFLICT DO NOTHING swallows the duplicate.
		mock.ExpectExec("INSERT INTO revoked_tokens").
			WithArgs("jti-1", int32(7), token.ExpiresAt, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Revoke(ctx, token))
	})

	t.Run("IsRevoked", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("jti-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		revoked, err := repo.IsRevoked(ctx, "jti-1")
		assert.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("DeleteExpired", func(t *testing.T) {
		now := time.Now()
		mock.ExpectExec("DELETE FROM revoked_tokens").
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 5))

		n, err := repo.DeleteExpired(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, int64(5), n)
	})
}
