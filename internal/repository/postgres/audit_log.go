package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/repository"
)

type auditLogRepository struct {
	db *sql.DB
}

func NewAuditLogRepository(db *sql.DB) repository.AuditLogRepository {
	return &auditLogRepository{db: db}
}

// execer covers *sql.DB and *sql.Tx so audit appends can join a caller's
// transaction.
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func appendAuditLog(ctx context.Context, e execer, entry *domain.AdminActivityLog) error {
	err := e.QueryRowContext(ctx, `
		INSERT INTO admin_activity_logs (admin_id, action, target_type, target_id, target_name, result, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		entry.AdminID, entry.Action, entry.TargetType, entry.TargetID, entry.TargetName, entry.Result, entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AdminActivityLog) error {
	return appendAuditLog(ctx, r.db, entry)
}

func (r *auditLogRepository) List(ctx context.Context, page, pageSize int32) ([]domain.AdminActivityLog, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int32
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_activity_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, admin_id, action, target_type, target_id, target_name, result, COALESCE(reason, ''), created_at
	          FROM admin_activity_logs
	          ORDER BY created_at DESC
	          LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.AdminActivityLog
	for rows.Next() {
		var e domain.AdminActivityLog
		if err := rows.Scan(&e.ID, &e.AdminID, &e.Action, &e.TargetType, &e.TargetID, &e.TargetName, &e.Result, &e.Reason, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
