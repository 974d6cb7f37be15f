package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/logger"
	"ecoloop-backend/internal/repository"
)

type roleApplicationRepository struct {
	db *sql.DB
}

func NewRoleApplicationRepository(db *sql.DB) repository.RoleApplicationRepository {
	return &roleApplicationRepository{db: db}
}

const applicationColumns = `id, applicant_id, role_name, COALESCE(organization_name, ''), COALESCE(registration_no, ''), justification, status, reviewed_by, reviewed_at, COALESCE(admin_notes, ''), created_at, updated_at`

func (r *roleApplicationRepository) Create(ctx context.Context, app *domain.RoleApplication, docs []domain.RoleApplicationDocument) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO role_applications (applicant_id, role_name, organization_name, registration_no, justification, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		app.ApplicantID, app.RoleName, app.OrganizationName, app.RegistrationNo, app.Justification, app.Status,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}

	for i := range docs {
		docs[i].ApplicationID = app.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO role_application_documents (application_id, file_name, storage_key, content_type)
			VALUES ($1, $2, $3, $4)
			RETURNING id, uploaded_at`,
			docs[i].ApplicationID, docs[i].FileName, docs[i].StorageKey, docs[i].ContentType,
		).Scan(&docs[i].ID, &docs[i].UploadedAt)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *roleApplicationRepository) GetByID(ctx context.Context, id int32) (*domain.RoleApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM role_applications WHERE id = $1`
	return scanApplication(r.db.QueryRowContext(ctx, query, id))
}

func scanApplication(row *sql.Row) (*domain.RoleApplication, error) {
	app := &domain.RoleApplication{}
	err := row.Scan(&app.ID, &app.ApplicantID, &app.RoleName, &app.OrganizationName, &app.RegistrationNo,
		&app.Justification, &app.Status, &app.ReviewedBy, &app.ReviewedAt, &app.AdminNotes,
		&app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *roleApplicationRepository) HasPending(ctx context.Context, applicantID int32, roleName string) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM role_applications
	            WHERE applicant_id = $1 AND role_name = $2 AND status = $3)`
	var has bool
	err := r.db.QueryRowContext(ctx, query, applicantID, roleName, domain.ApplicationStatusPending).Scan(&has)
	if err != nil {
		return false, err
	}
	return has, nil
}

func (r *roleApplicationRepository) ListByApplicant(ctx context.Context, applicantID int32) ([]domain.RoleApplication, error) {
	query := `SELECT ` + applicationColumns + `
	          FROM role_applications
	          WHERE applicant_id = $1
	          ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *roleApplicationRepository) ListByStatus(ctx context.Context, status domain.ApplicationStatus, page, pageSize int32) ([]domain.RoleApplication, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int32
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM role_applications WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + applicationColumns + `
	          FROM role_applications
	          WHERE status = $1
	          ORDER BY created_at DESC
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps, err := collectApplications(rows)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func collectApplications(rows *sql.Rows) ([]domain.RoleApplication, error) {
	var apps []domain.RoleApplication
	for rows.Next() {
		var app domain.RoleApplication
		if err := rows.Scan(&app.ID, &app.ApplicantID, &app.RoleName, &app.OrganizationName, &app.RegistrationNo,
			&app.Justification, &app.Status, &app.ReviewedBy, &app.ReviewedAt, &app.AdminNotes,
			&app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// Approve performs the terminal transition, the role grant, and the audit
// append in one transaction. The UPDATE is conditional on status still being
// pending, so of two concurrent reviews exactly one commits.
func (r *roleApplicationRepository) Approve(ctx context.Context, app *domain.RoleApplication, role *domain.Role, entry *domain.AdminActivityLog) error {
	logger.DatabaseCall("TX", "role_applications approve", "applicationID", app.ID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE role_applications
		SET status = $1, reviewed_by = $2, reviewed_at = $3, admin_notes = $4, updated_at = now()
		WHERE id = $5 AND status = $6`,
		app.Status, app.ReviewedBy, app.ReviewedAt, app.AdminNotes, app.ID, domain.ApplicationStatusPending)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotPending
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO roles (name, single_assignment) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, single_assignment`, role.Name, role.SingleAssignment,
	).Scan(&role.ID, &role.SingleAssignment)
	if err != nil {
		return fmt.Errorf("upsert role: %w", err)
	}

	if role.SingleAssignment {
		var holders int32
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM users_roles WHERE role_id = $1 AND user_id <> $2`,
			role.ID, app.ApplicantID).Scan(&holders)
		if err != nil {
			return fmt.Errorf("check role holders: %w", err)
		}
		if holders > 0 {
			return repository.ErrRoleTaken
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, app.ApplicantID, role.ID); err != nil {
		return fmt.Errorf("grant role: %w", err)
	}

	if err := appendAuditLog(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *roleApplicationRepository) Reject(ctx context.Context, app *domain.RoleApplication, entry *domain.AdminActivityLog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE role_applications
		SET status = $1, reviewed_by = $2, reviewed_at = $3, admin_notes = $4, updated_at = now()
		WHERE id = $5 AND status = $6`,
		app.Status, app.ReviewedBy, app.ReviewedAt, app.AdminNotes, app.ID, domain.ApplicationStatusPending)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotPending
	}

	if err := appendAuditLog(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *roleApplicationRepository) AddDocument(ctx context.Context, doc *domain.RoleApplicationDocument) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO role_application_documents (application_id, file_name, storage_key, content_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, uploaded_at`,
		doc.ApplicationID, doc.FileName, doc.StorageKey, doc.ContentType,
	).Scan(&doc.ID, &doc.UploadedAt)
}

func (r *roleApplicationRepository) ListDocuments(ctx context.Context, applicationID int32) ([]domain.RoleApplicationDocument, error) {
	query := `SELECT id, application_id, file_name, storage_key, content_type, uploaded_at
	          FROM role_application_documents
	          WHERE application_id = $1
	          ORDER BY uploaded_at`
	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.RoleApplicationDocument
	for rows.Next() {
		var d domain.RoleApplicationDocument
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.FileName, &d.StorageKey, &d.ContentType, &d.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
