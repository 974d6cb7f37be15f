package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/repository"
	"ecoloop-backend/internal/repository/postgres"
)

func applicationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "applicant_id", "role_name", "organization_name", "registration_no",
		"justification", "status", "reviewed_by", "reviewed_at", "admin_notes",
		"created_at", "updated_at",
	})
}

func TestRoleApplicationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewRoleApplicationRepository(db)
	ctx := context.Background()

	app := &domain.RoleApplication{
		ApplicantID:   7,
		RoleName:      domain.RoleRecycler,
		Justification: "We collect e-waste.",
		Status:        domain.ApplicationStatusPending,
	}
	docs := []domain.RoleApplicationDocument{
		{FileName: "registration.pdf", StorageKey: "applicant-7-abc.pdf", ContentType: "application/pdf"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO role_applications").
		WithArgs(app.ApplicantID, app.RoleName, app.OrganizationName, app.RegistrationNo, app.Justification, app.Status).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, time.Now(), time.Now()))
	mock.ExpectQuery("INSERT INTO role_application_documents").
		WithArgs(int32(42), "registration.pdf", "applicant-7-abc.pdf", "application/pdf").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uploaded_at"}).AddRow(1, time.Now()))
	mock.ExpectCommit()

	err = repo.Create(ctx, app, docs)
	assert.NoError(t, err)
	assert.Equal(t, int32(42), app.ID)
	assert.Equal(t, int32(42), docs[0].ApplicationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleApplicationRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewRoleApplicationRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := applicationRows().
			AddRow(42, 7, "RECYCLER", "Green Works", "RW-102", "We collect e-waste.", "pending", nil, nil, "", time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM role_applications WHERE id").
			WithArgs(int32(42)).
			WillReturnRows(rows)

		app, err := repo.GetByID(ctx, 42)
		assert.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusPending, app.Status)
		assert.Nil(t, app.ReviewedBy)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM role_applications WHERE id").
			WithArgs(int32(404)).
			WillReturnRows(applicationRows())

		_, err := repo.GetByID(ctx, 404)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestRoleApplicationRepository_Approve(t *testing.T) {
	ctx := context.Background()

	reviewer := int32(99)
	now := time.Now()
	approvedApp := func() *domain.RoleApplication {
		return &domain.RoleApplication{
			ID:          42,
			ApplicantID: 7,
			RoleName:    domain.RoleNGO,
			Status:      domain.ApplicationStatusApproved,
			ReviewedBy:  &reviewer,
			ReviewedAt:  &now,
			AdminNotes:  "checked",
		}
	}
	entry := func() *domain.AdminActivityLog {
		return &domain.AdminActivityLog{
			AdminID:    99,
			Action:     domain.AdminActionApplicationApproved,
			TargetType: "RoleApplication",
			TargetID:   "42",
			TargetName: "Jane Doe (NGO)",
			Result:     "success",
			Reason:     "checked",
		}
	}

	t.Run("GrantsRoleAndAudits", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
		}
		defer db.Close()
		repo := postgres.NewRoleApplicationRepository(db)

		app := approvedApp()
		role := &domain.Role{Name: domain.RoleNGO, SingleAssignment: true}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE role_applications").
			WithArgs(app.Status, app.ReviewedBy, app.ReviewedAt, app.AdminNotes, app.ID, domain.ApplicationStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO roles").
			WithArgs("NGO", true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "single_assignment"}).AddRow(5, true))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users_roles").
			WithArgs(int32(5), int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("INSERT INTO users_roles").
			WithArgs(int32(7), int32(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO admin_activity_logs").
			WithArgs(int32(99), domain.AdminActionApplicationApproved, "RoleApplication", "42", "Jane Doe (NGO)", "success", "checked").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
		mock.ExpectCommit()

		err = repo.Approve(ctx, app, role, entry())
		assert.NoError(t, err)
		assert.Equal(t, int32(5), role.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LostRaceRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
		}
		defer db.Close()
		repo := postgres.NewRoleApplicationRepository(db)

		app := approvedApp()
		role := &domain.Role{Name: domain.RoleNGO, SingleAssignment: true}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE role_applications").
			WithArgs(app.Status, app.ReviewedBy, app.ReviewedAt, app.AdminNotes, app.ID, domain.ApplicationStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.Approve(ctx, app, role, entry())
		assert.ErrorIs(t, err, repository.ErrNotPending)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SingleAssignmentHeldElsewhere", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
		}
		defer db.Close()
		repo := postgres.NewRoleApplicationRepository(db)

		app := approvedApp()
		role := &domain.Role{Name: domain.RoleNGO, SingleAssignment: true}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE role_applications").
			WithArgs(app.Status, app.ReviewedBy, app.ReviewedAt, app.AdminNotes, app.ID, domain.ApplicationStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO roles").
			WithArgs("NGO", true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "single_assignment"}).AddRow(5, true))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users_roles").
			WithArgs(int32(5), int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err = repo.Approve(ctx, app, role, entry())
		assert.ErrorIs(t, err, repository.ErrRoleTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRoleApplicationRepository_Reject(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewRoleApplicationRepository(db)
	ctx := context.Background()

	reviewer := int32(99)
	now := time.Now()
	app := &domain.RoleApplication{
		ID:          42,
		ApplicantID: 7,
		RoleName:    domain.RoleRecycler,
		Status:      domain.ApplicationStatusRejected,
		ReviewedBy:  &reviewer,
		ReviewedAt:  &now,
		AdminNotes:  "missing papers",
	}
	entry := &domain.AdminActivityLog{
		AdminID:    99,
		Action:     domain.AdminActionApplicationRejected,
		TargetType: "RoleApplication",
		TargetID:   "42",
		TargetName: "Jane Doe (RECYCLER)",
		Result:     "success",
		Reason:     "missing papers",
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE role_applications").
		WithArgs(app.Status, app.ReviewedBy, app.ReviewedAt, app.AdminNotes, app.ID, domain.ApplicationStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO admin_activity_logs").
		WithArgs(int32(99), domain.AdminActionApplicationRejected, "RoleApplication", "42", "Jane Doe (RECYCLER)", "success", "missing papers").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), time.Now()))
	mock.ExpectCommit()

	err = repo.Reject(ctx, app, entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleApplicationRepository_HasPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewRoleApplicationRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int32(7), "RECYCLER", domain.ApplicationStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := repo.HasPending(ctx, 7, "RECYCLER")
	assert.NoError(t, err)
	assert.True(t, has)
}

func TestRoleApplicationRepository_ListByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewRoleApplicationRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM role_applications").
		WithArgs(domain.ApplicationStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM role_applications").
		WithArgs(domain.ApplicationStatusPending, int32(20), int32(0)).
		WillReturnRows(applicationRows().
			AddRow(42, 7, "RECYCLER", "", "", "j1", "pending", nil, nil, "", time.Now(), time.Now()).
			AddRow(43, 8, "NGO", "Org", "N-1", "j2", "pending", nil, nil, "", time.Now(), time.Now()))

	apps, total, err := repo.ListByStatus(ctx, domain.ApplicationStatusPending, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), total)
	assert.Len(t, apps, 2)
	assert.Equal(t, int32(43), apps[1].ID)
}
