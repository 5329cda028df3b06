package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/alumlink/internal/app/models"
	"github.com/deniz/alumlink/internal/pkg/apperrors"
	"github.com/deniz/alumlink/internal/pkg/dberrors"
)

// AssignmentRepository handles database operations for mentorship assignments
type AssignmentRepository struct {
	db *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// CreateActive inserts a new active assignment for the pair. The partial
// unique index on (student_id) WHERE status = 'active' rejects a second
// active assignment for the same student.
func (r *AssignmentRepository) CreateActive(ctx context.Context, mentorID, studentID int64) (*models.Assignment, error) {
	query := `
		INSERT INTO mentorship_assignments (mentor_id, student_id, status)
		VALUES ($1, $2, 'active')
		RETURNING id, mentor_id, student_id, status, start_date, end_date
	`

	var assignment models.Assignment
	err := r.db.QueryRow(ctx, query, mentorID, studentID).Scan(
		&assignment.ID,
		&assignment.MentorID,
		&assignment.StudentID,
		&assignment.Status,
		&assignment.StartDate,
		&assignment.EndDate,
	)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "idx_assignments_one_active_per_student") {
			return nil, apperrors.ErrAlreadyAssigned
		}
		return nil, fmt.Errorf("error creating assignment: %w", err)
	}

	return &assignment, nil
}

// FindActiveByStudent returns the student's active assignment, or nil when
// the student is unassigned.
func (r *AssignmentRepository) FindActiveByStudent(ctx context.Context, studentID int64) (*models.Assignment, error) {
	query := `
		SELECT id, mentor_id, student_id, status, start_date, end_date
		FROM mentorship_assignments
		WHERE student_id = $1 AND status = 'active'
	`

	var assignment models.Assignment
	err := r.db.QueryRow(ctx, query, studentID).Scan(
		&assignment.ID,
		&assignment.MentorID,
		&assignment.StudentID,
		&assignment.Status,
		&assignment.StartDate,
		&assignment.EndDate,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving active assignment: %w", err)
	}

	return &assignment, nil
}

// FindActiveByPair returns the active assignment between a specific mentor
// and student, or ErrAssignmentNotFound when none exists.
func (r *AssignmentRepository) FindActiveByPair(ctx context.Context, mentorID, studentID int64) (*models.Assignment, error) {
	query := `
		SELECT id, mentor_id, student_id, status, start_date, end_date
		FROM mentorship_assignments
		WHERE mentor_id = $1 AND student_id = $2 AND status = 'active'
	`

	var assignment models.Assignment
	err := r.db.QueryRow(ctx, query, mentorID, studentID).Scan(
		&assignment.ID,
		&assignment.MentorID,
		&assignment.StudentID,
		&assignment.Status,
		&assignment.StartDate,
		&assignment.EndDate,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("error retrieving assignment: %w", err)
	}

	return &assignment, nil
}

// Terminate moves an active assignment to a terminal status and stamps the
// end date. Terminal rows stay in the table as history.
func (r *AssignmentRepository) Terminate(ctx context.Context, assignmentID int64, status models.AssignmentStatus) error {
	query := `
		UPDATE mentorship_assignments
		SET status = $2, end_date = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'active'
	`

	result, err := r.db.Exec(ctx, query, assignmentID, status)
	if err != nil {
		return fmt.Errorf("error terminating assignment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrAssignmentNotFound
	}

	return nil
}

// ActiveMenteeIDs returns the student IDs of the mentor's active mentees
func (r *AssignmentRepository) ActiveMenteeIDs(ctx context.Context, mentorID int64) ([]int64, error) {
	query := `
		SELECT student_id
		FROM mentorship_assignments
		WHERE mentor_id = $1 AND status = 'active'
		ORDER BY student_id
	`

	rows, err := r.db.Query(ctx, query, mentorID)
	if err != nil {
		return nil, fmt.Errorf("error listing active mentee IDs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning mentee ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mentee IDs: %w", err)
	}

	return ids, nil
}

// ListActive retrieves active assignments, optionally filtered by mentor,
// with both participants' names joined in.
func (r *AssignmentRepository) ListActive(ctx context.Context, mentorID *int64) ([]*models.Assignment, error) {
	queryBuilder := squirrel.Select(
		"a.id", "a.mentor_id", "a.student_id", "a.status", "a.start_date", "a.end_date",
		"mu.first_name", "mu.last_name", "su.first_name", "su.last_name",
	).
		From("mentorship_assignments a").
		Join("users mu ON a.mentor_id = mu.id").
		Join("users su ON a.student_id = su.id").
		Where("a.status = 'active'").
		OrderBy("a.start_date DESC").
		PlaceholderFormat(squirrel.Dollar)

	if mentorID != nil {
		queryBuilder = queryBuilder.Where("a.mentor_id = ?", *mentorID)
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*models.Assignment
	for rows.Next() {
		var assignment models.Assignment
		var mentorFirst, mentorLast, studentFirst, studentLast string
		err := rows.Scan(
			&assignment.ID,
			&assignment.MentorID,
			&assignment.StudentID,
			&assignment.Status,
			&assignment.StartDate,
			&assignment.EndDate,
			&mentorFirst,
			&mentorLast,
			&studentFirst,
			&studentLast,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning assignment row: %w", err)
		}
		assignment.MentorName = mentorFirst + " " + mentorLast
		assignment.StudentName = studentFirst + " " + studentLast
		assignments = append(assignments, &assignment)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment rows: %w", err)
	}

	return assignments, nil
}
