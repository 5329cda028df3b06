package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/alumlink/internal/app/models"
	"github.com/deniz/alumlink/internal/pkg/apperrors"
)

// MentorRepository handles database operations for mentor capacity records
type MentorRepository struct {
	db *pgxpool.Pool
}

// NewMentorRepository creates a new MentorRepository
func NewMentorRepository(db *pgxpool.Pool) *MentorRepository {
	return &MentorRepository{db: db}
}

// GetByID retrieves a mentor profile together with its user record
func (r *MentorRepository) GetByID(ctx context.Context, userID int64) (*models.MentorProfile, error) {
	query := `
		SELECT
			m.user_id, m.current_mentee_count, m.max_mentees, m.availability, m.created_at, m.updated_at,
			u.id, u.email, u.first_name, u.last_name, u.role_type, u.department, u.is_active
		FROM mentors m
		JOIN users u ON m.user_id = u.id
		WHERE m.user_id = $1
	`

	var mentor models.MentorProfile
	var user models.User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&mentor.UserID,
		&mentor.CurrentMenteeCount,
		&mentor.MaxMentees,
		&mentor.Availability,
		&mentor.CreatedAt,
		&mentor.UpdatedAt,
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.RoleType,
		&user.Department,
		&user.IsActive,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrMentorNotFound
		}
		return nil, fmt.Errorf("error retrieving mentor: %w", err)
	}

	mentor.User = &user
	return &mentor, nil
}

// ReserveSlot atomically claims one mentee slot on the mentor. The conditional
// UPDATE is the only way the counter grows, so two concurrent assignments can
// never push it past max_mentees. Returns ErrCapacityExceeded when the mentor
// is already full and ErrMentorNotFound when no such mentor exists.
func (r *MentorRepository) ReserveSlot(ctx context.Context, mentorID int64) error {
	query := `
		UPDATE mentors
		SET current_mentee_count = current_mentee_count + 1,
			availability = CASE WHEN current_mentee_count + 1 >= max_mentees THEN 'FULL' ELSE 'AVAILABLE' END,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND current_mentee_count < max_mentees
	`

	result, err := r.db.Exec(ctx, query, mentorID)
	if err != nil {
		return fmt.Errorf("error reserving mentee slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing mentor from a full one
		var exists bool
		err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM mentors WHERE user_id = $1)`, mentorID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("error checking mentor existence: %w", err)
		}
		if !exists {
			return apperrors.ErrMentorNotFound
		}
		return apperrors.ErrCapacityExceeded
	}

	return nil
}

// ReleaseSlot returns one mentee slot to the mentor. The counter never goes
// below zero even if release is called twice for the same assignment.
func (r *MentorRepository) ReleaseSlot(ctx context.Context, mentorID int64) error {
	query := `
		UPDATE mentors
		SET current_mentee_count = GREATEST(current_mentee_count - 1, 0),
			availability = 'AVAILABLE',
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1
	`

	result, err := r.db.Exec(ctx, query, mentorID)
	if err != nil {
		return fmt.Errorf("error releasing mentee slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrMentorNotFound
	}

	return nil
}

// ListAll retrieves all mentor profiles with their user records
func (r *MentorRepository) ListAll(ctx context.Context) ([]*models.MentorProfile, error) {
	query := `
		SELECT
			m.user_id, m.current_mentee_count, m.max_mentees, m.availability, m.created_at, m.updated_at,
			u.id, u.email, u.first_name, u.last_name, u.role_type, u.department, u.is_active
		FROM mentors m
		JOIN users u ON m.user_id = u.id
		ORDER BY u.first_name, u.last_name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing mentors: %w", err)
	}
	defer rows.Close()

	var mentors []*models.MentorProfile
	for rows.Next() {
		var mentor models.MentorProfile
		var user models.User
		err := rows.Scan(
			&mentor.UserID,
			&mentor.CurrentMenteeCount,
			&mentor.MaxMentees,
			&mentor.Availability,
			&mentor.CreatedAt,
			&mentor.UpdatedAt,
			&user.ID,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.RoleType,
			&user.Department,
			&user.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning mentor row: %w", err)
		}
		mentor.User = &user
		mentors = append(mentors, &mentor)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mentor rows: %w", err)
	}

	return mentors, nil
}

// Create inserts a mentor capacity record for an existing user
func (r *MentorRepository) Create(ctx context.Context, mentor *models.MentorProfile) error {
	query := `
		INSERT INTO mentors (user_id, current_mentee_count, max_mentees, availability)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		mentor.UserID,
		mentor.CurrentMenteeCount,
		mentor.MaxMentees,
		mentor.Availability,
	).Scan(&mentor.CreatedAt, &mentor.UpdatedAt)

	if err != nil {
		return fmt.Errorf("error creating mentor: %w", err)
	}

	return nil
}
