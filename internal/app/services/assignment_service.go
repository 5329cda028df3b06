package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/deniz/alumlink/internal/app/models"
	"github.com/deniz/alumlink/internal/app/models/dto"
	"github.com/deniz/alumlink/internal/pkg/apperrors"
	"github.com/deniz/alumlink/internal/pkg/email"
)

// MentorLedger is the capacity surface the assignment service needs. Slot
// reservation is atomic at the store level; the service never reads the
// counter to decide whether a slot is free.
type MentorLedger interface {
	GetByID(ctx context.Context, userID int64) (*models.MentorProfile, error)
	ReserveSlot(ctx context.Context, mentorID int64) error
	ReleaseSlot(ctx context.Context, mentorID int64) error
	ListAll(ctx context.Context) ([]*models.MentorProfile, error)
}

// MenteeStore is the mentee persistence surface for assignments
type MenteeStore interface {
	GetByID(ctx context.Context, userID int64) (*models.MenteeProfile, error)
	SetMentor(ctx context.Context, studentID, mentorID int64) error
	ClearMentor(ctx context.Context, studentID int64) error
	ListWithoutMentor(ctx context.Context) ([]*models.MenteeProfile, error)
}

// AssignmentStore is the assignment persistence surface
type AssignmentStore interface {
	AssignmentDirectory
	CreateActive(ctx context.Context, mentorID, studentID int64) (*models.Assignment, error)
	Terminate(ctx context.Context, assignmentID int64, status models.AssignmentStatus) error
	ListActive(ctx context.Context, mentorID *int64) ([]*models.Assignment, error)
}

// AssignmentService defines the interface for mentorship assignment operations
type AssignmentService interface {
	AssignBulk(ctx context.Context, mentorID int64, studentIDs []int64) (*dto.BulkAssignmentResponse, error)
	AssignOne(ctx context.Context, studentID, mentorID int64) (*dto.AssignmentResponse, error)
	Unassign(ctx context.Context, studentID, mentorID int64) error
	ListAssignments(ctx context.Context, mentorID *int64) (*dto.AssignmentListResponse, error)
	ListMentors(ctx context.Context) (*dto.MentorListResponse, error)
}

// assignmentServiceImpl implements AssignmentService
type assignmentServiceImpl struct {
	mentors      MentorLedger
	mentees      MenteeStore
	assignments  AssignmentStore
	emailService email.EmailService
	logger       zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	mentors MentorLedger,
	mentees MenteeStore,
	assignments AssignmentStore,
	emailService email.EmailService,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentServiceImpl{
		mentors:      mentors,
		mentees:      mentees,
		assignments:  assignments,
		emailService: emailService,
		logger:       logger,
	}
}

// AssignBulk pairs a mentor with several students in one call. The operation
// is best effort: each student is assigned independently and failures are
// reported per student instead of rolling back the batch. Students already
// paired with this mentor are skipped; students paired with a different
// mentor are taken over, last writer wins.
func (s *assignmentServiceImpl) AssignBulk(ctx context.Context, mentorID int64, studentIDs []int64) (*dto.BulkAssignmentResponse, error) {
	if _, err := s.mentors.GetByID(ctx, mentorID); err != nil {
		return nil, err
	}

	response := &dto.BulkAssignmentResponse{
		MentorID: mentorID,
		Outcomes: make([]dto.AssignmentOutcome, 0, len(studentIDs)),
	}

	for _, studentID := range studentIDs {
		outcome := dto.AssignmentOutcome{StudentID: studentID}

		_, err := s.assign(ctx, mentorID, studentID)
		switch {
		case err == nil:
			outcome.Assigned = true
		case apperrors.Is(err, apperrors.ErrAlreadyAssigned):
			// Already paired with this mentor; nothing to do
			outcome.Assigned = true
			outcome.Reason = "already assigned to this mentor"
		default:
			outcome.Reason = err.Error()
			s.logger.Warn().Err(err).
				Int64("mentorID", mentorID).
				Int64("studentID", studentID).
				Msg("Bulk assignment failed for student")
		}

		response.Outcomes = append(response.Outcomes, outcome)
	}

	return response, nil
}

// AssignOne pairs one mentor with one student as an administrative override.
// Same single-pair logic as the bulk path, except an already-active exact
// pair is surfaced as an error instead of an idempotent skip.
func (s *assignmentServiceImpl) AssignOne(ctx context.Context, studentID, mentorID int64) (*dto.AssignmentResponse, error) {
	if _, err := s.mentors.GetByID(ctx, mentorID); err != nil {
		return nil, err
	}

	assignment, err := s.assign(ctx, mentorID, studentID)
	if err != nil {
		return nil, err
	}

	response := dto.ToAssignmentResponse(assignment)
	return &response, nil
}

// assign creates an active assignment between a mentor and a student. An
// existing active assignment with this exact mentor fails ErrAlreadyAssigned;
// one with a different mentor is terminated and replaced.
func (s *assignmentServiceImpl) assign(ctx context.Context, mentorID, studentID int64) (*models.Assignment, error) {
	mentee, err := s.mentees.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	existing, err := s.assignments.FindActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if existing != nil && existing.MentorID == mentorID {
		return nil, apperrors.ErrAlreadyAssigned
	}

	// Claim the slot on the new mentor before touching the old pairing, so a
	// full mentor never breaks an existing mentorship.
	if err := s.mentors.ReserveSlot(ctx, mentorID); err != nil {
		return nil, err
	}

	if existing != nil {
		if err := s.takeOver(ctx, existing); err != nil {
			// Give the claimed slot back; the old pairing is still intact
			if releaseErr := s.mentors.ReleaseSlot(ctx, mentorID); releaseErr != nil {
				s.logger.Error().Err(releaseErr).Int64("mentorID", mentorID).Msg("Failed to release slot after takeover failure")
			}
			return nil, err
		}
	}

	assignment, err := s.assignments.CreateActive(ctx, mentorID, studentID)
	if err != nil {
		if releaseErr := s.mentors.ReleaseSlot(ctx, mentorID); releaseErr != nil {
			s.logger.Error().Err(releaseErr).Int64("mentorID", mentorID).Msg("Failed to release slot after create failure")
		}
		if apperrors.Is(err, apperrors.ErrAlreadyAssigned) {
			// A concurrent assignment won the partial unique index race
			return nil, apperrors.NewConflictError("Student already has an active mentorship")
		}
		return nil, err
	}

	if err := s.mentees.SetMentor(ctx, studentID, mentorID); err != nil {
		s.logger.Error().Err(err).
			Int64("studentID", studentID).
			Int64("mentorID", mentorID).
			Msg("Failed to update mentee record after assignment")
	}

	s.notifyAssignment(ctx, mentorID, mentee)

	s.logger.Info().
		Int64("mentorID", mentorID).
		Int64("studentID", studentID).
		Int64("assignmentID", assignment.ID).
		Msg("Mentorship assignment created")

	return assignment, nil
}

// takeOver terminates the student's current mentorship and frees the old
// mentor's slot.
func (s *assignmentServiceImpl) takeOver(ctx context.Context, existing *models.Assignment) error {
	if err := s.assignments.Terminate(ctx, existing.ID, models.AssignmentTerminated); err != nil {
		return fmt.Errorf("error terminating previous assignment: %w", err)
	}

	if err := s.mentors.ReleaseSlot(ctx, existing.MentorID); err != nil {
		s.logger.Error().Err(err).
			Int64("mentorID", existing.MentorID).
			Msg("Failed to release slot of previous mentor")
	}

	s.logger.Info().
		Int64("previousMentorID", existing.MentorID).
		Int64("studentID", existing.StudentID).
		Msg("Previous mentorship terminated by takeover")

	return nil
}

// Unassign ends the active mentorship between a specific mentor and student,
// marking the assignment terminated and freeing the mentor's slot. Fails
// with ErrAssignmentNotFound when the named pair has no active assignment.
func (s *assignmentServiceImpl) Unassign(ctx context.Context, studentID, mentorID int64) error {
	mentee, err := s.mentees.GetByID(ctx, studentID)
	if err != nil {
		return err
	}

	assignment, err := s.assignments.FindActiveByPair(ctx, mentorID, studentID)
	if err != nil {
		return err
	}

	if err := s.assignments.Terminate(ctx, assignment.ID, models.AssignmentTerminated); err != nil {
		return err
	}

	if err := s.mentors.ReleaseSlot(ctx, assignment.MentorID); err != nil {
		s.logger.Error().Err(err).
			Int64("mentorID", assignment.MentorID).
			Msg("Failed to release mentor slot on unassignment")
	}

	if err := s.mentees.ClearMentor(ctx, studentID); err != nil {
		s.logger.Error().Err(err).
			Int64("studentID", studentID).
			Msg("Failed to clear mentee record on unassignment")
	}

	s.notifyUnassignment(ctx, assignment.MentorID, mentee)

	s.logger.Info().
		Int64("mentorID", assignment.MentorID).
		Int64("studentID", studentID).
		Msg("Mentorship ended")

	return nil
}

// ListAssignments builds the dashboard snapshot: active assignments
// (optionally for one mentor) plus the mentors with zero mentees and the
// students with no mentor.
func (s *assignmentServiceImpl) ListAssignments(ctx context.Context, mentorID *int64) (*dto.AssignmentListResponse, error) {
	assignments, err := s.assignments.ListActive(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	response := &dto.AssignmentListResponse{
		Assignments:        make([]dto.AssignmentResponse, 0, len(assignments)),
		UnassignedMentors:  make([]dto.MentorResponse, 0),
		UnassignedStudents: make([]dto.UserBasicResponse, 0),
	}
	for _, assignment := range assignments {
		response.Assignments = append(response.Assignments, dto.ToAssignmentResponse(assignment))
	}

	mentors, err := s.mentors.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, mentor := range mentors {
		if mentor.CurrentMenteeCount == 0 {
			response.UnassignedMentors = append(response.UnassignedMentors, dto.ToMentorResponse(mentor))
		}
	}

	unmentored, err := s.mentees.ListWithoutMentor(ctx)
	if err != nil {
		return nil, err
	}
	for _, mentee := range unmentored {
		response.UnassignedStudents = append(response.UnassignedStudents, dto.ToUserBasicResponse(mentee.User))
	}

	return response, nil
}

// ListMentors retrieves the mentor directory with live capacity figures
func (s *assignmentServiceImpl) ListMentors(ctx context.Context) (*dto.MentorListResponse, error) {
	mentors, err := s.mentors.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	response := &dto.MentorListResponse{
		Mentors: make([]dto.MentorResponse, 0, len(mentors)),
	}
	for _, mentor := range mentors {
		response.Mentors = append(response.Mentors, dto.ToMentorResponse(mentor))
	}

	return response, nil
}

// notifyAssignment sends the assignment email in the background. Failures are
// logged and never surface to the caller.
func (s *assignmentServiceImpl) notifyAssignment(ctx context.Context, mentorID int64, mentee *models.MenteeProfile) {
	if mentee == nil || mentee.User == nil {
		return
	}

	mentor, err := s.mentors.GetByID(ctx, mentorID)
	if err != nil || mentor.User == nil {
		s.logger.Warn().Err(err).Int64("mentorID", mentorID).Msg("Skipping assignment email, mentor lookup failed")
		return
	}

	toEmail := mentee.User.Email
	studentName := mentee.User.FullName()
	mentorName := mentor.User.FullName()

	go func() {
		if err := s.emailService.SendAssignmentEmail(toEmail, studentName, mentorName); err != nil {
			s.logger.Warn().Err(err).Str("toEmail", toEmail).Msg("Failed to send assignment email")
		}
	}()
}

// notifyUnassignment sends the unassignment email in the background
func (s *assignmentServiceImpl) notifyUnassignment(ctx context.Context, mentorID int64, mentee *models.MenteeProfile) {
	if mentee == nil || mentee.User == nil {
		return
	}

	mentor, err := s.mentors.GetByID(ctx, mentorID)
	if err != nil || mentor.User == nil {
		s.logger.Warn().Err(err).Int64("mentorID", mentorID).Msg("Skipping unassignment email, mentor lookup failed")
		return
	}

	toEmail := mentee.User.Email
	studentName := mentee.User.FullName()
	mentorName := mentor.User.FullName()

	go func() {
		if err := s.emailService.SendUnassignmentEmail(toEmail, studentName, mentorName); err != nil {
			s.logger.Warn().Err(err).Str("toEmail", toEmail).Msg("Failed to send unassignment email")
		}
	}()
}
