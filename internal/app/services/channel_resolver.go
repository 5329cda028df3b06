package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/deniz/alumlink/internal/app/models"
	"github.com/deniz/alumlink/internal/pkg/apperrors"
)

// AssignmentDirectory is the read surface the resolver needs from the
// assignment store.
type AssignmentDirectory interface {
	FindActiveByStudent(ctx context.Context, studentID int64) (*models.Assignment, error)
	FindActiveByPair(ctx context.Context, mentorID, studentID int64) (*models.Assignment, error)
	ActiveMenteeIDs(ctx context.Context, mentorID int64) ([]int64, error)
}

// ChannelResolver maps a caller onto the messaging channel they may use.
// Every channel is anchored to an active assignment: students land on their
// own channel implicitly, mentors must name the student.
type ChannelResolver interface {
	Direct(ctx context.Context, caller models.Party, targetStudentID *int64) (models.Channel, error)
	Group(ctx context.Context, caller models.Party) (mentorID int64, menteeIDs []int64, err error)
}

// channelResolverImpl implements ChannelResolver
type channelResolverImpl struct {
	assignments AssignmentDirectory
	logger      zerolog.Logger
}

// NewChannelResolver creates a new ChannelResolver
func NewChannelResolver(assignments AssignmentDirectory, logger zerolog.Logger) ChannelResolver {
	return &channelResolverImpl{
		assignments: assignments,
		logger:      logger,
	}
}

// Direct resolves the one-to-one channel for a caller
func (r *channelResolverImpl) Direct(ctx context.Context, caller models.Party, targetStudentID *int64) (models.Channel, error) {
	switch caller.Role {
	case models.RoleStudent:
		assignment, err := r.assignments.FindActiveByStudent(ctx, caller.UserID)
		if err != nil {
			return models.Channel{}, err
		}
		if assignment == nil {
			return models.Channel{}, apperrors.ErrNoMentor
		}
		return models.Channel{MentorID: assignment.MentorID, StudentID: caller.UserID}, nil

	case models.RoleAlumni:
		if targetStudentID == nil {
			return models.Channel{}, apperrors.NewBadRequestError("studentId is required for mentors")
		}
		_, err := r.assignments.FindActiveByPair(ctx, caller.UserID, *targetStudentID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrAssignmentNotFound) {
				return models.Channel{}, apperrors.ErrInvalidChannel
			}
			return models.Channel{}, err
		}
		return models.Channel{MentorID: caller.UserID, StudentID: *targetStudentID}, nil

	default:
		return models.Channel{}, apperrors.NewForbiddenError("Only mentors and students can use mentorship channels")
	}
}

// Group resolves the mentor and recipient set of the caller's group channel.
// A student's group channel is the one owned by their own mentor.
func (r *channelResolverImpl) Group(ctx context.Context, caller models.Party) (int64, []int64, error) {
	var resolvedMentorID int64

	switch caller.Role {
	case models.RoleAlumni:
		resolvedMentorID = caller.UserID

	case models.RoleStudent:
		assignment, err := r.assignments.FindActiveByStudent(ctx, caller.UserID)
		if err != nil {
			return 0, nil, err
		}
		if assignment == nil {
			return 0, nil, apperrors.ErrNoMentor
		}
		resolvedMentorID = assignment.MentorID

	default:
		return 0, nil, apperrors.NewForbiddenError("Only mentors and students can use mentorship channels")
	}

	menteeIDs, err := r.assignments.ActiveMenteeIDs(ctx, resolvedMentorID)
	if err != nil {
		return 0, nil, err
	}

	return resolvedMentorID, menteeIDs, nil
}
