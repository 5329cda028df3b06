package services

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deniz/alumlink/internal/app/models"
	"github.com/deniz/alumlink/internal/pkg/apperrors"
)

type assignmentFixture struct {
	mentors     *fakeMentorLedger
	mentees     *fakeMenteeStore
	assignments *fakeAssignmentStore
	email       *fakeEmailService
	service     AssignmentService
}

func newAssignmentFixture() *assignmentFixture {
	f := &assignmentFixture{
		mentors:     newFakeMentorLedger(),
		mentees:     newFakeMenteeStore(),
		assignments: newFakeAssignmentStore(),
		email:       &fakeEmailService{},
	}
	f.service = NewAssignmentService(f.mentors, f.mentees, f.assignments, f.email, zerolog.Nop())
	return f
}

func TestAssignOne_Success(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentees.add(100)

	response, err := f.service.AssignOne(context.Background(), 100, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(10), response.MentorID)
	assert.Equal(t, int64(100), response.StudentID)
	assert.Equal(t, string(models.AssignmentActive), response.Status)
	assert.Equal(t, 1, f.mentors.count(10))

	mentee, err := f.mentees.GetByID(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, mentee.MentorID)
	assert.Equal(t, int64(10), *mentee.MentorID)
	assert.Equal(t, models.MentorshipMentored, mentee.MentorshipStatus)
}

func TestAssignOne_MentorNotFound(t *testing.T) {
	f := newAssignmentFixture()
	f.mentees.add(100)

	_, err := f.service.AssignOne(context.Background(), 100, 99)
	assert.ErrorIs(t, err, apperrors.ErrMentorNotFound)
}

func TestAssignOne_StudentNotFound(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)

	_, err := f.service.AssignOne(context.Background(), 999, 10)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestAssignOne_MentorFull(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 3, 3)
	f.mentees.add(100)

	_, err := f.service.AssignOne(context.Background(), 100, 10)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
	assert.Equal(t, 3, f.mentors.count(10))
}

func TestAssignOne_ExactPairAlreadyActive(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentees.add(100)

	_, err := f.service.AssignOne(context.Background(), 100, 10)
	require.NoError(t, err)

	_, err = f.service.AssignOne(context.Background(), 100, 10)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyAssigned)
	assert.Equal(t, 1, f.mentors.count(10))
}

func TestAssignOne_TakesOverDifferentMentor(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentors.add(20, 0, 3)
	f.mentees.add(100)

	first, err := f.service.AssignOne(context.Background(), 100, 10)
	require.NoError(t, err)

	second, err := f.service.AssignOne(context.Background(), 100, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(20), second.MentorID)

	// Old assignment is terminated and its slot released
	assert.Equal(t, models.AssignmentTerminated, f.assignments.statusOf(first.ID))
	assert.Equal(t, 0, f.mentors.count(10))
	assert.Equal(t, 1, f.mentors.count(20))
}

func TestAssignBulk_UsesCallersOwnLedger(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentees.add(100)
	f.mentees.add(101)

	response, err := f.service.AssignBulk(context.Background(), 10, []int64{100, 101})
	require.NoError(t, err)

	assert.Equal(t, int64(10), response.MentorID)
	require.Len(t, response.Outcomes, 2)
	assert.True(t, response.Outcomes[0].Assigned)
	assert.True(t, response.Outcomes[1].Assigned)
	assert.Equal(t, 2, f.mentors.count(10))
}

func TestAssignBulk_CapacityExhaustedMidBatch(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 2, 3)
	f.mentees.add(100)
	f.mentees.add(101)

	response, err := f.service.AssignBulk(context.Background(), 10, []int64{100, 101})
	require.NoError(t, err)
	require.Len(t, response.Outcomes, 2)

	assert.True(t, response.Outcomes[0].Assigned)
	assert.Empty(t, response.Outcomes[0].Reason)

	assert.False(t, response.Outcomes[1].Assigned)
	assert.Equal(t, apperrors.ErrCapacityExceeded.Error(), response.Outcomes[1].Reason)

	assert.Equal(t, 3, f.mentors.count(10))
}

func TestAssignBulk_IdempotentForSameMentor(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentees.add(100)

	_, err := f.service.AssignBulk(context.Background(), 10, []int64{100})
	require.NoError(t, err)

	response, err := f.service.AssignBulk(context.Background(), 10, []int64{100})
	require.NoError(t, err)
	require.Len(t, response.Outcomes, 1)

	assert.True(t, response.Outcomes[0].Assigned)
	assert.Equal(t, "already assigned to this mentor", response.Outcomes[0].Reason)
	assert.Equal(t, 1, f.mentors.count(10))
}

func TestAssignBulk_TakesOverExistingMentorship(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentors.add(20, 0, 3)
	f.mentees.add(100)

	first, err := f.service.AssignOne(context.Background(), 100, 10)
	require.NoError(t, err)

	response, err := f.service.AssignBulk(context.Background(), 20, []int64{100})
	require.NoError(t, err)
	require.Len(t, response.Outcomes, 1)
	assert.True(t, response.Outcomes[0].Assigned)

	assert.Equal(t, models.AssignmentTerminated, f.assignments.statusOf(first.ID))
	assert.Equal(t, 0, f.mentors.count(10))
	assert.Equal(t, 1, f.mentors.count(20))

	current, err := f.assignments.FindActiveByStudent(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, int64(20), current.MentorID)
}

func TestAssignBulk_FullMentorKeepsExistingPairingIntact(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentors.add(20, 3, 3)
	f.mentees.add(100)

	first, err := f.service.AssignOne(context.Background(), 100, 10)
	require.NoError(t, err)

	response, err := f.service.AssignBulk(context.Background(), 20, []int64{100})
	require.NoError(t, err)
	require.Len(t, response.Outcomes, 1)
	assert.False(t, response.Outcomes[0].Assigned)

	// The takeover target was full, so the old mentorship must survive
	assert.Equal(t, models.AssignmentActive, f.assignments.statusOf(first.ID))
	assert.Equal(t, 1, f.mentors.count(10))
	assert.Equal(t, 3, f.mentors.count(20))
}

func TestAssignBulk_UnknownMentor(t *testing.T) {
	f := newAssignmentFixture()
	f.mentees.add(100)

	_, err := f.service.AssignBulk(context.Background(), 99, []int64{100})
	assert.ErrorIs(t, err, apperrors.ErrMentorNotFound)
}

func TestAssignBulk_UnknownStudentReportedPerOutcome(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentees.add(100)

	response, err := f.service.AssignBulk(context.Background(), 10, []int64{100, 999})
	require.NoError(t, err)
	require.Len(t, response.Outcomes, 2)

	assert.True(t, response.Outcomes[0].Assigned)
	assert.False(t, response.Outcomes[1].Assigned)
	assert.Equal(t, apperrors.ErrStudentNotFound.Error(), response.Outcomes[1].Reason)
	assert.Equal(t, 1, f.mentors.count(10))
}

func TestAssignBulk_ConcurrentNeverOvercommits(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	studentIDs := []int64{100, 101, 102, 103, 104, 105}
	for _, id := range studentIDs {
		f.mentees.add(id)
	}

	var wg sync.WaitGroup
	for _, id := range studentIDs {
		wg.Add(1)
		go func(studentID int64) {
			defer wg.Done()
			_, _ = f.service.AssignBulk(context.Background(), 10, []int64{studentID})
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 3, f.mentors.count(10))

	active, err := f.assignments.ListActive(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestUnassign_FreesSlotAndAllowsReassignment(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 1)
	f.mentees.add(100)
	f.mentees.add(101)

	_, err := f.service.AssignOne(context.Background(), 100, 10)
	require.NoError(t, err)

	// Mentor is full now, the second student bounces
	_, err = f.service.AssignOne(context.Background(), 101, 10)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	require.NoError(t, f.service.Unassign(context.Background(), 100, 10))
	assert.Equal(t, 0, f.mentors.count(10))

	mentee, err := f.mentees.GetByID(context.Background(), 100)
	require.NoError(t, err)
	assert.Nil(t, mentee.MentorID)
	assert.Equal(t, models.MentorshipAvailable, mentee.MentorshipStatus)

	_, err = f.service.AssignOne(context.Background(), 101, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, f.mentors.count(10))
}

func TestUnassign_MarksAssignmentTerminated(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentees.add(100)

	created, err := f.service.AssignOne(context.Background(), 100, 10)
	require.NoError(t, err)

	require.NoError(t, f.service.Unassign(context.Background(), 100, 10))
	assert.Equal(t, models.AssignmentTerminated, f.assignments.statusOf(created.ID))
}

func TestUnassign_PairScoped(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentors.add(20, 0, 3)
	f.mentees.add(100)

	created, err := f.service.AssignOne(context.Background(), 100, 10)
	require.NoError(t, err)

	// Naming the wrong mentor must not touch the student's real pairing
	err = f.service.Unassign(context.Background(), 100, 20)
	assert.ErrorIs(t, err, apperrors.ErrAssignmentNotFound)
	assert.Equal(t, models.AssignmentActive, f.assignments.statusOf(created.ID))
	assert.Equal(t, 1, f.mentors.count(10))
}

func TestUnassign_NoActiveMentorship(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentees.add(100)

	err := f.service.Unassign(context.Background(), 100, 10)
	assert.ErrorIs(t, err, apperrors.ErrAssignmentNotFound)
}

func TestUnassign_ThenReassignSamePair(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentees.add(100)

	_, err := f.service.AssignOne(context.Background(), 100, 10)
	require.NoError(t, err)
	require.NoError(t, f.service.Unassign(context.Background(), 100, 10))

	// A terminated pair never locks out a fresh assignment
	again, err := f.service.AssignOne(context.Background(), 100, 10)
	require.NoError(t, err)
	assert.Equal(t, string(models.AssignmentActive), again.Status)
	assert.Equal(t, 1, f.mentors.count(10))
}

func TestListAssignments_FiltersByMentor(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentors.add(20, 0, 3)
	f.mentees.add(100)
	f.mentees.add(101)

	_, err := f.service.AssignOne(context.Background(), 100, 10)
	require.NoError(t, err)
	_, err = f.service.AssignOne(context.Background(), 101, 20)
	require.NoError(t, err)

	all, err := f.service.ListAssignments(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all.Assignments, 2)

	mentorID := int64(10)
	filtered, err := f.service.ListAssignments(context.Background(), &mentorID)
	require.NoError(t, err)
	require.Len(t, filtered.Assignments, 1)
	assert.Equal(t, int64(100), filtered.Assignments[0].StudentID)
}

func TestListAssignments_ReportsUnpairedSides(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 0, 3)
	f.mentors.add(20, 0, 3)
	f.mentees.add(100)
	f.mentees.add(101)

	_, err := f.service.AssignOne(context.Background(), 100, 10)
	require.NoError(t, err)

	snapshot, err := f.service.ListAssignments(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, snapshot.Assignments, 1)

	// Mentor 20 has zero mentees, student 101 has no mentor
	require.Len(t, snapshot.UnassignedMentors, 1)
	assert.Equal(t, int64(20), snapshot.UnassignedMentors[0].UserID)

	require.Len(t, snapshot.UnassignedStudents, 1)
	assert.Equal(t, int64(101), snapshot.UnassignedStudents[0].ID)
}

func TestListMentors_ReportsCapacity(t *testing.T) {
	f := newAssignmentFixture()
	f.mentors.add(10, 2, 3)

	response, err := f.service.ListMentors(context.Background())
	require.NoError(t, err)
	require.Len(t, response.Mentors, 1)

	assert.Equal(t, int64(10), response.Mentors[0].UserID)
	assert.Equal(t, 2, response.Mentors[0].CurrentMenteeCount)
	assert.Equal(t, 3, response.Mentors[0].MaxMentees)
	assert.Equal(t, string(models.MentorAvailable), response.Mentors[0].Availability)
}
