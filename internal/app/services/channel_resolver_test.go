package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deniz/alumlink/internal/app/models"
	"github.com/deniz/alumlink/internal/pkg/apperrors"
)

func newResolverFixture() (*fakeAssignmentStore, ChannelResolver) {
	assignments := newFakeAssignmentStore()
	return assignments, NewChannelResolver(assignments, zerolog.Nop())
}

func TestDirect_StudentResolvesOwnChannel(t *testing.T) {
	assignments, resolver := newResolverFixture()
	_, err := assignments.CreateActive(context.Background(), 10, 100)
	require.NoError(t, err)

	channel, err := resolver.Direct(context.Background(), models.Party{Role: models.RoleStudent, UserID: 100}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(10), channel.MentorID)
	assert.Equal(t, int64(100), channel.StudentID)
}

func TestDirect_StudentWithoutMentor(t *testing.T) {
	_, resolver := newResolverFixture()

	_, err := resolver.Direct(context.Background(), models.Party{Role: models.RoleStudent, UserID: 100}, nil)
	assert.ErrorIs(t, err, apperrors.ErrNoMentor)
}

func TestDirect_MentorMustNameStudent(t *testing.T) {
	assignments, resolver := newResolverFixture()
	_, err := assignments.CreateActive(context.Background(), 10, 100)
	require.NoError(t, err)

	_, err = resolver.Direct(context.Background(), models.Party{Role: models.RoleAlumni, UserID: 10}, nil)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestDirect_MentorResolvesNamedStudent(t *testing.T) {
	assignments, resolver := newResolverFixture()
	_, err := assignments.CreateActive(context.Background(), 10, 100)
	require.NoError(t, err)

	studentID := int64(100)
	channel, err := resolver.Direct(context.Background(), models.Party{Role: models.RoleAlumni, UserID: 10}, &studentID)
	require.NoError(t, err)

	assert.Equal(t, models.Channel{MentorID: 10, StudentID: 100}, channel)
}

func TestDirect_MentorCannotReachForeignStudent(t *testing.T) {
	assignments, resolver := newResolverFixture()
	_, err := assignments.CreateActive(context.Background(), 20, 100)
	require.NoError(t, err)

	studentID := int64(100)
	_, err = resolver.Direct(context.Background(), models.Party{Role: models.RoleAlumni, UserID: 10}, &studentID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidChannel)
}

func TestDirect_AdminHasNoChannel(t *testing.T) {
	_, resolver := newResolverFixture()

	_, err := resolver.Direct(context.Background(), models.Party{Role: models.RoleAdmin, UserID: 1}, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestGroup_MentorGetsOwnMenteeSet(t *testing.T) {
	assignments, resolver := newResolverFixture()
	for _, studentID := range []int64{100, 101, 102} {
		_, err := assignments.CreateActive(context.Background(), 10, studentID)
		require.NoError(t, err)
	}
	_, err := assignments.CreateActive(context.Background(), 20, 200)
	require.NoError(t, err)

	mentorID, menteeIDs, err := resolver.Group(context.Background(), models.Party{Role: models.RoleAlumni, UserID: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(10), mentorID)
	assert.ElementsMatch(t, []int64{100, 101, 102}, menteeIDs)
}

func TestGroup_StudentResolvesMentorsGroup(t *testing.T) {
	assignments, resolver := newResolverFixture()
	_, err := assignments.CreateActive(context.Background(), 10, 100)
	require.NoError(t, err)
	_, err = assignments.CreateActive(context.Background(), 10, 101)
	require.NoError(t, err)

	mentorID, menteeIDs, err := resolver.Group(context.Background(), models.Party{Role: models.RoleStudent, UserID: 100})
	require.NoError(t, err)

	assert.Equal(t, int64(10), mentorID)
	assert.ElementsMatch(t, []int64{100, 101}, menteeIDs)
}

func TestGroup_StudentWithoutMentor(t *testing.T) {
	_, resolver := newResolverFixture()

	_, _, err := resolver.Group(context.Background(), models.Party{Role: models.RoleStudent, UserID: 100})
	assert.ErrorIs(t, err, apperrors.ErrNoMentor)
}
