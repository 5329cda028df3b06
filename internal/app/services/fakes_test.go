package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"
	"time"

	"github.com/deniz/alumlink/internal/app/models"
	"github.com/deniz/alumlink/internal/pkg/apperrors"
)

// In-memory fakes standing in for the pgx-backed repositories. The mentor
// ledger guards its counters with a mutex so concurrency tests exercise the
// same all-or-nothing reservation the SQL conditional UPDATE gives.

type fakeMentorLedger struct {
	mu      sync.Mutex
	mentors map[int64]*models.MentorProfile
}

func newFakeMentorLedger() *fakeMentorLedger {
	return &fakeMentorLedger{mentors: make(map[int64]*models.MentorProfile)}
}

func (f *fakeMentorLedger) add(userID int64, current, max int) {
	availability := models.MentorAvailable
	if current >= max {
		availability = models.MentorFull
	}
	f.mentors[userID] = &models.MentorProfile{
		UserID:             userID,
		CurrentMenteeCount: current,
		MaxMentees:         max,
		Availability:       availability,
		User: &models.User{
			ID:        userID,
			Email:     fmt.Sprintf("mentor%d@alumlink.app", userID),
			FirstName: "Mentor",
			LastName:  fmt.Sprintf("%d", userID),
			RoleType:  models.RoleAlumni,
		},
	}
}

func (f *fakeMentorLedger) GetByID(_ context.Context, userID int64) (*models.MentorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mentor, ok := f.mentors[userID]
	if !ok {
		return nil, apperrors.ErrMentorNotFound
	}
	copied := *mentor
	return &copied, nil
}

func (f *fakeMentorLedger) ReserveSlot(_ context.Context, mentorID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	mentor, ok := f.mentors[mentorID]
	if !ok {
		return apperrors.ErrMentorNotFound
	}
	if mentor.CurrentMenteeCount >= mentor.MaxMentees {
		return apperrors.ErrCapacityExceeded
	}
	mentor.CurrentMenteeCount++
	if mentor.CurrentMenteeCount >= mentor.MaxMentees {
		mentor.Availability = models.MentorFull
	}
	return nil
}

func (f *fakeMentorLedger) ReleaseSlot(_ context.Context, mentorID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	mentor, ok := f.mentors[mentorID]
	if !ok {
		return apperrors.ErrMentorNotFound
	}
	if mentor.CurrentMenteeCount > 0 {
		mentor.CurrentMenteeCount--
	}
	mentor.Availability = models.MentorAvailable
	return nil
}

func (f *fakeMentorLedger) ListAll(_ context.Context) ([]*models.MentorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mentors []*models.MentorProfile
	for _, mentor := range f.mentors {
		copied := *mentor
		mentors = append(mentors, &copied)
	}
	return mentors, nil
}

func (f *fakeMentorLedger) count(mentorID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mentors[mentorID].CurrentMenteeCount
}

type fakeMenteeStore struct {
	mu      sync.Mutex
	mentees map[int64]*models.MenteeProfile
}

func newFakeMenteeStore() *fakeMenteeStore {
	return &fakeMenteeStore{mentees: make(map[int64]*models.MenteeProfile)}
}

func (f *fakeMenteeStore) add(userID int64) {
	f.mentees[userID] = &models.MenteeProfile{
		UserID:           userID,
		MentorshipStatus: models.MentorshipAvailable,
		User: &models.User{
			ID:        userID,
			Email:     fmt.Sprintf("student%d@alumlink.app", userID),
			FirstName: "Student",
			LastName:  fmt.Sprintf("%d", userID),
			RoleType:  models.RoleStudent,
		},
	}
}

func (f *fakeMenteeStore) GetByID(_ context.Context, userID int64) (*models.MenteeProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mentee, ok := f.mentees[userID]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	copied := *mentee
	return &copied, nil
}

func (f *fakeMenteeStore) SetMentor(_ context.Context, studentID, mentorID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	mentee, ok := f.mentees[studentID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	mentee.MentorID = &mentorID
	mentee.MentorshipStatus = models.MentorshipMentored
	return nil
}

func (f *fakeMenteeStore) ClearMentor(_ context.Context, studentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	mentee, ok := f.mentees[studentID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	mentee.MentorID = nil
	mentee.MentorshipStatus = models.MentorshipAvailable
	return nil
}

func (f *fakeMenteeStore) ListWithoutMentor(_ context.Context) ([]*models.MenteeProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mentees []*models.MenteeProfile
	for _, mentee := range f.mentees {
		if mentee.MentorID == nil {
			copied := *mentee
			mentees = append(mentees, &copied)
		}
	}
	return mentees, nil
}

type fakeAssignmentStore struct {
	mu          sync.Mutex
	nextID      int64
	assignments []*models.Assignment
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{nextID: 1}
}

func (f *fakeAssignmentStore) CreateActive(_ context.Context, mentorID, studentID int64) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assignments {
		if a.StudentID == studentID && a.Status == models.AssignmentActive {
			return nil, apperrors.ErrAlreadyAssigned
		}
	}
	assignment := &models.Assignment{
		ID:        f.nextID,
		MentorID:  mentorID,
		StudentID: studentID,
		Status:    models.AssignmentActive,
		StartDate: time.Now(),
	}
	f.nextID++
	f.assignments = append(f.assignments, assignment)
	copied := *assignment
	return &copied, nil
}

func (f *fakeAssignmentStore) FindActiveByStudent(_ context.Context, studentID int64) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assignments {
		if a.StudentID == studentID && a.Status == models.AssignmentActive {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAssignmentStore) FindActiveByPair(_ context.Context, mentorID, studentID int64) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assignments {
		if a.MentorID == mentorID && a.StudentID == studentID && a.Status == models.AssignmentActive {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperrors.ErrAssignmentNotFound
}

func (f *fakeAssignmentStore) Terminate(_ context.Context, assignmentID int64, status models.AssignmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assignments {
		if a.ID == assignmentID && a.Status == models.AssignmentActive {
			a.Status = status
			now := time.Now()
			a.EndDate = &now
			return nil
		}
	}
	return apperrors.ErrAssignmentNotFound
}

func (f *fakeAssignmentStore) ActiveMenteeIDs(_ context.Context, mentorID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for _, a := range f.assignments {
		if a.MentorID == mentorID && a.Status == models.AssignmentActive {
			ids = append(ids, a.StudentID)
		}
	}
	return ids, nil
}

func (f *fakeAssignmentStore) ListActive(_ context.Context, mentorID *int64) ([]*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var assignments []*models.Assignment
	for _, a := range f.assignments {
		if a.Status != models.AssignmentActive {
			continue
		}
		if mentorID != nil && a.MentorID != *mentorID {
			continue
		}
		copied := *a
		assignments = append(assignments, &copied)
	}
	return assignments, nil
}

func (f *fakeAssignmentStore) statusOf(assignmentID int64) models.AssignmentStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assignments {
		if a.ID == assignmentID {
			return a.Status
		}
	}
	return ""
}

type fakeEmailService struct {
	mu            sync.Mutex
	assignments   []string
	unassignments []string
}

func (f *fakeEmailService) SendAssignmentEmail(toEmail, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments = append(f.assignments, toEmail)
	return nil
}

func (f *fakeEmailService) SendUnassignmentEmail(toEmail, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unassignments = append(f.unassignments, toEmail)
	return nil
}

type fakeMessageStore struct {
	mu        sync.Mutex
	nextID    int64
	messages  []*models.Message
	reactions map[string]*models.Reaction
	failFor   map[int64]bool // studentID -> fail Create
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{nextID: 1, reactions: make(map[string]*models.Reaction), failFor: make(map[int64]bool)}
}

func reactionKey(messageID, userID int64, role models.RoleType) string {
	return fmt.Sprintf("%d/%d/%s", messageID, userID, role)
}

func (f *fakeMessageStore) Create(_ context.Context, message *models.Message) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[message.StudentID] {
		return 0, fmt.Errorf("simulated write failure for student %d", message.StudentID)
	}
	message.ID = f.nextID
	message.CreatedAt = time.Now()
	message.UpdatedAt = message.CreatedAt
	f.nextID++
	copied := *message
	f.messages = append(f.messages, &copied)
	return message.ID, nil
}

func (f *fakeMessageStore) GetByID(_ context.Context, id int64) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == id {
			copied := *m
			copied.Reactions = f.reactionsForLocked(id)
			return &copied, nil
		}
	}
	return nil, apperrors.ErrMessageNotFound
}

func (f *fakeMessageStore) ListChannel(_ context.Context, mentorID, studentID int64, _ *time.Time, _ int) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Message
	for _, m := range f.messages {
		if m.MentorID == mentorID && m.StudentID == studentID && !m.IsDeleted {
			copied := *m
			copied.Reactions = f.reactionsForLocked(m.ID)
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeMessageStore) ListGroupForMentor(_ context.Context, mentorID int64) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var result []*models.Message
	for _, m := range f.messages {
		if m.MentorID != mentorID || !m.IsGroup || m.IsDeleted {
			continue
		}
		if m.SendEventID != nil {
			if seen[*m.SendEventID] {
				continue
			}
			seen[*m.SendEventID] = true
		}
		copied := *m
		result = append(result, &copied)
	}
	return result, nil
}

func (f *fakeMessageStore) ListGroupForStudent(_ context.Context, mentorID, studentID int64) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Message
	for _, m := range f.messages {
		if m.MentorID == mentorID && m.StudentID == studentID && m.IsGroup && !m.IsDeleted {
			copied := *m
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeMessageStore) MarkChannelRead(_ context.Context, mentorID, studentID int64, senderRole models.RoleType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.MentorID == mentorID && m.StudentID == studentID && m.SenderRole == senderRole && !m.IsDeleted {
			m.Read = true
		}
	}
	return nil
}

func (f *fakeMessageStore) MarkGroupReadForMentor(_ context.Context, mentorID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Only the representative copy per send event, mirroring the mentor view
	representatives := make(map[string]*models.Message)
	for _, m := range f.messages {
		if m.MentorID != mentorID || !m.IsGroup || m.IsDeleted || m.SendEventID == nil {
			continue
		}
		if current, ok := representatives[*m.SendEventID]; !ok || m.ID < current.ID {
			representatives[*m.SendEventID] = m
		}
	}
	for _, m := range representatives {
		if m.SenderRole == models.RoleStudent {
			m.Read = true
		}
	}
	return nil
}

func (f *fakeMessageStore) MarkGroupReadForStudent(_ context.Context, mentorID, studentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.MentorID == mentorID && m.StudentID == studentID && m.IsGroup &&
			m.SenderRole == models.RoleAlumni && !m.IsDeleted {
			m.Read = true
		}
	}
	return nil
}

func (f *fakeMessageStore) SoftDelete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == id && !m.IsDeleted {
			m.IsDeleted = true
			return nil
		}
	}
	return apperrors.ErrMessageNotFound
}

func (f *fakeMessageStore) UpsertReaction(_ context.Context, reaction *models.Reaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := reactionKey(reaction.MessageID, reaction.UserID, reaction.UserRole)
	reaction.CreatedAt = time.Now()
	if existing, ok := f.reactions[key]; ok {
		reaction.ID = existing.ID
	} else {
		reaction.ID = int64(len(f.reactions) + 1)
	}
	copied := *reaction
	f.reactions[key] = &copied
	return nil
}

func (f *fakeMessageStore) DeleteReaction(_ context.Context, messageID, userID int64, userRole models.RoleType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reactions, reactionKey(messageID, userID, userRole))
	return nil
}

func (f *fakeMessageStore) reactionsForLocked(messageID int64) []models.Reaction {
	var result []models.Reaction
	for _, r := range f.reactions {
		if r.MessageID == messageID {
			result = append(result, *r)
		}
	}
	return result
}

type fakeFileStore struct {
	mu     sync.Mutex
	nextID int64
	files  []*models.File
}

func (f *fakeFileStore) Create(_ context.Context, file *models.File) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	file.ID = f.nextID
	copied := *file
	f.files = append(f.files, &copied)
	return file.ID, nil
}

type fakeFileStorage struct {
	fail  bool
	saved []string
}

func (f *fakeFileStorage) SaveFile(fileHeader *multipart.FileHeader) (string, error) {
	return f.SaveFileWithPath(fileHeader, "")
}

func (f *fakeFileStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, _ string) (string, error) {
	if f.fail {
		return "", fmt.Errorf("simulated storage failure")
	}
	path := "uploads/" + fileHeader.Filename
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeFileStorage) DeleteFile(string) error { return nil }

func (f *fakeFileStorage) GetBaseURL() string { return "http://localhost:8080/uploads" }
