package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	MentorRepository     *MentorRepository
	MenteeRepository     *MenteeRepository
	AssignmentRepository *AssignmentRepository
	MessageRepository    *MessageRepository
	FileRepository       *FileRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		MentorRepository:     NewMentorRepository(db),
		MenteeRepository:     NewMenteeRepository(db),
		AssignmentRepository: NewAssignmentRepository(db),
		MessageRepository:    NewMessageRepository(db),
		FileRepository:       NewFileRepository(db),
	}
}
