package memory

import (
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
)

var (
	ErrNotFound      = interfaces.ErrNotFound
	ErrAlreadyExists = interfaces.ErrAlreadyExists
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	form     *formRepository
	response *responseRepository
	user     *userRepository
	sessions *sessionStore
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		form:     newFormRepository(),
		response: newResponseRepository(),
		user:     newUserRepository(),
		sessions: newSessionStore(),
	}
}

func (m *Memory) Form() interfaces.FormRepository {
	return m.form
}

func (m *Memory) Response() interfaces.ResponseRepository {
	return m.response
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Close() error {
	return nil
}
