package identity

import (
	"context"
	"fmt"
	"sync"
)

// Mock is an in-memory Provider for tests and local development. It records
// every call so tests can assert on side effects such as compensating
// deletions.
type Mock struct {
	mu      sync.Mutex
	nextID  int
	Users   map[string]*User
	Deleted []string

	CreateErr error
	RoleErr   error
	DeleteErr error
}

func NewMock() *Mock {
	return &Mock{Users: make(map[string]*User)}
}

func (m *Mock) CreateUser(_ context.Context, u NewUser) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.nextID++
	created := &User{
		ID:        fmt.Sprintf("user_%d", m.nextID),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
	m.Users[created.ID] = created
	return created, nil
}

func (m *Mock) SetRole(_ context.Context, userID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RoleErr != nil {
		return m.RoleErr
	}
	u, ok := m.Users[userID]
	if !ok {
		return fmt.Errorf("user %s not found", userID)
	}
	u.Role = role
	return nil
}

func (m *Mock) DeleteUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Users, userID)
	m.Deleted = append(m.Deleted, userID)
	return nil
}
