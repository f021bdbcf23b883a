package identity_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	identity "github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// memUsers is an in-memory identity.Users used across tests. It mirrors the
// behavior of the real repository: defaults applied on insert, unique email,
// not-found errors that satisfy goerrors.IsNotFound.
type memUsers struct {
	mu      sync.Mutex
	records map[uuid.UUID]*identity.User
}

var _ identity.Users = (*memUsers)(nil)

func newMemUsers() *memUsers {
	return &memUsers{records: map[uuid.UUID]*identity.User{}}
}

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return m.GetByIDTx(ctx, nil, id)
}

func (m *memUsers) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*identity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.records[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, identity.ErrUserNotFound
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	return m.GetByEmailTx(ctx, nil, email)
}

func (m *memUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*identity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.records {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (m *memUsers) Register(ctx context.Context, user *identity.User) (*identity.User, error) {
	return m.RegisterTx(ctx, nil, user)
}

func (m *memUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *identity.User) (*identity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.records {
		if existing.Email == user.Email {
			return nil, identity.ErrUserExists
		}
	}

	if user.Role == "" {
		user.Role = identity.RoleUser
	}
	user.EnsureStatus()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt == nil {
		now := time.Now()
		user.CreatedAt = &now
	}

	clone := *user
	m.records[user.ID] = &clone
	return user, nil
}

func (m *memUsers) List(ctx context.Context) ([]*identity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*identity.User, 0, len(m.records))
	for _, user := range m.records {
		clone := *user
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(*out[j].CreatedAt)
	})
	return out, nil
}

func (m *memUsers) UpdateStatus(ctx context.Context, id uuid.UUID, status identity.UserStatus) (*identity.User, error) {
	return m.UpdateStatusTx(ctx, nil, id, status)
}

func (m *memUsers) UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status identity.UserStatus) (*identity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.records[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	user.Status = status
	clone := *user
	return &clone, nil
}

func (m *memUsers) Block(ctx context.Context, actor identity.ActorRef, user *identity.User, opts ...identity.TransitionOption) (*identity.User, error) {
	return identity.NewUserStateMachine(m).Transition(ctx, actor, user, identity.UserStatusBlocked, opts...)
}

// stubRepoManager satisfies identity.RepositoryManager without a database.
// RunInTx invokes the callback with a zero transaction, memUsers ignores it.
type stubRepoManager struct {
	users identity.Users
}

var _ identity.RepositoryManager = stubRepoManager{}

func (s stubRepoManager) Validate() error { return nil }
func (s stubRepoManager) MustValidate()   {}

func (s stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (s stubRepoManager) Users() identity.Users { return s.users }

// testConfig satisfies identity.Config
type testConfig struct {
	key      string
	exp      int
	issuer   string
	audience []string
}

func (c testConfig) GetSigningKey() string   { return c.key }
func (c testConfig) GetTokenExpiration() int { return c.exp }
func (c testConfig) GetIssuer() string       { return c.issuer }
func (c testConfig) GetAudience() []string   { return c.audience }

// testIdentity satisfies identity.Identity
type testIdentity struct {
	id    string
	email string
	role  string
}

func (i testIdentity) ID() string    { return i.id }
func (i testIdentity) Email() string { return i.email }
func (i testIdentity) Role() string  { return i.role }

// seedUser inserts a user with a real bcrypt hash for the given password.
func seedUser(t *testing.T, store *memUsers, email, password, role string, status identity.UserStatus) *identity.User {
	t.Helper()

	hash, err := identity.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &identity.User{
		FirstName:    "Test",
		LastName:     "User",
		MiddleName:   "T",
		BirthDate:    time.Date(1990, time.January, 15, 0, 0, 0, 0, time.UTC),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	}

	user, err = store.Register(context.Background(), user)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return user
}
