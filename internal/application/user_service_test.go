package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	userapp "github.com/textmorph/auth-service/internal/application"
	"github.com/textmorph/auth-service/internal/domain/entity"
	"github.com/textmorph/auth-service/internal/domain/repository"
	"github.com/textmorph/auth-service/pkg/hasher"
	"github.com/textmorph/auth-service/pkg/mailer"
)

func strptr(s string) *string { return &s }

// memoryUserRepo mimics the Postgres repository including its unique
// email constraint and COALESCE merge semantics.
type memoryUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*entity.User
	byEmail map[string]int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byID: map[int64]*entity.User{}, byEmail: map[string]int64{}}
}

func (m *memoryUserRepo) Create(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[u.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *memoryUserRepo) UpdateProfile(ctx context.Context, id int64, patch repository.ProfilePatch) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = patch.Name
	}
	if patch.AgeGroup != nil {
		u.AgeGroup = patch.AgeGroup
	}
	if patch.Language != nil {
		u.Language = patch.Language
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (m *memoryUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]int64
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: map[string]int64{}}
}

func (m *memoryTokenStore) Save(ctx context.Context, token string, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = userID
	return nil
}

func (m *memoryTokenStore) Consume(ctx context.Context, token string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[token]
	if !ok {
		return 0, false, nil
	}
	delete(m.tokens, token)
	return id, true, nil
}

func (m *memoryTokenStore) TTL() time.Duration { return 15 * time.Minute }

type memoryEmailQueue struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (m *memoryEmailQueue) PublishJSON(ctx context.Context, body any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := body.(mailer.EmailJob); ok {
		m.jobs = append(m.jobs, job)
	}
	return nil
}

func newService(repo repository.UserRepository) *userapp.Service {
	return userapp.NewService(repo, hasher.New(bcrypt.MinCost), nil)
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemoryUserRepo())

	created, err := svc.Register(ctx, userapp.RegisterInput{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
	require.Equal(t, "a@x.com", created.Email)
	require.Nil(t, created.Name)
	require.Nil(t, created.AgeGroup)
	require.Nil(t, created.Language)

	u, err := svc.Login(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemoryUserRepo())

	_, err := svc.Register(ctx, userapp.RegisterInput{Email: "", Password: "secret123"})
	require.ErrorIs(t, err, userapp.ErrValidation)

	_, err = svc.Register(ctx, userapp.RegisterInput{Email: "a@x.com", Password: ""})
	require.ErrorIs(t, err, userapp.ErrValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemoryUserRepo())

	_, err := svc.Register(ctx, userapp.RegisterInput{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	// Same email with a different password is still a conflict
	_, err = svc.Register(ctx, userapp.RegisterInput{Email: "a@x.com", Password: "different"})
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemoryUserRepo())

	_, err := svc.Register(ctx, userapp.RegisterInput{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	_, wrongPw := svc.Login(ctx, "a@x.com", "wrongpw")
	_, noUser := svc.Login(ctx, "nobody@x.com", "secret123")

	require.ErrorIs(t, wrongPw, userapp.ErrInvalidCredentials)
	require.ErrorIs(t, noUser, userapp.ErrInvalidCredentials)
	require.Equal(t, wrongPw.Error(), noUser.Error())
}

func TestUpdateProfilePartialMerge(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemoryUserRepo())

	created, err := svc.Register(ctx, userapp.RegisterInput{
		Email:    "a@x.com",
		Password: "secret123",
		AgeGroup: strptr("25-34"),
		Language: strptr("en"),
	})
	require.NoError(t, err)

	// Updating only the name keeps age_group and language untouched
	u, err := svc.UpdateProfile(ctx, created.ID, repository.ProfilePatch{Name: strptr("Ann")})
	require.NoError(t, err)
	require.Equal(t, "Ann", *u.Name)
	require.Equal(t, "25-34", *u.AgeGroup)
	require.Equal(t, "en", *u.Language)

	u, err = svc.UpdateProfile(ctx, created.ID, repository.ProfilePatch{Language: strptr("de")})
	require.NoError(t, err)
	require.Equal(t, "Ann", *u.Name)
	require.Equal(t, "de", *u.Language)
}

func TestUpdateProfileUnknownID(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemoryUserRepo())

	_, err := svc.UpdateProfile(ctx, 42, repository.ProfilePatch{Name: strptr("Ann")})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	tokens := newMemoryTokenStore()
	queue := &memoryEmailQueue{}

	svc := newService(repo)
	svc.ResetTokens = tokens
	svc.Emails = queue
	svc.MailEnabled = true
	svc.ResetURL = "http://localhost:8501"

	created, err := svc.Register(ctx, userapp.RegisterInput{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.InitPasswordReset(ctx, "a@x.com"))
	require.Len(t, tokens.tokens, 1)
	require.Len(t, queue.jobs, 1)
	require.Equal(t, "a@x.com", queue.jobs[0].To)
	require.Equal(t, mailer.TemplateResetPassword, queue.jobs[0].Template)

	var token string
	for tok := range tokens.tokens {
		token = tok
	}

	require.NoError(t, svc.ConfirmPasswordReset(ctx, token, "newsecret99"))

	u, err := svc.Login(ctx, "a@x.com", "newsecret99")
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)

	_, err = svc.Login(ctx, "a@x.com", "secret123")
	require.ErrorIs(t, err, userapp.ErrInvalidCredentials)

	// Token is one-time use
	err = svc.ConfirmPasswordReset(ctx, token, "another11")
	require.ErrorIs(t, err, userapp.ErrResetTokenInvalid)
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	ctx := context.Background()
	tokens := newMemoryTokenStore()
	queue := &memoryEmailQueue{}

	svc := newService(newMemoryUserRepo())
	svc.ResetTokens = tokens
	svc.Emails = queue
	svc.MailEnabled = true

	// Must look exactly like success from the outside
	require.NoError(t, svc.InitPasswordReset(ctx, "nobody@x.com"))
	require.Empty(t, tokens.tokens)
	require.Empty(t, queue.jobs)
}

func TestConfirmResetBadToken(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemoryUserRepo())
	svc.ResetTokens = newMemoryTokenStore()

	err := svc.ConfirmPasswordReset(ctx, "bogus", "newsecret99")
	require.ErrorIs(t, err, userapp.ErrResetTokenInvalid)
}
