package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/textmorph/auth-service/internal/domain/entity"
	"github.com/textmorph/auth-service/internal/domain/repository"
	"github.com/textmorph/auth-service/pkg/mailer"
)

var (
	// ErrValidation is returned when required registration input is missing.
	ErrValidation = errors.New("email and password are required")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases must stay indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrResetTokenInvalid is returned for unknown, expired, or already
	// used password reset tokens.
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
)

// PasswordHasher is the one-way credential transform injected into the service.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// ResetTokenStore persists one-time password reset tokens.
type ResetTokenStore interface {
	Save(ctx context.Context, token string, userID int64) error
	Consume(ctx context.Context, token string) (int64, bool, error)
	TTL() time.Duration
}

// EmailQueue publishes mail jobs for out-of-process delivery.
type EmailQueue interface {
	PublishJSON(ctx context.Context, body any) error
}

// Service orchestrates registration, login, and profile management.
// All collaborators are injected; the service holds no per-request state.
type Service struct {
	Repo         repository.UserRepository
	Hasher       PasswordHasher
	ResetTokens  ResetTokenStore
	Emails       EmailQueue
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	ResetURL     string
	MailEnabled  bool
}

func NewService(repo repository.UserRepository, h PasswordHasher, logger *logrus.Logger) *Service {
	return &Service{Repo: repo, Hasher: h, Logger: logger}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     *string
	AgeGroup *string
	Language *string
}

// Register hashes the password and inserts the user. Email uniqueness is
// decided by the storage constraint, not by a lookup here, so concurrent
// registrations race safely: at most one wins, the rest see
// repository.ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, ErrValidation
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, ErrValidation
	}
	u := &entity.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		AgeGroup:     in.AgeGroup,
		Language:     in.Language,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

// Login verifies credentials. Both "no such email" and "wrong password"
// collapse into ErrInvalidCredentials to prevent account enumeration.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*entity.User, error) {
	return s.Repo.GetByID(ctx, userID)
}

// UpdateProfile merges the supplied fields only; email and password are
// immutable through this path.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, patch repository.ProfilePatch) (*entity.User, error) {
	u, err := s.Repo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

func generateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// InitPasswordReset issues a one-time reset token for the email, if it is
// registered, and enqueues the reset mail. It deliberately reports nothing
// about whether the email exists; callers must answer with the same generic
// message either way.
func (s *Service) InitPasswordReset(ctx context.Context, email string) error {
	if s.ResetTokens == nil {
		return nil
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		// Unknown email: same outcome as success, minus the side effects.
		return nil
	}
	token, err := generateToken(32)
	if err != nil {
		return err
	}
	if err := s.ResetTokens.Save(ctx, token, u.ID); err != nil {
		return err
	}
	link := s.ResetURL + "?token=" + token
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Debug("password reset token issued")
	}
	if s.Emails != nil && s.MailEnabled {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplateResetPassword,
			Data: map[string]any{
				"Link":      link,
				"Token":     token,
				"ExpiresIn": s.ResetTokens.TTL().String(),
			},
		}
		if err := s.Emails.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			// Delivery is best effort; the token stays valid either way.
			s.Logger.WithError(err).Warn("failed to enqueue reset email")
		}
	}
	return nil
}

// ConfirmPasswordReset consumes the token and replaces the stored hash.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return ErrValidation
	}
	if s.ResetTokens == nil {
		return ErrResetTokenInvalid
	}
	userID, ok, err := s.ResetTokens.Consume(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrResetTokenInvalid
	}
	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return ErrValidation
	}
	return s.Repo.UpdatePassword(ctx, userID, hash)
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"age_group":  u.AgeGroup,
		"language":   u.Language,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESUsersIndex,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

// SearchUsers performs a simple multi_match search on email and name.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
