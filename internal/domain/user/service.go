package user

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/alhussam/store-api/internal/session"
)

// SessionTTL is how long a login session stays valid without re-login.
const SessionTTL = 7 * 24 * time.Hour

// Service handles registration, login, and session resolution.
type Service struct {
	users    Repository
	sessions session.Store
	pepper   []byte
	now      func() time.Time
}

// NewService creates a user Service. The pepper is mixed into password and
// token hashes so a leaked database alone cannot verify guesses.
func NewService(users Repository, sessions session.Store, pepper []byte) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		pepper:   pepper,
		now:      time.Now,
	}
}

// HashSecret computes the peppered HMAC-SHA256 hex digest used for both
// password hashes and session token keys.
func (s *Service) HashSecret(secret string) string {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}

// Register creates a customer account and logs it in, returning the new user
// and a session token.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", errors.Wrap(err, "check email")
	}

	u := &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: s.HashSecret(password),
		Role:         RoleCustomer,
		JoinedAt:     s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", errors.Wrap(err, "create user")
	}

	token, err := s.startSession(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies the credentials and returns the user and a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", errors.Wrap(err, "find user")
	}

	if !hmac.Equal([]byte(u.PasswordHash), []byte(s.HashSecret(password))) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.startSession(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout invalidates the session for the given token. Unknown tokens are a
// no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, s.HashSecret(token))
}

// Authenticate resolves a bearer token to its user, or ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	sess, err := s.sessions.Get(ctx, s.HashSecret(token))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "get session")
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "get user")
	}
	return u, nil
}

// ListAddresses returns the user's saved addresses.
func (s *Service) ListAddresses(ctx context.Context, userID string) ([]Address, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Addresses, nil
}

// AddAddress saves a new address. The first saved address, or one flagged as
// default, becomes the default.
func (s *Service) AddAddress(ctx context.Context, userID string, a Address) (*Address, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	a.ID = uuid.New().String()
	if len(u.Addresses) == 0 {
		a.IsDefault = true
	}
	if a.IsDefault {
		clearDefault(u.Addresses)
	}
	u.Addresses = append(u.Addresses, a)

	if err := s.users.Update(ctx, u); err != nil {
		return nil, errors.Wrap(err, "save addresses")
	}
	return &a, nil
}

// UpdateAddress replaces a saved address in place.
func (s *Service) UpdateAddress(ctx context.Context, userID string, a Address) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	idx := -1
	for i := range u.Addresses {
		if u.Addresses[i].ID == a.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrAddressNotFound
	}
	if a.IsDefault {
		clearDefault(u.Addresses)
	}
	u.Addresses[idx] = a

	return errors.Wrap(s.users.Update(ctx, u), "save addresses")
}

// DeleteAddress removes a saved address. Deleting the default promotes the
// first remaining address.
func (s *Service) DeleteAddress(ctx context.Context, userID, addressID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	kept := u.Addresses[:0]
	removedDefault := false
	found := false
	for _, addr := range u.Addresses {
		if addr.ID == addressID {
			found = true
			removedDefault = addr.IsDefault
			continue
		}
		kept = append(kept, addr)
	}
	if !found {
		return ErrAddressNotFound
	}
	if removedDefault && len(kept) > 0 {
		kept[0].IsDefault = true
	}
	u.Addresses = kept

	return errors.Wrap(s.users.Update(ctx, u), "save addresses")
}

func clearDefault(addrs []Address) {
	for i := range addrs {
		addrs[i].IsDefault = false
	}
}

func (s *Service) startSession(ctx context.Context, u *User) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "generate token")
	}
	token := hex.EncodeToString(raw)

	err := s.sessions.Save(ctx, s.HashSecret(token), session.Session{
		UserID:    u.ID,
		Role:      string(u.Role),
		CreatedAt: s.now(),
	}, SessionTTL)
	if err != nil {
		return "", errors.Wrap(err, "save session")
	}
	return token, nil
}
