// internal/stub/users.go
package stub

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	clientauth "horizon-client/internal/auth"

	"golang.org/x/crypto/bcrypt"
)

// User is one seeded stub account. CredentialHash is a bcrypt digest of the
// client-side SHA-256 hex the CLI sends, mirroring how the production backend
// re-hashes the wire value before storing it.
type User struct {
	SubjectID          string   `json:"subjectId"`
	DisplayName        string   `json:"displayName"`
	Role               string   `json:"role"`
	Countries          []string `json:"countries"`
	CredentialHash     []byte   `json:"-"`
	MustChangePassword bool     `json:"mustChangePassword"`
}

type seedUser struct {
	User
	Password string `json:"password"`
}

// UserStore holds the stub's in-memory accounts.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*User
}

// LoadUsers builds the store from a seed file, or from built-in defaults
// when path is empty.
func LoadUsers(path string) (*UserStore, error) {
	seeds := defaultSeedUsers()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed users: %w", err)
		}
		if err := json.Unmarshal(data, &seeds); err != nil {
			return nil, fmt.Errorf("failed to parse seed users: %w", err)
		}
	}

	store := &UserStore{users: make(map[string]*User, len(seeds))}
	for i := range seeds {
		seed := seeds[i]
		hash, err := bcrypt.GenerateFromPassword([]byte(clientauth.HashPassword(seed.Password)), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash seed credential: %w", err)
		}
		user := seed.User
		user.CredentialHash = hash
		store.users[user.SubjectID] = &user
	}
	return store, nil
}

// Find returns the user for subjectID, or nil.
func (s *UserStore) Find(subjectID string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[subjectID]
}

// VerifyCredential checks the wire password-hash against the stored bcrypt.
func (s *UserStore) VerifyCredential(subjectID, passwordHash string) bool {
	user := s.Find(subjectID)
	if user == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(user.CredentialHash, []byte(passwordHash)) == nil
}

// SetCredential replaces the stored credential with a bcrypt of the new wire
// hash and clears the must-change flag.
func (s *UserStore) SetCredential(subjectID, newPasswordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[subjectID]
	if !ok {
		return fmt.Errorf("unknown subject %q", subjectID)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash credential: %w", err)
	}
	user.CredentialHash = hash
	user.MustChangePassword = false
	return nil
}

func defaultSeedUsers() []seedUser {
	return []seedUser{
		{
			User: User{
				SubjectID:   "admin",
				DisplayName: "Horizon Admin",
				Role:        "admin",
				Countries:   []string{"TR", "GR", "CY"},
			},
			Password: "Horizon123",
		},
		{
			User: User{
				SubjectID:   "operator",
				DisplayName: "Site Operator",
				Role:        "user",
				Countries:   []string{"TR"},
			},
			Password: "Operator1",
		},
		{
			User: User{
				SubjectID:          "newhire",
				DisplayName:        "New Hire",
				Role:               "user",
				Countries:          []string{"GR"},
				MustChangePassword: true,
			},
			Password: "Welcome123",
		},
	}
}
