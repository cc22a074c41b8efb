package services

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/socialfeed-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for the credential store.
type UserServiceProvider interface {
	CreateUser(username, email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	GetUserByToken(key string) (models.User, error)
	AuthenticateUser(username, password string) (models.User, error)
	GetOrCreateToken(userID string) (string, error)
	RotateToken(userID string) (string, error)
}

// UserService provides business logic for accounts and bearer tokens.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// CreateUser validates the registration payload and creates a new account,
// hashing the password. Validation problems come back as a field-keyed
// ValidationError.
func (s *UserService) CreateUser(username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)

	errs := ValidationError{}
	if username == "" {
		errs["username"] = append(errs["username"], "This field is required.")
	}
	if password == "" {
		errs["password"] = append(errs["password"], "This field is required.")
	} else if len(password) < 8 {
		errs["password"] = append(errs["password"], "Password must be at least 8 characters.")
	}
	if username != "" {
		var exists int
		err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", username).Scan(&exists)
		if err != nil {
			return models.User{}, err
		}
		if exists > 0 {
			errs["username"] = append(errs["username"], "A user with that username already exists.")
		}
	}
	if len(errs) > 0 {
		return models.User{}, errs
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, username, email, password_hash) VALUES(?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(user.ID, user.Username, user.Email, string(hashedPassword)); err != nil {
		return models.User{}, err
	}

	return s.GetUserByID(user.ID)
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, email, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByToken resolves an opaque bearer token key to its user.
func (s *UserService) GetUserByToken(key string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow(`
		SELECT u.id, u.username, u.email, u.created_at
		FROM users u JOIN tokens t ON t.user_id = u.id
		WHERE t.key = ?`, key)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// AuthenticateUser verifies a user's credentials.
func (s *UserService) AuthenticateUser(username, password string) (models.User, error) {
	var user models.User
	var passwordHash string
	row := s.db.QueryRow("SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &passwordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetOrCreateToken returns the user's existing token, creating one on first
// login. Repeated logins therefore hand back the same key.
func (s *UserService) GetOrCreateToken(userID string) (string, error) {
	var key string
	err := s.db.QueryRow("SELECT key FROM tokens WHERE user_id = ?", userID).Scan(&key)
	if err == nil {
		return key, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	return s.insertToken(userID)
}

// RotateToken discards any existing token for the user and issues a fresh
// one, as registration always does.
func (s *UserService) RotateToken(userID string) (string, error) {
	if _, err := s.db.Exec("DELETE FROM tokens WHERE user_id = ?", userID); err != nil {
		return "", err
	}
	return s.insertToken(userID)
}

func (s *UserService) insertToken(userID string) (string, error) {
	key, err := generateTokenKey()
	if err != nil {
		return "", err
	}
	if _, err := s.db.Exec("INSERT INTO tokens(key, user_id) VALUES(?, ?)", key, userID); err != nil {
		return "", err
	}
	return key, nil
}

// generateTokenKey produces a 40-character hex key.
func generateTokenKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
