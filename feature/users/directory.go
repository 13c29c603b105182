package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"list-manager/feature/users/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrKeyTaken is returned when an explicitly supplied user key already exists.
	ErrKeyTaken = errors.New("user key already taken")
)

// Resolver maps caller-supplied identifiers to creator keys.
// A missing user is reported with ok=false, never as an error.
type Resolver interface {
	ResolveUsername(ctx context.Context, username string) (key string, ok bool, err error)
	ResolveKey(ctx context.Context, key string) (resolved string, ok bool, err error)
}

// Directory is the GORM backed user directory.
type Directory struct {
	db *gorm.DB
}

// NewDirectory creates a directory over db.
func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// AutoMigrate creates or updates the users table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("failed to migrate users: %w", err)
	}
	return nil
}

// ResolveUsername implements Resolver. Usernames are matched case-insensitively.
func (d *Directory) ResolveUsername(ctx context.Context, username string) (string, bool, error) {
	username = normalize(username)
	if username == "" {
		return "", false, nil
	}
	return d.lookup(ctx, "username = ?", username)
}

// ResolveKey implements Resolver.
func (d *Directory) ResolveKey(ctx context.Context, key string) (string, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, nil
	}
	return d.lookup(ctx, "user_key = ?", key)
}

func (d *Directory) lookup(ctx context.Context, query string, arg string) (string, bool, error) {
	var user models.User
	err := d.db.WithContext(ctx).Where(query, arg).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user.Key, true, nil
}

// Register adds a user. An empty key is generated.
func (d *Directory) Register(ctx context.Context, key, username, displayName string) (*models.User, error) {
	username = normalize(username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if key == "" {
		key = uuid.NewString()
	}
	if displayName == "" {
		displayName = username
	}

	user := &models.User{Key: key, Username: username, DisplayName: displayName}
	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, d.duplicateError(ctx, key, username)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// List returns every user ordered by username.
func (d *Directory) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := d.db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// duplicateError tells a username collision from a key collision.
func (d *Directory) duplicateError(ctx context.Context, key, username string) error {
	if _, taken, err := d.lookup(ctx, "username = ?", username); err == nil && taken {
		return fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	}
	if _, taken, err := d.lookup(ctx, "user_key = ?", key); err == nil && taken {
		return fmt.Errorf("%w: %s", ErrKeyTaken, key)
	}
	return fmt.Errorf("%w: %s", ErrUsernameTaken, username)
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
