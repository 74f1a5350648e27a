package services

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/turbonotes/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrEmailTaken is returned when registering an already-registered email.
	ErrEmailTaken = errors.New("a user with this email already exists")

	// ErrInvalidCredentials is returned for any failed authentication. The
	// caller never learns whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DefaultCategories are seeded for every new user at registration.
var DefaultCategories = []models.Category{
	{Name: "Random Thoughts", Color: "#EF9C66"},
	{Name: "School", Color: "#FCDC94"},
	{Name: "Personal", Color: "#78ABA8"},
}

// NormalizeEmail case-normalizes an email address for lookup and storage
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser creates a user with a bcrypt-hashed credential and seeds the
// default category set. The user and the categories are written in a single
// transaction; partial application is not acceptable.
func RegisterUser(db *gorm.DB, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	// The hash is computed before any row is written so a plaintext
	// credential is never persisted.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}

		if err := tx.Create(user).Error; err != nil {
			// The unique index is the authority; a concurrent insert
			// between the count and the create still surfaces here.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}

		categories := make([]models.Category, len(DefaultCategories))
		for i, cat := range DefaultCategories {
			categories[i] = models.Category{
				UserID: user.ID,
				Name:   cat.Name,
				Color:  cat.Color,
			}
		}
		return tx.Create(&categories).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("User registered")

	return user, nil
}

// AuthenticateUser resolves an (email, password) pair to an active user
func AuthenticateUser(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ? AND is_active = ?", NormalizeEmail(email), true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GetUserByID fetches an active user by primary key
func GetUserByID(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &user, nil
}
