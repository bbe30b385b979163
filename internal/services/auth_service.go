package services

import (
	"fmt"
	"log"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/AlexPyslar03/product-selector-backend/internal/apperrors"
	"github.com/AlexPyslar03/product-selector-backend/internal/models"
)

// AuthService handles credential verification and token issuance. Tokens
// carry the user's role as claimed at issuance time; the role is not
// re-checked against the store until re-authentication.
type AuthService struct {
	users      *UserService
	jwtSecret  []byte
	tokenDurat time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, jwtSecret string) *AuthService {
	return &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
}

// SignUp registers a new user with the USER role and returns a signed token
// for the fresh account.
func (s *AuthService) SignUp(username, email, password string, birthDate time.Time) (string, error) {
	user, err := s.users.Create(UserCreateInput{
		Username:  username,
		Email:     email,
		Password:  password,
		BirthDate: birthDate,
		Role:      models.RoleUser,
	})
	if err != nil {
		return "", err
	}
	return s.generateToken(user)
}

// SignIn verifies the credentials and returns a signed token. The error is
// deliberately generic so callers cannot probe which usernames exist.
func (s *AuthService) SignIn(username, password string) (string, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return "", apperrors.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperrors.ErrUnauthorized
	}
	return s.generateToken(user)
}

// generateToken issues an HS256 token scoped to one user and role.
func (s *AuthService) generateToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if
// valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", apperrors.ErrUnauthorized)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token: %w", apperrors.ErrUnauthorized)
}
