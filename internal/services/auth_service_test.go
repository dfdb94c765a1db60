package services_test

import (
	"fmt"
	"testing"
	"time"

	"blog/internal/models"
	"blog/internal/repositories"
	"blog/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

const testJWTSecret = "test_jwt_secret"

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	// Successful registration returns a token for the new identity and
	// stores only a bcrypt hash, never the raw password.
	var created *models.User
	mockRepo.On("GetByUsername", "alice").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("GetByEmail", "alice@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		created = args.Get(0).(*models.User)
	}).Return(nil).Once()

	token, user, err := authService.Register("alice", "alice@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Username)
	assert.NotNil(t, created)
	assert.NotEqual(t, "password123", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password123")))

	claims := parseTestToken(t, token)
	assert.Equal(t, "alice", claims["username"])
	mockRepo.AssertExpectations(t)

	// Username already taken
	mockRepo.On("GetByUsername", "alice").Return(&models.User{ID: "1"}, nil).Once()
	_, _, err = authService.Register("alice", "other@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrDuplicateIdentity)
	mockRepo.AssertExpectations(t)

	// Email already registered, and it stays a duplicate on a retry
	for i := 0; i < 2; i++ {
		mockRepo.On("GetByUsername", "alice2").Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("GetByEmail", "alice@example.com").Return(&models.User{ID: "1"}, nil).Once()
		_, _, err = authService.Register("alice2", "alice@example.com", "password123")
		assert.ErrorIs(t, err, services.ErrDuplicateIdentity)
	}
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	mockRepo.On("GetByUsername", "bob").Return(nil, fmt.Errorf("connection reset")).Once()
	_, _, err := authService.Register("bob", "bob@example.com", "password123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrDuplicateIdentity)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Username: "alice",
		Email:    "alice@example.com",
		Password: string(hashedPassword),
	}

	// Successful login by email
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	token, loggedIn, err := authService.Login("alice@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", loggedIn.Username)

	claims := parseTestToken(t, token)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Username, claims["username"])
	mockRepo.AssertExpectations(t)

	// Wrong password and unknown email must be indistinguishable
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	_, _, errWrongPassword := authService.Login("alice@example.com", "wrongpassword")

	mockRepo.On("GetByEmail", "nobody@example.com").Return(nil, repositories.ErrNotFound).Once()
	_, _, errUnknownEmail := authService.Login("nobody@example.com", "password123")

	assert.ErrorIs(t, errWrongPassword, services.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownEmail, services.ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	// Valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "alice", claims["username"])

	// Malformed token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Token signed with a different secret
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	forgedString, _ := forged.SignedString([]byte("some_other_secret"))
	_, err = authService.ValidateToken(forgedString)
	assert.Error(t, err)

	// Expired token
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"username": "alice",
		"exp":      time.Now().Add(-time.Hour).Unix(),
	})
	expiredString, _ := expired.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

// TestAuthService_RegisterLoginFlow drives the full register/login flow
// against the in-memory repository instead of per-call expectations.
func TestAuthService_RegisterLoginFlow(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	authService := services.NewAuthService(repo, testJWTSecret)

	token, user, err := authService.Register("carol", "carol@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, user.ID)

	// The stored record holds a hash, never the raw password.
	stored, err := repo.GetByEmail("carol@example.com")
	assert.NoError(t, err)
	assert.NotEqual(t, "password123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password123")))
	byID, err := repo.GetByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "carol", byID.Username)

	// Reusing either the username or the email is a duplicate.
	_, _, err = authService.Register("carol", "other@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrDuplicateIdentity)
	_, _, err = authService.Register("carol2", "carol@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrDuplicateIdentity)

	// Login with the registration credentials round-trips to a token
	// carrying the same username.
	loginToken, loggedIn, err := authService.Login("carol@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, "carol", loggedIn.Username)
	claims := parseTestToken(t, loginToken)
	assert.Equal(t, "carol", claims["username"])
	assert.Equal(t, user.ID, claims["user_id"])

	_, _, err = authService.Login("carol@example.com", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, _, err = authService.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func parseTestToken(t *testing.T, tokenString string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	return claims
}
