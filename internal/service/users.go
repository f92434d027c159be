package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"task-assignment-api/internal/apperrors"
	"task-assignment-api/internal/auth"
	"task-assignment-api/internal/authz"
	"task-assignment-api/internal/cache"
	"task-assignment-api/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SignupInput is the payload of a new account.
type SignupInput struct {
	FullName string
	Email    string
	Password string
	Role     string
}

// Session is returned on signup and login.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// UserService is the credential store.
type UserService struct {
	db      *gorm.DB
	tokens  *auth.TokenManager
	members cache.MemberCache
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewUserService wires a UserService. A nil members cache disables caching.
func NewUserService(db *gorm.DB, tokens *auth.TokenManager, members cache.MemberCache, logger logrus.FieldLogger) *UserService {
	if members == nil {
		members = cache.Noop{}
	}
	return &UserService{db: db, tokens: tokens, members: members, logger: logger, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an account and returns a session for it.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := normalizeEmail(in.Email)
	if fullName == "" || email == "" || in.Password == "" || strings.TrimSpace(in.Role) == "" {
		return nil, apperrors.Validation("All fields are required")
	}
	role, ok := models.ParseRole(in.Role)
	if !ok {
		return nil, apperrors.Validation("Role must be admin or member")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, apperrors.Unexpected("Failed to check user", err)
	}
	if existing > 0 {
		return nil, apperrors.Conflict("User already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Unexpected("Failed to hash password", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("User already exists")
		}
		return nil, apperrors.Unexpected("Failed to create user", err)
	}
	if role == models.RoleMember {
		s.members.Invalidate(ctx)
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user signed up")
	return s.session(user)
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation("Email and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("Invalid credentials")
		}
		return nil, apperrors.Unexpected("Failed to fetch user", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.Validation("Invalid credentials")
	}
	return s.session(user)
}

func (s *UserService) session(user models.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Unexpected("Failed to generate token", err)
	}
	return &Session{Token: token, User: user}, nil
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, actor authz.Actor) (*models.User, error) {
	return s.FindByID(ctx, actor.ID)
}

// FindByID returns a user or a NotFound error.
func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User not found", "Failed to fetch user")
	}
	return &user, nil
}

// ListMembers returns the member directory, ordered by name.
func (s *UserService) ListMembers(ctx context.Context, actor authz.Actor) ([]models.Member, error) {
	if err := authz.Authorize(actor, authz.OpListMembers, ""); err != nil {
		return nil, err
	}
	if members, ok := s.members.Members(ctx); ok {
		return members, nil
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("role = ?", models.RoleMember).
		Order("full_name asc, id asc").
		Find(&users).Error; err != nil {
		return nil, apperrors.Unexpected("Failed to fetch users", err)
	}

	members := make([]models.Member, 0, len(users))
	for _, u := range users {
		members = append(members, models.Member{ID: u.ID, FullName: u.FullName, Email: u.Email})
	}
	s.members.StoreMembers(ctx, members)
	return members, nil
}
