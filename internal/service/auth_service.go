package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"automarket/config"
	"automarket/internal/auth"
	"automarket/internal/models"
	"automarket/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrInvalidCreds   = errors.New("invalid login or password")
	ErrInactive       = errors.New("account disabled")
	ErrNoPasswordSet  = errors.New("account uses Google sign-in; set a password first")
)

// AccountFinder is the lookup surface LookupAccount needs.
type AccountFinder interface {
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}

// LookupAccount resolves a login that may be a username or an email: an exact
// username match wins, then a case-insensitive email match. Emails are stored
// lowercase. A nil account means no match.
func LookupAccount(finder AccountFinder, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, nil
	}
	u, err := finder.GetByUsername(login)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	u, err = finder.GetByEmail(strings.ToLower(login))
	if err == nil {
		return u, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// Tokens is an access/refresh pair.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo}
}

func (s *AuthService) issue(u *models.User) (Tokens, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Username, u.IsStaff)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Register(in RegisterInput) (*models.User, Tokens, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, Tokens{}, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Tokens{}, persistErr("check username", err)
	}
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, Tokens{}, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Tokens{}, persistErr("check email", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Tokens{}, err
	}
	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		IsActive:     true,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, Tokens{}, persistErr("create user", err)
	}
	tokens, err := s.issue(u)
	return u, tokens, err
}

// Login accepts a username or an email as login.
func (s *AuthService) Login(login, password string) (*models.User, Tokens, error) {
	u, err := LookupAccount(s.userRepo, login)
	if err != nil {
		return nil, Tokens{}, persistErr("lookup account", err)
	}
	if u == nil || u.PasswordHash == "" {
		return nil, Tokens{}, ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, Tokens{}, ErrInvalidCreds
	}
	if !u.IsActive {
		return nil, Tokens{}, ErrInactive
	}
	now := time.Now()
	u.LastLoginAt = &now
	if err := s.userRepo.Update(u); err != nil {
		return nil, Tokens{}, persistErr("update last login", err)
	}
	tokens, err := s.issue(u)
	return u, tokens, err
}

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_.-]+`)

// LoginWithGoogle finds the account by Google ID, links an existing account
// with the same email, or creates a new one. isNew reports the last case.
func (s *AuthService) LoginWithGoogle(googleID, email, name, avatarURL string) (*models.User, Tokens, bool, error) {
	u, err := s.userRepo.GetByGoogleID(googleID)
	if err == nil {
		if !u.IsActive {
			return nil, Tokens{}, false, ErrInactive
		}
		tokens, err := s.issue(u)
		return u, tokens, false, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Tokens{}, false, persistErr("lookup google id", err)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.userRepo.GetByEmail(email)
	if err == nil {
		if !existing.IsActive {
			return nil, Tokens{}, false, ErrInactive
		}
		gid := googleID
		existing.GoogleID = &gid
		if avatarURL != "" && existing.AvatarURL == "" {
			existing.AvatarURL = avatarURL
		}
		if err := s.userRepo.Update(existing); err != nil {
			return nil, Tokens{}, false, persistErr("link google", err)
		}
		tokens, err := s.issue(existing)
		return existing, tokens, false, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Tokens{}, false, persistErr("lookup email", err)
	}

	username, err := s.freeUsername(googleUsername(email, name))
	if err != nil {
		return nil, Tokens{}, false, err
	}
	first, last := splitName(name)
	gid := googleID
	u = &models.User{
		Username:  username,
		Email:     email,
		GoogleID:  &gid,
		FirstName: first,
		LastName:  last,
		AvatarURL: avatarURL,
		IsActive:  true,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, Tokens{}, false, persistErr("create google user", err)
	}
	tokens, err := s.issue(u)
	return u, tokens, true, err
}

func googleUsername(email, name string) string {
	base := strings.Split(email, "@")[0]
	if name != "" {
		base = strings.ReplaceAll(strings.ToLower(name), " ", "_")
	}
	base = usernameUnsafe.ReplaceAllString(strings.ToLower(base), "")
	if len(base) < 3 {
		base = "user" + base
	}
	if len(base) > 140 {
		base = base[:140]
	}
	return base
}

// freeUsername appends a numeric suffix until the name is unused.
func (s *AuthService) freeUsername(base string) (string, error) {
	candidate := base
	for i := 2; i < 1000; i++ {
		_, err := s.userRepo.GetByUsername(candidate)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", persistErr("check username", err)
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", ErrUsernameExists
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// ChangePassword updates the user's password. Requires current password verification.
func (s *AuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCreds
		}
		return persistErr("load user", err)
	}
	if u.PasswordHash == "" {
		return ErrNoPasswordSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	if err := s.userRepo.Update(u); err != nil {
		return persistErr("update password", err)
	}
	return nil
}

func (s *AuthService) RefreshToken(refreshToken string) (Tokens, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return Tokens{}, auth.ErrInvalidToken
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Tokens{}, auth.ErrInvalidToken
		}
		return Tokens{}, persistErr("load user", err)
	}
	if !u.IsActive {
		return Tokens{}, ErrInactive
	}
	return s.issue(u)
}

func (s *AuthService) Profile(userID uint) (*models.User, error) {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistErr("load user", err)
	}
	return u, nil
}

func (s *AuthService) SetFCMToken(userID uint, token string) error {
	if err := s.userRepo.SetFCMToken(userID, strings.TrimSpace(token)); err != nil {
		return persistErr("set fcm token", err)
	}
	return nil
}
