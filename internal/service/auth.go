package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"medicase/internal/auth"
	"medicase/internal/model"
	"medicase/internal/qr"
	"medicase/internal/repository"
)

// qrAssignAttempts bounds the uniqueness loop for freshly generated QR
// identifiers. A collision surfaces as a Conflict instead of a DB error.
const qrAssignAttempts = 5

var phonePattern = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)

// RegisterRequest carries all registration fields. Role-specific fields are
// ignored unless they match the requested role.
type RegisterRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Role        string `json:"role"`

	// Doctor specific fields
	LicenseNumber       string `json:"license_number"`
	Specialization      string `json:"specialization"`
	HospitalAffiliation string `json:"hospital_affiliation"`

	// Patient specific fields
	EmergencyContact string `json:"emergency_contact"`
	BloodGroup       string `json:"blood_group"`
	Allergies        string `json:"allergies"`
}

// AuthResult is returned by login and refresh.
type AuthResult struct {
	Tokens auth.TokenPair
	User   *model.User
}

// AuthService implements registration, login and token verification.
type AuthService interface {
	// Register validates the request and creates a new account. Patients get
	// a unique QR identifier assigned at creation.
	Register(ctx context.Context, req RegisterRequest) (*model.User, error)

	// Login verifies credentials and issues an access/refresh token pair.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Refresh exchanges a valid refresh token for a fresh token pair.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)

	// Verify validates an access token and loads the still-enabled user it
	// identifies. Runs on every protected request; results are never cached.
	Verify(ctx context.Context, accessToken string) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenService) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	role, err := s.validateRegistration(&req)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &model.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		DateOfBirth:  req.DateOfBirth,
		Gender:       req.Gender,
		Address:      req.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch role {
	case model.RoleDoctor:
		u.Doctor = &model.DoctorProfile{
			LicenseNumber:       req.LicenseNumber,
			Specialization:      req.Specialization,
			HospitalAffiliation: req.HospitalAffiliation,
		}
	case model.RolePatient:
		code, err := s.freshQRCode(ctx)
		if err != nil {
			return nil, err
		}
		u.Patient = &model.PatientProfile{
			EmergencyContact: req.EmergencyContact,
			BloodGroup:       req.BloodGroup,
			Allergies:        req.Allergies,
			QRCode:           code,
		}
	}

	stored, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return stored, nil
}

func (s *authService) validateRegistration(req *RegisterRequest) (model.Role, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "", invalidInput("email is not valid")
	}
	if len(req.Password) < 8 {
		return "", invalidInput("password must be at least 8 characters long")
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if l := len(req.FirstName); l < 2 || l > 50 {
		return "", invalidInput("first name must be between 2 and 50 characters")
	}
	if l := len(req.LastName); l < 2 || l > 50 {
		return "", invalidInput("last name must be between 2 and 50 characters")
	}
	if req.PhoneNumber != "" && !phonePattern.MatchString(req.PhoneNumber) {
		return "", invalidInput("phone number is not valid")
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return "", invalidInput("role must be one of PATIENT, DOCTOR, ADMIN")
	}
	if role == model.RoleDoctor && strings.TrimSpace(req.LicenseNumber) == "" {
		return "", invalidInput("license number is required for doctors")
	}
	return role, nil
}

// freshQRCode generates an identifier and checks it against existing
// assignments before handing it out.
func (s *authService) freshQRCode(ctx context.Context) (string, error) {
	for i := 0; i < qrAssignAttempts; i++ {
		code, err := qr.GenerateCode()
		if err != nil {
			return "", err
		}
		taken, err := s.users.ExistsByQRCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check qr code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrQRCodeTaken
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Enabled {
		return nil, ErrAccountDisabled
	}
	pair, err := s.tokens.IssuePair(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Tokens: pair, User: u}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.UseRefresh)
	if err != nil {
		return nil, err
	}
	u, err := s.loadEnabled(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	pair, err := s.tokens.IssuePair(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Tokens: pair, User: u}, nil
}

func (s *authService) Verify(ctx context.Context, accessToken string) (*model.User, error) {
	claims, err := s.tokens.Verify(accessToken, auth.UseAccess)
	if err != nil {
		return nil, err
	}
	return s.loadEnabled(ctx, claims.Subject)
}

func (s *authService) loadEnabled(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// the account vanished after the token was issued
			return nil, auth.ErrTokenInvalid
		}
		return nil, err
	}
	if !u.Enabled {
		return nil, ErrAccountDisabled
	}
	return u, nil
}
