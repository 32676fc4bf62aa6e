package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"medicase/internal/auth"
	"medicase/internal/model"
	"medicase/internal/qr"
	"medicase/internal/repository"
)

// UpdateProfileRequest carries the self-service profile fields. Email, role
// and the QR identifier are not updatable through it.
type UpdateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`

	// Doctor specific fields
	LicenseNumber       string `json:"license_number"`
	Specialization      string `json:"specialization"`
	HospitalAffiliation string `json:"hospital_affiliation"`

	// Patient specific fields
	EmergencyContact string `json:"emergency_contact"`
	BloodGroup       string `json:"blood_group"`
	Allergies        string `json:"allergies"`
}

// QRCodeResult is the patient's own QR identifier with its rendered image.
type QRCodeResult struct {
	Code     string `json:"qr_code"`
	URL      string `json:"qr_url"`
	ImageURL string `json:"qr_image"`
}

// PatientService implements authenticated self-service account operations.
type PatientService interface {
	// Profile returns the caller's own account record.
	Profile(ctx context.Context, userID string) (*model.User, error)

	// UpdateProfile mutates the caller's profile fields.
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*model.User, error)

	// ChangePassword verifies the current password before storing a new hash.
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error

	// QRCode returns the caller's QR identifier and rendered image,
	// assigning one first if the patient record predates QR support.
	QRCode(ctx context.Context, userID string) (*QRCodeResult, error)

	// RegenerateQRCode replaces the identifier immediately. The previous one
	// stops resolving; QR images in the wild become dead links.
	RegenerateQRCode(ctx context.Context, userID string) (*QRCodeResult, error)
}

type patientService struct {
	users    repository.UserRepository
	renderer *qr.Renderer
}

// NewPatientService constructs a new PatientService.
func NewPatientService(users repository.UserRepository, renderer *qr.Renderer) PatientService {
	return &patientService{users: users, renderer: renderer}
}

func (s *patientService) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.load(ctx, userID)
}

func (s *patientService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*model.User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if l := len(req.FirstName); l < 2 || l > 50 {
		return nil, invalidInput("first name must be between 2 and 50 characters")
	}
	if l := len(req.LastName); l < 2 || l > 50 {
		return nil, invalidInput("last name must be between 2 and 50 characters")
	}
	if req.PhoneNumber != "" && !phonePattern.MatchString(req.PhoneNumber) {
		return nil, invalidInput("phone number is not valid")
	}

	u.FirstName = req.FirstName
	u.LastName = req.LastName
	u.PhoneNumber = req.PhoneNumber
	u.DateOfBirth = req.DateOfBirth
	u.Gender = req.Gender
	u.Address = req.Address

	switch u.Role {
	case model.RoleDoctor:
		if u.Doctor == nil {
			u.Doctor = &model.DoctorProfile{}
		}
		u.Doctor.LicenseNumber = req.LicenseNumber
		u.Doctor.Specialization = req.Specialization
		u.Doctor.HospitalAffiliation = req.HospitalAffiliation
	case model.RolePatient:
		if u.Patient == nil {
			u.Patient = &model.PatientProfile{}
		}
		u.Patient.EmergencyContact = req.EmergencyContact
		u.Patient.BloodGroup = req.BloodGroup
		u.Patient.Allergies = req.Allergies
	}

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *patientService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return invalidInput("password must be at least 8 characters long")
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(u.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *patientService) QRCode(ctx context.Context, userID string) (*QRCodeResult, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role != model.RolePatient {
		return nil, ErrForbidden
	}
	code := u.QRCode()
	if code == "" {
		return s.assignFresh(ctx, userID)
	}
	return s.render(code)
}

func (s *patientService) RegenerateQRCode(ctx context.Context, userID string) (*QRCodeResult, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role != model.RolePatient {
		return nil, ErrForbidden
	}
	return s.assignFresh(ctx, userID)
}

func (s *patientService) assignFresh(ctx context.Context, userID string) (*QRCodeResult, error) {
	for i := 0; i < qrAssignAttempts; i++ {
		code, err := qr.GenerateCode()
		if err != nil {
			return nil, err
		}
		taken, err := s.users.ExistsByQRCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("check qr code: %w", err)
		}
		if taken {
			continue
		}
		if err := s.users.UpdateQRCode(ctx, userID, code); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return s.render(code)
	}
	return nil, ErrQRCodeTaken
}

func (s *patientService) render(code string) (*QRCodeResult, error) {
	img, err := s.renderer.RenderDataURL(code)
	if err != nil {
		return nil, err
	}
	return &QRCodeResult{
		Code:     code,
		URL:      s.renderer.URL(code),
		ImageURL: img,
	}, nil
}

func (s *patientService) load(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, invalidInput("user id is required")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
