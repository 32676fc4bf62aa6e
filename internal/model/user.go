package model

import (
	"fmt"
	"strings"
	"time"
)

// Role classifies an account. Role-specific data lives in the optional
// profile sub-structures on User rather than in handler-level branching.
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole validates and normalizes a role string.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient, nil
	case RoleDoctor:
		return RoleDoctor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// DoctorProfile holds fields that only exist for DOCTOR accounts.
type DoctorProfile struct {
	LicenseNumber       string `json:"license_number"`
	Specialization      string `json:"specialization"`
	HospitalAffiliation string `json:"hospital_affiliation"`
}

// PatientProfile holds fields that only exist for PATIENT accounts.
// QRCode is the opaque lookup identifier; it is unique across all patients
// and changes only through an explicit regeneration.
type PatientProfile struct {
	EmergencyContact string `json:"emergency_contact"`
	BloodGroup       string `json:"blood_group"`
	Allergies        string `json:"allergies"`
	QRCode           string `json:"qr_code"`
}

// User is the single account record for patients, doctors and admins.
// Accounts are never hard-deleted; Enabled=false disables login and QR lookup.
type User struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Role         Role            `json:"role"`
	Enabled      bool            `json:"enabled"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	PhoneNumber  string          `json:"phone_number"`
	DateOfBirth  string          `json:"date_of_birth,omitempty"`
	Gender       string          `json:"gender,omitempty"`
	Address      string          `json:"address,omitempty"`
	Doctor       *DoctorProfile  `json:"doctor,omitempty"`
	Patient      *PatientProfile `json:"patient,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// QRCode returns the patient QR identifier, or "" for non-patients.
func (u *User) QRCode() string {
	if u.Patient == nil {
		return ""
	}
	return u.Patient.QRCode
}

// PublicProfile is the subset of patient data exposed through QR lookups.
// Email and medical details are deliberately excluded.
type PublicProfile struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// Public projects the QR-visible subset of a user record.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
	}
}
