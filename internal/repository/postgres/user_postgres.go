package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"medicase/internal/model"
	"medicase/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// Role-specific profile fields are stored as nullable columns on the users
// table and folded into the Doctor/Patient sub-structures when scanning.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, email, password_hash, role, enabled, first_name, last_name, phone_number, date_of_birth, gender, address,
	license_number, specialization, hospital_affiliation,
	emergency_contact, blood_group, allergies, qr_code,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u model.User

		dateOfBirth, gender, address                      sql.NullString
		licenseNumber, specialization, hospital           sql.NullString
		emergencyContact, bloodGroup, allergies, qrCodeID sql.NullString
	)
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Enabled,
		&u.FirstName,
		&u.LastName,
		&u.PhoneNumber,
		&dateOfBirth,
		&gender,
		&address,
		&licenseNumber,
		&specialization,
		&hospital,
		&emergencyContact,
		&bloodGroup,
		&allergies,
		&qrCodeID,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.DateOfBirth = dateOfBirth.String
	u.Gender = gender.String
	u.Address = address.String

	switch u.Role {
	case model.RoleDoctor:
		u.Doctor = &model.DoctorProfile{
			LicenseNumber:       licenseNumber.String,
			Specialization:      specialization.String,
			HospitalAffiliation: hospital.String,
		}
	case model.RolePatient:
		u.Patient = &model.PatientProfile{
			EmergencyContact: emergencyContact.String,
			BloodGroup:       bloodGroup.String,
			Allergies:        allergies.String,
			QRCode:           qrCodeID.String,
		}
	}
	return &u, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func doctorFields(u *model.User) (license, specialization, hospital sql.NullString) {
	if u.Doctor == nil {
		return
	}
	return nullable(u.Doctor.LicenseNumber), nullable(u.Doctor.Specialization), nullable(u.Doctor.HospitalAffiliation)
}

func patientFields(u *model.User) (emergency, bloodGroup, allergies, qrCode sql.NullString) {
	if u.Patient == nil {
		return
	}
	return nullable(u.Patient.EmergencyContact), nullable(u.Patient.BloodGroup),
		nullable(u.Patient.Allergies), nullable(u.Patient.QRCode)
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, password_hash, role, enabled, first_name, last_name, phone_number, date_of_birth, gender, address,
			license_number, specialization, hospital_affiliation,
			emergency_contact, blood_group, allergies, qr_code,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING ` + userColumns
	license, specialization, hospital := doctorFields(u)
	emergency, bloodGroup, allergies, qrCode := patientFields(u)
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Enabled,
		u.FirstName,
		u.LastName,
		u.PhoneNumber,
		nullable(u.DateOfBirth),
		nullable(u.Gender),
		nullable(u.Address),
		license,
		specialization,
		hospital,
		emergency,
		bloodGroup,
		allergies,
		qrCode,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return scanUser(row)
}

// FindByID fetches a single user by primary key.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// FindByQRCode fetches the user holding the QR identifier.
func (r *UserPostgres) FindByQRCode(ctx context.Context, code string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE qr_code = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, code))
}

// ExistsByEmail reports whether an account with the email exists.
func (r *UserPostgres) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ExistsByQRCode reports whether any account holds the QR identifier.
func (r *UserPostgres) ExistsByQRCode(ctx context.Context, code string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE qr_code = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Update persists mutable profile fields of an existing user. Email, role and
// the QR identifier are not touched here.
func (r *UserPostgres) Update(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		UPDATE users
		SET first_name = $2, last_name = $3, phone_number = $4, date_of_birth = $5, gender = $6, address = $7,
			license_number = $8, specialization = $9, hospital_affiliation = $10,
			emergency_contact = $11, blood_group = $12, allergies = $13,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	license, specialization, hospital := doctorFields(u)
	emergency, bloodGroup, allergies, _ := patientFields(u)
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.FirstName,
		u.LastName,
		u.PhoneNumber,
		nullable(u.DateOfBirth),
		nullable(u.Gender),
		nullable(u.Address),
		license,
		specialization,
		hospital,
		emergency,
		bloodGroup,
		allergies,
	)
	return scanUser(row)
}

// UpdatePassword replaces the stored password hash.
func (r *UserPostgres) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.execOnUser(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
}

// UpdateQRCode assigns a new QR identifier, replacing any previous one.
func (r *UserPostgres) UpdateQRCode(ctx context.Context, id, code string) error {
	return r.execOnUser(ctx, `UPDATE users SET qr_code = $2, updated_at = now() WHERE id = $1`, id, code)
}

// SetEnabled soft-enables or soft-disables an account.
func (r *UserPostgres) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return r.execOnUser(ctx, `UPDATE users SET enabled = $2, updated_at = now() WHERE id = $1`, id, enabled)
}

func (r *UserPostgres) execOnUser(ctx context.Context, q string, id string, arg any) error {
	res, err := r.db.ExecContext(ctx, q, id, arg)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByRole returns users of a role with an optional search term over names
// and email, using LIMIT/OFFSET pagination. Disabled accounts only appear
// when includeDisabled is set.
func (r *UserPostgres) ListByRole(ctx context.Context, role model.Role, search string, includeDisabled bool, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	cond := `role = $1`
	if !includeDisabled {
		cond += ` AND enabled = TRUE`
	}
	args := []any{role}
	if search != "" {
		args = append(args, "%"+search+"%")
		cond += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)`, len(args), len(args), len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, err
	}

	args = append(args, pq.Limit, pq.Offset)
	qList := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY last_name, first_name, id LIMIT $%d OFFSET $%d`,
		userColumns, cond, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

// CountByRole counts enabled users per role.
func (r *UserPostgres) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1 AND enabled = TRUE`, role).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
