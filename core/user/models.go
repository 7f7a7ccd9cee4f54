package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/smartlearn/core"
)

type Role string

// Roles
const (
	RoleStudent Role = "Student"
	RoleTeacher Role = "Teacher"
)

var Roles = []Role{RoleStudent, RoleTeacher}

type Gender string

const (
	GenderMale           Gender = "Male"
	GenderFemale         Gender = "Female"
	GenderOther          Gender = "Other"
	GenderPreferNotToSay Gender = "Prefer not to say"
)

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    []byte    `json:"password_hash"`
	Role            Role      `json:"role"`
	Bio             string    `json:"bio,omitempty"`
	RegisteredAt    time.Time `json:"registered_at"` // UTC
	AdmissionNumber string    `json:"admission_number,omitempty"`
	AdmissionYear   int       `json:"admission_year,omitempty"`
	IDNumber        string    `json:"id_number,omitempty"`
	BloodGroup      string    `json:"blood_group,omitempty"`
	PhoneNumber     string    `json:"phone_number,omitempty"`
	DateOfBirth     string    `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	Gender          Gender    `json:"gender,omitempty"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// Clone returns a copy that shares no memory with `u`.
func (u User) Clone() User {
	if u.PasswordHash != nil {
		u.PasswordHash = append([]byte(nil), u.PasswordHash...)
	}
	return u
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            Role   `json:"role" validate:"required,oneof=Student Teacher"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return validate.Struct(nu)
}

// UpdateProfile defines what information may be provided to modify an existing User.
// Empty fields are left unchanged.
type UpdateProfile struct {
	Name            string `json:"name"`
	Bio             string `json:"bio"`
	AdmissionNumber string `json:"admission_number"`
	AdmissionYear   int    `json:"admission_year" validate:"omitempty,min=1900,max=2100"`
	IDNumber        string `json:"id_number"`
	BloodGroup      string `json:"blood_group" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,e164"`
	DateOfBirth     string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender          Gender `json:"gender" validate:"omitempty,oneof=Male Female Other 'Prefer not to say'"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`

	// attributes the password must not resemble; filled by Validate
	name, email string
}

func (up *UpdateProfile) Validate(origUsr User, validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Bio = core.CleanString(up.Bio)
	up.PhoneNumber = core.CleanString(up.PhoneNumber)
	up.name, up.email = origUsr.Name, origUsr.Email
	if up.Name != "" {
		up.name = up.Name
	}
	return validate.Struct(up)
}

// Apply returns a copy of `usr` carrying the provided changes.
func (up UpdateProfile) Apply(usr User) (User, error) {
	if up.Name != "" {
		usr.Name = up.Name
	}
	if up.Bio != "" {
		usr.Bio = up.Bio
	}
	if up.AdmissionNumber != "" {
		usr.AdmissionNumber = up.AdmissionNumber
	}
	if up.AdmissionYear != 0 {
		usr.AdmissionYear = up.AdmissionYear
	}
	if up.IDNumber != "" {
		usr.IDNumber = up.IDNumber
	}
	if up.BloodGroup != "" {
		usr.BloodGroup = up.BloodGroup
	}
	if up.PhoneNumber != "" {
		usr.PhoneNumber = up.PhoneNumber
	}
	if up.DateOfBirth != "" {
		usr.DateOfBirth = up.DateOfBirth
	}
	if up.Gender != "" {
		usr.Gender = up.Gender
	}
	if up.Password != "" {
		if err := usr.SetPassword(up.Password); err != nil {
			return User{}, err
		}
	}
	return usr, nil
}

// ResetPassword is used by operators to set a new password without a session.
type ResetPassword struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`

	name string
}

func (rp *ResetPassword) Validate(usr User, validate *validator.Validate) error {
	rp.Email = core.CleanString(rp.Email, true /* lower */)
	rp.name = usr.Name
	return validate.Struct(rp)
}
