package domain

import (
	"time"
)

// UserType discriminates the three kinds of accounts.
type UserType string

const (
	UserTypeAdmin UserType = "ADMIN"
	UserTypeCoach UserType = "COACH"
	UserTypeUser  UserType = "USER"
)

// Valid reports whether t is one of the known account types.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeCoach, UserTypeUser:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// PlanSubscription links a trainee to a coach's Plan until DueDate.
type PlanSubscription struct {
	Plan    string    `bson:"plan" json:"plan"`
	DueDate time.Time `bson:"dueDate" json:"dueDate"`
}

// User is either a trainee, a coach or an admin. Email is the natural key:
// every lookup, update and delete goes through it, never through ID.
type User struct {
	ID           string     `bson:"_id,omitempty" json:"_id"`
	Type         UserType   `bson:"type" json:"type"`
	Password     string     `bson:"password" json:"-"` // bcrypt hash
	Name         string     `bson:"name" json:"name"`
	LastName     string     `bson:"lastName" json:"lastName"`
	Birthday     *time.Time `bson:"birthday,omitempty" json:"birthday,omitempty"`
	Address      string     `bson:"address,omitempty" json:"address,omitempty"`
	Email        string     `bson:"email" json:"email"`
	PhoneNumber  string     `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Gender       Gender     `bson:"gender,omitempty" json:"gender,omitempty"`
	Photo        string     `bson:"photo,omitempty" json:"photo,omitempty"` // object key in photo storage
	RegistryDate time.Time  `bson:"registryDate" json:"registryDate"`

	// --- Trainee-specific ---
	Weight      float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	Height      float64           `bson:"height,omitempty" json:"height,omitempty"`
	Diseases    string            `bson:"diseases,omitempty" json:"diseases,omitempty"`
	Allergies   string            `bson:"allergies,omitempty" json:"allergies,omitempty"`
	Surgeries   string            `bson:"surgeries,omitempty" json:"surgeries,omitempty"`
	Plan        *PlanSubscription `bson:"plan,omitempty" json:"plan,omitempty"`
	TestResults []string          `bson:"testResults,omitempty" json:"testResults,omitempty"`

	// --- Coach-specific ---
	Fields   []string `bson:"fields,omitempty" json:"fields,omitempty"`
	Province string   `bson:"province,omitempty" json:"province,omitempty"`
	District string   `bson:"district,omitempty" json:"district,omitempty"`
}

func (u *User) IsCoach() bool {
	return u.Type == UserTypeCoach
}

// UserPatch is a partial update addressed by Email. Nil fields are left untouched.
type UserPatch struct {
	Email       string            `json:"email"`
	Type        *UserType         `json:"type,omitempty"`
	Password    *string           `json:"password,omitempty"`
	Name        *string           `json:"name,omitempty"`
	LastName    *string           `json:"lastName,omitempty"`
	Birthday    *time.Time        `json:"birthday,omitempty"`
	Address     *string           `json:"address,omitempty"`
	PhoneNumber *string           `json:"phoneNumber,omitempty"`
	Gender      *Gender           `json:"gender,omitempty"`
	Photo       *string           `json:"photo,omitempty"`
	Weight      *float64          `json:"weight,omitempty"`
	Height      *float64          `json:"height,omitempty"`
	Diseases    *string           `json:"diseases,omitempty"`
	Allergies   *string           `json:"allergies,omitempty"`
	Surgeries   *string           `json:"surgeries,omitempty"`
	Plan        *PlanSubscription `json:"plan,omitempty"`
	TestResults []string          `json:"testResults,omitempty"`
	Fields      []string          `json:"fields,omitempty"`
	Province    *string           `json:"province,omitempty"`
	District    *string           `json:"district,omitempty"`
}

// Apply copies every set field of p onto u.
func (p UserPatch) Apply(u *User) {
	if p.Type != nil {
		u.Type = *p.Type
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Birthday != nil {
		b := *p.Birthday
		u.Birthday = &b
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.Photo != nil {
		u.Photo = *p.Photo
	}
	if p.Weight != nil {
		u.Weight = *p.Weight
	}
	if p.Height != nil {
		u.Height = *p.Height
	}
	if p.Diseases != nil {
		u.Diseases = *p.Diseases
	}
	if p.Allergies != nil {
		u.Allergies = *p.Allergies
	}
	if p.Surgeries != nil {
		u.Surgeries = *p.Surgeries
	}
	if p.Plan != nil {
		plan := *p.Plan
		u.Plan = &plan
	}
	if p.TestResults != nil {
		u.TestResults = append([]string(nil), p.TestResults...)
	}
	if p.Fields != nil {
		u.Fields = append([]string(nil), p.Fields...)
	}
	if p.Province != nil {
		u.Province = *p.Province
	}
	if p.District != nil {
		u.District = *p.District
	}
}
