// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a church member record. Email and phone, when present, are
// unique across active and inactive members alike. Deleting a member is a
// soft operation: is_active goes false and status becomes "relocated"; the
// document stays readable by id.
type Member struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName   string             `bson:"first_name" json:"first_name"`
	FirstNameCI string             `bson:"first_name_ci" json:"-"` // lowercase, diacritics-stripped
	LastName    string             `bson:"last_name,omitempty" json:"last_name,omitempty"`
	LastNameCI  string             `bson:"last_name_ci,omitempty" json:"-"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone       string             `bson:"phone" json:"phone"`

	DateOfBirth   *Date  `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Gender        string `bson:"gender,omitempty" json:"gender,omitempty"`
	MaritalStatus string `bson:"marital_status,omitempty" json:"marital_status,omitempty"`

	Address string `bson:"address,omitempty" json:"address,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zip_code,omitempty" json:"zip_code,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`

	EmergencyContactName         string `bson:"emergency_contact_name,omitempty" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone        string `bson:"emergency_contact_phone,omitempty" json:"emergency_contact_phone,omitempty"`
	EmergencyContactRelationship string `bson:"emergency_contact_relationship,omitempty" json:"emergency_contact_relationship,omitempty"`

	Occupation     string `bson:"occupation,omitempty" json:"occupation,omitempty"`
	Employer       string `bson:"employer,omitempty" json:"employer,omitempty"`
	EducationLevel string `bson:"education_level,omitempty" json:"education_level,omitempty"`

	BaptismDate    *Date  `bson:"baptism_date,omitempty" json:"baptism_date,omitempty"`
	Ministry       string `bson:"ministry,omitempty" json:"ministry,omitempty"`
	MembershipDate *Date  `bson:"membership_date,omitempty" json:"membership_date,omitempty"`
	FirstAttended  *Date  `bson:"first_attended,omitempty" json:"first_attended,omitempty"`

	Status string `bson:"status" json:"status"`
	Role   string `bson:"role" json:"role"`

	Notes    []MemberNote `bson:"notes" json:"notes"`
	IsActive bool         `bson:"is_active" json:"is_active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MemberNote is one dated free-text note on a member record.
type MemberNote struct {
	Note      string    `bson:"note" json:"note"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Member status values.
const (
	StatusOutreach   = "outreach"
	StatusFirstTimer = "first timer"
	StatusMember     = "member"
	StatusShepherd   = "shepherd"
	StatusVisitor    = "visitor"
	StatusRelocated  = "relocated"
)

// Member role values.
const (
	RolePastor         = "pastor"
	RoleElder          = "elder"
	RoleDeacon         = "deacon"
	RoleMember         = "member"
	RoleYouthLeader    = "youth leader"
	RoleChildrenLeader = "children leader"
	RoleWorshipLeader  = "worship leader"
	RoleUsher          = "usher"
	RoleChoirMember    = "choir member"
	RoleVolunteer      = "volunteer"
)

// Option is a value/label pair for enumerated dropdowns.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AllMemberStatuses contains all member statuses with display labels.
var AllMemberStatuses = []Option{
	{Value: StatusOutreach, Label: "Outreach"},
	{Value: StatusFirstTimer, Label: "First Timer"},
	{Value: StatusMember, Label: "Member"},
	{Value: StatusShepherd, Label: "Shepherd"},
	{Value: StatusVisitor, Label: "Visitor"},
	{Value: StatusRelocated, Label: "Relocated"},
}

// AllMemberRoles contains all member roles with display labels.
var AllMemberRoles = []Option{
	{Value: RolePastor, Label: "Pastor"},
	{Value: RoleElder, Label: "Elder"},
	{Value: RoleDeacon, Label: "Deacon"},
	{Value: RoleMember, Label: "Member"},
	{Value: RoleYouthLeader, Label: "Youth Leader"},
	{Value: RoleChildrenLeader, Label: "Children Leader"},
	{Value: RoleWorshipLeader, Label: "Worship Leader"},
	{Value: RoleUsher, Label: "Usher"},
	{Value: RoleChoirMember, Label: "Choir Member"},
	{Value: RoleVolunteer, Label: "Volunteer"},
}

// AllMinistries contains the ministry options.
var AllMinistries = []Option{
	{Value: "airport stars", Label: "Airport Stars"},
	{Value: "choir", Label: "Choir"},
	{Value: "dancing stars", Label: "Dancing Stars"},
	{Value: "film stars", Label: "Film Stars"},
	{Value: "flames", Label: "Flames"},
	{Value: "praise and worship", Label: "Praise and Worship"},
	{Value: "ushers", Label: "Ushers"},
}

// AllGenders contains the gender options.
var AllGenders = []Option{
	{Value: "male", Label: "Male"},
	{Value: "female", Label: "Female"},
}

// AllMaritalStatuses contains the marital status options.
var AllMaritalStatuses = []Option{
	{Value: "single", Label: "Single"},
	{Value: "married", Label: "Married"},
	{Value: "divorced", Label: "Divorced"},
	{Value: "widowed", Label: "Widowed"},
	{Value: "separated", Label: "Separated"},
}

func optionValueIn(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

// IsValidMemberStatus checks if a value is a valid member status.
func IsValidMemberStatus(value string) bool { return optionValueIn(AllMemberStatuses, value) }

// IsValidMemberRole checks if a value is a valid member role.
func IsValidMemberRole(value string) bool { return optionValueIn(AllMemberRoles, value) }

// IsValidMinistry checks if a value is a valid ministry.
func IsValidMinistry(value string) bool { return optionValueIn(AllMinistries, value) }

// IsValidGender checks if a value is a valid gender.
func IsValidGender(value string) bool { return optionValueIn(AllGenders, value) }

// IsValidMaritalStatus checks if a value is a valid marital status.
func IsValidMaritalStatus(value string) bool { return optionValueIn(AllMaritalStatuses, value) }
