// internal/app/service/members/service.go
package membersvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/flocklabs/flockhub/internal/app/service/patch"
	"github.com/flocklabs/flockhub/internal/app/service/validation"
	"github.com/flocklabs/flockhub/internal/app/store/generic"
	memberstore "github.com/flocklabs/flockhub/internal/app/store/members"
	"github.com/flocklabs/flockhub/internal/app/system/normalize"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oapi-codegen/nullable"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no member exists for the given id.
	ErrNotFound = errors.New("member not found")
	// ErrDuplicateEmail is returned when the email belongs to another
	// member, active or not.
	ErrDuplicateEmail = errors.New("a member with this email already exists")
	// ErrDuplicatePhone is returned when the phone belongs to another
	// member, active or not.
	ErrDuplicatePhone = errors.New("a member with this phone number already exists")
)

type Service struct {
	store    *memberstore.Store
	sanitize *bluemonday.Policy
	logger   *zap.Logger
}

func New(store *memberstore.Store, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		sanitize: bluemonday.UGCPolicy(),
		logger:   logger,
	}
}

// ListParams narrows and pages a member listing.
type ListParams struct {
	Skip   int64
	Limit  int64
	Search string
	Status string
	Role   string
}

// Create validates and inserts a new member. Email and phone uniqueness is
// checked against all members, active and inactive alike; the store's
// partial unique indexes remain the authoritative backstop.
func (s *Service) Create(ctx context.Context, m models.Member) (models.Member, error) {
	if m.Status == "" {
		m.Status = models.StatusMember
	}
	if m.Role == "" {
		m.Role = models.RoleMember
	}
	m.IsActive = true

	if err := validateMember(&m); err != nil {
		return models.Member{}, err
	}
	s.sanitizeNotes(m.Notes)

	if m.Email != "" {
		taken, err := s.store.EmailTaken(ctx, m.Email, "")
		if err != nil {
			return models.Member{}, err
		}
		if taken {
			return models.Member{}, ErrDuplicateEmail
		}
	}
	taken, err := s.store.PhoneTaken(ctx, m.Phone, "")
	if err != nil {
		return models.Member{}, err
	}
	if taken {
		return models.Member{}, ErrDuplicatePhone
	}

	created, err := s.store.Create(ctx, m)
	if err != nil {
		if errors.Is(err, generic.ErrDuplicate) {
			return models.Member{}, ErrDuplicateEmail
		}
		return models.Member{}, err
	}
	s.logger.Info("member created",
		zap.String("member_id", created.ID.Hex()),
		zap.String("status", created.Status))
	return created, nil
}

// Get loads a member by id. Soft-deleted members stay readable.
func (s *Service) Get(ctx context.Context, id string) (models.Member, error) {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, generic.ErrNotFound) {
			return models.Member{}, ErrNotFound
		}
		return models.Member{}, err
	}
	return m, nil
}

// UpdateInput is a partial member patch. Absent fields are untouched;
// explicit nulls overwrite optional fields with null.
type UpdateInput struct {
	FirstName nullable.Nullable[string] `json:"first_name"`
	LastName  nullable.Nullable[string] `json:"last_name"`
	Email     nullable.Nullable[string] `json:"email"`
	Phone     nullable.Nullable[string] `json:"phone"`

	DateOfBirth   nullable.Nullable[models.Date] `json:"date_of_birth"`
	Gender        nullable.Nullable[string]      `json:"gender"`
	MaritalStatus nullable.Nullable[string]      `json:"marital_status"`

	Address nullable.Nullable[string] `json:"address"`
	City    nullable.Nullable[string] `json:"city"`
	State   nullable.Nullable[string] `json:"state"`
	ZipCode nullable.Nullable[string] `json:"zip_code"`
	Country nullable.Nullable[string] `json:"country"`

	EmergencyContactName         nullable.Nullable[string] `json:"emergency_contact_name"`
	EmergencyContactPhone        nullable.Nullable[string] `json:"emergency_contact_phone"`
	EmergencyContactRelationship nullable.Nullable[string] `json:"emergency_contact_relationship"`

	Occupation     nullable.Nullable[string] `json:"occupation"`
	Employer       nullable.Nullable[string] `json:"employer"`
	EducationLevel nullable.Nullable[string] `json:"education_level"`

	BaptismDate    nullable.Nullable[models.Date] `json:"baptism_date"`
	Ministry       nullable.Nullable[string]      `json:"ministry"`
	MembershipDate nullable.Nullable[models.Date] `json:"membership_date"`
	FirstAttended  nullable.Nullable[models.Date] `json:"first_attended"`

	Status nullable.Nullable[string] `json:"status"`
	Role   nullable.Nullable[string] `json:"role"`

	Notes    nullable.Nullable[[]models.MemberNote] `json:"notes"`
	IsActive nullable.Nullable[bool]                `json:"is_active"`
}

// Update applies a partial patch. Email/phone uniqueness is re-checked
// excluding the member's own record. ErrNotFound strictly means the id
// does not exist.
func (s *Service) Update(ctx context.Context, id string, upd UpdateInput) (models.Member, error) {
	if err := validateUpdate(upd); err != nil {
		return models.Member{}, err
	}

	if upd.Email.IsSpecified() && !upd.Email.IsNull() {
		taken, err := s.store.EmailTaken(ctx, upd.Email.MustGet(), id)
		if err != nil {
			return models.Member{}, err
		}
		if taken {
			return models.Member{}, ErrDuplicateEmail
		}
	}
	if upd.Phone.IsSpecified() && !upd.Phone.IsNull() {
		taken, err := s.store.PhoneTaken(ctx, upd.Phone.MustGet(), id)
		if err != nil {
			return models.Member{}, err
		}
		if taken {
			return models.Member{}, ErrDuplicatePhone
		}
	}

	set := s.buildSet(upd)
	m, err := s.store.Update(ctx, id, set)
	if err != nil {
		switch {
		case errors.Is(err, generic.ErrNotFound):
			return models.Member{}, ErrNotFound
		case errors.Is(err, generic.ErrDuplicate):
			return models.Member{}, ErrDuplicateEmail
		}
		return models.Member{}, err
	}
	return m, nil
}

func (s *Service) buildSet(upd UpdateInput) bson.M {
	set := bson.M{}
	patch.SetMapped(set, "first_name", upd.FirstName, normalize.Name)
	patch.SetMapped(set, "last_name", upd.LastName, normalize.Name)
	patch.SetMapped(set, "email", upd.Email, normalize.Email)
	patch.SetMapped(set, "phone", upd.Phone, normalize.Phone)
	patch.Set(set, "date_of_birth", upd.DateOfBirth)
	patch.Set(set, "gender", upd.Gender)
	patch.Set(set, "marital_status", upd.MaritalStatus)
	patch.Set(set, "address", upd.Address)
	patch.Set(set, "city", upd.City)
	patch.Set(set, "state", upd.State)
	patch.Set(set, "zip_code", upd.ZipCode)
	patch.Set(set, "country", upd.Country)
	patch.Set(set, "emergency_contact_name", upd.EmergencyContactName)
	patch.Set(set, "emergency_contact_phone", upd.EmergencyContactPhone)
	patch.Set(set, "emergency_contact_relationship", upd.EmergencyContactRelationship)
	patch.Set(set, "occupation", upd.Occupation)
	patch.Set(set, "employer", upd.Employer)
	patch.Set(set, "education_level", upd.EducationLevel)
	patch.Set(set, "baptism_date", upd.BaptismDate)
	patch.Set(set, "ministry", upd.Ministry)
	patch.Set(set, "membership_date", upd.MembershipDate)
	patch.Set(set, "first_attended", upd.FirstAttended)
	patch.Set(set, "status", upd.Status)
	patch.Set(set, "role", upd.Role)
	patch.Set(set, "is_active", upd.IsActive)

	if upd.Notes.IsSpecified() && !upd.Notes.IsNull() {
		notes := upd.Notes.MustGet()
		s.sanitizeNotes(notes)
		set["notes"] = notes
	} else {
		patch.Set(set, "notes", upd.Notes)
	}

	// Keep the folded name columns aligned with any name change.
	if v, ok := set["first_name"].(string); ok {
		set["first_name_ci"] = text.Fold(v)
	}
	if v, ok := set["last_name"].(string); ok {
		set["last_name_ci"] = text.Fold(v)
	}
	return set
}

// Delete soft-deletes: the member drops out of active listings but stays
// readable by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.store.Update(ctx, id, bson.M{
		"is_active": false,
		"status":    models.StatusRelocated,
	})
	if err != nil {
		if errors.Is(err, generic.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.logger.Info("member soft-deleted", zap.String("member_id", id))
	return nil
}

// List returns one page of members matching the params. The plain
// status-only and role-only listings go through the store's dedicated
// queries; the general path builds a combined filter.
func (s *Service) List(ctx context.Context, p ListParams) ([]models.Member, error) {
	if p.Search == "" {
		switch {
		case p.Status != "" && p.Role == "":
			return s.store.ByStatus(ctx, p.Status, p.Skip, p.Limit)
		case p.Role != "" && p.Status == "":
			return s.store.ByRole(ctx, p.Role, p.Skip, p.Limit)
		}
	}
	filter := bson.M{}
	if p.Status != "" {
		filter["status"] = p.Status
	}
	if p.Role != "" {
		filter["role"] = p.Role
	}
	return s.store.List(ctx, generic.ListQuery{
		Skip: p.Skip, Limit: p.Limit,
		Filter:       filter,
		Search:       p.Search,
		SearchFields: memberstore.SearchFields,
		SortBy:       "last_name_ci",
	})
}

// GetByPhone looks up a member by normalized phone number.
func (s *Service) GetByPhone(ctx context.Context, phone string) (models.Member, error) {
	m, err := s.store.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, generic.ErrNotFound) {
			return models.Member{}, ErrNotFound
		}
		return models.Member{}, err
	}
	return m, nil
}

// ActiveMembers is the congregation view: active members excluding both
// relocated and outreach contacts. The store's ActiveMembers query is the
// broader admin view that keeps outreach in; the difference is deliberate.
func (s *Service) ActiveMembers(ctx context.Context, skip, limit int64) ([]models.Member, error) {
	return s.store.List(ctx, generic.ListQuery{
		Skip: skip, Limit: limit,
		Filter: bson.M{
			"is_active": true,
			"status": bson.M{"$nin": bson.A{
				models.StatusRelocated,
				models.StatusOutreach,
			}},
		},
		SortBy: "last_name_ci",
	})
}

// BirthdaysThisMonth lists members with a birthday in the current month.
func (s *Service) BirthdaysThisMonth(ctx context.Context) ([]models.Member, error) {
	return s.store.BirthdaysThisMonth(ctx)
}

// BirthdaysToday lists members with a birthday today.
func (s *Service) BirthdaysToday(ctx context.Context) ([]models.Member, error) {
	return s.store.BirthdaysToday(ctx)
}

// ByAgeRange lists members aged between min and max inclusive.
func (s *Service) ByAgeRange(ctx context.Context, min, max int) ([]models.Member, error) {
	if min < 0 || max < min {
		c := &validation.Collector{}
		c.Add("age", "min must be >= 0 and max >= min")
		return nil, c.Err()
	}
	return s.store.ByAgeRange(ctx, min, max)
}

// Statistics holds the member dashboard numbers.
type Statistics struct {
	Total              int64            `json:"total_members"`
	Active             int64            `json:"active_members"`
	ByStatus           map[string]int64 `json:"by_status"`
	ByRole             map[string]int64 `json:"by_role"`
	BirthdaysThisMonth int              `json:"birthdays_this_month"`
	BirthdaysToday     int              `json:"birthdays_today"`
}

// Statistics assembles the member dashboard numbers.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	total, err := s.store.Count(ctx, nil)
	if err != nil {
		return Statistics{}, err
	}
	active, err := s.store.CountActive(ctx)
	if err != nil {
		return Statistics{}, err
	}
	byStatus, err := s.store.CountByStatus(ctx)
	if err != nil {
		return Statistics{}, err
	}
	byRole, err := s.store.CountByRole(ctx)
	if err != nil {
		return Statistics{}, err
	}
	month, err := s.store.BirthdaysThisMonth(ctx)
	if err != nil {
		return Statistics{}, err
	}
	today, err := s.store.BirthdaysToday(ctx)
	if err != nil {
		return Statistics{}, err
	}
	return Statistics{
		Total:              total,
		Active:             active,
		ByStatus:           byStatus,
		ByRole:             byRole,
		BirthdaysThisMonth: len(month),
		BirthdaysToday:     len(today),
	}, nil
}

func (s *Service) sanitizeNotes(notes []models.MemberNote) {
	now := time.Now().UTC()
	for i := range notes {
		notes[i].Note = s.sanitize.Sanitize(notes[i].Note)
		if notes[i].CreatedAt.IsZero() {
			notes[i].CreatedAt = now
		}
	}
}

func validateMember(m *models.Member) error {
	c := &validation.Collector{}

	if normalize.Name(m.FirstName) == "" {
		c.Add("first_name", "is required")
	}
	validatePhoneField(c, "phone", m.Phone, true)
	validatePhoneField(c, "emergency_contact_phone", m.EmergencyContactPhone, false)

	validateEnum(c, "gender", m.Gender, models.IsValidGender)
	validateEnum(c, "marital_status", m.MaritalStatus, models.IsValidMaritalStatus)
	validateEnum(c, "ministry", m.Ministry, models.IsValidMinistry)
	if !models.IsValidMemberStatus(m.Status) {
		c.Add("status", fmt.Sprintf("%q is not a valid status", m.Status))
	}
	if !models.IsValidMemberRole(m.Role) {
		c.Add("role", fmt.Sprintf("%q is not a valid role", m.Role))
	}

	validateNotFuture(c, "date_of_birth", m.DateOfBirth)
	validateNotFuture(c, "baptism_date", m.BaptismDate)
	validateNotFuture(c, "membership_date", m.MembershipDate)

	return c.Err()
}

func validateUpdate(upd UpdateInput) error {
	c := &validation.Collector{}

	if upd.FirstName.IsSpecified() {
		if upd.FirstName.IsNull() || normalize.Name(upd.FirstName.MustGet()) == "" {
			c.Add("first_name", "cannot be empty")
		}
	}
	if upd.Phone.IsSpecified() {
		if upd.Phone.IsNull() {
			c.Add("phone", "cannot be null")
		} else {
			validatePhoneField(c, "phone", upd.Phone.MustGet(), true)
		}
	}
	if upd.EmergencyContactPhone.IsSpecified() && !upd.EmergencyContactPhone.IsNull() {
		validatePhoneField(c, "emergency_contact_phone", upd.EmergencyContactPhone.MustGet(), false)
	}

	validateNullableEnum(c, "gender", upd.Gender, models.IsValidGender)
	validateNullableEnum(c, "marital_status", upd.MaritalStatus, models.IsValidMaritalStatus)
	validateNullableEnum(c, "ministry", upd.Ministry, models.IsValidMinistry)
	if upd.Status.IsSpecified() && !upd.Status.IsNull() && !models.IsValidMemberStatus(upd.Status.MustGet()) {
		c.Add("status", "is not a valid status")
	}
	if upd.Role.IsSpecified() && !upd.Role.IsNull() && !models.IsValidMemberRole(upd.Role.MustGet()) {
		c.Add("role", "is not a valid role")
	}

	for _, f := range []struct {
		name string
		v    nullable.Nullable[models.Date]
	}{
		{"date_of_birth", upd.DateOfBirth},
		{"baptism_date", upd.BaptismDate},
		{"membership_date", upd.MembershipDate},
	} {
		if f.v.IsSpecified() && !f.v.IsNull() {
			d := f.v.MustGet()
			validateNotFuture(c, f.name, &d)
		}
	}

	return c.Err()
}

func validatePhoneField(c *validation.Collector, field, value string, required bool) {
	value = normalize.Phone(value)
	if value == "" {
		if required {
			c.Add(field, "is required")
		}
		return
	}
	if len(normalize.PhoneDigits(value)) < 10 {
		c.Add(field, "must contain at least 10 digits")
	}
}

func validateEnum(c *validation.Collector, field, value string, valid func(string) bool) {
	if value != "" && !valid(value) {
		c.Add(field, fmt.Sprintf("%q is not a valid %s", value, field))
	}
}

func validateNullableEnum(c *validation.Collector, field string, v nullable.Nullable[string], valid func(string) bool) {
	if v.IsSpecified() && !v.IsNull() {
		validateEnum(c, field, v.MustGet(), valid)
	}
}

func validateNotFuture(c *validation.Collector, field string, d *models.Date) {
	if d != nil && d.After(models.Today()) {
		c.Add(field, "cannot be in the future")
	}
}
