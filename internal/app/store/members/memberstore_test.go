package memberstore_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/flocklabs/flockhub/internal/app/store/generic"
	memberstore "github.com/flocklabs/flockhub/internal/app/store/members"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/flocklabs/flockhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Member{
		FirstName: "  Ana ",
		LastName:  "García",
		Email:     "Ana@Example.COM",
		Phone:     "(555) 123-4567",
		Status:    models.StatusMember,
		Role:      models.RoleMember,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.FirstName != "Ana" {
		t.Errorf("expected trimmed first name, got %q", created.FirstName)
	}
	if created.Email != "ana@example.com" {
		t.Errorf("expected lowercased email, got %q", created.Email)
	}
	if created.Notes == nil {
		t.Error("expected notes to default to an empty slice")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_GetByName_FoldsCase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Member{
		FirstName: "José",
		LastName:  "Núñez",
		Phone:     "5551230001",
		Status:    models.StatusMember,
		Role:      models.RoleMember,
		IsActive:  true,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.GetByName(ctx, "jose", "nunez")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if found.FirstName != "José" {
		t.Errorf("expected original spelling back, got %q", found.FirstName)
	}

	if _, err := store.GetByName(ctx, "jose", "smith"); !errors.Is(err, generic.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown name, got %v", err)
	}
}

func TestStore_EmailTaken_ExcludesOwnID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Member{
		FirstName: "Sam",
		Email:     "sam@example.com",
		Phone:     "5551230002",
		Status:    models.StatusMember,
		Role:      models.RoleMember,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	taken, err := store.EmailTaken(ctx, "SAM@example.com", "")
	if err != nil {
		t.Fatalf("EmailTaken failed: %v", err)
	}
	if !taken {
		t.Error("expected email to be taken")
	}

	taken, err = store.EmailTaken(ctx, "sam@example.com", created.ID.Hex())
	if err != nil {
		t.Fatalf("EmailTaken failed: %v", err)
	}
	if taken {
		t.Error("expected own record to be excluded")
	}

	taken, err = store.EmailTaken(ctx, "", "")
	if err != nil {
		t.Fatalf("EmailTaken failed: %v", err)
	}
	if taken {
		t.Error("empty email must never count as taken")
	}
}

func TestStore_ActiveMembers_ExcludesRelocated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateMember(ctx, "Active", "One", "5551230003")
	fixtures.CreateMemberWithStatus(ctx, "Gone", "Away", "5551230004", models.StatusRelocated)

	list, err := store.ActiveMembers(ctx, 0, 100)
	if err != nil {
		t.Fatalf("ActiveMembers failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 active member, got %d", len(list))
	}
	if list[0].FirstName != "Active" {
		t.Errorf("unexpected member %q in active list", list[0].FirstName)
	}

	n, err := store.CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountActive: got %d, want 1", n)
	}
}

func TestStore_Birthdays(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	today := models.NewDate(1990, now.Month(), now.Day())
	otherMonth := models.NewDate(1985, now.AddDate(0, 2, 0).Month(), 15)

	if _, err := store.Create(ctx, models.Member{
		FirstName:   "Birthday",
		Phone:       "5551230005",
		DateOfBirth: &today,
		Status:      models.StatusMember,
		Role:        models.RoleMember,
		IsActive:    true,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Member{
		FirstName:   "Later",
		Phone:       "5551230006",
		DateOfBirth: &otherMonth,
		Status:      models.StatusMember,
		Role:        models.RoleMember,
		IsActive:    true,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// No birth date at all; must not break the aggregation.
	if _, err := store.Create(ctx, models.Member{
		FirstName: "Unknown",
		Phone:     "5551230007",
		Status:    models.StatusMember,
		Role:      models.RoleMember,
		IsActive:  true,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	thisMonth, err := store.BirthdaysThisMonth(ctx)
	if err != nil {
		t.Fatalf("BirthdaysThisMonth failed: %v", err)
	}
	if len(thisMonth) != 1 || thisMonth[0].FirstName != "Birthday" {
		t.Errorf("BirthdaysThisMonth: got %d members, want just Birthday", len(thisMonth))
	}

	todayList, err := store.BirthdaysToday(ctx)
	if err != nil {
		t.Fatalf("BirthdaysToday failed: %v", err)
	}
	if len(todayList) != 1 || todayList[0].FirstName != "Birthday" {
		t.Errorf("BirthdaysToday: got %d members, want just Birthday", len(todayList))
	}
}

func TestStore_ByAgeRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	today := models.Today()
	age30 := models.NewDate(today.Time.Year()-30, today.Time.Month(), today.Time.Day())
	age70 := models.NewDate(today.Time.Year()-70, today.Time.Month(), today.Time.Day())

	if _, err := store.Create(ctx, models.Member{
		FirstName:   "Thirty",
		Phone:       "5551230008",
		DateOfBirth: &age30,
		Status:      models.StatusMember,
		Role:        models.RoleMember,
		IsActive:    true,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Member{
		FirstName:   "Seventy",
		Phone:       "5551230009",
		DateOfBirth: &age70,
		Status:      models.StatusMember,
		Role:        models.RoleMember,
		IsActive:    true,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	list, err := store.ByAgeRange(ctx, 25, 40)
	if err != nil {
		t.Fatalf("ByAgeRange failed: %v", err)
	}
	if len(list) != 1 || list[0].FirstName != "Thirty" {
		t.Errorf("ByAgeRange(25, 40): got %d members, want just Thirty", len(list))
	}
}

func TestStore_CountByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateMember(ctx, "A", "One", "5551230010")
	fixtures.CreateMember(ctx, "B", "Two", "5551230011")
	fixtures.CreateMemberWithStatus(ctx, "C", "Three", "5551230012", models.StatusVisitor)

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts[models.StatusMember] != 2 {
		t.Errorf("member count: got %d, want 2", counts[models.StatusMember])
	}
	if counts[models.StatusVisitor] != 1 {
		t.Errorf("visitor count: got %d, want 1", counts[models.StatusVisitor])
	}
}

func TestStore_List_PagesAreDisjoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 5; i++ {
		f.CreateMember(ctx, "Page", fmt.Sprintf("Tester%d", i), fmt.Sprintf("555700000%d", i))
	}

	page := func(skip int64) []models.Member {
		t.Helper()
		list, err := store.List(ctx, generic.ListQuery{
			Skip: skip, Limit: 2,
			SortBy: "last_name_ci",
		})
		if err != nil {
			t.Fatalf("List skip=%d failed: %v", skip, err)
		}
		return list
	}

	first := page(0)
	second := page(2)
	third := page(4)
	if len(first) != 2 || len(second) != 2 || len(third) != 1 {
		t.Fatalf("page sizes: got %d/%d/%d, want 2/2/1", len(first), len(second), len(third))
	}

	seen := map[primitive.ObjectID]bool{}
	for _, m := range first {
		seen[m.ID] = true
	}
	for _, m := range append(second, third...) {
		if seen[m.ID] {
			t.Errorf("member %s appears on more than one page", m.ID.Hex())
		}
		seen[m.ID] = true
	}
}
