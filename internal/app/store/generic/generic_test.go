package generic

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type thing struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

func TestUnconfiguredStore(t *testing.T) {
	s := New[thing](nil, "things")
	ctx := context.Background()

	if _, err := s.Create(ctx, thing{Name: "x"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Create: got %v, want ErrNotConfigured", err)
	}
	if _, err := s.GetByID(ctx, primitive.NewObjectID().Hex()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("GetByID: got %v, want ErrNotConfigured", err)
	}
	if _, err := s.List(ctx, ListQuery{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("List: got %v, want ErrNotConfigured", err)
	}
	if _, err := s.Update(ctx, primitive.NewObjectID().Hex(), bson.M{"name": "y"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Update: got %v, want ErrNotConfigured", err)
	}
	if _, err := s.Delete(ctx, primitive.NewObjectID().Hex()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Delete: got %v, want ErrNotConfigured", err)
	}
	if _, err := s.Count(ctx, nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Count: got %v, want ErrNotConfigured", err)
	}
}

func TestBuildFilterSearchEscaping(t *testing.T) {
	q := ListQuery{
		Search:       "a.b(c",
		SearchFields: []string{"first_name", "last_name"},
	}
	filter := BuildFilter(q)

	or, ok := filter["$or"].([]bson.M)
	if !ok || len(or) != 2 {
		t.Fatalf("expected 2-clause $or, got %#v", filter)
	}
	re, ok := or[0]["first_name"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex clause, got %#v", or[0])
	}
	// Metacharacters in the term must be matched literally.
	if re.Pattern != `a\.b\(c` {
		t.Errorf("pattern = %q", re.Pattern)
	}
	if re.Options != "i" {
		t.Errorf("options = %q, want case-insensitive", re.Options)
	}
}

func TestBuildFilterMergesConstraints(t *testing.T) {
	q := ListQuery{
		Filter:       bson.M{"status": "member"},
		Search:       "jane",
		SearchFields: []string{"first_name"},
	}
	filter := BuildFilter(q)
	if filter["status"] != "member" {
		t.Fatalf("lost exact filter: %#v", filter)
	}
	if _, ok := filter["$or"]; !ok {
		t.Fatalf("lost search clause: %#v", filter)
	}

	// No search fields means no $or clause even with a term.
	filter = BuildFilter(ListQuery{Search: "jane"})
	if _, ok := filter["$or"]; ok {
		t.Fatalf("unexpected $or: %#v", filter)
	}
}
