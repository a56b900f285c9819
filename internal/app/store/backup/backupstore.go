// internal/app/store/backup/backupstore.go
package backupstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Collections covered by export and restore.
var Collections = []string{"users", "members", "attendance", "events"}

// Store implements the full-database JSON export and restore used by the
// admin surface. Restore is not atomic across collections: a failure
// partway leaves earlier collections restored and later ones untouched.
type Store struct {
	db     *mongo.Database
	logger *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Export dumps every covered collection. ObjectIDs are stringified so the
// payload is plain portable JSON.
func (s *Store) Export(ctx context.Context) (map[string][]bson.M, error) {
	out := make(map[string][]bson.M, len(Collections))
	for _, name := range Collections {
		cur, err := s.db.Collection(name).Find(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", name, err)
		}
		docs := []bson.M{}
		if err := cur.All(ctx, &docs); err != nil {
			return nil, fmt.Errorf("export %s: %w", name, err)
		}
		for _, doc := range docs {
			if oid, ok := doc["_id"].(primitive.ObjectID); ok {
				doc["_id"] = oid.Hex()
			}
			stringifyRefs(doc)
		}
		out[name] = docs
	}
	return out, nil
}

// Import clears each covered collection present in data and reinserts its
// documents. Incoming _id values are dropped so the store assigns fresh
// ones; cross-document references are re-parsed from their hex form and
// date fields from their RFC 3339 form, so restored documents keep their
// BSON datetime type and stay visible to range filters and date indexes.
func (s *Store) Import(ctx context.Context, data map[string][]bson.M) (map[string]int, error) {
	restored := make(map[string]int, len(data))
	for _, name := range Collections {
		docs, ok := data[name]
		if !ok {
			continue
		}
		coll := s.db.Collection(name)
		if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
			return restored, fmt.Errorf("clear %s: %w", name, err)
		}
		if len(docs) == 0 {
			restored[name] = 0
			continue
		}
		batch := make([]any, 0, len(docs))
		for _, doc := range docs {
			delete(doc, "_id")
			parseRefs(doc)
			parseDates(name, doc)
			batch = append(batch, doc)
		}
		res, err := coll.InsertMany(ctx, batch)
		if err != nil {
			return restored, fmt.Errorf("restore %s: %w", name, err)
		}
		restored[name] = len(res.InsertedIDs)
		s.logger.Info("collection restored",
			zap.String("collection", name),
			zap.Int("documents", len(res.InsertedIDs)))
	}
	return restored, nil
}

// refFields are ObjectID references that need hex conversion on the way
// out and back in.
var refFields = []string{"member_id", "recorded_by", "organizer_id"}

func stringifyRefs(doc bson.M) {
	for _, f := range refFields {
		if oid, ok := doc[f].(primitive.ObjectID); ok {
			doc[f] = oid.Hex()
		}
	}
}

func parseRefs(doc bson.M) {
	for _, f := range refFields {
		if hex, ok := doc[f].(string); ok {
			if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
				doc[f] = oid
			}
		}
	}
}

// dateFields lists, per collection, the fields that hold BSON datetimes.
// The export serializes them as RFC 3339 strings; leaving them that way on
// import would store strings that no datetime filter or sort ever matches.
var dateFields = map[string][]string{
	"users":      {"created_at", "updated_at"},
	"members":    {"date_of_birth", "baptism_date", "membership_date", "first_attended", "created_at", "updated_at"},
	"attendance": {"attendance_date", "created_at", "updated_at"},
	"events":     {"start_date", "end_date", "created_at", "updated_at"},
}

func parseDates(collection string, doc bson.M) {
	for _, f := range dateFields[collection] {
		if t, ok := parseTime(doc[f]); ok {
			doc[f] = t
		}
	}
	// Member notes carry their own timestamps.
	if collection == "members" {
		for _, n := range asSlice(doc["notes"]) {
			if note, ok := asDoc(n); ok {
				if t, ok := parseTime(note["created_at"]); ok {
					note["created_at"] = t
				}
			}
		}
	}
}

func parseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// asSlice and asDoc accept both the bson and the plain-JSON decoded forms
// of nested values.
func asSlice(v any) []any {
	switch s := v.(type) {
	case bson.A:
		return s
	case []any:
		return s
	}
	return nil
}

func asDoc(v any) (map[string]any, bool) {
	switch d := v.(type) {
	case bson.M:
		return d, true
	case map[string]any:
		return d, true
	}
	return nil, false
}
