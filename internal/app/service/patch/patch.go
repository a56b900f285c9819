// internal/app/service/patch/patch.go
//
// Package patch translates Nullable request fields into Mongo $set maps.
// A patch field has three states: absent (leave the stored value alone),
// explicit null (overwrite with null), or a value.
package patch

import (
	"github.com/oapi-codegen/nullable"
	"go.mongodb.org/mongo-driver/bson"
)

// Set applies one Nullable field to the $set map.
func Set[T any](set bson.M, field string, v nullable.Nullable[T]) {
	if !v.IsSpecified() {
		return
	}
	if v.IsNull() {
		set[field] = nil
		return
	}
	set[field] = v.MustGet()
}

// SetMapped is Set with a conversion applied to a present value, for
// fields whose wire and storage representations differ.
func SetMapped[T, U any](set bson.M, field string, v nullable.Nullable[T], f func(T) U) {
	if !v.IsSpecified() {
		return
	}
	if v.IsNull() {
		set[field] = nil
		return
	}
	set[field] = f(v.MustGet())
}
