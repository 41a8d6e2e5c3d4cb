package singleton

import (
	"fmt"
	"reflect"
)

// KindType is the Key kind used for class-wide singletons keyed by type.
const KindType = "type"

// Key identifies one singleton slot: a Kind (domain) and a Name within it.
//
//	{Kind: "type",  Name: "go.uber.org/zap.Logger"}
//	{Kind: "audit", Name: "/var/log/app/audit.log"}
//
// Keys are comparable and are used as map keys directly.
type Key struct {
	Kind string
	Name string
}

// NewKey builds a Key for a named resource.
func NewKey(kind, name string) Key { return Key{Kind: kind, Name: name} }

// TypeKey returns the Key for the package-qualified type of v. Pointer
// types are dereferenced so TypeKey((*Foo)(nil)) and TypeKey(Foo{}) agree.
//
//	key := singleton.TypeKey((*zap.Logger)(nil))  // {type go.uber.org/zap.Logger}
func TypeKey(v any) Key {
	t := reflect.TypeOf(v)
	if t == nil {
		return Key{Kind: KindType}
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	if t.PkgPath() != "" {
		name = t.PkgPath() + "." + name
	}
	return Key{Kind: KindType, Name: name}
}

// IsZero reports whether the key is incomplete.
func (k Key) IsZero() bool { return k.Kind == "" || k.Name == "" }

// String returns "kind/name".
func (k Key) String() string {
	switch {
	case k.Kind == "" && k.Name == "":
		return "<empty>"
	case k.Kind == "":
		return fmt.Sprintf("<unknown>/%s", k.Name)
	case k.Name == "":
		return fmt.Sprintf("%s/<unknown>", k.Kind)
	default:
		return k.Kind + "/" + k.Name
	}
}
