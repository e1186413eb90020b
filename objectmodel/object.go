package objectmodel

import "fmt"

// Object is the internal representation of an HSN2 object: an optional
// store identifier plus a bag of named, typed attributes. It is owned
// by a single task processor goroutine at a time and carries no
// internal locking, matching the single-threaded-per-task concurrency
// model the rest of the runtime assumes.
type Object struct {
	id    *uint64
	attrs map[string]*Attribute
	order []string // preserves insertion order for deterministic wire encoding
}

// NewObject creates an empty object, optionally with a known store id.
func NewObject(id ...uint64) *Object {
	o := &Object{attrs: make(map[string]*Attribute)}
	if len(id) > 0 {
		v := id[0]
		o.id = &v
	}
	return o
}

// SetObjectID assigns the store identifier.
func (o *Object) SetObjectID(id uint64) { o.id = &id }

// ObjectID returns the store identifier, or nil if the object is new.
func (o *Object) ObjectID() *uint64 { return o.id }

// IsSet reports whether the named attribute has been assigned.
func (o *Object) IsSet(name string) bool {
	_, ok := o.attrs[name]
	return ok
}

// Attributes returns the attributes in insertion order.
func (o *Object) Attributes() []*Attribute {
	out := make([]*Attribute, 0, len(o.order))
	for _, name := range o.order {
		out = append(out, o.attrs[name])
	}
	return out
}

// Get returns the named attribute.
func (o *Object) Get(name string) (*Attribute, bool) {
	a, ok := o.attrs[name]
	return a, ok
}

func (o *Object) set(a *Attribute) {
	if _, exists := o.attrs[a.Name]; !exists {
		o.order = append(o.order, a.Name)
	}
	o.attrs[a.Name] = a
}

// AddFlag sets a presence-only (EMPTY) attribute.
func (o *Object) AddFlag(name string) {
	o.set(&Attribute{Name: name, Kind: KindEmpty})
}

// AddBool sets a BOOL attribute, coercing value via ToBoolValue.
func (o *Object) AddBool(name string, value any) error {
	b, err := ToBoolValue(value)
	if err != nil {
		return err
	}
	o.set(&Attribute{Name: name, Kind: KindBool, Value: b})
	return nil
}

// AddInt sets an INT attribute.
func (o *Object) AddInt(name string, value int64) {
	o.set(&Attribute{Name: name, Kind: KindInt, Value: value})
}

// AddFloat sets a FLOAT attribute.
func (o *Object) AddFloat(name string, value float64) {
	o.set(&Attribute{Name: name, Kind: KindFloat, Value: value})
}

// AddTime sets a TIME attribute, stored as a unix timestamp.
func (o *Object) AddTime(name string, value int64) {
	o.set(&Attribute{Name: name, Kind: KindTime, Value: value})
}

// AddString sets a STRING attribute, formatting non-string input with
// fmt.Sprintf("%v", ...) the way the original coerced non-unicode input.
func (o *Object) AddString(name string, value any) {
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprintf("%v", value)
	}
	o.set(&Attribute{Name: name, Kind: KindString, Value: s})
}

// AddBytes sets a BYTES attribute referencing a Data Store key, with
// an optional store identifier.
func (o *Object) AddBytes(name string, key uint64, store *int32) {
	o.set(&Attribute{Name: name, Kind: KindBytes, Value: BytesRef{Key: key, Store: store}})
}

// AddObject sets an OBJECT attribute referencing another object's id.
func (o *Object) AddObject(name string, value uint64) {
	o.set(&Attribute{Name: name, Kind: KindObject, Value: value})
}

// RemoveAttribute deletes the named attribute.
func (o *Object) RemoveAttribute(name string) {
	if _, ok := o.attrs[name]; !ok {
		return
	}
	delete(o.attrs, name)
	for i, n := range o.order {
		if n == name {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}
