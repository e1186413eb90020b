package objectmodel

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire field numbers for the ObjectData / Attribute / BytesRef
// messages. There is no generated protobuf stub for these (outside the
// scope of this repository), so the wire format is produced and
// consumed directly with protowire's varint/length-delimited
// primitives, keeping the byte layout protobuf-compatible.
const (
	fieldObjectID    = 1
	fieldObjectAttrs = 2

	fieldAttrName      = 1
	fieldAttrType      = 2
	fieldAttrDataBool  = 3
	fieldAttrDataInt   = 4
	fieldAttrDataFloat = 5
	fieldAttrDataTime  = 6
	fieldAttrDataStr   = 7
	fieldAttrDataBytes = 8
	fieldAttrDataObj   = 9

	fieldBytesRefKey   = 1
	fieldBytesRefStore = 2
)

// EncodeObject serializes an Object to its wire representation.
func EncodeObject(o *Object) ([]byte, error) {
	var b []byte
	if o.id != nil {
		b = protowire.AppendTag(b, fieldObjectID, protowire.VarintType)
		b = protowire.AppendVarint(b, *o.id)
	}
	for _, attr := range o.Attributes() {
		encAttr, err := encodeAttribute(attr)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, fieldObjectAttrs, protowire.BytesType)
		b = protowire.AppendBytes(b, encAttr)
	}
	return b, nil
}

func encodeAttribute(a *Attribute) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldAttrName, protowire.BytesType)
	b = protowire.AppendString(b, a.Name)
	b = protowire.AppendTag(b, fieldAttrType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(a.Kind))

	switch a.Kind {
	case KindEmpty:
		// no payload field
	case KindBool:
		v, _ := a.Value.(bool)
		n := uint64(0)
		if v {
			n = 1
		}
		b = protowire.AppendTag(b, fieldAttrDataBool, protowire.VarintType)
		b = protowire.AppendVarint(b, n)
	case KindInt:
		v, _ := a.Value.(int64)
		b = protowire.AppendTag(b, fieldAttrDataInt, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v))
	case KindFloat:
		v, _ := a.Value.(float64)
		b = protowire.AppendTag(b, fieldAttrDataFloat, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v))
	case KindTime:
		v, _ := a.Value.(int64)
		b = protowire.AppendTag(b, fieldAttrDataTime, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v))
	case KindString:
		v, _ := a.Value.(string)
		b = protowire.AppendTag(b, fieldAttrDataStr, protowire.BytesType)
		b = protowire.AppendString(b, v)
	case KindBytes:
		ref, ok := a.Value.(BytesRef)
		if !ok {
			return nil, fmt.Errorf("objectmodel: BYTES attribute %q missing BytesRef value", a.Name)
		}
		var refBytes []byte
		refBytes = protowire.AppendTag(refBytes, fieldBytesRefKey, protowire.VarintType)
		refBytes = protowire.AppendVarint(refBytes, ref.Key)
		if ref.Store != nil {
			refBytes = protowire.AppendTag(refBytes, fieldBytesRefStore, protowire.VarintType)
			refBytes = protowire.AppendVarint(refBytes, uint64(uint32(*ref.Store)))
		}
		b = protowire.AppendTag(b, fieldAttrDataBytes, protowire.BytesType)
		b = protowire.AppendBytes(b, refBytes)
	case KindObject:
		v, _ := a.Value.(uint64)
		b = protowire.AppendTag(b, fieldAttrDataObj, protowire.VarintType)
		b = protowire.AppendVarint(b, v)
	default:
		return nil, fmt.Errorf("objectmodel: unknown attribute kind %v for %q", a.Kind, a.Name)
	}
	return b, nil
}

// EncodeAttribute serializes a single Attribute, for callers (like the
// object store adapter's query builder) that need one outside an
// enclosing Object.
func EncodeAttribute(a *Attribute) ([]byte, error) { return encodeAttribute(a) }

// DecodeAttribute parses a single Attribute previously produced by
// EncodeAttribute.
func DecodeAttribute(data []byte) (*Attribute, error) { return decodeAttribute(data) }

// DecodeObject parses the wire representation produced by EncodeObject.
func DecodeObject(data []byte) (*Object, error) {
	o := NewObject()
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldObjectID:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			o.SetObjectID(v)
		case fieldObjectAttrs:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			attr, err := decodeAttribute(raw)
			if err != nil {
				return nil, err
			}
			o.set(attr)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return o, nil
}

func decodeAttribute(data []byte) (*Attribute, error) {
	a := &Attribute{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldAttrName:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			a.Name = v
		case fieldAttrType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			k := Kind(int32(v))
			if k < KindEmpty || k > KindObject {
				k = KindEmpty
			}
			a.Kind = k
		case fieldAttrDataBool:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			a.Value = v != 0
		case fieldAttrDataInt:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			a.Value = int64(v)
		case fieldAttrDataFloat:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			a.Value = math.Float64frombits(v)
		case fieldAttrDataTime:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			a.Value = int64(v)
		case fieldAttrDataStr:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			a.Value = v
		case fieldAttrDataBytes:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			ref, err := decodeBytesRef(raw)
			if err != nil {
				return nil, err
			}
			a.Value = ref
		case fieldAttrDataObj:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			a.Value = v
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return a, nil
}

func decodeBytesRef(data []byte) (BytesRef, error) {
	var ref BytesRef
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return ref, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldBytesRefKey:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return ref, protowire.ParseError(n)
			}
			data = data[n:]
			ref.Key = v
		case fieldBytesRefStore:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return ref, protowire.ParseError(n)
			}
			data = data[n:]
			s := int32(uint32(v))
			ref.Store = &s
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return ref, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return ref, nil
}
