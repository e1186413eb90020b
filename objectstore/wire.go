package objectstore

import (
	"github.com/hsn2-platform/worker-core/objectmodel"
	"google.golang.org/protobuf/encoding/protowire"
)

// request and response are the wire shapes the Object Store speaks.
// They carry the same fields ObjectRequest/ObjectResponse would in a
// generated protobuf package, hand-encoded with protowire for the same
// reason objectmodel.ObjectData is: no generated stub exists for them
// within this repository's scope, but the adapter cannot function
// without serializing them onto the bus.
type request struct {
	job        uint64
	reqType    int32
	taskID     uint64
	overwrite  bool
	objectIDs  []uint64
	data       []*objectmodel.Object
	queries    []queryEntry
}

type queryEntry struct {
	attrName  string
	negate    bool
	queryType int32
	attrValue *objectmodel.Attribute // nil for BY_ATTR_NAME
}

type response struct {
	respType  int32
	missing   []uint64
	data      []*objectmodel.Object
	objectIDs []uint64
}

const (
	reqFieldJob       = 1
	reqFieldType      = 2
	reqFieldTaskID    = 3
	reqFieldOverwrite = 4
	reqFieldObjects   = 5
	reqFieldData      = 6
	reqFieldQuery     = 7

	queryFieldAttrName  = 1
	queryFieldNegate    = 2
	queryFieldType      = 3
	queryFieldAttrValue = 4

	respFieldType    = 1
	respFieldMissing = 2
	respFieldData    = 3
	respFieldObjects = 4
)

func encodeRequest(r *request) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, reqFieldJob, protowire.VarintType)
	b = protowire.AppendVarint(b, r.job)
	b = protowire.AppendTag(b, reqFieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.reqType))
	if r.taskID != 0 {
		b = protowire.AppendTag(b, reqFieldTaskID, protowire.VarintType)
		b = protowire.AppendVarint(b, r.taskID)
	}
	if r.overwrite {
		b = protowire.AppendTag(b, reqFieldOverwrite, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	for _, id := range r.objectIDs {
		b = protowire.AppendTag(b, reqFieldObjects, protowire.VarintType)
		b = protowire.AppendVarint(b, id)
	}
	for _, obj := range r.data {
		enc, err := objectmodel.EncodeObject(obj)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, reqFieldData, protowire.BytesType)
		b = protowire.AppendBytes(b, enc)
	}
	for _, q := range r.queries {
		enc, err := encodeQueryEntry(q)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, reqFieldQuery, protowire.BytesType)
		b = protowire.AppendBytes(b, enc)
	}
	return b, nil
}

func encodeQueryEntry(q queryEntry) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, queryFieldAttrName, protowire.BytesType)
	b = protowire.AppendString(b, q.attrName)
	if q.negate {
		b = protowire.AppendTag(b, queryFieldNegate, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	b = protowire.AppendTag(b, queryFieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(q.queryType))
	if q.attrValue != nil {
		enc, err := objectmodel.EncodeAttribute(q.attrValue)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, queryFieldAttrValue, protowire.BytesType)
		b = protowire.AppendBytes(b, enc)
	}
	return b, nil
}

func decodeResponse(data []byte) (*response, error) {
	r := &response{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case respFieldType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			r.respType = int32(v)
		case respFieldMissing:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			r.missing = append(r.missing, v)
		case respFieldData:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			obj, err := objectmodel.DecodeObject(raw)
			if err != nil {
				return nil, err
			}
			r.data = append(r.data, obj)
		case respFieldObjects:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			r.objectIDs = append(r.objectIDs, v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return r, nil
}
