package objectstore

import (
	"testing"

	"github.com/hsn2-platform/worker-core/objectmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestQueryStructureExpandByAttrName(t *testing.T) {
	obj := objectmodel.NewObject()
	obj.AddFlag("Bad")
	q := NewQueryStructure(obj, false)
	entries, err := q.expand()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bad", entries[0].attrName)
	assert.False(t, entries[0].negate)
	assert.Nil(t, entries[0].attrValue)
}

func TestQueryStructureExpandByAttrValue(t *testing.T) {
	obj := objectmodel.NewObject()
	obj.AddObject("parent", 1)
	q := NewQueryStructure(obj, true)
	entries, err := q.expand()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "parent", entries[0].attrName)
	assert.True(t, entries[0].negate)
	require.NotNil(t, entries[0].attrValue)
	assert.Equal(t, objectmodel.KindObject, entries[0].attrValue.Kind)
}

func TestRequestWireEncode(t *testing.T) {
	obj := objectmodel.NewObject(1)
	obj.AddFlag("Bad")
	req := &request{job: 165, reqType: 2, overwrite: true, data: []*objectmodel.Object{obj}}
	encoded, err := encodeRequest(req)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)
}

func TestResponseWireRoundTrip(t *testing.T) {
	obj := objectmodel.NewObject(9)
	obj.AddFlag("ok")
	encObj, err := objectmodel.EncodeObject(obj)
	require.NoError(t, err)

	resp := &response{respType: 0, missing: []uint64{1, 2}, objectIDs: []uint64{9}}
	var raw []byte
	raw = protowire.AppendTag(raw, respFieldType, protowire.VarintType)
	raw = protowire.AppendVarint(raw, uint64(resp.respType))
	for _, m := range resp.missing {
		raw = protowire.AppendTag(raw, respFieldMissing, protowire.VarintType)
		raw = protowire.AppendVarint(raw, m)
	}
	raw = protowire.AppendTag(raw, respFieldData, protowire.BytesType)
	raw = protowire.AppendBytes(raw, encObj)
	for _, id := range resp.objectIDs {
		raw = protowire.AppendTag(raw, respFieldObjects, protowire.VarintType)
		raw = protowire.AppendVarint(raw, id)
	}

	decoded, err := decodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, int32(0), decoded.respType)
	assert.Equal(t, []uint64{1, 2}, decoded.missing)
	assert.Equal(t, []uint64{9}, decoded.objectIDs)
	require.Len(t, decoded.data, 1)
	assert.True(t, decoded.data[0].IsSet("ok"))
}
