package objectmodel

import (
	"fmt"
	"sync"
)

// EnumBridge maps enum names to wire numbers and back, for enum lists
// that would otherwise be described by a generated protobuf descriptor.
// Since no descriptor registry exists without generated stubs, each
// enum list's table is a Go map literal; the value-to-name tables are
// built once at package initialization, and RegisterEnumList adds or
// replaces lists afterwards.
type EnumBridge struct {
	mu          sync.RWMutex
	nameToValue map[string]map[string]int32
	valueToName map[string]map[int32]string
}

var bridge = &EnumBridge{
	nameToValue: map[string]map[string]int32{
		"RequestType": {
			"GET":     0,
			"PUT":     1,
			"PUT_RAW": 2,
			"UPDATE":  3,
			"QUERY":   4,
		},
		"ResponseType": {
			"SUCCESS": 0,
			"FAILURE": 1,
		},
		"QueryType": {
			"BY_ATTR_NAME":  0,
			"BY_ATTR_VALUE": 1,
		},
		"ReasonType": {
			"DEFUNCT":    0,
			"PARAMS":     1,
			"OBJ_STORE":  2,
			"DATA_STORE": 3,
			"INPUT":      4,
		},
		"Type": {
			"EMPTY":  int32(KindEmpty),
			"BOOL":   int32(KindBool),
			"INT":    int32(KindInt),
			"FLOAT":  int32(KindFloat),
			"TIME":   int32(KindTime),
			"STRING": int32(KindString),
			"BYTES":  int32(KindBytes),
			"OBJECT": int32(KindObject),
		},
	},
}

func init() {
	bridge.valueToName = make(map[string]map[int32]string, len(bridge.nameToValue))
	for list, names := range bridge.nameToValue {
		rev := make(map[int32]string, len(names))
		for name, value := range names {
			rev[value] = name
		}
		bridge.valueToName[list] = rev
	}
}

// NameToNumber returns the wire number for name within the named enum
// list.
func NameToNumber(list, name string) (int32, error) {
	bridge.mu.RLock()
	defer bridge.mu.RUnlock()
	values, ok := bridge.nameToValue[list]
	if !ok {
		return 0, fmt.Errorf("objectmodel: unknown enum list %q", list)
	}
	v, ok := values[name]
	if !ok {
		return 0, fmt.Errorf("objectmodel: unknown enum name %q in %q", name, list)
	}
	return v, nil
}

// NumberToName returns the name for a wire number within the named
// enum list.
func NumberToName(list string, value int32) (string, error) {
	bridge.mu.RLock()
	defer bridge.mu.RUnlock()
	names, ok := bridge.valueToName[list]
	if !ok {
		return "", fmt.Errorf("objectmodel: unknown enum list %q", list)
	}
	n, ok := names[value]
	if !ok {
		return "", fmt.Errorf("objectmodel: unknown enum value %d in %q", value, list)
	}
	return n, nil
}

// RegisterEnumList installs or replaces an enum list's name<->value
// table, for domains extending this bridge with their own enums.
func RegisterEnumList(list string, values map[string]int32) {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	bridge.nameToValue[list] = values
	rev := make(map[int32]string, len(values))
	for name, value := range values {
		rev[value] = name
	}
	bridge.valueToName[list] = rev
}
