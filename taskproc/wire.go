package taskproc

import "google.golang.org/protobuf/encoding/protowire"

// Wire shapes for the four process messages a task processor speaks:
// TaskRequest (inbound), TaskAccepted/TaskCompleted/TaskError
// (outbound). Hand-encoded for the same reason objectmodel's
// ObjectData is: no generated stub exists within this repository's
// scope, but the state machine cannot run without serializing these.
const (
	trFieldTaskID = 1
	trFieldJob    = 2
	trFieldObject = 3

	taFieldTaskID = 1
	taFieldJob    = 2

	tcFieldTaskID   = 1
	tcFieldJob      = 2
	tcFieldWarnings = 3
	tcFieldObjects  = 4

	teFieldTaskID = 1
	teFieldJob    = 2
	teFieldReason = 3
	teFieldDesc   = 4
)

func decodeTaskRequest(data []byte) (TaskRequest, error) {
	var tr TaskRequest
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return tr, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case trFieldTaskID:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return tr, protowire.ParseError(n)
			}
			data = data[n:]
			tr.TaskID = v
		case trFieldJob:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return tr, protowire.ParseError(n)
			}
			data = data[n:]
			tr.Job = v
		case trFieldObject:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return tr, protowire.ParseError(n)
			}
			data = data[n:]
			tr.Object = v
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return tr, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return tr, nil
}

func encodeTaskAccepted(taskID, job uint64) []byte {
	var b []byte
	b = protowire.AppendTag(b, taFieldTaskID, protowire.VarintType)
	b = protowire.AppendVarint(b, taskID)
	b = protowire.AppendTag(b, taFieldJob, protowire.VarintType)
	b = protowire.AppendVarint(b, job)
	return b
}

func encodeTaskCompleted(taskID, job uint64, warnings []string, newObjectIDs []uint64) []byte {
	var b []byte
	b = protowire.AppendTag(b, tcFieldTaskID, protowire.VarintType)
	b = protowire.AppendVarint(b, taskID)
	b = protowire.AppendTag(b, tcFieldJob, protowire.VarintType)
	b = protowire.AppendVarint(b, job)
	for _, w := range warnings {
		b = protowire.AppendTag(b, tcFieldWarnings, protowire.BytesType)
		b = protowire.AppendString(b, w)
	}
	for _, id := range newObjectIDs {
		b = protowire.AppendTag(b, tcFieldObjects, protowire.VarintType)
		b = protowire.AppendVarint(b, id)
	}
	return b
}

func encodeTaskError(taskID, job uint64, reason int32, description string) []byte {
	var b []byte
	b = protowire.AppendTag(b, teFieldTaskID, protowire.VarintType)
	b = protowire.AppendVarint(b, taskID)
	b = protowire.AppendTag(b, teFieldJob, protowire.VarintType)
	b = protowire.AppendVarint(b, job)
	b = protowire.AppendTag(b, teFieldReason, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(reason))
	b = protowire.AppendTag(b, teFieldDesc, protowire.BytesType)
	b = protowire.AppendString(b, description)
	return b
}
