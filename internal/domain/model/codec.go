package model

import (
	"encoding/json"
	"fmt"
)

// Kind names identify event variants on the wire and in storage.
const (
	KindPointForUs         = "point_for_us"
	KindPointForOpponent   = "point_for_opponent"
	KindReceptionEvaluated = "reception_evaluated"
	KindSubstitution       = "substitution"
	KindLineupSet          = "set_lineup_set"
	KindServiceChoice      = "set_service_choice"
	KindSetStarted         = "set_started"
	KindSetEnded           = "set_ended"
	KindTimeoutCalled      = "timeout_called"
	KindFreeballSent       = "freeball_sent"
	KindFreeballReceived   = "freeball_received"
)

// KindOf returns the wire name for an event variant.
func KindOf(e Event) string {
	switch e.(type) {
	case PointForUs:
		return KindPointForUs
	case PointForOpponent:
		return KindPointForOpponent
	case ReceptionEvaluated:
		return KindReceptionEvaluated
	case Substitution:
		return KindSubstitution
	case LineupSet:
		return KindLineupSet
	case ServiceChoice:
		return KindServiceChoice
	case SetStarted:
		return KindSetStarted
	case SetEnded:
		return KindSetEnded
	case TimeoutCalled:
		return KindTimeoutCalled
	case FreeballSent:
		return KindFreeballSent
	case FreeballReceived:
		return KindFreeballReceived
	default:
		return ""
	}
}

// Encode serializes one event to its JSON payload. The kind is stored
// alongside the payload by the caller (a table column, an envelope field).
func Encode(e Event) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", KindOf(e), err)
	}
	return b, nil
}

// Decode reconstructs an event from its kind name and JSON payload.
func Decode(kind string, payload []byte) (Event, error) {
	var (
		e   Event
		err error
	)
	switch kind {
	case KindPointForUs:
		var v PointForUs
		err = json.Unmarshal(payload, &v)
		e = v
	case KindPointForOpponent:
		var v PointForOpponent
		err = json.Unmarshal(payload, &v)
		e = v
	case KindReceptionEvaluated:
		var v ReceptionEvaluated
		err = json.Unmarshal(payload, &v)
		e = v
	case KindSubstitution:
		var v Substitution
		err = json.Unmarshal(payload, &v)
		e = v
	case KindLineupSet:
		var v LineupSet
		err = json.Unmarshal(payload, &v)
		e = v
	case KindServiceChoice:
		var v ServiceChoice
		err = json.Unmarshal(payload, &v)
		e = v
	case KindSetStarted:
		var v SetStarted
		err = json.Unmarshal(payload, &v)
		e = v
	case KindSetEnded:
		var v SetEnded
		err = json.Unmarshal(payload, &v)
		e = v
	case KindTimeoutCalled:
		var v TimeoutCalled
		err = json.Unmarshal(payload, &v)
		e = v
	case KindFreeballSent:
		var v FreeballSent
		err = json.Unmarshal(payload, &v)
		e = v
	case KindFreeballReceived:
		var v FreeballReceived
		err = json.Unmarshal(payload, &v)
		e = v
	default:
		return nil, fmt.Errorf("decode event: %w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s event: %w", kind, err)
	}
	return e, nil
}
