package event

import (
	"encoding/json"
	"fmt"
)

// wireEvent mirrors the discriminator-tagged JSON schema from §6: one
// struct with every optional field any kind might carry, decoded once and
// then narrowed by Kind. No structural reflection is needed — the schema is
// a fixed set of shapes and the conversion is a hand-written match, per
// §9's explicit guidance.
type wireEvent struct {
	Kind string `json:"kind"`

	// key
	Phase   string `json:"phase"`
	Code    string `json:"code"`
	Mods    Mods   `json:"mods"`
	Repeat  bool   `json:"repeat"`
	RawKey  string `json:"raw_key,omitempty"`
	RawCode int    `json:"raw_code,omitempty"`

	// mouse / wheel
	Button *uint8 `json:"button,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	DX     int    `json:"dx"`
	DY     int    `json:"dy"`

	// touch
	Touches []touchPoint `json:"touches,omitempty"`

	// composition
	Data *string `json:"data,omitempty"`

	// focus
	Focused bool `json:"focused"`
}

type touchPoint struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

// DecodeJSON decodes one JSON object per the §6 input schema into an Event.
func DecodeJSON(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("event: decode: %w", err)
	}
	return fromWire(w)
}

func fromWire(w wireEvent) (Event, error) {
	switch w.Kind {
	case "key":
		kind := KeyPress
		if w.Phase == "up" {
			kind = KeyRelease
		}
		return Key{Code: w.Code, Mods: w.Mods, Kind: kind}, nil

	case "mouse":
		var button uint8
		if w.Button != nil {
			button = *w.Button
		}
		var kind MouseKind
		switch w.Phase {
		case "down":
			kind = MouseDown
		case "up":
			kind = MouseUp
		case "move":
			kind = MouseMove
		case "drag":
			kind = MouseDrag
		default:
			return nil, fmt.Errorf("event: unknown mouse phase %q", w.Phase)
		}
		return Mouse{Kind: kind, Button: button, X: w.X, Y: w.Y, Mods: w.Mods}, nil

	case "wheel":
		kind := MouseScrollDown
		if w.DY < 0 {
			kind = MouseScrollUp
		}
		return Mouse{Kind: kind, X: w.X, Y: w.Y, Mods: w.Mods}, nil

	case "touch":
		// Touch is normalized to the nearest mouse semantics: the core has
		// no separate touch event type (out of the §6 delivered-event
		// list), so the first touch point drives a mouse-equivalent event.
		if len(w.Touches) == 0 {
			return nil, fmt.Errorf("event: touch with no touch points")
		}
		t := w.Touches[0]
		var kind MouseKind
		switch w.Phase {
		case "start":
			kind = MouseDown
		case "move":
			kind = MouseDrag
		case "end", "cancel":
			kind = MouseUp
		default:
			return nil, fmt.Errorf("event: unknown touch phase %q", w.Phase)
		}
		return Mouse{Kind: kind, X: t.X, Y: t.Y, Mods: w.Mods}, nil

	case "composition":
		var phase CompositionPhase
		switch w.Phase {
		case "start":
			phase = CompositionStart
		case "update":
			phase = CompositionUpdate
		case "end":
			phase = CompositionEnd
		case "cancel":
			phase = CompositionCancel
		default:
			return nil, fmt.Errorf("event: unknown composition phase %q", w.Phase)
		}
		var data string
		if w.Data != nil {
			data = *w.Data
		}
		return Composition{Phase: phase, Data: data}, nil

	case "focus":
		return Focus{Focused: w.Focused}, nil

	default:
		return nil, fmt.Errorf("event: unknown kind %q", w.Kind)
	}
}
