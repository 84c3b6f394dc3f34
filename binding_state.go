package oc

import (
	"encoding/json"
	"fmt"
)

// BindingState identifies the configuration phase that is currently
// registering entries. The bootstrap sets it before each phase; entries
// remember the state they were created in.
type BindingState int

const (
	// NoBindingState is the initial state of a new container.
	NoBindingState BindingState = iota

	// FrameworkBindingState is active while the framework binds its own services.
	FrameworkBindingState

	// PluginBindingState is active while plugins bind their services.
	PluginBindingState

	// AppBindingState is active while the application binds its services.
	AppBindingState
)

// String returns the string representation of the BindingState.
func (s BindingState) String() string {
	switch s {
	case NoBindingState:
		return "none"
	case FrameworkBindingState:
		return "framework"
	case PluginBindingState:
		return "plugin"
	case AppBindingState:
		return "app"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// IsValid reports whether s is one of the three configuration phases.
// NoBindingState is not a valid target for SetBindingState.
func (s BindingState) IsValid() bool {
	return s >= FrameworkBindingState && s <= AppBindingState
}

// MarshalText implements encoding.TextMarshaler.
func (s BindingState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *BindingState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none", "":
		*s = NoBindingState
	case "framework", "ima":
		*s = FrameworkBindingState
	case "plugin":
		*s = PluginBindingState
	case "app":
		*s = AppBindingState
	default:
		return InvalidBindingStateError{Value: string(text)}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s BindingState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *BindingState) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}

	return s.UnmarshalText([]byte(text))
}
