package stream

import (
	"errors"
	"fmt"

	"energy-traffic-light/internal/simulation"
)

// Controller is the part of the clock a remote client may drive.
type Controller interface {
	Play()
	Pause()
	TogglePlayPause() bool
	SetSpeed(speed float64) error
	JumpToString(s string) error
	AdvanceTime(minutes int)
	State() simulation.ClockState
}

const (
	ActionPlay    = "play"
	ActionPause   = "pause"
	ActionToggle  = "toggle"
	ActionSpeed   = "speed"
	ActionJump    = "jump"
	ActionAdvance = "advance"
)

var ErrUnknownAction = errors.New("unknown action")

// ControlMessage is a client request sent over the WebSocket.
//
// Example:
//
//	{"action":"speed","speed":4}
//	{"action":"jump","time":"2024-07-10T18:00"}
type ControlMessage struct {
	Action  string             `json:"action"`
	Speed   *float64           `json:"speed,omitempty"`
	Time    simulation.Instant `json:"time,omitempty"`
	Minutes int                `json:"minutes,omitempty"`
}

// Apply runs msg against ctrl and returns the resulting state.
func Apply(ctrl Controller, msg ControlMessage) (simulation.ClockState, error) {
	var err error
	switch msg.Action {
	case ActionPlay:
		ctrl.Play()
	case ActionPause:
		ctrl.Pause()
	case ActionToggle:
		ctrl.TogglePlayPause()
	case ActionSpeed:
		if msg.Speed == nil {
			return ctrl.State(), fmt.Errorf("%w: speed is required", simulation.ErrInvalidSpeed)
		}
		err = ctrl.SetSpeed(*msg.Speed)
	case ActionJump:
		err = ctrl.JumpToString(string(msg.Time))
	case ActionAdvance:
		ctrl.AdvanceTime(msg.Minutes)
	default:
		return ctrl.State(), fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
	return ctrl.State(), err
}
