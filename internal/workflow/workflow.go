// Package workflow holds the supply request lifecycle: a request starts
// pending, is approved or rejected, and an approved request is fulfilled.
package workflow

import (
	"errors"
	"fmt"

	"github.com/rogerio-castellano/school-inventory/internal/models"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionFulfill Action = "fulfill"
)

var ErrTransitionNotAllowed = errors.New("status transition not allowed")

var transitions = map[models.RequestStatus]map[Action]models.RequestStatus{
	models.StatusPending: {
		ActionApprove: models.StatusApproved,
		ActionReject:  models.StatusRejected,
	},
	models.StatusApproved: {
		ActionFulfill: models.StatusFulfilled,
	},
}

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionApprove, ActionReject, ActionFulfill:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Next returns the status an action leads to from the given status.
func Next(from models.RequestStatus, action Action) (models.RequestStatus, error) {
	to, ok := transitions[from][action]
	if !ok {
		return from, fmt.Errorf("%w: cannot %s a %s request", ErrTransitionNotAllowed, action, from)
	}
	return to, nil
}

// Actions lists what can be done with a request in the given status, in display order.
func Actions(status models.RequestStatus) []Action {
	var out []Action
	for _, a := range []Action{ActionApprove, ActionReject, ActionFulfill} {
		if _, ok := transitions[status][a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Tone is the color family of a status badge.
type Tone string

const (
	ToneWarning Tone = "warning"
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
	TonePrimary Tone = "primary"
	ToneNeutral Tone = "neutral"
)

type Badge struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
	Icon  string `json:"icon"`
}

// BadgeFor describes how a request status or stock status is displayed.
func BadgeFor(status string) Badge {
	switch status {
	case string(models.StatusPending):
		return Badge{Label: "Pending", Tone: ToneWarning, Icon: "Clock"}
	case string(models.StatusApproved):
		return Badge{Label: "Approved", Tone: ToneSuccess, Icon: "CheckCircle"}
	case string(models.StatusRejected):
		return Badge{Label: "Rejected", Tone: ToneError, Icon: "XCircle"}
	case string(models.StatusFulfilled):
		return Badge{Label: "Fulfilled", Tone: TonePrimary, Icon: "Package"}
	case string(models.StockOut):
		return Badge{Label: models.StockOut.Label(), Tone: ToneError, Icon: "AlertCircle"}
	case string(models.StockLow):
		return Badge{Label: models.StockLow.Label(), Tone: ToneWarning, Icon: "AlertTriangle"}
	case string(models.StockGood):
		return Badge{Label: models.StockGood.Label(), Tone: ToneSuccess, Icon: "CheckCircle"}
	}
	return Badge{Label: status, Tone: ToneNeutral}
}
