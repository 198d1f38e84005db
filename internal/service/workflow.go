package service

import (
	"github.com/Hems566/eter-projectv1.0/internal/model"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

// Transition is a request workflow operation.
type Transition string

const (
	TransitionSubmit           Transition = "submit"
	TransitionWithdraw         Transition = "withdraw"
	TransitionApprove          Transition = "approve"
	TransitionReject           Transition = "reject"
	TransitionAttachSupply     Transition = "attach_supply"
	TransitionAttachEngagement Transition = "attach_engagement"
)

// AllTransitions in workflow order.
var AllTransitions = []Transition{
	TransitionSubmit, TransitionWithdraw, TransitionApprove,
	TransitionReject, TransitionAttachSupply, TransitionAttachEngagement,
}

type edge struct {
	from model.RequestStatus
	to   model.RequestStatus
}

// transitions is the whole state machine. Every other (status, transition) pair is illegal.
var transitions = map[Transition]edge{
	TransitionSubmit:           {from: model.RequestDraft, to: model.RequestSubmitted},
	TransitionWithdraw:         {from: model.RequestSubmitted, to: model.RequestDraft},
	TransitionApprove:          {from: model.RequestSubmitted, to: model.RequestValidated},
	TransitionReject:           {from: model.RequestSubmitted, to: model.RequestRejected},
	TransitionAttachSupply:     {from: model.RequestValidated, to: model.RequestSupplied},
	TransitionAttachEngagement: {from: model.RequestSupplied, to: model.RequestContracted},
}

// NextStatus returns the target status, or a workflow error when t is illegal from current.
func NextStatus(current model.RequestStatus, t Transition) (model.RequestStatus, error) {
	e, ok := transitions[t]
	if !ok {
		return current, pkgerrors.Workflow("unknown_transition", "unknown transition %q", t)
	}
	if current != e.from {
		return current, pkgerrors.Workflow("illegal_transition",
			"cannot %s a request in status %s (requires %s)", t, current, e.from)
	}
	return e.to, nil
}
