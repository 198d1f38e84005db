package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
	"github.com/Hems566/eter-projectv1.0/pkg/response"
)

// Business error codes, one per kind.
const (
	codeBadRequest   = 10001
	codeValidation   = 30001
	codePrecondition = 30002
	codeConflict     = 30003
	codeWorkflow     = 30004
	codeNotFound     = 30005
	codeForbidden    = 30006
	codeTransient    = 30007
	codeStaleVersion = 30008
)

// kindStatus maps an error kind to its HTTP status and code.
var kindStatus = map[pkgerrors.Kind]struct {
	status int
	code   int
}{
	pkgerrors.KindValidation:   {http.StatusBadRequest, codeValidation},
	pkgerrors.KindPrecondition: {http.StatusUnprocessableEntity, codePrecondition},
	pkgerrors.KindConflict:     {http.StatusConflict, codeConflict},
	pkgerrors.KindWorkflow:     {http.StatusConflict, codeWorkflow},
	pkgerrors.KindNotFound:     {http.StatusNotFound, codeNotFound},
	pkgerrors.KindForbidden:    {http.StatusForbidden, codeForbidden},
	pkgerrors.KindTransient:    {http.StatusServiceUnavailable, codeTransient},
}

// respondError writes a typed error with its rule in details; anything
// untyped becomes a 500 and is attached to the gin context for the logger.
func respondError(c *gin.Context, err error) {
	var typed *pkgerrors.Error
	if errors.As(err, &typed) {
		if m, ok := kindStatus[typed.Kind]; ok {
			response.ErrorWithDetails(c, m.status, m.code, typed.Message, typed.Rule)
			return
		}
	}
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		response.Error(c, http.StatusConflict, codeStaleVersion, err.Error())
		return
	}
	_ = c.Error(err)
	response.InternalError(c)
}

// badRequest reports a binding failure.
func badRequest(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, codeBadRequest, "invalid parameters", err.Error())
}
