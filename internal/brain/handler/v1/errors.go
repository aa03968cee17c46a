package v1

import (
	"net/http"

	"github.com/Missonix/SSAI-brain/pkg/errorx"
)

// Brain handler error codes.
// Code format: 1XXYYZ
//   - 1:  module prefix (brain handler)
//   - XX: resource group (00=common, 01=chat, 02=role, 03=session, 04=mood,
//     05=plot, 06=lifestory, 07=model)
//   - YY: sequential error number
//   - Z:  reserved (0)

const (
	// Common request errors (100xxx).
	ErrBind       = 100001
	ErrValidation = 100002

	// Chat errors (1001xx).
	ErrContentEmpty = 100101
	ErrTurnFailed   = 100102

	// Role errors (1002xx).
	ErrRoleNotFound   = 100201
	ErrRoleList       = 100202
	ErrRoleInit       = 100203
	ErrPersonaMissing = 100204

	// Session errors (1003xx).
	ErrSessionNotFound = 100301
	ErrSessionList     = 100302
	ErrSessionDelete   = 100303
	ErrSessionCleanup  = 100304
	ErrHistoryQuery    = 100305

	// Mood errors (1004xx).
	ErrMoodQuery = 100401
	ErrMoodReset = 100402

	// Plot errors (1005xx).
	ErrPlotQuery = 100501

	// Life-story errors (1006xx).
	ErrLifeStoryAdvance = 100601
	ErrLifeStoryStatus  = 100602

	// Model errors (1007xx).
	ErrModelList = 100701
)

func init() {
	// Common.
	errorx.MustRegister(newCoder(ErrBind, http.StatusBadRequest, "Request body binding failed"))
	errorx.MustRegister(newCoder(ErrValidation, http.StatusBadRequest, "Request validation failed"))

	// Chat.
	errorx.MustRegister(newCoder(ErrContentEmpty, http.StatusBadRequest, "Message content is required and must not be empty"))
	errorx.MustRegister(newCoder(ErrTurnFailed, http.StatusInternalServerError, "Turn processing failed"))

	// Role.
	errorx.MustRegister(newCoder(ErrRoleNotFound, http.StatusNotFound, "Role not found"))
	errorx.MustRegister(newCoder(ErrRoleList, http.StatusInternalServerError, "Failed to list roles"))
	errorx.MustRegister(newCoder(ErrRoleInit, http.StatusInternalServerError, "Failed to initialize role"))
	errorx.MustRegister(newCoder(ErrPersonaMissing, http.StatusUnprocessableEntity, "Persona blob is missing or empty"))

	// Session.
	errorx.MustRegister(newCoder(ErrSessionNotFound, http.StatusNotFound, "Session not found"))
	errorx.MustRegister(newCoder(ErrSessionList, http.StatusInternalServerError, "Failed to list sessions"))
	errorx.MustRegister(newCoder(ErrSessionDelete, http.StatusInternalServerError, "Failed to delete session"))
	errorx.MustRegister(newCoder(ErrSessionCleanup, http.StatusInternalServerError, "Failed to clean up session"))
	errorx.MustRegister(newCoder(ErrHistoryQuery, http.StatusInternalServerError, "Failed to query history"))

	// Mood.
	errorx.MustRegister(newCoder(ErrMoodQuery, http.StatusInternalServerError, "Failed to read mood"))
	errorx.MustRegister(newCoder(ErrMoodReset, http.StatusInternalServerError, "Failed to reset mood"))

	// Plot.
	errorx.MustRegister(newCoder(ErrPlotQuery, http.StatusInternalServerError, "Failed to resolve plot window"))

	// Life story.
	errorx.MustRegister(newCoder(ErrLifeStoryAdvance, http.StatusInternalServerError, "Failed to advance life story"))
	errorx.MustRegister(newCoder(ErrLifeStoryStatus, http.StatusInternalServerError, "Failed to read life story status"))

	// Model.
	errorx.MustRegister(newCoder(ErrModelList, http.StatusInternalServerError, "Failed to list models"))
}

type coder struct {
	code int
	http int
	msg  string
}

func newCoder(code, httpStatus int, msg string) *coder {
	return &coder{code: code, http: httpStatus, msg: msg}
}

func (c *coder) Code() int         { return c.code }
func (c *coder) HTTPStatus() int   { return c.http }
func (c *coder) String() string    { return c.msg }
func (c *coder) Reference() string { return "" }
