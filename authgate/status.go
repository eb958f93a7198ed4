package authgate

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
)

// Envelope is the platform response body shared by every service
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// OK wraps data in a success envelope
func OK(data any) Envelope {
	return Envelope{Code: http.StatusOK, Message: "success", Data: data}
}

// FailureEnvelope builds the envelope for err. Only the failure kind is exposed;
// internal messages stay in the security log.
func FailureEnvelope(err error) Envelope {
	status := HTTPStatus(err)
	message := string(KindOf(err))
	if message == "" {
		message = "INTERNAL_ERROR"
	}
	return Envelope{Code: status, Message: message}
}

// HTTPStatus maps a gate failure onto an HTTP status code
func HTTPStatus(err error) int {
	var failure *AuthFailure
	if !errors.As(err, &failure) {
		return http.StatusInternalServerError
	}
	switch {
	case failure.IsAuthentication():
		return http.StatusUnauthorized
	case failure.Kind == KindForbidden:
		return http.StatusForbidden
	case failure.Kind == KindResourceNotFound:
		return http.StatusNotFound
	case failure.Kind == KindDependencyUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode maps a gate failure onto a gRPC status code
func GRPCCode(err error) codes.Code {
	switch HTTPStatus(err) {
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusServiceUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// AbortWithFailure writes the failure envelope with its mapped status and stops the chain
func AbortWithFailure(c *gin.Context, err error) {
	c.AbortWithStatusJSON(HTTPStatus(err), FailureEnvelope(err))
}
