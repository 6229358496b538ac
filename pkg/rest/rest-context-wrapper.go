package rest

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey int

const requestContextKey contextKey = iota

// RequestContext is the context of the request, for request-dependent parameters
type RequestContext struct {
	// ReqUUID is the request unique ID
	ReqUUID uuid.UUID

	// Logger is a custom field logger for the request
	Logger logrus.FieldLogger
}

// withRequestContext adds a RequestContext instance to the request's context before calling the next handler.
func (e *Engine) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqUUID, err := uuid.NewV4()
		if err != nil {
			e.baseLogger.WithError(err).Error("can't generate a request UUID")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var rc = RequestContext{
			ReqUUID: reqUUID,
		}

		// Create a request-specific logger
		rc.Logger = e.baseLogger.WithFields(logrus.Fields{
			"reqid":     rc.ReqUUID.String(),
			"remote-ip": r.RemoteAddr,
		})
		rc.Logger.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Debug("request")

		// Call the next handler in chain (usually, the handler function for the path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestContextKey, rc)))
	})
}

// GetRequestContext returns the context attached by the engine, and whether one was found.
func GetRequestContext(request *http.Request) (RequestContext, bool) {
	rc, ok := request.Context().Value(requestContextKey).(RequestContext)
	return rc, ok
}

// Logger returns the request's logger, falling back to the standard logrus logger for requests that didn't
// pass through the engine, such as those crafted in tests.
func Logger(request *http.Request) logrus.FieldLogger {
	if rc, ok := GetRequestContext(request); ok && rc.Logger != nil {
		return rc.Logger
	}
	return logrus.StandardLogger()
}
