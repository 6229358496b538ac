package json_utilities

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/silktrader/wallpapers/pkg/rest"
)

var errEncoding = errors.New("error while encoding response")

type httpError struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

func newHttpError(message string) *httpError {
	return &httpError{message, time.Now().UTC()}
}

type httpMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func newHttpMessage(message string) *httpMessage {
	return &httpMessage{message, time.Now().UTC()}
}

func Ok(writer http.ResponseWriter, payload interface{}) {
	encodeJSON(writer, http.StatusOK, payload)
}

// OkMessage and CreatedMessage wrap a plain message in a `{"message": ...}` body.
func OkMessage(writer http.ResponseWriter, message string) {
	encodeJSON(writer, http.StatusOK, newHttpMessage(message))
}

func CreatedMessage(writer http.ResponseWriter, message string) {
	encodeJSON(writer, http.StatusCreated, newHttpMessage(message))
}

func NotFound(writer http.ResponseWriter, message string) {
	encodeJSON(writer, http.StatusNotFound, newHttpError(message))
}

// InternalServerError logs the error with the request's logger, then reports it to the client.
func InternalServerError(writer http.ResponseWriter, request *http.Request, err error) {
	rest.Logger(request).WithError(err).Error("request failed")
	encodeJSON(writer, http.StatusInternalServerError, newHttpError(err.Error()))
}

func ValidationError(writer http.ResponseWriter, err error) {
	encodeJSON(writer, http.StatusBadRequest, newHttpError(err.Error()))
}

func encodeJSON(writer http.ResponseWriter, status int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json")

	// encode before writing the status, so that failures can still be reported
	body, err := json.Marshal(payload)
	if err != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(writer).Encode(newHttpError(errEncoding.Error()))
		return
	}

	writer.WriteHeader(status)
	_, _ = writer.Write(append(body, '\n'))
}

// DecodeValidate parses the request's JSON body into a new T and validates it.
func DecodeValidate[T Validator](request *http.Request) (data T, err error) {
	if err = json.NewDecoder(request.Body).Decode(&data); err != nil {
		return data, err
	}
	return data, data.Validate()
}

type Validator interface {
	Validate() error
}
