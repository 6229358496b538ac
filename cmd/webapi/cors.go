package main

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// applyCORSHandler applies a CORS policy to the router, allowing any origin to read the public API.
func applyCORSHandler(h http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedHeaders([]string{
			"Content-Type",
		}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedOrigins([]string{"*"}),
	)(h)
}

// applyRecoveryHandler turns panics into 500 responses, logging them instead of dropping the connection.
func applyRecoveryHandler(h http.Handler, logger handlers.RecoveryHandlerLogger) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger),
		handlers.PrintRecoveryStack(true),
	)(h)
}
