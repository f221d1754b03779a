package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets the browser client on any origin call the API and the relay.
var CORS = cors.Handler(cors.Options{
	AllowedOrigins: []string{"https://*", "http://*"},
	AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	MaxAge:         300,
})
