package controllers

import (
	"net/http"

	"github.com/angelmondragon/pharmacy-backend/api/responses"
)

// Ping answers the unauthenticated liveness ping.
func Ping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"message": "pong"})
	}
}
