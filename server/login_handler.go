package server

import (
	"encoding/json"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/loophq/go-chat-server/directory"
)

const issuedTokenTTL = 24 * time.Hour

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string         `json:"token"`
	User  directory.User `json:"user"`
}

// LoginHandler exchanges an email/password pair for a bearer token signed
// with the configured HMAC secret. Deployments that delegate authentication
// to an OIDC issuer obtain tokens from the issuer instead; this endpoint
// still signs local tokens for tools and tests.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request loginRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "invalid request body"})
			return
		}
		if request.Email == "" || request.Password == "" {
			writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "email and password are required"})
			return
		}

		user, err := s.repos.Users.GetByEmail(request.Email)
		if err != nil || !directory.CheckPasswordHash(request.Password, user.PasswordHash) {
			// Unknown email and wrong password are indistinguishable.
			writeJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "invalid credentials"})
			return
		}

		token, err := s.signToken(user)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "failed to sign token"})
			return
		}

		writeJSON(w, http.StatusOK, apiResponse{
			Success: true,
			Message: "login successful",
			Data:    loginResponse{Token: token, User: *user},
		})
	}
}

// signToken mints an HS256 bearer token for the user, accepted by both the
// websocket handshake gate and the REST bearer middleware.
func (s *Server) signToken(user *directory.User) (string, error) {
	claims := jwtlib.MapClaims{
		"id":     user.ID,
		"tenant": user.TenantID,
		"email":  user.Email,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(issuedTokenTTL).Unix(),
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.GetJWTSecret()))
}
