package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	biomass "PalmBiomass/internal/calc/biomass"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	CookieName = "biomass_session"
	sessionTTL = 12 * time.Hour
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// Authenv issues and checks session tokens. When AccessHash is empty any
// visitor may start a session.
type Authenv struct {
	JWTkey     []byte
	AccessHash []byte
	Secure     bool
}

// SessionClaims carry the session's custom settings so nothing is kept server-side.
type SessionClaims struct {
	Settings biomass.Settings `json:"settings"`
	jwt.RegisteredClaims
}

type SessionRequest struct {
	AccessCode string `json:"access_code"`
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
	ExpiresAt int64  `json:"expires_at"`
}

func HashAccessCode(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(bytes), err
}

// SessionHandler starts a fresh session with default settings.
func (env *Authenv) SessionHandler(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(env.AccessHash) > 0 {
		code := strings.TrimSpace(req.AccessCode)
		if code == "" || bcrypt.CompareHashAndPassword(env.AccessHash, []byte(code)) != nil {
			http.Error(w, "Invalid access code", http.StatusUnauthorized)
			return
		}
	}

	id := uuid.New().String()
	exp, err := env.IssueToken(w, id, biomass.Settings{})
	if err != nil {
		log.Printf("IssueToken Error: %v", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	biomass.WriteJSON(w, http.StatusCreated, SessionResponse{SessionID: id, ExpiresAt: exp.Unix()})
}

// IssueToken signs the settings into a session cookie. The cookie has no
// Expires, so it ends with the browser session.
func (env *Authenv) IssueToken(w http.ResponseWriter, sessionID string, settings biomass.Settings) (time.Time, error) {
	now := time.Now()
	exp := now.Add(sessionTTL)
	claims := SessionClaims{
		Settings: settings,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(env.JWTkey)
	if err != nil {
		return time.Time{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		Secure:   env.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return exp, nil
}

// ParseToken validates a session token and returns its claims.
func (env *Authenv) ParseToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return env.JWTkey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// AuthMiddleware requires a valid session cookie and puts the session id and
// settings into the request context.
func (env *Authenv) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			http.Error(w, "Session required", http.StatusUnauthorized)
			return
		}
		claims, err := env.ParseToken(cookie.Value)
		if err != nil {
			log.Println("Session token rejected:", err)
			http.Error(w, "Session required", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, claims.ID)
		ctx = biomass.ContextWithSettings(ctx, claims.Settings)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}
