package main

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a pre-computed bcrypt hash used when a login username doesn't match.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based username enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// operatorClaims are the claims of tokens issued by login.
type operatorClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// login verifies the operator username/password and returns a signed token.
// POST /api/login (public, no auth required).
func (h *Handler) login(c *gin.Context) {
	if !h.cfg.authEnabled() {
		apiError(c, http.StatusNotFound, "auth is disabled")
		return
	}

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	userMatches := subtle.ConstantTimeCompare([]byte(body.Username), []byte(h.cfg.AuthUsername)) == 1

	// Always run bcrypt to keep response time constant regardless of whether the
	// username matched, which prevents timing-based username enumeration.
	hashToCheck := dummyHash
	if userMatches {
		hashToCheck = []byte(h.cfg.AuthPasswordHash)
	}
	compareErr := bcrypt.CompareHashAndPassword(hashToCheck, []byte(body.Password))

	if !userMatches || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	expiresAt := time.Now().Add(h.cfg.JWTExpiry)
	token, err := h.issueToken(body.Username, expiresAt)
	if err != nil {
		log.Printf("[login] sign token: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": expiresAt.UTC()})
}

// issueToken signs an HS256 token for username valid until expiresAt.
func (h *Handler) issueToken(username string, expiresAt time.Time) (string, error) {
	claims := operatorClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
}

// authMiddleware validates the Bearer token and sets username on the context.
// When no password hash is configured every request passes through.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	if !h.cfg.authEnabled() {
		log.Printf("[auth] AUTH_PASSWORD_HASH not set; API is unauthenticated")
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &operatorClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			apiError(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}
