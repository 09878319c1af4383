package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/auth"
	"jinstore-backend/models"
)

const principalKey = "principal"

// Principal is whoever the bearer token speaks for: a registered user or an
// anonymous guest.
type Principal struct {
	Kind    string
	UserID  primitive.ObjectID
	GuestID string
	Role    models.Role
}

func (p Principal) IsUser() bool  { return p.Kind == auth.KindUser }
func (p Principal) IsAdmin() bool { return p.IsUser() && p.Role == models.RoleAdmin }

// Owner keys the principal's cart and favorites.
func (p Principal) Owner() models.Owner {
	if p.IsUser() {
		return models.UserOwner(p.UserID)
	}
	return models.GuestOwner(p.GuestID)
}

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Authenticate reads an optional bearer token. Requests without one pass
// through anonymous; a bad token is rejected.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c)
		if !ok {
			c.Next()
			return
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		p := Principal{Kind: claims.Kind, Role: models.Role(claims.Role)}
		if claims.Kind == auth.KindUser {
			oid, err := primitive.ObjectIDFromHex(claims.Subject)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
				return
			}
			p.UserID = oid
		} else {
			p.GuestID = claims.Subject
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// bearer finds the token in the Authorization header. Browsers cannot set
// headers on websocket handshakes, so those may pass ?access_token= instead.
func bearer(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if websocket.IsWebSocketUpgrade(c.Request) {
			if t := c.Query("access_token"); t != "" {
				return t, true
			}
		}
		return "", false
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", true
	}
	return raw, true
}

func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// RequireOwner admits users and guests.
func RequireOwner(c *gin.Context) {
	if _, ok := CurrentPrincipal(c); !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.Next()
}

func RequireUser(c *gin.Context) {
	p, ok := CurrentPrincipal(c)
	if !ok || !p.IsUser() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
		return
	}
	c.Next()
}

func RequireAdmin(c *gin.Context) {
	p, ok := CurrentPrincipal(c)
	if !ok || !p.IsUser() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
		return
	}
	if !p.IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}
	c.Next()
}
