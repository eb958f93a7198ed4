package authgate

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// Middleware returns a Gin handler that authenticates every request and stores
// the Principal in the request context
func Middleware(g *Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Generate or extract request ID for correlation
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(requestIDHeader, requestID)
		ctx := WithRequestID(c.Request.Context(), requestID)

		p, err := g.Authenticate(ctx, headerFromRequest(c.Request))
		if err != nil {
			AbortWithFailure(c, err)
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(ctx, p))
		c.Next()
	}
}

// RequireUserParam rejects list requests whose path parameter (or, when the path
// has none, query parameter) names a different user than the principal
func RequireUserParam(g *Gate, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c.Request.Context())
		if !ok {
			AbortWithFailure(c, NewAuthFailure(KindMissingHeader, "request was not authenticated", nil))
			return
		}

		raw := c.Param(param)
		if raw == "" {
			raw = c.Query(param)
		}
		if err := g.AuthorizeUserScope(c.Request.Context(), p, raw); err != nil {
			AbortWithFailure(c, err)
			return
		}
		c.Next()
	}
}

// RequireOwner checks ownership of the resource addressed by the request before
// the handler runs. lookup builds the OwnerLookup from the route parameters.
func RequireOwner(g *Gate, lookup func(c *gin.Context) OwnerLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c.Request.Context())
		if !ok {
			AbortWithFailure(c, NewAuthFailure(KindMissingHeader, "request was not authenticated", nil))
			return
		}

		if err := g.AuthorizeOwner(c.Request.Context(), p, lookup(c)); err != nil {
			AbortWithFailure(c, err)
			return
		}
		c.Next()
	}
}
