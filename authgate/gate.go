package authgate

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// OwnerLookup fetches the owning user id of the resource a request targets.
// It returns ErrOwnerNotFound (possibly wrapped) when the resource does not exist.
type OwnerLookup func(ctx context.Context) (int64, error)

// Gate is the single policy object every handler calls: Authenticate first,
// then one of the authorize methods. It is safe for concurrent use.
type Gate struct {
	cfg      *Config
	resolver *Resolver
}

// New builds a gate from cfg
func New(cfg *Config) *Gate {
	return &Gate{
		cfg:      cfg,
		resolver: NewResolver(NewVerifier(cfg)),
	}
}

// Config returns the gate configuration
func (g *Gate) Config() *Config {
	return g.cfg
}

// Authenticate resolves the Authorization header into a Principal
func (g *Gate) Authenticate(ctx context.Context, header string) (Principal, error) {
	start := g.cfg.now()
	p, err := g.resolver.Resolve(header)
	latency := g.cfg.now().Sub(start)

	g.cfg.metrics.observeAuthentication(err, latency)
	if err != nil {
		g.logAuthFailure(ctx, header, err, latency)
		return Principal{}, err
	}
	g.logAuthSuccess(ctx, p, header, latency)
	return p, nil
}

// AuthorizeOwner fetches the resource owner through lookup and checks it against p
func (g *Gate) AuthorizeOwner(ctx context.Context, p Principal, lookup OwnerLookup) error {
	if lookup == nil {
		return g.finishAuthorize(ctx, p, 0, NewAuthFailure(KindDependencyUnavailable, "no owner lookup configured", nil))
	}

	owner, err := lookup(ctx)
	if err != nil {
		if errors.Is(err, ErrOwnerNotFound) {
			return g.finishAuthorize(ctx, p, 0, NewAuthFailure(KindResourceNotFound, "resource not found", err))
		}
		return g.finishAuthorize(ctx, p, 0, NewAuthFailure(KindDependencyUnavailable, "owner lookup failed", err))
	}

	return g.finishAuthorize(ctx, p, owner, g.cfg.authorizer.Authorize(ctx, p, owner))
}

// AuthorizeUserScope checks a user id taken from a path or query parameter of a
// list endpoint. A mismatch is always FORBIDDEN.
func (g *Gate) AuthorizeUserScope(ctx context.Context, p Principal, rawUserID string) error {
	userID, err := parseUserScope(rawUserID)
	if err != nil {
		return g.finishAuthorize(ctx, p, 0, err)
	}
	return g.finishAuthorize(ctx, p, userID, g.cfg.authorizer.Authorize(ctx, p, userID))
}

// OwnerForCreate returns the owner id a newly created resource must carry.
// Owner ids supplied by the client are never used.
func (g *Gate) OwnerForCreate(p Principal) (int64, error) {
	if p.IsZero() {
		return 0, NewAuthFailure(KindMissingHeader, "create requires an authenticated principal", nil)
	}
	return p.userID, nil
}

func (g *Gate) finishAuthorize(ctx context.Context, p Principal, owner int64, err error) error {
	g.cfg.metrics.observeAuthorization(err)
	if g.cfg.Logger() == nil {
		return err
	}

	event := SecurityEvent{
		EventType: "success",
		Stage:     stageAuthorize,
		Timestamp: g.cfg.now(),
		RequestID: requestIDOf(ctx),
		UserID:    p.String(),
	}
	if owner != 0 {
		event.OwnerUserID = strconv.FormatInt(owner, 10)
	}
	if err != nil {
		event.EventType = "failure"
		event.FailureReason = string(KindOf(err))
	}
	logSecurityEvent(g.cfg.Logger(), event)
	return err
}

// logAuthSuccess logs a successful authentication event
func (g *Gate) logAuthSuccess(ctx context.Context, p Principal, header string, latency time.Duration) {
	if g.cfg.Logger() == nil {
		return
	}

	event := SecurityEvent{
		EventType:    "success",
		Stage:        stageAuthenticate,
		Timestamp:    g.cfg.now(),
		RequestID:    requestIDOf(ctx),
		UserID:       p.String(),
		TokenPreview: tokenPreview(header),
		Latency:      latency,
	}

	logSecurityEvent(g.cfg.Logger(), event)
}

// logAuthFailure logs a failed authentication event. The subject is decoded
// without verification purely so operators can correlate failures.
func (g *Gate) logAuthFailure(ctx context.Context, header string, err error, latency time.Duration) {
	if g.cfg.Logger() == nil {
		return
	}

	token := tokenPreview(header)
	event := SecurityEvent{
		EventType:     "failure",
		Stage:         stageAuthenticate,
		Timestamp:     g.cfg.now(),
		RequestID:     requestIDOf(ctx),
		FailureReason: string(KindOf(err)),
		TokenPreview:  token,
		Latency:       latency,
	}
	if token != "" {
		if claims, decodeErr := Decode(token); decodeErr == nil {
			event.UntrustedSubject = claims.Subject
		}
	}

	logSecurityEvent(g.cfg.Logger(), event)
}

func tokenPreview(header string) string {
	token, err := tokenFromHeader(header)
	if err != nil {
		return ""
	}
	return token
}

func requestIDOf(ctx context.Context) string {
	id, _ := RequestIDFrom(ctx)
	return id
}
