package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
	"github.com/vagaflow/vagaflow/internal/shared"
)

// Middleware resolves the current identity from the session cookie or a
// bearer token and stores it in the request context.
type Middleware struct {
	Service *Service
	Tokens  *TokenIssuer
	Logger  *slog.Logger
}

// RequireUser rejects requests that carry no resolvable identity.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.currentUserID(r)
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		ident, err := m.Service.Resolve(r.Context(), userID)
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), ident)))
	})
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		raw := strings.TrimSpace(sess.User())
		if raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err == nil {
				return id, true
			}
			if m.Logger != nil {
				m.Logger.Error("auth parse session user id", slog.String("value", raw))
			}
		}
	}
	if m.Tokens != nil {
		header := r.Header.Get("Authorization")
		if raw, found := strings.CutPrefix(header, "Bearer "); found {
			id, err := m.Tokens.Verify(strings.TrimSpace(raw))
			if err == nil {
				return id, true
			}
			if m.Logger != nil {
				m.Logger.Warn("auth bearer token rejected", slog.Any("error", err))
			}
		}
	}
	return 0, false
}
