package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	famguard "github.com/famguard/famguard"
)

type authResultContextKey struct{}

// AuthResultFromContext retrieves the validation result injected by
// [Guard].
func AuthResultFromContext(ctx context.Context) (*famguard.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*famguard.AuthResult)
	return res, ok
}

// Guard returns middleware that rejects requests without a valid
// bearer access token. Client signals from the request are attached to
// the context first, so revocation and device checks see the same
// identity the engine would bind new tokens to.
func Guard(engine *famguard.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := WithRequestSignals(r.Context(), r)
			res, err := engine.ValidateAccess(ctx, token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithRequestSignals copies the fingerprint signals from an HTTP
// request onto the context in the form the engine expects.
func WithRequestSignals(ctx context.Context, r *http.Request) context.Context {
	ctx = famguard.WithUserAgent(ctx, r.UserAgent())
	ctx = famguard.WithClientIP(ctx, clientIP(r))
	ctx = famguard.WithAcceptLanguage(ctx, r.Header.Get("Accept-Language"))
	ctx = famguard.WithAcceptEncoding(ctx, r.Header.Get("Accept-Encoding"))
	return ctx
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
