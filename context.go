package famguard

import (
	"context"

	"github.com/famguard/famguard/fingerprint"
)

type userAgentContextKey struct{}
type clientIPContextKey struct{}
type acceptLanguageContextKey struct{}
type acceptEncodingContextKey struct{}

// WithUserAgent attaches the HTTP User-Agent string to ctx. It is one
// of the signals hashed into the device identifier refresh tokens are
// bound to.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// WithClientIP attaches the caller's source IP to ctx for device
// binding and audit logging.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithAcceptLanguage attaches the Accept-Language header value to ctx.
func WithAcceptLanguage(ctx context.Context, value string) context.Context {
	return context.WithValue(ctx, acceptLanguageContextKey{}, value)
}

// WithAcceptEncoding attaches the Accept-Encoding header value to ctx.
func WithAcceptEncoding(ctx context.Context, value string) context.Context {
	return context.WithValue(ctx, acceptEncodingContextKey{}, value)
}

func signalsFromContext(ctx context.Context) fingerprint.Signals {
	if ctx == nil {
		return fingerprint.Signals{}
	}

	ua, _ := ctx.Value(userAgentContextKey{}).(string)
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	lang, _ := ctx.Value(acceptLanguageContextKey{}).(string)
	enc, _ := ctx.Value(acceptEncodingContextKey{}).(string)

	return fingerprint.Signals{
		UserAgent:      ua,
		IP:             ip,
		AcceptLanguage: lang,
		AcceptEncoding: enc,
	}
}
