package handlers

import "context"

type ctxKey int

const requestMetaKey ctxKey = iota

// RequestMeta describes the caller of the current request.
type RequestMeta struct {
	ClientID  string
	ClientIP  string
	UserAgent string
	Referrer  string
}

func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey, meta)
}

// RequestMetaFromContext returns the zero RequestMeta when none was attached.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey).(RequestMeta)

	return meta
}
