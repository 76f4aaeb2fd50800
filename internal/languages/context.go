package languages

import "context"

type contextKey string

const activeLanguageKey contextKey = "modeltrans.active_language"

// WithActive returns a context carrying the caller's active language. The
// value is advisory: resolution falls back to the configured default when
// the carried code is not an available language.
func WithActive(ctx context.Context, code string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if code == "" {
		return ctx
	}
	return context.WithValue(ctx, activeLanguageKey, code)
}

// ActiveFromContext extracts the active language carried by ctx, or "".
func ActiveFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	code, _ := ctx.Value(activeLanguageKey).(string)
	return code
}
