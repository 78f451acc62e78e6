package util

import (
	"context"
)

type contextKey int

const (
	ipContextKey contextKey = iota
	userIDContextKey
)

// SetIPContext returns a copy of ctx carrying the client IP
func SetIPContext(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, ipContextKey, ip)
}

// GetIPFromContext extracts the client IP address from the context
func GetIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ipContextKey).(string); ok {
		return ip
	}
	return ""
}

// SetUserIDContext returns a copy of ctx carrying the authenticated user id
func SetUserIDContext(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDContextKey, userID)
}

// GetUserIDFromContext extracts the authenticated user id from the context
func GetUserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDContextKey).(string); ok {
		return id
	}
	return ""
}
