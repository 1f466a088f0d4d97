package auth

import "context"

type contextKey string

const contextKeySubject contextKey = "subject"

// WithSubject stores the verified token subject on the context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, contextKeySubject, subject)
}

// SubjectFromContext returns the verified token subject, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(contextKeySubject).(string)
	return s, ok && s != ""
}
