// Package operator carries the identity of the person performing a stock
// operation through a request context.
package operator

import "context"

// Default is recorded on transactions when no operator is known.
const Default = "system"

type ctxKey struct{}

func NewContext(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxKey{}, name)
}

func FromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ctxKey{}).(string)
	return name, ok && name != ""
}

// Resolve returns the operator in ctx, then explicit, then Default. An
// authenticated caller cannot book a change under another name.
func Resolve(ctx context.Context, explicit string) string {
	if name, ok := FromContext(ctx); ok {
		return name
	}
	if explicit != "" {
		return explicit
	}
	return Default
}
