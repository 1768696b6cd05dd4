package ports

import "context"

// ResolverRegistry answers whether an address belongs to an active, whitelisted
// resolver. Pure query, no side effects.
type ResolverRegistry interface {
	IsActiveResolver(ctx context.Context, addr string) bool
}
