package staticregistry

import (
	"context"
	"encoding/hex"
	"fmt"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/swaplock/swapd/internal/core/ports"
)

// registry is a fixed allow-list of resolver addresses loaded at startup.
// Addresses must be hex-encoded compressed secp256k1 public keys so that a
// typo in the config surfaces at boot instead of at swap time.
type registry struct {
	resolvers map[string]struct{}
}

func NewResolverRegistry(resolvers []string) (ports.ResolverRegistry, error) {
	allowed := make(map[string]struct{}, len(resolvers))
	for _, addr := range resolvers {
		buf, err := hex.DecodeString(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid resolver address %s: %s", addr, err)
		}
		if _, err := secp256k1.ParsePubKey(buf); err != nil {
			return nil, fmt.Errorf("invalid resolver pubkey %s: %s", addr, err)
		}
		allowed[addr] = struct{}{}
	}
	return &registry{allowed}, nil
}

func (r *registry) IsActiveResolver(_ context.Context, addr string) bool {
	_, ok := r.resolvers[addr]
	return ok
}
