package domain

import (
	"bytes"
	"crypto/sha256"
	"fmt"
)

// SecretHashSize is the length of a committed secret hash. The protocol digest
// is sha256, on both legs of a swap.
const SecretHashSize = 32

// Hashlock is the cryptographic commitment guarding an escrow. It stores the
// digest of a secret and verifies candidate secrets by re-hashing. It keeps no
// replay state: replay prevention comes from the escrow being consumed on the
// first successful withdrawal.
type Hashlock struct {
	Digest []byte
}

func NewHashlock(digest []byte) (Hashlock, error) {
	if len(digest) != SecretHashSize {
		return Hashlock{}, fmt.Errorf(
			"%w: must be exactly %d bytes, got %d",
			ErrInvalidHash, SecretHashSize, len(digest),
		)
	}
	buf := make([]byte, SecretHashSize)
	copy(buf, digest)
	return Hashlock{Digest: buf}, nil
}

// Verify re-hashes the candidate secret and compares it against the committed
// digest. It is deterministic and side-effect free.
func (h Hashlock) Verify(secret []byte) error {
	if len(secret) == 0 {
		return fmt.Errorf("%w: empty secret", ErrInvalidSecret)
	}
	if !bytes.Equal(HashSecret(secret), h.Digest) {
		return fmt.Errorf("%w: secret does not match committed hash", ErrInvalidSecret)
	}
	return nil
}

// HashSecret computes the protocol digest of a secret.
func HashSecret(secret []byte) []byte {
	digest := sha256.Sum256(secret)
	return digest[:]
}
