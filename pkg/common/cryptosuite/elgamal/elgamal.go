package elgamal

import (
	"context"
	"io"

	core_elgamal "github.com/mr-shifu/pkc-lib/core/elgamal"
	core_hash "github.com/mr-shifu/pkc-lib/core/hash"
	"github.com/mr-shifu/pkc-lib/pkg/common/keyopts"
)

type ElgamalKey interface {
	// Bytes returns the byte representation of the key.
	Bytes() ([]byte, error)

	// SKI returns the serialized key identifier.
	SKI() []byte

	// Private returns true if the key is private.
	Private() bool

	// PublicKey returns the corresponding public key part of Elgamal Key.
	PublicKey() ElgamalKey

	// PublicKeyRaw returns the underlying ElGamal public key.
	PublicKeyRaw() *core_elgamal.PublicKey

	// Params returns the group the key lives in.
	Params() *core_elgamal.Params

	// Encrypt returns the marshalled ciphertext of a message block.
	Encrypt(rng io.Reader, block []byte) ([]byte, error)

	// Decrypt recovers the message block of a marshalled ciphertext.
	Decrypt(ct []byte) ([]byte, error)

	// Sign returns the a‖b signature of msg digested with alg.
	Sign(rng io.Reader, alg core_hash.Algorithm, msg []byte) ([]byte, error)

	// Verify reports whether sig is a valid signature of msg.
	Verify(alg core_hash.Algorithm, msg, sig []byte) bool
}

type ElgamalKeyManager interface {
	// GenerateParams returns a group of the configured size.
	GenerateParams(ctx context.Context) (*core_elgamal.Params, error)

	// GenerateKey generates a new Elgamal key pair.
	GenerateKey(ctx context.Context, opts keyopts.Options) (ElgamalKey, error)

	// ImportKey imports an Elgamal key from its byte representation or an ElgamalKey.
	ImportKey(raw interface{}, opts keyopts.Options) (ElgamalKey, error)

	// GetKey returns the Elgamal key bound to the key ID in opts.
	GetKey(opts keyopts.Options) (ElgamalKey, error)

	// DeleteKey removes the Elgamal key bound to the key ID in opts.
	DeleteKey(opts keyopts.Options) error

	// Encrypt encrypts block under the key bound to opts.
	Encrypt(block []byte, opts keyopts.Options) ([]byte, error)

	// Decrypt decrypts ct with the key bound to opts.
	Decrypt(ct []byte, opts keyopts.Options) ([]byte, error)

	// Sign signs msg with the key bound to opts.
	Sign(alg core_hash.Algorithm, msg []byte, opts keyopts.Options) ([]byte, error)

	// Verify checks sig against the key bound to opts.
	Verify(alg core_hash.Algorithm, msg, sig []byte, opts keyopts.Options) (bool, error)
}
