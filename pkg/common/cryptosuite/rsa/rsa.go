package rsa

import (
	"context"

	core_hash "github.com/mr-shifu/pkc-lib/core/hash"
	core_rsa "github.com/mr-shifu/pkc-lib/core/rsa"
	"github.com/mr-shifu/pkc-lib/pkg/common/keyopts"
)

type RSAKey interface {
	// Bytes returns the byte representation of the key.
	Bytes() ([]byte, error)

	// SKI returns the serialized key identifier.
	SKI() []byte

	// Private returns true if the key is private.
	Private() bool

	// PublicKey returns the corresponding public key part of RSA Key.
	PublicKey() RSAKey

	// PublicKeyRaw returns the underlying RSA public key.
	PublicKeyRaw() *core_rsa.PublicKey

	// Bits returns the modulus length in bits.
	Bits() int

	// Sign returns the PKCS#1 v1.5 signature of msg digested with alg.
	Sign(alg core_hash.Algorithm, msg []byte) ([]byte, error)

	// Verify reports whether sig is a valid signature of msg.
	Verify(alg core_hash.Algorithm, msg, sig []byte) bool

	// Encrypt applies the public transform to a modulus-sized block.
	Encrypt(block []byte) ([]byte, error)

	// Decrypt applies the private transform to a modulus-sized block.
	Decrypt(block []byte) ([]byte, error)
}

type RSAKeyManager interface {
	// GenerateKey generates a new RSA key pair.
	GenerateKey(ctx context.Context, opts keyopts.Options) (RSAKey, error)

	// ImportKey imports an RSA key from its byte representation or an RSAKey.
	ImportKey(raw interface{}, opts keyopts.Options) (RSAKey, error)

	// GetKey returns the RSA key bound to the key ID in opts.
	GetKey(opts keyopts.Options) (RSAKey, error)

	// DeleteKey removes the RSA key bound to the key ID in opts.
	DeleteKey(opts keyopts.Options) error

	// Sign signs msg with the key bound to the key ID in opts.
	Sign(alg core_hash.Algorithm, msg []byte, opts keyopts.Options) ([]byte, error)

	// Verify checks sig against the key bound to the key ID in opts.
	Verify(alg core_hash.Algorithm, msg, sig []byte, opts keyopts.Options) (bool, error)

	// Encrypt applies the public transform of the key bound to opts to block.
	Encrypt(block []byte, opts keyopts.Options) ([]byte, error)

	// Decrypt applies the private transform of the key bound to opts to block.
	Decrypt(block []byte, opts keyopts.Options) ([]byte, error)
}
