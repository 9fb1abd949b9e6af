// Package hash names the message digests usable in PKCS#1 v1.5 signatures and
// carries the DER DigestInfo prefix of each one.
package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	gohash "hash"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
	"golang.org/x/crypto/sha3"
)

var (
	ErrUnknownAlgorithm  = errors.New("hash: unknown digest algorithm")
	ErrDigestUnavailable = errors.New("hash: no implementation registered for digest")
)

// Algorithm identifies a digest function.
type Algorithm int

const (
	MD2 Algorithm = iota + 1
	MD5
	SHA1
	RIPEMD160
	SHA256
	SHA3_256
)

type descriptor struct {
	name  string
	size  int
	algID []byte
	// nil when the standard library and x/crypto have no implementation
	newFn func() gohash.Hash
}

var (
	mu sync.RWMutex

	// DigestInfo prefixes: SEQUENCE { SEQUENCE { OID, NULL }, OCTET STRING len }
	table = map[Algorithm]*descriptor{
		MD2: {name: "MD2", size: 16, algID: []byte{
			0x30, 0x20, 0x30, 0x0c, 0x06, 0x08, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x02, 0x02, 0x05, 0x00, 0x04, 0x10,
		}},
		MD5: {name: "MD5", size: 16, newFn: md5.New, algID: []byte{
			0x30, 0x20, 0x30, 0x0c, 0x06, 0x08, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x02, 0x05, 0x05, 0x00, 0x04, 0x10,
		}},
		SHA1: {name: "SHA-1", size: 20, newFn: sha1.New, algID: []byte{
			0x30, 0x21, 0x30, 0x09, 0x06, 0x05, 0x2b, 0x0e, 0x03, 0x02, 0x1a, 0x05, 0x00, 0x04, 0x14,
		}},
		RIPEMD160: {name: "RIPEMD-160", size: 20, newFn: ripemd160.New, algID: []byte{
			0x30, 0x21, 0x30, 0x09, 0x06, 0x05, 0x2b, 0x24, 0x03, 0x02, 0x01, 0x05, 0x00, 0x04, 0x14,
		}},
		SHA256: {name: "SHA-256", size: 32, newFn: sha256.New, algID: []byte{
			0x30, 0x31, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x01, 0x05, 0x00, 0x04, 0x20,
		}},
		SHA3_256: {name: "SHA3-256", size: 32, newFn: sha3.New256, algID: []byte{
			0x30, 0x31, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x08, 0x05, 0x00, 0x04, 0x20,
		}},
	}
)

func lookup(a Algorithm) (*descriptor, error) {
	d, ok := table[a]
	if !ok {
		return nil, ErrUnknownAlgorithm
	}
	return d, nil
}

// Algorithms lists every known algorithm, available or not.
func Algorithms() []Algorithm {
	return []Algorithm{MD2, MD5, SHA1, RIPEMD160, SHA256, SHA3_256}
}

func (a Algorithm) String() string {
	mu.RLock()
	defer mu.RUnlock()
	if d, err := lookup(a); err == nil {
		return d.name
	}
	return "unknown"
}

// Parse maps a name such as "sha-256" or "SHA256" to its Algorithm.
func Parse(name string) (Algorithm, error) {
	norm := strings.ReplaceAll(strings.ToUpper(name), "-", "")
	mu.RLock()
	defer mu.RUnlock()
	for a, d := range table {
		if strings.ReplaceAll(d.name, "-", "") == norm {
			return a, nil
		}
	}
	return 0, errors.WithMessage(ErrUnknownAlgorithm, name)
}

// Size returns the digest length in bytes.
func (a Algorithm) Size() int {
	mu.RLock()
	defer mu.RUnlock()
	if d, err := lookup(a); err == nil {
		return d.size
	}
	return 0
}

// AlgorithmID returns a copy of the DER DigestInfo prefix that precedes the
// digest inside a PKCS#1 v1.5 signature block.
func (a Algorithm) AlgorithmID() ([]byte, error) {
	mu.RLock()
	defer mu.RUnlock()
	d, err := lookup(a)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(d.algID))
	copy(out, d.algID)
	return out, nil
}

// Available reports whether New can build a hasher for a.
func (a Algorithm) Available() bool {
	mu.RLock()
	defer mu.RUnlock()
	d, err := lookup(a)
	return err == nil && d.newFn != nil
}

// New returns a fresh hasher for a.
func (a Algorithm) New() (gohash.Hash, error) {
	mu.RLock()
	defer mu.RUnlock()
	d, err := lookup(a)
	if err != nil {
		return nil, err
	}
	if d.newFn == nil {
		return nil, errors.WithMessage(ErrDigestUnavailable, d.name)
	}
	return d.newFn(), nil
}

// Sum digests msg with a.
func (a Algorithm) Sum(msg []byte) ([]byte, error) {
	h, err := a.New()
	if err != nil {
		return nil, err
	}
	_, _ = h.Write(msg)
	return h.Sum(nil), nil
}

// Register installs the implementation of a known algorithm, replacing any
// previous one. It is how MD2 is supplied. The hasher must produce digests of
// a.Size() bytes.
func Register(a Algorithm, newFn func() gohash.Hash) error {
	mu.Lock()
	defer mu.Unlock()
	d, err := lookup(a)
	if err != nil {
		return err
	}
	if newFn == nil || newFn().Size() != d.size {
		return errors.WithMessage(ErrDigestUnavailable, "hash: digest size mismatch for "+d.name)
	}
	d.newFn = newFn
	return nil
}

// SKI derives a 32 byte subject key identifier from an encoded public key.
func SKI(publicRaw []byte) []byte {
	sum := blake3.Sum256(publicRaw)
	return sum[:]
}
