package rsa

import (
	"context"
	"io"
	"math/big"

	"github.com/mr-shifu/pkc-lib/core/math/arith"
	"github.com/mr-shifu/pkc-lib/core/math/prime"
	"github.com/mr-shifu/pkc-lib/pkg/logging"
	"github.com/pkg/errors"
)

const (
	DefaultPublicExponent = 65537
	DefaultCertainty      = prime.DefaultCertainty
	// MinBits is the smallest modulus GenerateKey produces.
	MinBits = 32
)

var ErrInvalidConfig = errors.New("rsa: invalid key generation config")

// Config controls GenerateKey. Zero fields take their defaults.
type Config struct {
	Bits           int
	PublicExponent int
	Certainty      int
	Logger         logging.Logger
}

func (c Config) withDefaults() (Config, error) {
	if c.PublicExponent == 0 {
		c.PublicExponent = DefaultPublicExponent
	}
	if c.Certainty == 0 {
		c.Certainty = DefaultCertainty
	}
	c.Logger = logging.OrDiscard(c.Logger)
	if c.Bits < MinBits {
		return c, errors.WithMessagef(ErrInvalidConfig, "rsa: modulus of %d bits is too small", c.Bits)
	}
	if c.PublicExponent < 3 || c.PublicExponent%2 == 0 {
		return c, errors.WithMessage(ErrInvalidConfig, "rsa: public exponent must be odd and at least 3")
	}
	return c, nil
}

// KeyPair is the result of GenerateKey.
type KeyPair struct {
	Public  *PublicKey
	Private *PrivateKey
}

// GenerateKey returns a key pair whose modulus has exactly cfg.Bits bits. The
// search runs until it succeeds or ctx is done.
func GenerateKey(ctx context.Context, rng io.Reader, cfg Config) (*KeyPair, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, prime.ErrNoRandom
	}
	log := cfg.Logger.With("bits", cfg.Bits)
	e := big.NewInt(int64(cfg.PublicExponent))
	k1 := cfg.Bits / 2
	k2 := cfg.Bits - k1

	for attempt := 1; ; attempt++ {
		p, err := prime.Random(ctx, rng, k1, cfg.Certainty)
		if err != nil {
			return nil, errors.WithMessage(err, "rsa: failed to generate p")
		}
		q, err := prime.Random(ctx, rng, k2, cfg.Certainty)
		if err != nil {
			return nil, errors.WithMessage(err, "rsa: failed to generate q")
		}
		n := new(big.Int).Mul(p, q)
		if p.Cmp(q) == 0 || n.BitLen() != cfg.Bits {
			log.Debug(ctx, "rsa: prime pair rejected", "attempt", attempt, "reason", "modulus length")
			arith.ZeroizeInt(p)
			arith.ZeroizeInt(q)
			continue
		}

		phi := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))
		d := new(big.Int).ModInverse(e, phi)
		arith.ZeroizeInt(phi)
		if d == nil {
			log.Debug(ctx, "rsa: prime pair rejected", "attempt", attempt, "reason", "e not coprime to φ")
			arith.ZeroizeInt(p)
			arith.ZeroizeInt(q)
			continue
		}
		u := new(big.Int).ModInverse(q, p)
		if u == nil {
			return nil, errors.WithMessage(ErrNotInvertible, "rsa: CRT coefficient")
		}

		priv, err := NewPrivateKey(n, d, p, q, u)
		if err != nil {
			return nil, err
		}
		priv = priv.WithPublicExponent(e)
		for _, x := range []*big.Int{d, p, q, u} {
			arith.ZeroizeInt(x)
		}
		pub, err := NewPublicKey(n, e)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "rsa: key generated", "attempts", attempt, logging.Redacted("d"))
		return &KeyPair{Public: pub, Private: priv}, nil
	}
}
