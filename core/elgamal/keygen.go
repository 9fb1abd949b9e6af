package elgamal

import (
	"context"
	"io"
	"math/big"

	"github.com/mr-shifu/pkc-lib/core/math/arith"
	"github.com/mr-shifu/pkc-lib/core/math/prime"
	"github.com/mr-shifu/pkc-lib/core/math/sample"
	"github.com/mr-shifu/pkc-lib/pkg/logging"
	"github.com/pkg/errors"
)

var ErrInvalidConfig = errors.New("elgamal: invalid generation config")

// Config controls GenerateParams and GenerateKey.
type Config struct {
	Bits      int
	Certainty int
	Mode      prime.Mode
	// Params short-circuits group generation for the bit lengths it lists.
	Params ParamTable
	Logger logging.Logger
}

func (c Config) withDefaults() (Config, error) {
	if c.Certainty == 0 {
		c.Certainty = prime.DefaultCertainty
	}
	c.Logger = logging.OrDiscard(c.Logger)
	if c.Bits < MinPrimeBits {
		return c, errors.WithMessagef(ErrInvalidConfig, "elgamal: %d bits is below the %d bit minimum", c.Bits, MinPrimeBits)
	}
	return c, nil
}

// KeyPair is the result of GenerateKey.
type KeyPair struct {
	Public  *PublicKey
	Private *PrivateKey
}

// GenerateParams returns the table entry for cfg.Bits when there is one, and
// otherwise searches for a new prime in cfg.Mode and a generator for it.
func GenerateParams(ctx context.Context, rng io.Reader, cfg Config) (*Params, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	log := cfg.Logger.With("bits", cfg.Bits, "mode", cfg.Mode.String())
	if pp, ok := cfg.Params.Lookup(cfg.Bits); ok {
		log.Debug(ctx, "elgamal: using tabulated params")
		return pp, nil
	}

	p, factors, err := prime.ElGamal(ctx, rng, cfg.Bits, cfg.Certainty, cfg.Mode)
	if err != nil {
		return nil, errors.WithMessage(err, "elgamal: failed to generate prime")
	}
	g, err := FindGenerator(ctx, p, factors, rng)
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "elgamal: params generated", "factors", len(factors))
	return NewParams(p, g)
}

// GenerateKey picks a secret x uniformly in [2, p-2] in the group returned by
// GenerateParams.
func GenerateKey(ctx context.Context, rng io.Reader, cfg Config) (*KeyPair, error) {
	params, err := GenerateParams(ctx, rng, cfg)
	if err != nil {
		return nil, err
	}
	kp, err := GenerateKeyWithParams(rng, params)
	if err != nil {
		return nil, err
	}
	logging.OrDiscard(cfg.Logger).Info(ctx, "elgamal: key generated", "bits", params.BitLen(), logging.Redacted("x"))
	return kp, nil
}

// GenerateKeyWithParams picks a secret x uniformly in [2, p-2].
func GenerateKeyWithParams(rng io.Reader, params *Params) (*KeyPair, error) {
	if rng == nil {
		return nil, prime.ErrNoRandom
	}
	if params == nil {
		return nil, errors.WithMessage(ErrInvalidParams, "elgamal: missing params")
	}
	x, err := sample.IntRange(rng, two, new(big.Int).Sub(params.p, two))
	if err != nil {
		return nil, err
	}
	defer arith.ZeroizeInt(x)
	priv, err := NewPrivateKey(params, x)
	if err != nil {
		return nil, err
	}
	return &KeyPair{Public: priv.Public(), Private: priv}, nil
}
