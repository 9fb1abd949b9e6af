package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mr-shifu/pkc-lib/core/elgamal"
	"github.com/mr-shifu/pkc-lib/core/hash"
	"github.com/mr-shifu/pkc-lib/core/math/prime"
	"github.com/mr-shifu/pkc-lib/core/rsa"
	sw_elgamal "github.com/mr-shifu/pkc-lib/pkg/cryptosuite/sw/elgamal"
	sw_rsa "github.com/mr-shifu/pkc-lib/pkg/cryptosuite/sw/rsa"
	com_keyopts "github.com/mr-shifu/pkc-lib/pkg/common/keyopts"
	"github.com/mr-shifu/pkc-lib/pkg/keyopts"
	"github.com/mr-shifu/pkc-lib/pkg/keystore"
	"github.com/pkg/errors"
)

// cliKeyID names the one key each invocation imports into its key manager.
const cliKeyID = "cli"

func rsaKeygen(ctx context.Context, e *env, args []string) error {
	var (
		c         common
		bits      int
		exponent  int
		certainty int
		publicOut string
	)
	fs := newFlagSet(e, "rsa-keygen")
	c.register(fs)
	fs.IntVar(&bits, "bits", sw_rsa.DefaultBits, "modulus length in bits")
	fs.IntVar(&exponent, "e", rsa.DefaultPublicExponent, "public exponent")
	fs.IntVar(&certainty, "certainty", prime.DefaultCertainty, "primality certainty")
	fs.StringVar(&publicOut, "public-out", "", "also write the public key to this file")
	if err := parse(fs, args); err != nil {
		return err
	}

	ctx, cancel := c.context(ctx)
	defer cancel()

	mgr := newRSAManager(&sw_rsa.Config{
		Bits:           bits,
		PublicExponent: exponent,
		Certainty:      certainty,
		Rand:           c.rand(),
		Logger:         c.logger(e),
	})
	k, err := mgr.GenerateKey(ctx, nil)
	if err != nil {
		return err
	}

	priv, pub, err := rsaKeyFiles(k, e.now())
	if err != nil {
		return err
	}
	return writeKeyFiles(e, c.out, publicOut, priv, pub)
}

// groupFlags select an ElGamal group: a size, a search mode and an optional
// table of known groups.
type groupFlags struct {
	bits      int
	mode      string
	certainty int
	tablePath string

	table elgamal.ParamTable
}

func (g *groupFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&g.bits, "bits", sw_elgamal.DefaultBits, "bit length of p")
	fs.StringVar(&g.mode, "mode", prime.Plain.String(), "prime search: plain, strong or germain")
	fs.IntVar(&g.certainty, "certainty", prime.DefaultCertainty, "primality certainty")
	fs.StringVar(&g.tablePath, "table", "", "YAML parameter table consulted before generating")
}

func (g *groupFlags) manager(c *common, e *env) (*sw_elgamal.ElgamalKeyManager, error) {
	mode, err := prime.ParseMode(g.mode)
	if err != nil {
		return nil, errors.WithMessage(errUsage, err.Error())
	}
	if g.table, err = loadTable(g.tablePath); err != nil {
		return nil, err
	}
	return newElgamalManager(&sw_elgamal.Config{
		Bits:      g.bits,
		Certainty: g.certainty,
		Mode:      mode,
		Params:    g.table,
		Rand:      c.rand(),
		Logger:    c.logger(e),
	}), nil
}

func elgamalParams(ctx context.Context, e *env, args []string) error {
	var (
		c common
		g groupFlags
	)
	fs := newFlagSet(e, "elgamal-params")
	c.register(fs)
	g.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	mgr, err := g.manager(&c, e)
	if err != nil {
		return err
	}

	ctx, cancel := c.context(ctx)
	defer cancel()

	pp, err := mgr.GenerateParams(ctx)
	if err != nil {
		return err
	}

	g.table[pp.BitLen()] = pp
	data, err := encodeTable(g.table)
	if err != nil {
		return err
	}
	c.logger(e).Info(ctx, "pkc: parameter table updated", "sizes", tableSizes(g.table))
	return writeOutput(e, c.out, data)
}

func elgamalKeygen(ctx context.Context, e *env, args []string) error {
	var (
		c         common
		g         groupFlags
		publicOut string
	)
	fs := newFlagSet(e, "elgamal-keygen")
	c.register(fs)
	g.register(fs)
	fs.StringVar(&publicOut, "public-out", "", "also write the public key to this file")
	if err := parse(fs, args); err != nil {
		return err
	}

	mgr, err := g.manager(&c, e)
	if err != nil {
		return err
	}

	ctx, cancel := c.context(ctx)
	defer cancel()

	k, err := mgr.GenerateKey(ctx, nil)
	if err != nil {
		return err
	}

	priv, pub, err := elgamalKeyFiles(k, e.now())
	if err != nil {
		return err
	}
	return writeKeyFiles(e, c.out, publicOut, priv, pub)
}

// messageFlags select the digest and the message of sign and verify.
type messageFlags struct {
	keyPath string
	alg     string
	message string
	inPath  string
}

func (m *messageFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&m.keyPath, "key", "", "key file written by a keygen command")
	fs.StringVar(&m.alg, "alg", hash.SHA256.String(), "digest: MD2, MD5, SHA-1, RIPEMD-160, SHA-256 or SHA3-256")
	fs.StringVar(&m.message, "message", "", "message to sign or verify")
	fs.StringVar(&m.inPath, "in", "", "read the message from this file")
}

func (m *messageFlags) load() (*keyFile, hash.Algorithm, []byte, error) {
	if m.keyPath == "" {
		return nil, 0, nil, errors.WithMessage(errUsage, "-key is required")
	}
	if (m.message == "") == (m.inPath == "") {
		return nil, 0, nil, errors.WithMessage(errUsage, "exactly one of -message and -in is required")
	}
	alg, err := hash.Parse(m.alg)
	if err != nil {
		return nil, 0, nil, errors.WithMessage(errUsage, err.Error())
	}
	kf, err := readKeyFile(m.keyPath)
	if err != nil {
		return nil, 0, nil, err
	}
	msg := []byte(m.message)
	if m.inPath != "" {
		if msg, err = os.ReadFile(m.inPath); err != nil {
			return nil, 0, nil, err
		}
	}
	return kf, alg, msg, nil
}

// signer is the part of a key manager that sign and verify use.
type signer interface {
	Sign(alg hash.Algorithm, msg []byte, opts com_keyopts.Options) ([]byte, error)
	Verify(alg hash.Algorithm, msg, sig []byte, opts com_keyopts.Options) (bool, error)
}

var (
	_ signer = (*sw_rsa.RSAKeyManager)(nil)
	_ signer = (*sw_elgamal.ElgamalKeyManager)(nil)
)

// loadSigner imports the key file into a fresh key manager of its algorithm.
func loadSigner(kf *keyFile) (signer, keyopts.Options, error) {
	src, err := kf.importSource()
	if err != nil {
		return nil, nil, err
	}
	opts, err := keyopts.NewOptions(keyopts.IDKey, cliKeyID)
	if err != nil {
		return nil, nil, err
	}

	switch kf.Algorithm {
	case algRSA:
		mgr := newRSAManager(nil)
		if _, err := mgr.ImportKey(src, opts); err != nil {
			return nil, nil, err
		}
		return mgr, opts, nil
	case algElGamal:
		mgr := newElgamalManager(nil)
		if _, err := mgr.ImportKey(src, opts); err != nil {
			return nil, nil, err
		}
		return mgr, opts, nil
	}
	return nil, nil, errors.WithMessagef(errBadKeyFile, "unknown algorithm %q", kf.Algorithm)
}

func sign(ctx context.Context, e *env, args []string) error {
	var (
		m   messageFlags
		out string
	)
	fs := newFlagSet(e, "sign")
	m.register(fs)
	fs.StringVar(&out, "out", "", "write the hex signature to this file instead of stdout")
	if err := parse(fs, args); err != nil {
		return err
	}

	kf, alg, msg, err := m.load()
	if err != nil {
		return err
	}
	s, opts, err := loadSigner(kf)
	if err != nil {
		return err
	}
	sig, err := s.Sign(alg, msg, opts)
	if err != nil {
		return err
	}
	return writeOutput(e, out, []byte(hex.EncodeToString(sig)+"\n"))
}

func verify(ctx context.Context, e *env, args []string) error {
	var (
		m   messageFlags
		sig string
	)
	fs := newFlagSet(e, "verify")
	m.register(fs)
	fs.StringVar(&sig, "sig", "", "hex signature, or @file to read it from a file")
	if err := parse(fs, args); err != nil {
		return err
	}
	if sig == "" {
		return errors.WithMessage(errUsage, "-sig is required")
	}

	kf, alg, msg, err := m.load()
	if err != nil {
		return err
	}
	if strings.HasPrefix(sig, "@") {
		data, err := os.ReadFile(sig[1:])
		if err != nil {
			return err
		}
		sig = string(data)
	}
	sigBytes, err := hex.DecodeString(strings.TrimSpace(sig))
	if err != nil {
		return errors.WithMessage(errUsage, "-sig is not hex")
	}

	s, opts, err := loadSigner(kf)
	if err != nil {
		return err
	}
	ok, err := s.Verify(alg, msg, sigBytes, opts)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(e.stdout, "invalid")
		return errInvalidSignature
	}
	fmt.Fprintln(e.stdout, "valid")
	return nil
}

func newRSAManager(cfg *sw_rsa.Config) *sw_rsa.RSAKeyManager {
	return sw_rsa.NewRSAKeyManager(keystore.InmemoryKeystoreFactory{}.NewKeystore(nil), cfg)
}

func newElgamalManager(cfg *sw_elgamal.Config) *sw_elgamal.ElgamalKeyManager {
	return sw_elgamal.NewElgamalKeyManager(keystore.InmemoryKeystoreFactory{}.NewKeystore(nil), cfg)
}

func writeKeyFiles(e *env, out, publicOut string, priv, pub *keyFile) error {
	data, err := priv.marshal()
	if err != nil {
		return err
	}
	if err := writeOutput(e, out, data); err != nil {
		return err
	}
	if publicOut == "" {
		return nil
	}
	data, err = pub.marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(publicOut, data, 0o644)
}
