package main

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"github.com/mr-shifu/pkc-lib/core/elgamal"
	"github.com/mr-shifu/pkc-lib/core/rsa"
	cs_elgamal "github.com/mr-shifu/pkc-lib/pkg/common/cryptosuite/elgamal"
	cs_rsa "github.com/mr-shifu/pkc-lib/pkg/common/cryptosuite/rsa"
	sw_elgamal "github.com/mr-shifu/pkc-lib/pkg/cryptosuite/sw/elgamal"
	sw_rsa "github.com/mr-shifu/pkc-lib/pkg/cryptosuite/sw/rsa"
	"github.com/pkg/errors"
)

const (
	algRSA     = "rsa"
	algElGamal = "elgamal"
)

var errBadKeyFile = errors.New("pkc: malformed key file")

// keyFile is the JSON export of a key. PublicKey is the raw public encoding;
// Key is the hex of the key manager record and is omitted from public exports.
type keyFile struct {
	Algorithm string `json:"algorithm"`
	Bits      int    `json:"bits"`
	SKI       string `json:"ski"`
	PublicKey string `json:"public_key"`
	Key       string `json:"key,omitempty"`
	CreatedAt string `json:"created_at"`
}

type exportable interface {
	Bytes() ([]byte, error)
	SKI() []byte
	Private() bool
}

func newKeyFile(alg string, bits int, k exportable, pubRaw []byte, now time.Time) (*keyFile, error) {
	kf := &keyFile{
		Algorithm: alg,
		Bits:      bits,
		SKI:       hex.EncodeToString(k.SKI()),
		PublicKey: hex.EncodeToString(pubRaw),
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
	if k.Private() {
		kb, err := k.Bytes()
		if err != nil {
			return nil, err
		}
		kf.Key = hex.EncodeToString(kb)
	}
	return kf, nil
}

func rsaKeyFiles(k cs_rsa.RSAKey, now time.Time) (priv, pub *keyFile, err error) {
	raw, err := k.PublicKeyRaw().MarshalRaw()
	if err != nil {
		return nil, nil, err
	}
	if priv, err = newKeyFile(algRSA, k.Bits(), k, raw, now); err != nil {
		return nil, nil, err
	}
	if pub, err = newKeyFile(algRSA, k.Bits(), k.PublicKey(), raw, now); err != nil {
		return nil, nil, err
	}
	return priv, pub, nil
}

func elgamalKeyFiles(k cs_elgamal.ElgamalKey, now time.Time) (priv, pub *keyFile, err error) {
	raw, err := k.PublicKeyRaw().MarshalRaw()
	if err != nil {
		return nil, nil, err
	}
	bits := k.Params().BitLen()
	if priv, err = newKeyFile(algElGamal, bits, k, raw, now); err != nil {
		return nil, nil, err
	}
	if pub, err = newKeyFile(algElGamal, bits, k.PublicKey(), raw, now); err != nil {
		return nil, nil, err
	}
	return priv, pub, nil
}

func (kf *keyFile) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func readKeyFile(path string) (*keyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	kf := &keyFile{}
	if err := json.Unmarshal(data, kf); err != nil {
		return nil, errors.WithMessage(errBadKeyFile, err.Error())
	}
	return kf, nil
}

// importSource returns what a key manager's ImportKey accepts: the stored
// record when there is one, and otherwise a key built from the raw public
// encoding.
func (kf *keyFile) importSource() (interface{}, error) {
	if kf.Key != "" {
		kb, err := hex.DecodeString(kf.Key)
		if err != nil {
			return nil, errors.WithMessage(errBadKeyFile, "key is not hex")
		}
		return kb, nil
	}

	raw, err := hex.DecodeString(kf.PublicKey)
	if err != nil {
		return nil, errors.WithMessage(errBadKeyFile, "public_key is not hex")
	}
	switch kf.Algorithm {
	case algRSA:
		pub, err := rsa.ParsePublicKeyRaw(raw)
		if err != nil {
			return nil, err
		}
		return sw_rsa.NewRSAKey(pub, nil)
	case algElGamal:
		pub, err := elgamal.ParsePublicKeyRaw(raw)
		if err != nil {
			return nil, err
		}
		if err := pub.Params().Validate(); err != nil {
			return nil, err
		}
		return sw_elgamal.NewElgamalKey(pub, nil)
	}
	return nil, errors.WithMessagef(errBadKeyFile, "unknown algorithm %q", kf.Algorithm)
}
