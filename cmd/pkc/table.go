package main

import (
	"encoding/hex"
	"math/big"
	"os"
	"sort"

	"github.com/mr-shifu/pkc-lib/core/elgamal"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var errBadTable = errors.New("pkc: malformed parameter table")

// tableFile is the YAML form of an elgamal.ParamTable:
//
//	params:
//	  1024:
//	    p: "ffff..."
//	    g: "02"
type tableFile struct {
	Params map[int]tableEntry `yaml:"params"`
}

type tableEntry struct {
	P string `yaml:"p"`
	G string `yaml:"g"`
}

func parseHexInt(s string) (*big.Int, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("empty value")
	}
	return new(big.Int).SetBytes(b), nil
}

// decodeTable parses a table and checks that every entry is keyed by the bit
// length of its p.
func decodeTable(data []byte) (elgamal.ParamTable, error) {
	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, errors.WithMessage(errBadTable, err.Error())
	}
	table := make(elgamal.ParamTable, len(tf.Params))
	for bits, entry := range tf.Params {
		p, err := parseHexInt(entry.P)
		if err != nil {
			return nil, errors.WithMessagef(errBadTable, "entry %d: p: %v", bits, err)
		}
		g, err := parseHexInt(entry.G)
		if err != nil {
			return nil, errors.WithMessagef(errBadTable, "entry %d: g: %v", bits, err)
		}
		pp, err := elgamal.NewParams(p, g)
		if err != nil {
			return nil, errors.WithMessagef(err, "pkc: table entry %d", bits)
		}
		if pp.BitLen() != bits {
			return nil, errors.WithMessagef(errBadTable, "entry %d holds a %d-bit prime", bits, pp.BitLen())
		}
		table[bits] = pp
	}
	return table, nil
}

func encodeTable(table elgamal.ParamTable) ([]byte, error) {
	tf := tableFile{Params: make(map[int]tableEntry, len(table))}
	for bits, pp := range table {
		tf.Params[bits] = tableEntry{
			P: hex.EncodeToString(pp.P().Bytes()),
			G: hex.EncodeToString(pp.G().Bytes()),
		}
	}
	return yaml.Marshal(&tf)
}

// loadTable reads a table file. An empty path yields an empty table.
func loadTable(path string) (elgamal.ParamTable, error) {
	if path == "" {
		return elgamal.ParamTable{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeTable(data)
}

func tableSizes(table elgamal.ParamTable) []int {
	sizes := make([]int, 0, len(table))
	for bits := range table {
		sizes = append(sizes, bits)
	}
	sort.Ints(sizes)
	return sizes
}
