// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package scval converts between native Go values and Soroban ScVal
// structures used as contract call arguments and return values.
package scval

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// Kind names the contract argument encodings supported by FromNative.
type Kind string

const (
	KindAddress Kind = "address"
	KindString  Kind = "string"
	KindI128    Kind = "i128"
	KindU32     Kind = "u32"
	KindSymbol  Kind = "symbol"
	KindAuto    Kind = ""
)

var (
	two128    = new(big.Int).Lsh(big.NewInt(1), 128)
	maxI128   = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128   = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	mask64    = new(big.Int).SetUint64(^uint64(0))
	errNilInt = errors.New("nil integer")
)

// Address encodes a G... account or C... contract strkey as an address value.
func Address(addr string) (xdr.ScVal, error) {
	scAddr, err := ScAddress(addr)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &scAddr}, nil
}

// ScAddress parses a strkey into an xdr.ScAddress.
func ScAddress(addr string) (xdr.ScAddress, error) {
	if addr == "" {
		return xdr.ScAddress{}, errors.New("empty address")
	}
	switch addr[0] {
	case 'G':
		var accountID xdr.AccountId
		if err := accountID.SetAddress(addr); err != nil {
			return xdr.ScAddress{}, errors.Wrapf(err, "invalid account address %s", addr)
		}
		return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeAccount, AccountId: &accountID}, nil
	case 'C':
		raw, err := strkey.Decode(strkey.VersionByteContract, addr)
		if err != nil {
			return xdr.ScAddress{}, errors.Wrapf(err, "invalid contract address %s", addr)
		}
		var contractID xdr.ContractId
		copy(contractID[:], raw)
		return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &contractID}, nil
	default:
		return xdr.ScAddress{}, errors.Errorf("unsupported address %s", addr)
	}
}

func String(s string) xdr.ScVal {
	str := xdr.ScString(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &str}
}

func Symbol(s string) xdr.ScVal {
	sym := xdr.ScSymbol(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}
}

func U32(v uint32) xdr.ScVal {
	u := xdr.Uint32(v)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}
}

// I128 encodes v as a two's complement signed 128-bit integer.
func I128(v *big.Int) (xdr.ScVal, error) {
	if v == nil {
		return xdr.ScVal{}, errNilInt
	}
	if v.Cmp(maxI128) > 0 || v.Cmp(minI128) < 0 {
		return xdr.ScVal{}, errors.Errorf("value %s overflows i128", v.String())
	}
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}
	lo := new(big.Int).And(u, mask64).Uint64()
	hi := new(big.Int).Rsh(u, 64).Uint64()
	parts := xdr.Int128Parts{Hi: xdr.Int64(int64(hi)), Lo: xdr.Uint64(lo)}
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}, nil
}

// FromNative converts value using the requested kind. KindAuto infers the
// encoding from the Go type.
func FromNative(value any, kind Kind) (xdr.ScVal, error) {
	switch kind {
	case KindAddress:
		s, ok := value.(string)
		if !ok {
			return xdr.ScVal{}, errors.Errorf("address must be a string, got %T", value)
		}
		return Address(s)
	case KindString:
		s, ok := value.(string)
		if !ok {
			return xdr.ScVal{}, errors.Errorf("string value expected, got %T", value)
		}
		return String(s), nil
	case KindSymbol:
		s, ok := value.(string)
		if !ok {
			return xdr.ScVal{}, errors.Errorf("symbol value expected, got %T", value)
		}
		return Symbol(s), nil
	case KindI128:
		v, err := toBigInt(value)
		if err != nil {
			return xdr.ScVal{}, err
		}
		return I128(v)
	case KindU32:
		switch n := value.(type) {
		case uint32:
			return U32(n), nil
		case int:
			if n < 0 || int64(n) > int64(^uint32(0)) {
				return xdr.ScVal{}, errors.Errorf("value %d overflows u32", n)
			}
			return U32(uint32(n)), nil
		default:
			return xdr.ScVal{}, errors.Errorf("u32 value expected, got %T", value)
		}
	case KindAuto:
		return infer(value)
	default:
		return xdr.ScVal{}, errors.Errorf("unknown kind %q", kind)
	}
}

func infer(value any) (xdr.ScVal, error) {
	switch v := value.(type) {
	case nil:
		return xdr.ScVal{Type: xdr.ScValTypeScvVoid}, nil
	case bool:
		b := v
		return xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}, nil
	case string:
		return String(v), nil
	case uint32:
		return U32(v), nil
	case int32:
		i := xdr.Int32(v)
		return xdr.ScVal{Type: xdr.ScValTypeScvI32, I32: &i}, nil
	case uint64:
		u := xdr.Uint64(v)
		return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &u}, nil
	case int64:
		i := xdr.Int64(v)
		return xdr.ScVal{Type: xdr.ScValTypeScvI64, I64: &i}, nil
	case int:
		i := xdr.Int64(v)
		return xdr.ScVal{Type: xdr.ScValTypeScvI64, I64: &i}, nil
	case *big.Int:
		return I128(v)
	case []byte:
		b := xdr.ScBytes(v)
		return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &b}, nil
	default:
		return xdr.ScVal{}, errors.Errorf("cannot infer contract value for %T", value)
	}
}

func toBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, errNilInt
		}
		return v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case string:
		n, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, errors.Errorf("invalid integer %q", v)
		}
		return n, nil
	default:
		return nil, errors.Errorf("integer value expected, got %T", value)
	}
}
