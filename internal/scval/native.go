// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package scval

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// ToNative converts a contract value into its closest Go representation.
// 128-bit integers become *big.Int, addresses become strkeys and maps are
// keyed by the formatted native key.
func ToNative(v xdr.ScVal) (any, error) {
	switch v.Type {
	case xdr.ScValTypeScvVoid:
		return nil, nil
	case xdr.ScValTypeScvBool:
		if v.B == nil {
			return nil, missing(v.Type)
		}
		return *v.B, nil
	case xdr.ScValTypeScvU32:
		if v.U32 == nil {
			return nil, missing(v.Type)
		}
		return uint32(*v.U32), nil
	case xdr.ScValTypeScvI32:
		if v.I32 == nil {
			return nil, missing(v.Type)
		}
		return int32(*v.I32), nil
	case xdr.ScValTypeScvU64:
		if v.U64 == nil {
			return nil, missing(v.Type)
		}
		return uint64(*v.U64), nil
	case xdr.ScValTypeScvI64:
		if v.I64 == nil {
			return nil, missing(v.Type)
		}
		return int64(*v.I64), nil
	case xdr.ScValTypeScvU128, xdr.ScValTypeScvI128:
		return ToBigInt(v)
	case xdr.ScValTypeScvString:
		return ToString(v)
	case xdr.ScValTypeScvSymbol:
		return ToString(v)
	case xdr.ScValTypeScvBytes:
		if v.Bytes == nil {
			return nil, missing(v.Type)
		}
		return []byte(*v.Bytes), nil
	case xdr.ScValTypeScvAddress:
		if v.Address == nil {
			return nil, missing(v.Type)
		}
		return AddressString(*v.Address)
	case xdr.ScValTypeScvVec:
		if v.Vec == nil || *v.Vec == nil {
			return []any{}, nil
		}
		vec := **v.Vec
		out := make([]any, 0, len(vec))
		for _, item := range vec {
			native, err := ToNative(item)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	case xdr.ScValTypeScvMap:
		if v.Map == nil || *v.Map == nil {
			return map[string]any{}, nil
		}
		entries := **v.Map
		out := make(map[string]any, len(entries))
		for _, entry := range entries {
			key, err := ToNative(entry.Key)
			if err != nil {
				return nil, err
			}
			val, err := ToNative(entry.Val)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(key)] = val
		}
		return out, nil
	default:
		return nil, errors.Errorf("unsupported contract value type %s", v.Type)
	}
}

// ToString reads a string or symbol value.
func ToString(v xdr.ScVal) (string, error) {
	switch v.Type {
	case xdr.ScValTypeScvString:
		if v.Str == nil {
			return "", missing(v.Type)
		}
		return string(*v.Str), nil
	case xdr.ScValTypeScvSymbol:
		if v.Sym == nil {
			return "", missing(v.Type)
		}
		return string(*v.Sym), nil
	default:
		return "", errors.Errorf("expected string, got %s", v.Type)
	}
}

// ToU32 reads a u32 value.
func ToU32(v xdr.ScVal) (uint32, error) {
	if v.Type != xdr.ScValTypeScvU32 {
		return 0, errors.Errorf("expected u32, got %s", v.Type)
	}
	if v.U32 == nil {
		return 0, missing(v.Type)
	}
	return uint32(*v.U32), nil
}

// ToBigInt reads any integer value as a *big.Int.
func ToBigInt(v xdr.ScVal) (*big.Int, error) {
	switch v.Type {
	case xdr.ScValTypeScvI128:
		if v.I128 == nil {
			return nil, missing(v.Type)
		}
		u := new(big.Int).Lsh(new(big.Int).SetUint64(uint64(v.I128.Hi)), 64)
		u.Or(u, new(big.Int).SetUint64(uint64(v.I128.Lo)))
		if int64(v.I128.Hi) < 0 {
			u.Sub(u, two128)
		}
		return u, nil
	case xdr.ScValTypeScvU128:
		if v.U128 == nil {
			return nil, missing(v.Type)
		}
		u := new(big.Int).Lsh(new(big.Int).SetUint64(uint64(v.U128.Hi)), 64)
		return u.Or(u, new(big.Int).SetUint64(uint64(v.U128.Lo))), nil
	case xdr.ScValTypeScvU32, xdr.ScValTypeScvI32, xdr.ScValTypeScvU64, xdr.ScValTypeScvI64:
		native, err := ToNative(v)
		if err != nil {
			return nil, err
		}
		n, ok := new(big.Int).SetString(fmt.Sprint(native), 10)
		if !ok {
			return nil, errors.Errorf("invalid integer %v", native)
		}
		return n, nil
	default:
		return nil, errors.Errorf("expected integer, got %s", v.Type)
	}
}

// AddressString formats an account or contract address as a strkey.
func AddressString(addr xdr.ScAddress) (string, error) {
	switch addr.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		if addr.AccountId == nil {
			return "", errors.New("account address without account id")
		}
		return addr.AccountId.Address(), nil
	case xdr.ScAddressTypeScAddressTypeContract:
		if addr.ContractId == nil {
			return "", errors.New("contract address without contract id")
		}
		return strkey.Encode(strkey.VersionByteContract, addr.ContractId[:])
	default:
		return "", errors.Errorf("unsupported address type %s", addr.Type)
	}
}

func missing(t xdr.ScValType) error {
	return errors.Errorf("malformed %s value", t)
}
