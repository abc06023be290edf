package main

import (
	"strconv"
	"strings"

	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
)

// parseCallArgs converts the CLI's string argument vector into the
// typed values callframe.Invoke expects, per sig's tag vocabulary.
func parseCallArgs(sig abi.Signature, raw []string) ([]any, error) {
	const op = "nff.parseCallArgs"
	if len(raw) != len(sig.Args) {
		return nil, nffcore.New(op, nffcore.ArgumentCountMismatch,
			"got "+strconv.Itoa(len(raw))+" args, signature wants "+strconv.Itoa(len(sig.Args)))
	}
	out := make([]any, len(raw))
	for i, tag := range sig.Args {
		v, err := parseTagValue(tag, raw[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseTagValue(tag abi.Tag, s string) (any, error) {
	const op = "nff.parseTagValue"
	switch tag {
	case abi.TagBool:
		return s == "true" || s == "1", nil
	case abi.TagCString:
		return s, nil
	case abi.TagPointer:
		return parseAddress(s)
	case abi.TagFloat32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, nffcore.Wrap(op, nffcore.ArgumentOutOfRange, "not a float32", err)
		}
		return float32(v), nil
	case abi.TagFloat64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, nffcore.Wrap(op, nffcore.ArgumentOutOfRange, "not a float64", err)
		}
		return v, nil
	case abi.TagInt8, abi.TagInt16, abi.TagInt32, abi.TagLong, abi.TagInt64:
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return nil, nffcore.Wrap(op, nffcore.ArgumentOutOfRange, "not a signed integer", err)
		}
		return intOfTag(tag, v), nil
	case abi.TagUint8, abi.TagUint16, abi.TagUint32, abi.TagULong, abi.TagUint64:
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, nffcore.Wrap(op, nffcore.ArgumentOutOfRange, "not an unsigned integer", err)
		}
		return uintOfTag(tag, v), nil
	default:
		return nil, nffcore.New(op, nffcore.ParameterSignatureMalformed, "unsupported argument tag "+tag.String())
	}
}

func intOfTag(tag abi.Tag, v int64) any {
	switch tag {
	case abi.TagInt8:
		return int8(v)
	case abi.TagInt16:
		return int16(v)
	case abi.TagInt32:
		return int32(v)
	case abi.TagLong, abi.TagInt64:
		return v
	default:
		return v
	}
}

func uintOfTag(tag abi.Tag, v uint64) any {
	switch tag {
	case abi.TagUint8:
		return uint8(v)
	case abi.TagUint16:
		return uint16(v)
	case abi.TagUint32:
		return uint32(v)
	case abi.TagULong, abi.TagUint64:
		return v
	default:
		return v
	}
}

func parseAddress(s string) (ptr.Address, error) {
	const op = "nff.parseAddress"
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, nffcore.Wrap(op, nffcore.ArgumentOutOfRange, "not a hex address", err)
	}
	return ptr.Address(v), nil
}

// setArgFlag is the parsed form of a repeated "--set-arg N=V" flag.
type setArgFlag struct {
	index int
	value string
}

func parseSetArgFlags(raw []string) ([]setArgFlag, error) {
	const op = "nff.parseSetArgFlags"
	out := make([]setArgFlag, 0, len(raw))
	for _, r := range raw {
		idxStr, value, ok := strings.Cut(r, "=")
		if !ok {
			return nil, nffcore.New(op, nffcore.ParameterSignatureMalformed, "--set-arg must be N=V, got "+r)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(idxStr))
		if err != nil {
			return nil, nffcore.Wrap(op, nffcore.ParameterSignatureMalformed, "--set-arg index is not an integer", err)
		}
		out = append(out, setArgFlag{index: idx, value: strings.TrimSpace(value)})
	}
	return out, nil
}
