// Package iniconfig reads the nested-bracket configuration format of
// spec.md §6 ("the optional config collaborator"): top-level
// `[section]` blocks of `[[subsection]]` records, each a flat list of
// `key = value` lines. This is deliberately a small, purpose-built
// reader rather than a general INI library — see DESIGN.md for why no
// pack dependency serves this exact nested-subsection shape.
package iniconfig

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/descriptor"
	"github.com/nff-go/nff/pkg/nffcore"
)

// Document is the parsed file: one named record set per top-level
// section, each containing one raw key/value map per subsection name.
type Document struct {
	Size       int64
	Attributes map[string]map[string]string
	Functions  map[string]map[string]string
	Virtuals   map[string]map[string]string
}

// Parse reads the full nested-bracket format from r.
func Parse(r io.Reader) (*Document, error) {
	const op = "iniconfig.Parse"
	doc := &Document{
		Attributes: map[string]map[string]string{},
		Functions:  map[string]map[string]string{},
		Virtuals:   map[string]map[string]string{},
	}

	var section string       // "attributes" | "functions" | "virtual_functions" | ""
	var sub string           // current [[name]]
	var current map[string]string

	flush := func() {
		if sub == "" || current == nil {
			return
		}
		switch section {
		case "attributes":
			doc.Attributes[sub] = current
		case "functions":
			doc.Functions[sub] = current
		case "virtual_functions":
			doc.Virtuals[sub] = current
		}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "[[") && strings.HasSuffix(line, "]]"):
			flush()
			sub = strings.TrimSpace(line[2 : len(line)-2])
			current = map[string]string{}

		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			flush()
			section = strings.TrimSpace(line[1 : len(line)-1])
			sub, current = "", nil

		default:
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				return nil, nffcore.New(op, nffcore.ParameterSignatureMalformed, "line is neither a section header nor a key=value pair: "+line)
			}
			key, value = strings.TrimSpace(key), strings.TrimSpace(value)
			if section == "" && sub == "" && current == nil {
				if key == "size" {
					n, err := strconv.ParseInt(value, 10, 64)
					if err != nil {
						return nil, nffcore.Wrap(op, nffcore.ParameterSignatureMalformed, "size is not an integer", err)
					}
					doc.Size = n
					continue
				}
			}
			if current == nil {
				return nil, nffcore.New(op, nffcore.ParameterSignatureMalformed, "key=value outside any [[subsection]]: "+line)
			}
			current[key] = value
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, nffcore.Wrap(op, nffcore.ParameterSignatureMalformed, "failed to read config", err)
	}
	return doc, nil
}

// BuildFunctions converts the document's [functions] subsections into
// descriptor.FunctionRecord values, applying spec.md §6's defaults and
// OS-override resolution.
func BuildFunctions(doc *Document, windows bool) (map[string]descriptor.FunctionRecord, error) {
	const op = "iniconfig.BuildFunctions"
	out := make(map[string]descriptor.FunctionRecord, len(doc.Functions))
	for name, values := range doc.Functions {
		sigRaw, ok := descriptor.Override(values, "parameters", windows)
		if !ok {
			return nil, nffcore.New(op, nffcore.ParameterSignatureMalformed, "function record "+name+" is missing parameters")
		}
		sig, err := abi.ParseSignature(sigRaw)
		if err != nil {
			return nil, err
		}

		conv := descriptor.DefaultConvention(false)
		if raw, ok := descriptor.Override(values, "convention", windows); ok {
			c, ok := abi.ParseConvention(raw)
			if !ok {
				return nil, nffcore.New(op, nffcore.ParameterSignatureMalformed, "unknown convention in function record "+name)
			}
			conv = c
		}

		srvCheck := true
		if raw, ok := descriptor.Override(values, "srv_check", windows); ok {
			srvCheck = raw == "true" || raw == "1"
		}

		identifier, _ := descriptor.Override(values, "identifier", windows)
		binary, _ := descriptor.Override(values, "binary", windows)
		converter, _ := descriptor.Override(values, "converter", windows)
		documentation, _ := descriptor.Override(values, "documentation", windows)

		out[name] = descriptor.FunctionRecord{
			Binary:        binary,
			Identifier:    identifier,
			Parameters:    sig,
			Convention:    conv,
			SrvCheck:      srvCheck,
			Converter:     converter,
			Documentation: documentation,
		}
	}
	return out, nil
}

// BuildVirtuals converts the document's [virtual_functions]
// subsections into descriptor.VirtualFunctionRecord values.
func BuildVirtuals(doc *Document, windows bool) (map[string]descriptor.VirtualFunctionRecord, error) {
	const op = "iniconfig.BuildVirtuals"
	out := make(map[string]descriptor.VirtualFunctionRecord, len(doc.Virtuals))
	for name, values := range doc.Virtuals {
		identRaw, ok := descriptor.Override(values, "identifier", windows)
		if !ok {
			return nil, nffcore.New(op, nffcore.ParameterSignatureMalformed, "virtual function record "+name+" is missing identifier")
		}
		slot, err := descriptor.ParseOffset(identRaw)
		if err != nil {
			return nil, err
		}

		sigRaw, ok := descriptor.Override(values, "parameters", windows)
		if !ok {
			return nil, nffcore.New(op, nffcore.ParameterSignatureMalformed, "virtual function record "+name+" is missing parameters")
		}
		sig, err := abi.ParseSignature(sigRaw)
		if err != nil {
			return nil, err
		}

		conv := descriptor.DefaultConvention(true)
		if raw, ok := descriptor.Override(values, "convention", windows); ok {
			c, ok := abi.ParseConvention(raw)
			if !ok {
				return nil, nffcore.New(op, nffcore.ParameterSignatureMalformed, "unknown convention in virtual function record "+name)
			}
			conv = c
		}

		converter, _ := descriptor.Override(values, "converter", windows)
		docStr, _ := descriptor.Override(values, "documentation", windows)

		out[name] = descriptor.VirtualFunctionRecord{
			Slot:          int(slot),
			Parameters:    sig,
			Convention:    conv,
			Converter:     converter,
			Documentation: docStr,
		}
	}
	return out, nil
}

// BuildAttributes converts the document's [attributes] subsections
// into descriptor.AttributeRecord values, validating each one.
func BuildAttributes(doc *Document, windows bool) (map[string]descriptor.AttributeRecord, error) {
	const op = "iniconfig.BuildAttributes"
	out := make(map[string]descriptor.AttributeRecord, len(doc.Attributes))
	for name, values := range doc.Attributes {
		identRaw, ok := descriptor.Override(values, "identifier", windows)
		if !ok {
			return nil, nffcore.New(op, nffcore.ParameterSignatureMalformed, "attribute record "+name+" is missing identifier")
		}
		offset, err := descriptor.ParseOffset(identRaw)
		if err != nil {
			return nil, err
		}

		length := int64(-1)
		if raw, ok := descriptor.Override(values, "length", windows); ok {
			length, err = strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, nffcore.Wrap(op, nffcore.ParameterSignatureMalformed, "length is not an integer", err)
			}
		}

		isArray := boolValue(values, "is_array", windows)
		aligned := boolValue(values, "aligned", windows)

		flags := descriptor.ReadWrite
		if raw, ok := descriptor.Override(values, "flags", windows); ok {
			f, err := parseFlags(raw)
			if err != nil {
				return nil, err
			}
			flags = f
		}

		converter, _ := descriptor.Override(values, "converter", windows)
		docStr, _ := descriptor.Override(values, "documentation", windows)

		rec := descriptor.AttributeRecord{
			Converter:     converter,
			Offset:        offset,
			Length:        length,
			IsArray:       isArray,
			Aligned:       aligned,
			Flags:         flags,
			Documentation: docStr,
		}
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		out[name] = rec
	}
	return out, nil
}

func boolValue(values map[string]string, key string, windows bool) bool {
	raw, ok := descriptor.Override(values, key, windows)
	if !ok {
		return false
	}
	return raw == "true" || raw == "1"
}

func parseFlags(raw string) (descriptor.Flags, error) {
	const op = "iniconfig.parseFlags"
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "READ":
		return descriptor.Read, nil
	case "WRITE":
		return descriptor.Write, nil
	case "READ_WRITE", "READ|WRITE":
		return descriptor.ReadWrite, nil
	default:
		return 0, nffcore.New(op, nffcore.ParameterSignatureMalformed, "unknown flags value "+raw)
	}
}
