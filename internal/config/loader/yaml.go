package loader

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLDecoder decodes YAML documents. Keys that name no field are errors.
// An empty document leaves v unchanged.
type YAMLDecoder struct{}

// Decode implements Decoder.
func (YAMLDecoder) Decode(source string, data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	var terr *yaml.TypeError
	if errors.As(err, &terr) && len(terr.Errors) > 0 {
		msg = terr.Errors[0]
	}
	line, rest := yamlLine(msg)
	return &ParseError{Path: source, Line: line, Message: rest, Err: err}
}

// yamlLine splits a "line N: message" prefix off a yaml.v3 error message.
func yamlLine(msg string) (int, string) {
	rest, ok := strings.CutPrefix(msg, "line ")
	if !ok {
		return 0, msg
	}
	num, text, ok := strings.Cut(rest, ": ")
	if !ok {
		return 0, msg
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, msg
	}
	return n, text
}
