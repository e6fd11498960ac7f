package loader

import (
	"bytes"
	"errors"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// TOMLDecoder decodes TOML documents. Keys that name no field are errors.
type TOMLDecoder struct{}

// Decode implements Decoder.
func (TOMLDecoder) Decode(source string, data []byte, v any) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}

		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) && len(serr.Errors) > 0 {
			first := serr.Errors[0]
			perr.Line, perr.Column = first.Position()
			perr.Message = "unknown key " + strings.Join(first.Key(), ".")
		}
		return perr
	}
	return nil
}
