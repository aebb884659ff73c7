package transform

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"

	"github.com/ajitpratap0/tabclean/pkg/charset"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

func init() {
	register(Info{
		Name:    "reencode",
		Summary: "decode raw bytes and drop characters the target encoding cannot hold",
		Params:  []string{"from_enc", "to_enc"},
	}, newReencode)
}

type reencode struct {
	from encoding.Encoding
	to   encoding.Encoding
}

func newReencode(params Params) (Transform, error) {
	r := newParamReader("reencode", params)
	fromName := r.String("from_enc", "utf-16")
	toName := r.String("to_enc", "utf-8")
	if err := r.Done(); err != nil {
		return nil, err
	}

	from, err := charset.Lookup(fromName)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "transform reencode: from_enc").
			WithDetail("transform", "reencode")
	}
	to, err := charset.Lookup(toName)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "transform reencode: to_enc").
			WithDetail("transform", "reencode")
	}
	return &reencode{from: from, to: to}, nil
}

func (t *reencode) Name() string { return "reencode" }

func (t *reencode) Apply(col table.Column) table.Column {
	// Decoders and encoders are stateful; each call gets its own.
	decoder := t.from.NewDecoder()
	encoder := t.to.NewEncoder()
	back := t.to.NewDecoder()
	toUTF8 := charset.IsUTF8(t.to)

	return mapCells(col, func(v table.Value) table.Value {
		var text string
		if raw, ok := v.AsBytes(); ok {
			text = decodeLossy(decoder, raw)
		} else {
			text = v.String()
		}
		if toUTF8 {
			return table.Text(strings.ToValidUTF8(text, ""))
		}
		return table.Text(roundTrip(encoder, back, text))
	})
}

// decodeLossy decodes raw and drops whatever could not be decoded.
func decodeLossy(decoder *encoding.Decoder, raw []byte) string {
	out, err := decoder.Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "")
	}
	return strings.ReplaceAll(string(out), string(utf8.RuneError), "")
}

// roundTrip encodes text rune by rune, skipping runes the encoder rejects,
// and decodes the result back. It returns text unchanged if decoding fails.
func roundTrip(encoder *encoding.Encoder, decoder *encoding.Decoder, text string) string {
	var buf []byte
	for _, r := range text {
		if r == utf8.RuneError {
			continue
		}
		b, err := encoder.Bytes([]byte(string(r)))
		if err != nil {
			continue
		}
		buf = append(buf, b...)
	}
	out, err := decoder.Bytes(buf)
	if err != nil {
		return text
	}
	// Encoders that write a byte order mark do so for every rune.
	return strings.Map(func(r rune) rune {
		if r == utf8.RuneError || r == '\ufeff' {
			return -1
		}
		return r
	}, string(out))
}
