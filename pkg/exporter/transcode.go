package exporter

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/oneconcern/vcsmigrate/pkg/exporter/status"
)

// Transcoder re-encodes comments from the source character encoding to the target's
type Transcoder struct {
	from encoding.Encoding
	to   encoding.Encoding
}

// NewTranscoder resolves IANA encoding names, such as "windows-1252" or "utf-8"
func NewTranscoder(from, to string) (*Transcoder, error) {
	src, err := lookupEncoding(from)
	if err != nil {
		return nil, err
	}
	dst, err := lookupEncoding(to)
	if err != nil {
		return nil, err
	}
	return &Transcoder{from: src, to: dst}, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, status.ErrInvalidEncoding.WrapMessage("%q: %v", name, err)
	}
	if enc == nil {
		return nil, status.ErrInvalidEncoding.WrapMessage("%q", name)
	}
	return enc, nil
}

// Transcode a comment.
//
// Comments which are already valid UTF-8 are not decoded again. Characters the target
// encoding cannot represent are replaced.
func (t *Transcoder) Transcode(comment string) string {
	if t == nil || comment == "" {
		return comment
	}

	text := comment
	if !utf8.ValidString(comment) {
		decoded, err := t.from.NewDecoder().String(comment)
		if err == nil {
			text = decoded
		}
	}

	if t.to == unicode.UTF8 {
		return strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	encoded, err := encoding.ReplaceUnsupported(t.to.NewEncoder()).String(text)
	if err != nil {
		return text
	}
	return encoded
}
