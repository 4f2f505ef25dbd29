// Package encoding normalises uploaded files (bank statements, backups) to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

var boms = []struct {
	prefix  []byte
	charset string
	decoder xenc.Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, "UTF-8", nil},
	{[]byte{0xFF, 0xFE}, "UTF-16LE", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, "UTF-16BE", unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// legacy maps chardet results to the single-byte charsets we decode.
var legacy = map[string]xenc.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
	"ISO-8859-15":  charmap.ISO8859_15,
}

// Decoded is an input stream converted to UTF-8.
type Decoded struct {
	io.Reader
	// Charset is the detected source encoding.
	Charset string
}

// Detect sniffs the first bytes of r and wraps it in a UTF-8 decoder.
// A byte order mark wins; otherwise valid UTF-8 passes through; otherwise
// chardet picks a legacy charset, falling back to Windows-1252.
func Detect(r io.Reader) (Decoded, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return Decoded{}, fmt.Errorf("peek: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(head, bom.prefix) {
			continue
		}

		if bom.decoder == nil {
			_, _ = br.Discard(len(bom.prefix))
			return Decoded{Reader: br, Charset: bom.charset}, nil
		}

		return Decoded{Reader: transform.NewReader(br, bom.decoder.NewDecoder()), Charset: bom.charset}, nil
	}

	if utf8.Valid(head) {
		return Decoded{Reader: br, Charset: "UTF-8"}, nil
	}

	charset := "windows-1252"

	if res, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if res.Charset == "UTF-8" {
			return Decoded{Reader: br, Charset: res.Charset}, nil
		}

		if _, ok := legacy[res.Charset]; ok {
			charset = res.Charset
		}
	}

	return Decoded{Reader: transform.NewReader(br, legacy[charset].NewDecoder()), Charset: charset}, nil
}

// NewUTF8Reader is Detect without the charset.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	d, err := Detect(r)
	if err != nil {
		return nil, err
	}

	return d.Reader, nil
}
