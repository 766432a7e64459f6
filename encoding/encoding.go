// Package encoding detects the character encoding of imported plain text and
// converts it to UTF-8.
package encoding

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding represents a character encoding with metadata
type Encoding struct {
	Name      string            // Display name
	ID        string            // Internal identifier
	Codec     encoding.Encoding // x/text codec (nil for UTF-8)
	Aliases   []string          // Alternative names from chardet
	Supported bool              // Whether we can decode it
}

// DetectionResult holds the result of encoding detection
type DetectionResult struct {
	Encoding   *Encoding
	Confidence int  // 0-100
	HasBOM     bool // Whether a BOM was detected
}

// SupportedEncodings is the list of encodings we can import
var SupportedEncodings = []*Encoding{
	{Name: "UTF-8", ID: "utf-8", Aliases: []string{"UTF-8", "utf8"}, Supported: true},
	{Name: "UTF-8 BOM", ID: "utf-8-bom", Supported: true},
	{Name: "UTF-16 LE", ID: "utf-16-le", Codec: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), Aliases: []string{"UTF-16LE"}, Supported: true},
	{Name: "UTF-16 BE", ID: "utf-16-be", Codec: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), Aliases: []string{"UTF-16BE"}, Supported: true},
	{Name: "ISO-8859-1", ID: "iso-8859-1", Codec: charmap.ISO8859_1, Aliases: []string{"latin1", "Latin-1"}, Supported: true},
	{Name: "Windows-1252", ID: "windows-1252", Codec: charmap.Windows1252, Aliases: []string{"CP1252"}, Supported: true},
	{Name: "Windows-1256", ID: "windows-1256", Codec: charmap.Windows1256, Aliases: []string{"CP1256"}, Supported: true},
	{Name: "ISO-8859-7", ID: "iso-8859-7", Codec: charmap.ISO8859_7, Aliases: []string{"greek"}, Supported: true},
	{Name: "Shift-JIS", ID: "shift-jis", Codec: japanese.ShiftJIS, Aliases: []string{"Shift_JIS", "SJIS"}, Supported: true},
	{Name: "EUC-JP", ID: "euc-jp", Codec: japanese.EUCJP, Supported: true},
	{Name: "GB18030", ID: "gb18030", Codec: simplifiedchinese.GB18030, Aliases: []string{"GB-18030", "GBK", "GB2312"}, Supported: true},
	{Name: "EUC-KR", ID: "euc-kr", Codec: korean.EUCKR, Supported: true},
}

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// GetEncodingByID returns an encoding by its ID
func GetEncodingByID(id string) *Encoding {
	for _, enc := range SupportedEncodings {
		if strings.EqualFold(enc.ID, id) {
			return enc
		}
	}
	return nil
}

// GetEncodingByName returns an encoding by name, ID or alias
func GetEncodingByName(name string) *Encoding {
	for _, enc := range SupportedEncodings {
		if strings.EqualFold(enc.Name, name) || strings.EqualFold(enc.ID, name) {
			return enc
		}
		for _, alias := range enc.Aliases {
			if strings.EqualFold(alias, name) {
				return enc
			}
		}
	}
	return nil
}

// Detect attempts to detect the encoding of the given data
func Detect(data []byte) DetectionResult {
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		return DetectionResult{Encoding: GetEncodingByID("utf-8-bom"), Confidence: 100, HasBOM: true}
	case bytes.HasPrefix(data, utf16BEBOM):
		return DetectionResult{Encoding: GetEncodingByID("utf-16-be"), Confidence: 100, HasBOM: true}
	case bytes.HasPrefix(data, utf16LEBOM):
		return DetectionResult{Encoding: GetEncodingByID("utf-16-le"), Confidence: 100, HasBOM: true}
	case utf8.Valid(data):
		return DetectionResult{Encoding: GetEncodingByID("utf-8"), Confidence: 100}
	}

	detected, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || detected == nil {
		// Latin-1 decodes anything
		return DetectionResult{Encoding: GetEncodingByID("iso-8859-1"), Confidence: 50}
	}
	if enc := GetEncodingByName(detected.Charset); enc != nil {
		return DetectionResult{Encoding: enc, Confidence: detected.Confidence}
	}
	// Unsupported guesses are read as Windows-1252 rather than refused
	return DetectionResult{Encoding: GetEncodingByID("windows-1252"), Confidence: detected.Confidence / 2}
}

// DecodeToUTF8 decodes data from the given encoding to UTF-8, dropping any
// byte order mark.
func DecodeToUTF8(data []byte, enc *Encoding) ([]byte, error) {
	if enc != nil && !enc.Supported {
		return nil, fmt.Errorf("encoding %s is not supported", enc.Name)
	}
	if enc == nil || enc.Codec == nil {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}

	switch enc.ID {
	case "utf-16-le":
		data = bytes.TrimPrefix(data, utf16LEBOM)
	case "utf-16-be":
		data = bytes.TrimPrefix(data, utf16BEBOM)
	}
	return io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.Codec.NewDecoder()))
}
