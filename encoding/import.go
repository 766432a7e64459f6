package encoding

import (
	"os"
	"strings"

	"github.com/cornish/inkwell/document"
)

// Lines splits text at any line ending: CRLF, LF or CR.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// Import decodes plain text and turns each line into a paragraph with the
// given style.
func Import(data []byte, styleName string) (*document.Text, DetectionResult, error) {
	det := Detect(data)
	decoded, err := DecodeToUTF8(data, det.Encoding)
	if err != nil {
		return nil, det, err
	}
	return document.FromLines(Lines(string(decoded)), styleName), det, nil
}

// ImportFile reads and imports a plain text file.
func ImportFile(path, styleName string) (*document.Text, DetectionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, DetectionResult{}, err
	}
	return Import(data, styleName)
}
