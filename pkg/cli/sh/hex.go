package sh

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseHex parses bytes given as hex words, e.g. "48 69 0a" or "48690a".
// Words may carry a 0x prefix.
func ParseHex(words ...string) ([]byte, error) {
	var data []byte
	for _, word := range words {
		word = strings.TrimPrefix(strings.ToLower(word), "0x")
		if len(word)%2 != 0 {
			word = "0" + word
		}
		b, err := hex.DecodeString(word)
		if err != nil {
			return nil, fmt.Errorf("invalid hex %q", word)
		}
		data = append(data, b...)
	}
	return data, nil
}
