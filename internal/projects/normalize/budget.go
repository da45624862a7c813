package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Budget converts the backend budget (a decimal string, occasionally a JSON
// number) to a non-negative float. Absent, null, malformed, negative and
// out-of-range input all yield 0.
func Budget(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0
		}
		text = strings.TrimSpace(text)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(raw)
	default:
		return 0
	}
	if text == "" {
		return 0
	}

	d, err := decimal.NewFromString(text)
	if err != nil || d.IsNegative() {
		return 0
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}
