package sourcemap

import (
	"fmt"
	"strings"
)

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const (
	vlqBaseShift   = 5
	vlqBase        = 1 << vlqBaseShift // 32
	vlqBaseMask    = vlqBase - 1       // 0b11111
	vlqContinueBit = vlqBase           // 0b100000
)

var base64Index = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(base64Chars); i++ {
		idx[base64Chars[i]] = int8(i)
	}
	return idx
}()

// appendVLQ encodes value as base64 VLQ and appends it to b.
func appendVLQ(b *strings.Builder, value int32) {
	// знак уходит в младший бит
	v := uint32(value) << 1
	if value < 0 {
		v = uint32(-value)<<1 | 1
	}
	for {
		digit := v & vlqBaseMask
		v >>= vlqBaseShift
		if v > 0 {
			digit |= vlqContinueBit
		}
		b.WriteByte(base64Chars[digit])
		if v == 0 {
			return
		}
	}
}

// decodeVLQ reads one VLQ value from s starting at pos.
// Returns the value and the position after it.
func decodeVLQ(s string, pos int) (value int32, next int, err error) {
	var result uint32
	shift := uint(0)
	for {
		if pos >= len(s) {
			return 0, pos, fmt.Errorf("truncated VLQ sequence")
		}
		digit := base64Index[s[pos]]
		if digit < 0 {
			return 0, pos, fmt.Errorf("invalid VLQ character %q", s[pos])
		}
		pos++
		result |= uint32(digit&vlqBaseMask) << shift
		if digit&vlqContinueBit == 0 {
			break
		}
		shift += vlqBaseShift
		if shift > 30 {
			return 0, pos, fmt.Errorf("VLQ value overflow")
		}
	}
	value = int32(result >> 1)
	if result&1 != 0 {
		value = -value
	}
	return value, pos, nil
}
