package binaryfmt

// ExtractStrings scans data for maximal runs of printable ASCII
// (0x20-0x7E plus tab/CR/LF), emitting runs of at least minLength,
// discarding runs composed of a single repeated character.
func ExtractStrings(data []byte, minLength int) []string {
	if minLength <= 0 {
		minLength = 4
	}
	var out []string
	start := -1
	for i := 0; i <= len(data); i++ {
		printable := i < len(data) && isPrintable(data[i])
		if printable {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			run := data[start:i]
			if len(run) >= minLength && !isSingleRepeatedByte(run) {
				out = append(out, string(run))
			}
			start = -1
		}
	}
	return out
}

func isPrintable(b byte) bool {
	if b >= 0x20 && b <= 0x7E {
		return true
	}
	return b == '\t' || b == '\r' || b == '\n'
}

func isSingleRepeatedByte(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	first := b[0]
	for _, c := range b[1:] {
		if c != first {
			return false
		}
	}
	return true
}
