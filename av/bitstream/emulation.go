package bitstream

// EscapeRBSP appends rbsp to dst with emulation prevention bytes inserted:
// every 00 00 followed by a byte <= 0x03 gets a 0x03 in between, so the
// result can never contain a start code.
//
//	00 00 00 -> 00 00 03 00
//	00 00 01 -> 00 00 03 01
//	00 00 02 -> 00 00 03 02
//	00 00 03 -> 00 00 03 03
func EscapeRBSP(dst, rbsp []byte) []byte {
	zeros := 0
	for _, b := range rbsp {
		if zeros >= 2 && b <= 0x03 {
			dst = append(dst, 0x03)
			zeros = 0
		}
		dst = append(dst, b)
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return dst
}

// UnescapeRBSP removes emulation prevention bytes from ebsp and returns the
// raw payload in a new slice.
func UnescapeRBSP(ebsp []byte) []byte {
	out := make([]byte, 0, len(ebsp))
	zeros := 0
	for _, b := range ebsp {
		if zeros >= 2 && b == 0x03 {
			zeros = 0
			continue
		}
		out = append(out, b)
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}
