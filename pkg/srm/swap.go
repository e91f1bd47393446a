package srm

// WordSwap reverses the byte order of every 32-bit word in buf. It is its
// own inverse. A trailing partial word is left untouched.
func WordSwap(buf []byte) {
	n := len(buf) &^ 3
	for i := 0; i < n; i += 4 {
		buf[i], buf[i+3] = buf[i+3], buf[i]
		buf[i+1], buf[i+2] = buf[i+2], buf[i+1]
	}
}
