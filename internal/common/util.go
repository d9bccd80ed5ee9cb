package common

// WipeByteArray overwrites b with zeros. Used to drop passwords read from the
// terminal as soon as they have been turned into a string for the flows.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
