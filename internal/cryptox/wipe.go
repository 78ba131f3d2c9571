package cryptox

// Wipe zeroes b so a password read from the terminal does not linger in
// memory after use. A nil slice is ignored.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
