package poh

// Digest hashes the concatenation of parts into a fixed-width output.
// Implementations must not carry state from one call to the next.
type Digest[O Output] interface {
	Sum(parts ...[]byte) O
}

// DigestFunc adapts an ordinary function to the Digest interface.
type DigestFunc[O Output] func(parts ...[]byte) O

func (f DigestFunc[O]) Sum(parts ...[]byte) O { return f(parts...) }

// Link computes the tick that follows prev when data is mixed in.
// A nil or empty data appends nothing to the hash input.
func Link[O Output](d Digest[O], prev O, data []byte) O {
	if len(data) == 0 {
		return d.Sum(prev.Bytes())
	}
	return d.Sum(prev.Bytes(), data)
}
