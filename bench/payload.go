// Package bench contains the load-generation harness: scenario
// configuration, a throwaway accept-loop server, and a runner that drives
// the HTTP client over any transport kind.
package bench

import "fmt"

// payloadPattern is the repeating fill for generated bodies. A fixed
// pattern lets either side verify a payload without shipping a checksum.
var payloadPattern = []byte("0123456789abcdef")

// MakePayload returns a deterministic body of exactly size bytes.
func MakePayload(size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = payloadPattern[i%len(payloadPattern)]
	}
	return buf
}

// VerifyPayload checks that buf is a well-formed generated payload of the
// expected size.
func VerifyPayload(buf []byte, size int) error {
	if len(buf) != size {
		return fmt.Errorf("payload is %d bytes, want %d", len(buf), size)
	}
	for i := range buf {
		if buf[i] != payloadPattern[i%len(payloadPattern)] {
			return fmt.Errorf("payload corrupt at offset %d: got %#x, want %#x",
				i, buf[i], payloadPattern[i%len(payloadPattern)])
		}
	}
	return nil
}
