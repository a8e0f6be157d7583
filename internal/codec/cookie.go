package codec

import "math/rand/v2"

// NewCookie returns a 32-bit per-record cookie chosen at write time and
// verified on every fetch to prevent offset guessing.
//
// Cookies are a sanity check against accidental or off-by-one offset
// arithmetic, not an access-control capability, so a fast non-cryptographic
// PRNG is enough here. A caller that wants cookies to double as a
// capability must swap this for a crypto/rand-backed generator; this
// package makes that an explicit, documented substitution point rather
// than a hidden assumption.
func NewCookie() uint32 {
	return rand.Uint32()
}
