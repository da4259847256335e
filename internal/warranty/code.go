// Package warranty holds the pure business rules of the warranty lifecycle:
// code generation, expiry arithmetic, and derived coverage status. Nothing in
// this package touches the database or the HTTP layer, which keeps every rule
// unit-testable in isolation.
package warranty

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

// CodeAlphabet is the character set used for warranty codes. Visually
// confusable characters (0/O, 1/I/L) are excluded so codes survive being read
// aloud or copied from a printed receipt.
const CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	codePrefix     = "CB"
	codeSegmentLen = 4
)

// CodeRE matches a well-formed warranty code: CB- plus two 4-character
// segments drawn from CodeAlphabet. The character class mirrors the alphabet
// exactly, so a code the generator can never emit never validates.
var CodeRE = regexp.MustCompile(`^CB-[A-HJKMNP-Z2-9]{4}-[A-HJKMNP-Z2-9]{4}$`)

// NewCode generates a random warranty code of the form CB-XXXX-XXXX.
//
// The generator is pure and stateless: it makes no uniqueness guarantee on its
// own. Callers persisting a code must handle the (vanishingly rare) collision
// against already-issued codes, e.g. by retrying on a unique-constraint
// violation.
func NewCode() string {
	return codePrefix + "-" + segment(codeSegmentLen) + "-" + segment(codeSegmentLen)
}

// segment draws n characters uniformly at random from CodeAlphabet.
func segment(n int) string {
	max := big.NewInt(int64(len(CodeAlphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken, at which point issuing codes is the least of our worries.
			panic(err)
		}
		b.WriteByte(CodeAlphabet[idx.Int64()])
	}
	return b.String()
}

// NormalizeCode canonicalizes user-entered codes: surrounding whitespace is
// stripped and letters are upper-cased, so "cb-abcd-2345 " claims the same
// record as "CB-ABCD-2345".
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidCode reports whether s is a well-formed warranty code after
// normalization.
func ValidCode(s string) bool {
	return CodeRE.MatchString(NormalizeCode(s))
}
