package user

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeCharset is the alphabet user and submission codes are drawn from. It
// omits 1/I and 0/O entirely because they are hard to read even on screens,
// and keeps only one of each pair that is hard to tell apart in handwriting
// (2/Z, 4/A, 5/S, 6/G).
const CodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ3789"

// CodeLength is the default length of generated codes.
const CodeLength = 6

// resetTokenCharset is the unrestricted alphabet for password reset tokens;
// these are never transcribed by hand.
const resetTokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ResetTokenLength is the length of password reset tokens.
const ResetTokenLength = 32

func randomString(length int, charset string) string {
	out := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(fmt.Sprintf("random source unavailable: %v", err))
		}
		out[i] = charset[n.Int64()]
	}
	return string(out)
}

// GenerateCode returns a candidate short code. Uniqueness is enforced by the
// storage layer's unique constraint; callers retry on conflict.
func GenerateCode(length int) string {
	if length <= 0 {
		length = CodeLength
	}
	return randomString(length, CodeCharset)
}

// GenerateResetToken returns a high-entropy password reset token.
func GenerateResetToken() string {
	return randomString(ResetTokenLength, resetTokenCharset)
}

// PlaceholderEmail returns a candidate replacement address for a deactivated
// account. Collisions are handled by the unique constraint plus retry.
func PlaceholderEmail() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		panic(fmt.Sprintf("random source unavailable: %v", err))
	}
	return fmt.Sprintf("deleted_user_%d@localhost", n.Int64())
}
