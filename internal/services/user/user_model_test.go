package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGravatarParameter(t *testing.T) {
	u := &User{Email: "one@two.com"}
	require.Equal(t, "ac5be7f974137dc75bacee19b94fe0f8", u.GravatarParameter())

	u = &User{Email: "a_very_long.email@orga.org"}
	require.Equal(t, "79bd022bbbd718d8e30f730169067b2a", u.GravatarParameter())
}

func TestGravatarParameterNormalizesEmail(t *testing.T) {
	a := &User{Email: "one@two.com"}
	b := &User{Email: "  One@Two.COM  "}
	require.Equal(t, a.GravatarParameter(), b.GravatarParameter())
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Jane Speaker", (&User{Name: "Jane Speaker"}).DisplayName())
	require.Equal(t, "Unnamed user", (&User{}).DisplayName())
}

func TestUserString(t *testing.T) {
	require.Equal(t, "Jane <jane@example.org>", (&User{Name: "Jane", Email: "jane@example.org"}).String())
	require.Equal(t, "jane@example.org", (&User{Email: "jane@example.org"}).String())
	require.Equal(t, "Unnamed user", (&User{}).String())
}

func TestHasAvatar(t *testing.T) {
	avatar := "avatars/jane.png"
	legacyFalse := "False"
	empty := ""

	require.False(t, (&User{}).HasAvatar())
	require.False(t, (&User{Avatar: &empty}).HasAvatar())
	require.False(t, (&User{Avatar: &legacyFalse}).HasAvatar())
	require.True(t, (&User{Avatar: &avatar}).HasAvatar())
	require.True(t, (&User{GetGravatar: true}).HasAvatar())
}

func TestGenerateCodeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := GenerateCode(CodeLength)
		require.Len(t, code, CodeLength)
		for _, c := range code {
			require.True(t, strings.ContainsRune(CodeCharset, c), "unexpected character %q in code %q", c, code)
		}
	}
}

func TestGenerateCodeDefaultsLength(t *testing.T) {
	require.Len(t, GenerateCode(0), CodeLength)
	require.Len(t, GenerateCode(-3), CodeLength)
	require.Len(t, GenerateCode(12), 12)
}

func TestGenerateResetToken(t *testing.T) {
	token := GenerateResetToken()
	require.Len(t, token, ResetTokenLength)
	require.NotEqual(t, token, GenerateResetToken())
}

func TestPlaceholderEmail(t *testing.T) {
	email := PlaceholderEmail()
	require.True(t, strings.HasPrefix(email, "deleted_user_"))
	require.True(t, strings.HasSuffix(email, "@localhost"))
}
