package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantLen int
	}{
		{"128-bit token", TokenSize128, 22},
		{"256-bit token", TokenSize256, 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.wantLen)

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestFingerprintToken(t *testing.T) {
	fp1a := FingerprintToken("test-token-1")
	fp1b := FingerprintToken("test-token-1")
	fp2 := FingerprintToken("test-token-2")

	require.Equal(t, fp1a, fp1b, "fingerprint should be deterministic")
	require.NotEqual(t, fp1a, fp2, "different tokens should have different fingerprints")
	require.Len(t, fp1a, 43, "SHA-256 base64url should be 43 chars")
}

func TestGenerateNumericCode(t *testing.T) {
	for range 200 {
		code, err := GenerateNumericCode(DefaultCodeLength)
		require.NoError(t, err)
		require.Len(t, code, DefaultCodeLength)
		require.Equal(t, "", strings.Trim(code, "0123456789"), "code should be digits only: %q", code)
	}
}

func TestGenerateNumericCode_ZeroPadded(t *testing.T) {
	// Values below 10 come back as "0X"; roughly one draw in ten.
	sawLeadingZero := false
	for range 2000 {
		code, err := GenerateNumericCode(2)
		require.NoError(t, err)
		require.Len(t, code, 2)
		if code[0] == '0' {
			sawLeadingZero = true
			break
		}
	}
	require.True(t, sawLeadingZero)
}

func TestGenerateNumericCode_DigitDistribution(t *testing.T) {
	const draws = 20000
	counts := make(map[byte]int, 10)
	for range draws {
		code, err := GenerateNumericCode(1)
		require.NoError(t, err)
		counts[code[0]]++
	}

	require.Len(t, counts, 10)
	for digit, n := range counts {
		// Expected 2000 per digit; allow a wide margin so this never flakes.
		require.InDelta(t, draws/10, n, 400, "digit %c", digit)
	}
}

func TestGenerateNumericCode_InvalidLength(t *testing.T) {
	for _, length := range []int{0, -3, 19} {
		_, err := GenerateNumericCode(length)
		require.Error(t, err)
	}
}
