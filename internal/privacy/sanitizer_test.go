package privacy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeEmailAndSSN(t *testing.T) {
	in := "Contact John at john@x.com, SSN 123-45-6789"
	out := Sanitize(in)
	require.Contains(t, out, "[EMAIL]")
	require.Contains(t, out, "[SSN]")
	require.NotContains(t, out, "john@x.com")
	require.NotContains(t, out, "123-45-6789")
}

func TestSanitizeByType(t *testing.T) {
	cases := []struct {
		in  string
		tag string
	}{
		{"call 555-867-5309 today", "[PHONE]"},
		{"born 04/15/1987 in Ohio", "[DOB]"},
		{"seen by Dr. Jane Smith", "[NAME]"},
		{"lives at 42 Maple Street", "[ADDRESS]"},
		{"MRN: 99887766 on file", "[MRN]"},
	}
	for _, tc := range cases {
		require.Contains(t, Sanitize(tc.in), tc.tag, "input %q", tc.in)
	}
}

func TestSanitizeLeavesCleanTextAlone(t *testing.T) {
	in := "Your deductible is $1,500 and your copay is $30."
	require.Equal(t, in, Sanitize(in))
}

func TestSensitiveColumn(t *testing.T) {
	require.True(t, SensitiveColumn("Patient_Name"))
	require.True(t, SensitiveColumn("member_id"))
	require.True(t, SensitiveColumn("SSN"))
	require.False(t, SensitiveColumn("Total_Claimed"))
	require.False(t, SensitiveColumn("Provider"))
}
