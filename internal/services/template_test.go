package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEndpointTemplateWithPlaceholder(t *testing.T) {
	tmpl, err := ParseEndpointTemplate("http://localhost:4001/audit/:address")
	require.NoError(t, err)
	require.True(t, tmpl.HasPlaceholder())
	require.Equal(t, "address", tmpl.Placeholder())
}

func TestParseEndpointTemplateWithoutPlaceholder(t *testing.T) {
	tmpl, err := ParseEndpointTemplate("http://localhost:4003/gas")
	require.NoError(t, err)
	require.False(t, tmpl.HasPlaceholder())
}

func TestParseEndpointTemplateRejectsMultiplePlaceholders(t *testing.T) {
	_, err := ParseEndpointTemplate("http://localhost:4001/:a/:b")
	require.Error(t, err)
}

func TestParseEndpointTemplateRejectsRelativeURL(t *testing.T) {
	_, err := ParseEndpointTemplate("/audit/:address")
	require.Error(t, err)

	_, err = ParseEndpointTemplate("ftp://host/file")
	require.Error(t, err)
}

func TestExpandSubstitutesEncodedParam(t *testing.T) {
	tmpl, err := ParseEndpointTemplate("http://localhost:4004/resolve/:ensOrAddress")
	require.NoError(t, err)

	require.Equal(t,
		"http://localhost:4004/resolve/vitalik.eth",
		tmpl.Expand("vitalik.eth"))

	require.Equal(t,
		"http://localhost:4004/resolve/a%2Fb",
		tmpl.Expand("a/b"))
}

func TestExpandWithSuffixSegments(t *testing.T) {
	tmpl, err := ParseEndpointTemplate("http://localhost:4001/audit/:address/report")
	require.NoError(t, err)

	require.Equal(t,
		"http://localhost:4001/audit/0xabc/report",
		tmpl.Expand("0xabc"))
}

func TestExpandSplitsAtPlaceholderSegment(t *testing.T) {
	// The placeholder text also appears in the host; the split must come
	// from the path segment, not the first textual occurrence.
	tmpl, err := ParseEndpointTemplate("http://localhost:80/run/:80")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:80/run/7", tmpl.Expand("7"))

	// A literal segment containing the placeholder name precedes the
	// real placeholder segment.
	tmpl, err = ParseEndpointTemplate("http://localhost:4001/x:address/:address")
	require.NoError(t, err)
	require.Equal(t,
		"http://localhost:4001/x:address/0xabc",
		tmpl.Expand("0xabc"))
}

func TestExpandIgnoresParamWithoutPlaceholder(t *testing.T) {
	tmpl, err := ParseEndpointTemplate("http://localhost:4003/gas")
	require.NoError(t, err)

	require.Equal(t, "http://localhost:4003/gas", tmpl.Expand("ignored"))
}

func TestExpandKeepsPlaceholderWithoutParam(t *testing.T) {
	tmpl, err := ParseEndpointTemplate("http://localhost:4002/score/:address")
	require.NoError(t, err)

	require.Equal(t, "http://localhost:4002/score/:address", tmpl.Expand(""))
}
