package recipe

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://example.org/chef/"

func mustConfig(t *testing.T, text string) Config {
	t.Helper()
	cfg, err := ParseConfig(text)
	require.NoError(t, err)
	return cfg
}

func TestBuildShareableLink(t *testing.T) {
	cfg := mustConfig(t, `[{"op":"To Hex","args":["Space"]}]`)
	encodedRecipe := "%5B%7B%22op%22%3A%22To%20Hex%22%2C%22args%22%3A%5B%22Space%22%5D%7D%5D"

	t.Run("Should include recipe only when input is empty", func(t *testing.T) {
		link := BuildShareableLink(base, cfg, nil, true, true)
		assert.Equal(t, base+"?recipe="+encodedRecipe, link)
	})

	t.Run("Should append input after recipe", func(t *testing.T) {
		link := BuildShareableLink(base, cfg, []byte("hello"), true, true)
		assert.Equal(t, base+"?recipe="+encodedRecipe+"&input=aGVsbG8", link)
	})

	t.Run("Should attach input with ? when recipe is not requested", func(t *testing.T) {
		link := BuildShareableLink(base, cfg, []byte("hello"), false, true)
		assert.Equal(t, base+"?input=aGVsbG8", link)
	})

	t.Run("Should never include an empty recipe", func(t *testing.T) {
		assert.Equal(t, base, BuildShareableLink(base, Config{}, nil, true, false))
		assert.Equal(t, base+"?input=aGVsbG8", BuildShareableLink(base, nil, []byte("hello"), true, true))
	})

	t.Run("Should honour neither flag", func(t *testing.T) {
		assert.Equal(t, base, BuildShareableLink(base, cfg, []byte("hello"), false, false))
	})

	t.Run("Should percent-encode base64 symbols without padding", func(t *testing.T) {
		link := BuildShareableLink(base, nil, []byte{0xfb, 0xff}, false, true)
		assert.Equal(t, base+"?input=%2B%2F8", link)
	})

	t.Run("Should keep input just under the length bound", func(t *testing.T) {
		input := bytes.Repeat([]byte("a"), 5999) // encodes to 7999 chars
		link := BuildShareableLink(base, nil, input, false, true)
		assert.True(t, strings.HasPrefix(link, base+"?input="))
		assert.Len(t, strings.TrimPrefix(link, base+"?input="), 7999)
	})

	t.Run("Should drop input at the length bound", func(t *testing.T) {
		input := bytes.Repeat([]byte("a"), 6000) // encodes to exactly 8000 chars
		assert.Equal(t, base+"?recipe="+encodedRecipe, BuildShareableLink(base, cfg, input, true, true))
		assert.Equal(t, base, BuildShareableLink(base, cfg, input, false, true))
	})

	t.Run("Should round-trip through a URL parser", func(t *testing.T) {
		link := BuildShareableLink(base, cfg, []byte("a b+c"), true, true)
		u, err := url.Parse(link)
		require.NoError(t, err)

		q := u.Query()
		assert.Equal(t, cfg.String(), q.Get("recipe"))
		assert.Equal(t, "YSBiK2M", q.Get("input"))
	})

	t.Run("Should not mutate inputs", func(t *testing.T) {
		input := []byte("hello")
		before := cfg.String()
		BuildShareableLink(base, cfg, input, true, true)
		assert.Equal(t, "hello", string(input))
		assert.Equal(t, before, cfg.String())
	})
}

func TestEncodeURIComponent(t *testing.T) {
	cases := map[string]string{
		"abcXYZ019":   "abcXYZ019",
		"-_.!~*'()":   "-_.!~*'()",
		"a b":         "a%20b",
		"+/=&?#":      "%2B%2F%3D%26%3F%23",
		"é":           "%C3%A9",
		`{"k":"<v>"}`: "%7B%22k%22%3A%22%3Cv%3E%22%7D",
	}
	for in, want := range cases {
		assert.Equal(t, want, EncodeURIComponent(in), in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 120))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "exactly10!", Truncate("exactly10!", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))

	long := strings.Repeat("x", 200)
	assert.Len(t, Truncate(long, DisplayLinkLength), DisplayLinkLength)
}

func TestBugReport(t *testing.T) {
	cfg := mustConfig(t, `[{"op":"From Base64","args":[]}]`)
	report := BugReport(ReportInfo{
		BaseURL:   "https://gchq.github.io/CyberChef/",
		Recipe:    cfg,
		Input:     []byte("hi"),
		Version:   "1.2.3",
		UserAgent: "test-agent/1.0",
	})

	assert.Contains(t, report, "* Build: 1.2.3\n")
	assert.Contains(t, report, "* User-Agent: \ntest-agent/1.0\n")
	assert.Contains(t, report, "* [Link to reproduce](https://gchq.github.io/CyberChef/?recipe=")
	assert.Contains(t, report, "&input=aGk)")
	assert.True(t, strings.HasSuffix(report, "\n\n"))
}
