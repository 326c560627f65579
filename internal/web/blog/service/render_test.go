package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMarkdown2HTML(t *testing.T) {
	out := ParseMarkdown2HTML([]byte("## Title\n\n[link](https://example.com)\n\n```go\nfunc main() {}\n```\n"))

	require.Contains(t, out, `<h2 id="title">Title</h2>`)
	require.Contains(t, out, `target="_blank"`)
	require.Contains(t, out, `<div class="highlight">`)
	require.Contains(t, out, `class="chroma"`)
	require.NotContains(t, out, "<code class=\"language-go\">")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "你好", Truncate("你好世界", 2))
	require.Equal(t, "abc", Truncate("abc", 10))
	require.Equal(t, "abc", Truncate("abc", 0))
}
