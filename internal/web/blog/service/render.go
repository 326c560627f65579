package service

import (
	"bytes"
	"io"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const codeStyle = "github"

var codeFormatter = chromahtml.New(chromahtml.WithClasses(true))

// ParseMarkdown2HTML renders a post body. Fenced code blocks are
// highlighted with css classes, links open in a new tab.
func ParseMarkdown2HTML(md []byte) string {
	opts := html.RendererOptions{
		Flags:          html.CommonFlags | html.HrefTargetBlank,
		RenderNodeHook: renderCodeBlock,
	}
	doc := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs).Parse(md)
	return string(markdown.Render(doc, html.NewRenderer(opts)))
}

// renderCodeBlock falls back to the default renderer when highlighting fails.
func renderCodeBlock(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	code, ok := node.(*ast.CodeBlock)
	if !ok || !entering {
		return ast.GoToNext, false
	}

	var buf bytes.Buffer
	if err := highlightCode(&buf, string(code.Literal), string(code.Info)); err != nil {
		return ast.GoToNext, false
	}

	_, _ = io.WriteString(w, `<div class="highlight">`)
	_, _ = buf.WriteTo(w)
	_, _ = io.WriteString(w, "</div>\n")
	return ast.GoToNext, true
}

func highlightCode(w io.Writer, code, lang string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(codeStyle)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return err
	}

	return codeFormatter.Format(w, style, iterator)
}

// Truncate truncate string to n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}

	var count int
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}

	return s
}
