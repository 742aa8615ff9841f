package server

import (
	"bytes"
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// highlightStyle is the chroma style compiled into /static/highlight.css.
const highlightStyle = "github"

// pageTemplate wraps the rendered README fragment in a full document. The
// websocket script reloads the page when the server broadcasts.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<link rel="stylesheet" href="/static/highlight.css">
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; color: #1f2328; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d1d9e0; padding: 0.3rem 0.6rem; }
code { background: #f6f8fa; padding: 0.1rem 0.3rem; border-radius: 3px; }
a { color: #0969da; }
</style>
</head>
<body>
%s
<script>
(function () {
  var url = (location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws";
  var ws = new WebSocket(url);
  ws.onmessage = function () { location.reload(); };
})();
</script>
</body>
</html>
`

// emptyShelfFragment is shown before the first publish.
const emptyShelfFragment = `<h1>%s</h1>
<p>The shelf is empty. Run <code>texshelf build --publish</code> to add the
first artifact.</p>`

// pageRenderer turns the shelf README into the index page.
type pageRenderer struct {
	project string
	md      goldmark.Markdown
	css     []byte
}

func newPageRenderer(project string) (*pageRenderer, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // the README uses tables
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // styles come from /static/highlight.css
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			htmlrenderer.WithXHTML(),
		),
	)

	style := styles.Get(highlightStyle)
	var css bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&css, style); err != nil {
		return nil, fmt.Errorf("building highlight stylesheet: %w", err)
	}

	return &pageRenderer{project: project, md: md, css: css.Bytes()}, nil
}

// render converts README markdown to the full HTML page.
func (p *pageRenderer) render(markdown []byte) ([]byte, error) {
	var fragment bytes.Buffer
	if err := p.md.Convert(markdown, &fragment); err != nil {
		return nil, fmt.Errorf("rendering README: %w", err)
	}
	title := fmt.Sprintf("PDF shelf for %s", p.project)
	page := fmt.Sprintf(pageTemplate, html.EscapeString(title), fragment.String())
	return []byte(page), nil
}

// renderEmpty is the page served when no README exists yet.
func (p *pageRenderer) renderEmpty() []byte {
	title := fmt.Sprintf("PDF shelf for %s", p.project)
	fragment := fmt.Sprintf(emptyShelfFragment, html.EscapeString(p.project))
	return []byte(fmt.Sprintf(pageTemplate, html.EscapeString(title), fragment))
}

// handleIndex serves the rendered shelf README.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// The page must pick up every publish; the websocket only helps pages
	// that are already open.
	w.Header().Set("Cache-Control", "no-store")

	readmePath := filepath.Join(s.shelf.Dir(), "README.md")
	markdown, err := os.ReadFile(readmePath) // #nosec G304 -- fixed name inside the shelf directory
	if err != nil {
		if os.IsNotExist(err) {
			_, _ = w.Write(s.page.renderEmpty())
			return
		}
		s.logger.Error().Err(err).Str("event", "server.page_error").Msg("reading README")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page, err := s.page.render(markdown)
	if err != nil {
		s.logger.Error().Err(err).Str("event", "server.page_error").Msg("rendering README")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(page)
}

// handleHighlightCSS serves the chroma stylesheet built at startup.
func (s *Server) handleHighlightCSS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(s.page.css)
}
