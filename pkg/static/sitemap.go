package static

import (
	"fmt"
	"io/fs"

	"github.com/beevik/etree"
	"github.com/bmatcuk/doublestar/v4"
)

// sitemapNamespace is the sitemap protocol namespace.
const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Sitemap enumerates every served HTML file under fsys into a sitemap XML
// document. Each discovered file path is mapped through the inverted
// rewrite rules to recover its canonical URL, clean-URL stripped when
// enabled, joined onto basePath, and resolved against origin (scheme and
// host, no trailing slash).
//
// Entries appear in file-discovery order, which follows the filesystem
// glob and is not contractually sorted.
func Sitemap(fsys fs.FS, rules []Rule, cleanURLs bool, basePath, origin string) ([]byte, error) {
	files, err := doublestar.Glob(fsys, "**/*.html")
	if err != nil {
		return nil, fmt.Errorf("discovering html files: %w", err)
	}

	inverted := Invert(rules)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	urlset := doc.CreateElement("urlset")
	urlset.CreateAttr("xmlns", sitemapNamespace)

	for _, file := range files {
		p := applyFirst(inverted, "/"+file)
		if cleanURLs {
			p = cleanURL(p)
		}
		loc := urlset.CreateElement("url").CreateElement("loc")
		loc.SetText(origin + joinBase(basePath, p))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}
