package htmlutil

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CellTexts returns the per-node flattened text of a selection, with
// non-printable runes dropped. Whitespace is preserved for the caller to
// normalize.
func CellTexts(sel *goquery.Selection) []string {
	texts := make([]string, 0, len(sel.Nodes))
	for _, n := range sel.Nodes {
		texts = append(texts, removeNonPrintable(GetText(n)))
	}
	return texts
}
