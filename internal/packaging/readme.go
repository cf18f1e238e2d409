package packaging

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

// MarkdownFromHTML converts an HTML description into Markdown. Headings,
// paragraphs, lists, links, emphasis, and code spans are rendered; unknown
// elements contribute their text content only.
func MarkdownFromHTML(source string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "packaging", "readme", "parse description html", err)
	}

	var builder strings.Builder
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	body.Contents().Each(func(_ int, sel *goquery.Selection) {
		for _, node := range sel.Nodes {
			renderNode(&builder, node)
		}
	})

	markdown := blankLines.ReplaceAllString(builder.String(), "\n\n")
	return strings.TrimSpace(markdown) + "\n", nil
}

// WriteMarkdownCompanion reads an HTML file and writes the converted
// Markdown next to it, swapping the extension for .md. Returns the path of
// the Markdown file.
func WriteMarkdownCompanion(htmlPath string) (string, error) {
	raw, err := os.ReadFile(htmlPath)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "packaging", "readme", fmt.Sprintf("read %s", htmlPath), err)
	}
	markdown, err := MarkdownFromHTML(string(raw))
	if err != nil {
		return "", err
	}
	mdPath := strings.TrimSuffix(htmlPath, ".html")
	mdPath = strings.TrimSuffix(mdPath, ".htm") + ".md"
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return "", services.Wrap(nil, "packaging", "readme", fmt.Sprintf("write %s", mdPath), err)
	}
	return mdPath, nil
}

func renderNode(builder *strings.Builder, node *html.Node) {
	switch node.Type {
	case html.TextNode:
		builder.WriteString(collapseSpace(node.Data))
		return
	case html.ElementNode:
	default:
		return
	}

	switch node.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(node.Data[1] - '0')
		builder.WriteString("\n\n" + strings.Repeat("#", level) + " ")
		renderChildren(builder, node)
		builder.WriteString("\n\n")
	case "p", "div":
		builder.WriteString("\n\n")
		renderChildren(builder, node)
		builder.WriteString("\n\n")
	case "br":
		builder.WriteString("\n")
	case "hr":
		builder.WriteString("\n\n---\n\n")
	case "strong", "b":
		builder.WriteString("**")
		renderChildren(builder, node)
		builder.WriteString("**")
	case "em", "i":
		builder.WriteString("*")
		renderChildren(builder, node)
		builder.WriteString("*")
	case "code":
		builder.WriteString("`")
		builder.WriteString(textContent(node))
		builder.WriteString("`")
	case "pre":
		builder.WriteString("\n\n```\n")
		builder.WriteString(strings.TrimRight(textContent(node), "\n"))
		builder.WriteString("\n```\n\n")
	case "a":
		href := attrValue(node, "href")
		text := strings.TrimSpace(textContent(node))
		if text == "" {
			text = href
		}
		if href == "" {
			builder.WriteString(text)
		} else {
			fmt.Fprintf(builder, "[%s](%s)", text, href)
		}
	case "img":
		fmt.Fprintf(builder, "![%s](%s)", attrValue(node, "alt"), attrValue(node, "src"))
	case "ul", "ol":
		builder.WriteString("\n\n")
		ordered := node.Data == "ol"
		position := 1
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode || child.Data != "li" {
				continue
			}
			if ordered {
				fmt.Fprintf(builder, "%d. ", position)
				position++
			} else {
				builder.WriteString("- ")
			}
			var item strings.Builder
			renderChildren(&item, child)
			builder.WriteString(strings.TrimSpace(item.String()))
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	case "script", "style", "head":
	default:
		renderChildren(builder, node)
	}
}

func renderChildren(builder *strings.Builder, node *html.Node) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		renderNode(builder, child)
	}
}

func textContent(node *html.Node) string {
	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(current *html.Node) {
		if current.Type == html.TextNode {
			builder.WriteString(current.Data)
		}
		for child := current.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return builder.String()
}

func attrValue(node *html.Node, name string) string {
	for _, attr := range node.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func collapseSpace(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	fields := strings.Fields(text)
	joined := strings.Join(fields, " ")
	if startsWithSpace(text) {
		joined = " " + joined
	}
	if endsWithSpace(text) {
		joined += " "
	}
	return joined
}

func startsWithSpace(text string) bool {
	return len(text) > 0 && (text[0] == ' ' || text[0] == '\n' || text[0] == '\t' || text[0] == '\r')
}

func endsWithSpace(text string) bool {
	last := text[len(text)-1]
	return last == ' ' || last == '\n' || last == '\t' || last == '\r'
}
