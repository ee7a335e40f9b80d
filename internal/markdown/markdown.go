// Package markdown 把助手回复中的 Markdown 转成适合终端显示的文本。
package markdown

import (
	"strconv"
	"strings"

	bf "github.com/russross/blackfriday/v2"
)

// Styles 决定强调、标题等元素的显示方式，未设置的项原样输出
type Styles struct {
	Heading func(string) string
	Strong  func(string) string
	Emph    func(string) string
	Code    func(string) string
	Link    func(string) string
}

func identity(s string) string { return s }

func (s Styles) withDefaults() Styles {
	for _, f := range []*func(string) string{&s.Heading, &s.Strong, &s.Emph, &s.Code, &s.Link} {
		if *f == nil {
			*f = identity
		}
	}
	return s
}

// Plain 去掉所有 Markdown 标记
func Plain(src string) string {
	return Render(src, Styles{})
}

// Render 解析 src 并按 styles 输出，块之间用空行分隔
func Render(src string, styles Styles) string {
	doc := bf.New(bf.WithExtensions(bf.CommonExtensions)).Parse([]byte(src))
	r := renderer{st: styles.withDefaults()}
	return strings.Join(r.children(doc), "\n\n")
}

type renderer struct {
	st Styles
}

func (r renderer) children(n *bf.Node) []string {
	var out []string
	for c := n.FirstChild; c != nil; c = c.Next {
		if s := r.block(c); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r renderer) block(n *bf.Node) string {
	switch n.Type {
	case bf.Paragraph:
		return strings.TrimSpace(r.inlines(n))
	case bf.Heading:
		return r.st.Heading(strings.TrimSpace(r.inlines(n)))
	case bf.List:
		return r.list(n)
	case bf.Item:
		return strings.Join(r.children(n), "\n")
	case bf.CodeBlock:
		code := strings.TrimRight(string(n.Literal), "\n")
		return prefixLines(r.st.Code(code), "  ")
	case bf.BlockQuote:
		return prefixLines(strings.Join(r.children(n), "\n"), "│ ")
	case bf.HorizontalRule:
		return "────────"
	case bf.HTMLBlock:
		return strings.TrimSpace(string(n.Literal))
	case bf.Table:
		return r.table(n)
	}
	return r.inlines(n)
}

func (r renderer) list(n *bf.Node) string {
	var lines []string
	i := 1
	for item := n.FirstChild; item != nil; item = item.Next {
		marker := "• "
		if n.ListFlags&bf.ListTypeOrdered != 0 {
			marker = strconv.Itoa(i) + ". "
		}
		body := prefixLines(r.block(item), strings.Repeat(" ", len([]rune(marker))))
		lines = append(lines, marker+strings.TrimLeft(body, " "))
		i++
	}
	return strings.Join(lines, "\n")
}

func (r renderer) table(n *bf.Node) string {
	var rows []string
	var walk func(*bf.Node)
	walk = func(n *bf.Node) {
		for c := n.FirstChild; c != nil; c = c.Next {
			if c.Type != bf.TableRow {
				walk(c)
				continue
			}
			var cells []string
			for cell := c.FirstChild; cell != nil; cell = cell.Next {
				text := strings.TrimSpace(r.inlines(cell))
				if cell.IsHeader {
					text = r.st.Strong(text)
				}
				cells = append(cells, text)
			}
			rows = append(rows, strings.Join(cells, " | "))
		}
	}
	walk(n)
	return strings.Join(rows, "\n")
}

func (r renderer) inlines(n *bf.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.Next {
		b.WriteString(r.inline(c))
	}
	return b.String()
}

func (r renderer) inline(n *bf.Node) string {
	switch n.Type {
	case bf.Text, bf.HTMLSpan:
		return string(n.Literal)
	case bf.Code:
		return r.st.Code(string(n.Literal))
	case bf.Strong:
		return r.st.Strong(r.inlines(n))
	case bf.Emph:
		return r.st.Emph(r.inlines(n))
	case bf.Softbreak, bf.Hardbreak:
		return "\n"
	case bf.Link:
		text := r.inlines(n)
		dest := string(n.LinkData.Destination)
		if dest == "" || dest == text {
			return r.st.Link(text)
		}
		return text + " (" + r.st.Link(dest) + ")"
	}
	return r.inlines(n)
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
