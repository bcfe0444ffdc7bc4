package xmp

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Format rewrites sidecar text into its canonical shape: one space of
// indentation per nesting level, the description element's attributes
// one per line with namespace declarations first and the rest ordered
// by qualified name, other elements rendered inline. Formatting is
// idempotent. Text that does not parse, or that carries mixed
// element-and-text content, is returned unchanged.
func Format(text string) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return text
	}
	out, ok := render(doc)
	if !ok {
		return text
	}
	return out
}

func render(doc *etree.Document) (string, bool) {
	var b strings.Builder
	if !renderTokens(&b, doc.Child, 0) {
		return "", false
	}
	return b.String(), true
}

func renderTokens(b *strings.Builder, tokens []etree.Token, depth int) bool {
	for _, tok := range tokens {
		switch t := tok.(type) {
		case *etree.Element:
			if !renderElement(b, t, depth) {
				return false
			}
		case *etree.CharData:
			// Structural whitespace is regenerated from scratch.
			if strings.TrimSpace(t.Data) != "" {
				return false
			}
		case *etree.ProcInst:
			writeIndent(b, depth)
			b.WriteString("<?")
			b.WriteString(t.Target)
			if t.Inst != "" {
				b.WriteByte(' ')
				b.WriteString(t.Inst)
			}
			b.WriteString("?>\n")
		case *etree.Comment:
			writeIndent(b, depth)
			b.WriteString("<!--")
			b.WriteString(t.Data)
			b.WriteString("-->\n")
		case *etree.Directive:
			writeIndent(b, depth)
			b.WriteString("<!")
			b.WriteString(t.Data)
			b.WriteString(">\n")
		}
	}
	return true
}

func renderElement(b *strings.Builder, el *etree.Element, depth int) bool {
	children := el.ChildElements()
	text := elementText(el)
	if len(children) > 0 && strings.TrimSpace(text) != "" {
		return false
	}
	writeIndent(b, depth)
	b.WriteByte('<')
	b.WriteString(el.FullTag())
	if el.Tag == descriptionTag && len(el.Attr) > 0 {
		attrs := append([]etree.Attr(nil), el.Attr...)
		sortDescriptionAttrs(attrs)
		for _, a := range attrs {
			b.WriteByte('\n')
			writeIndent(b, depth+2)
			writeAttr(b, a)
		}
	} else {
		for _, a := range el.Attr {
			b.WriteByte(' ')
			writeAttr(b, a)
		}
	}
	switch {
	case len(children) > 0:
		b.WriteString(">\n")
		if !renderTokens(b, el.Child, depth+1) {
			return false
		}
		writeIndent(b, depth)
		b.WriteString("</")
		b.WriteString(el.FullTag())
		b.WriteString(">\n")
	case strings.TrimSpace(text) != "":
		b.WriteByte('>')
		b.WriteString(escapeText(text))
		b.WriteString("</")
		b.WriteString(el.FullTag())
		b.WriteString(">\n")
	default:
		b.WriteString("/>\n")
	}
	return true
}

// sortDescriptionAttrs orders namespace declarations first, then
// everything else, each group alphabetical by qualified name. The sort
// is stable so equal keys keep their parsed order.
func sortDescriptionAttrs(attrs []etree.Attr) {
	sort.SliceStable(attrs, func(i, j int) bool {
		ni, nj := isNamespaceDecl(attrs[i]), isNamespaceDecl(attrs[j])
		if ni != nj {
			return ni
		}
		return attrs[i].FullKey() < attrs[j].FullKey()
	})
}

func isNamespaceDecl(a etree.Attr) bool {
	return a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns")
}

func elementText(el *etree.Element) string {
	var b strings.Builder
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return b.String()
}

func writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteByte(' ')
	}
}

func writeAttr(b *strings.Builder, a etree.Attr) {
	b.WriteString(a.FullKey())
	b.WriteString(`="`)
	b.WriteString(escapeAttr(a.Value))
	b.WriteByte('"')
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\t", "&#x9;",
	"\n", "&#xA;",
	"\r", "&#xD;",
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
func escapeText(s string) string { return textEscaper.Replace(s) }
