package xmp

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

type edit struct {
	name   string
	value  string
	remove bool
}

// SetAttribute writes a single description attribute and returns the
// resulting Document. The value replaces an existing attribute in
// place; a new attribute is appended to the opening tag. Every
// mutation also stamps xmp:ModifyDate with now and runs the result
// through Format.
func (d *Document) SetAttribute(name, value string, now time.Time) *Document {
	return d.apply(edit{name: name, value: value}, now)
}

// RemoveAttribute deletes a description attribute. Removing an absent
// attribute still stamps xmp:ModifyDate, matching SetAttribute.
func (d *Document) RemoveAttribute(name string, now time.Time) *Document {
	return d.apply(edit{name: name, remove: true}, now)
}

// UpdateRating writes xmp:Rating. The attribute is always written,
// zero included, so an unrated photo is distinguishable from a sidecar
// some other tool stripped the rating from.
func (d *Document) UpdateRating(rating int, now time.Time) *Document {
	return d.SetAttribute(AttrRating, strconv.Itoa(clampRating(rating)), now)
}

// UpdateLabel writes xmp:Label, or removes it when label is empty.
func (d *Document) UpdateLabel(label string, now time.Time) *Document {
	if label == "" {
		return d.RemoveAttribute(AttrLabel, now)
	}
	return d.SetAttribute(AttrLabel, label, now)
}

// apply routes an edit through the XML tree when the text parses and
// falls back to textual splicing when it does not. Either way the
// mutation never errors: the worst malformed input gets is a
// best-effort splice of the one attribute asked for.
func (d *Document) apply(e edit, now time.Time) *Document {
	stamp := now.Format(TimeFormat)
	text, ok := treeEdit(d.text, e, stamp)
	if !ok {
		text = Format(textEdit(d.text, e, stamp))
	}
	return Parse(text)
}

// treeEdit mutates the parsed tree and re-renders it in canonical
// form. Returns false when the text does not parse or has no
// description element, handing the edit to the textual path.
func treeEdit(text string, e edit, stamp string) (string, bool) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return "", false
	}
	desc := findDescription(doc.ChildElements())
	if desc == nil {
		return "", false
	}
	if e.remove {
		desc.RemoveAttr(e.name)
	} else {
		desc.CreateAttr(e.name, e.value)
	}
	desc.CreateAttr(AttrModifyDate, stamp)
	out, ok := render(doc)
	if !ok {
		return "", false
	}
	return out, true
}

// textEdit splices the edit and the xmp:ModifyDate stamp directly into
// the source text.
func textEdit(text string, e edit, stamp string) string {
	text = spliceAttr(text, e)
	return spliceAttr(text, edit{name: AttrModifyDate, value: stamp})
}

func spliceAttr(text string, e edit) string {
	start, end := descriptionRange(text)
	if e.remove {
		if start < 0 {
			return text
		}
		re := regexp.MustCompile(`\s+` + regexp.QuoteMeta(e.name) + `\s*=\s*"[^"]*"`)
		return text[:start] + re.ReplaceAllString(text[start:end], "") + text[end:]
	}
	escaped := escapeAttr(e.value)
	if start >= 0 {
		region := text[start:end]
		re := regexp.MustCompile(`(\s` + regexp.QuoteMeta(e.name) + `\s*=\s*")[^"]*"`)
		if loc := re.FindStringSubmatchIndex(region); loc != nil {
			// Replace just the quoted value.
			return text[:start] + region[:loc[3]] + escaped + `"` + region[loc[1]:] + text[end:]
		}
		return insertAttr(text, end, e.name, escaped)
	}
	// No description tag at all. Splice into whatever opening tag
	// comes first, or append when the text has no tags either.
	if gt := strings.IndexByte(text, '>'); gt >= 0 {
		return insertAttr(text, gt, e.name, escaped)
	}
	return text + ` ` + e.name + `="` + escaped + `"`
}

// insertAttr places a new attribute immediately before the '>' at gt,
// staying inside the tag when it is self-closing.
func insertAttr(text string, gt int, name, escaped string) string {
	at := gt
	if at > 0 && text[at-1] == '/' {
		at--
	}
	return text[:at] + ` ` + name + `="` + escaped + `"` + text[at:]
}
