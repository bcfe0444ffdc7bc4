package xmp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Attribute names the library reads and writes. All other attributes
// pass through untouched.
const (
	AttrRating       = "xmp:Rating"
	AttrLabel        = "xmp:Label"
	AttrCreateDate   = "xmp:CreateDate"
	AttrModifyDate   = "xmp:ModifyDate"
	AttrCreator      = "dc:creator"
	AttrRights       = "dc:rights"
	AttrCameraModel  = "tiff:Model"
	AttrLens         = "aux:Lens"
	AttrFocalLength  = "exif:FocalLength"
	AttrAperture     = "exif:FNumber"
	AttrShutterSpeed = "exif:ExposureTime"
	AttrISO          = "exif:ISOSpeedRatings"
	AttrExposureBias = "exif:ExposureBiasValue"
)

// TimeFormat is the layout used for xmp:ModifyDate stamps.
const TimeFormat = "2006-01-02T15:04:05-07:00"

const descriptionTag = "Description"

// Document is an immutable snapshot of one sidecar. It keeps the
// verbatim source text alongside the extracted values, so unknown
// attributes and elements survive every edit. Mutations return a new
// Document and leave the receiver untouched.
type Document struct {
	text    string
	attrs   map[string]string
	creator string
	rights  string
	iso     string
}

// Parse reads sidecar text into a Document. It extracts the attributes
// of the first description element plus the handful of list-valued
// elements (creator, rights, ISO). Returns nil for empty input.
// Malformed input is never rejected, extraction just finds less.
func Parse(text string) *Document {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	d := &Document{text: text, attrs: make(map[string]string)}
	if !d.parseTree() {
		d.parseText()
	}
	return d
}

func (d *Document) parseTree() bool {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(d.text); err != nil {
		return false
	}
	desc := findDescription(doc.ChildElements())
	if desc == nil {
		return false
	}
	for _, a := range desc.Attr {
		key := a.FullKey()
		if _, ok := d.attrs[key]; !ok {
			d.attrs[key] = a.Value
		}
	}
	d.creator = firstListItem(desc, "dc", "creator")
	d.rights = firstListItem(desc, "dc", "rights")
	d.iso = firstListItem(desc, "exif", "ISOSpeedRatings")
	return true
}

// findDescription returns the first description element in document
// order. Sidecars written by other tools occasionally carry more than
// one; everything past the first is opaque text to us.
func findDescription(elems []*etree.Element) *etree.Element {
	for _, el := range elems {
		if el.Tag == descriptionTag {
			return el
		}
		if found := findDescription(el.ChildElements()); found != nil {
			return found
		}
	}
	return nil
}

// firstListItem resolves wrapper elements like dc:creator to the text
// of the first rdf:li inside them. Seq, Alt and Bag wrappers all get
// the same treatment.
func firstListItem(desc *etree.Element, space, tag string) string {
	wrapper := findElement(desc.ChildElements(), space, tag)
	if wrapper == nil {
		return ""
	}
	li := findListElement(wrapper.ChildElements())
	if li == nil {
		return ""
	}
	return li.Text()
}

func findElement(elems []*etree.Element, space, tag string) *etree.Element {
	for _, el := range elems {
		if el.Space == space && el.Tag == tag {
			return el
		}
		if found := findElement(el.ChildElements(), space, tag); found != nil {
			return found
		}
	}
	return nil
}

func findListElement(elems []*etree.Element) *etree.Element {
	for _, el := range elems {
		if el.Tag == "li" {
			return el
		}
		if found := findListElement(el.ChildElements()); found != nil {
			return found
		}
	}
	return nil
}

var (
	attrPairRe = regexp.MustCompile(`([A-Za-z_][\w.-]*(?::[\w.-]+)?)\s*=\s*"([^"]*)"`)
	listItemRe = regexp.MustCompile(`(?s)<(?:[A-Za-z_][\w.-]*:)?li(?:\s[^>]*)?>(.*?)</(?:[A-Za-z_][\w.-]*:)?li>`)
)

// parseText is the extraction path for input the XML parser rejects.
// It scans the first description opening tag for attribute pairs and
// the wrapper elements for list items.
func (d *Document) parseText() {
	start, end := descriptionRange(d.text)
	if start >= 0 {
		for _, m := range attrPairRe.FindAllStringSubmatch(d.text[start:end], -1) {
			if _, ok := d.attrs[m[1]]; !ok {
				d.attrs[m[1]] = unescape(m[2])
			}
		}
	}
	d.creator = textListItem(d.text, "dc", "creator")
	d.rights = textListItem(d.text, "dc", "rights")
	d.iso = textListItem(d.text, "exif", "ISOSpeedRatings")
}

func textListItem(text, space, tag string) string {
	open := "<" + space + ":" + tag
	idx := strings.Index(text, open)
	if idx < 0 {
		return ""
	}
	closeTag := "</" + space + ":" + tag + ">"
	stop := strings.Index(text[idx:], closeTag)
	if stop < 0 {
		return ""
	}
	m := listItemRe.FindStringSubmatch(text[idx : idx+stop])
	if m == nil {
		return ""
	}
	return unescape(m[1])
}

// descriptionRange locates the first description opening tag and
// returns the byte offsets of its '<' and its closing '>'. Quoted
// attribute values may contain '>', so the scan tracks quoting.
// Returns (-1, -1) when no description tag exists.
func descriptionRange(text string) (int, int) {
	loc := descOpenRe.FindStringIndex(text)
	if loc == nil {
		return -1, -1
	}
	inQuote := false
	for i := loc[0]; i < len(text); i++ {
		switch text[i] {
		case '"':
			inQuote = !inQuote
		case '>':
			if !inQuote {
				return loc[0], i
			}
		}
	}
	return -1, -1
}

var descOpenRe = regexp.MustCompile(`<(?:[A-Za-z_][\w.-]*:)?Description[\s/>]`)

var unescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func unescape(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	return unescaper.Replace(s)
}

// Text returns the verbatim sidecar text.
func (d *Document) Text() string {
	return d.text
}

// Attr looks up a description attribute by its qualified name.
func (d *Document) Attr(name string) (string, bool) {
	v, ok := d.attrs[name]
	return v, ok
}

// Rating returns the star rating, 0 through 5. Zero means unrated;
// values that do not parse count as unrated.
func (d *Document) Rating() int {
	n, err := strconv.Atoi(strings.TrimSpace(d.attrs[AttrRating]))
	if err != nil {
		return 0
	}
	return clampRating(n)
}

func clampRating(n int) int {
	if n < 0 {
		return 0
	}
	if n > 5 {
		return 5
	}
	return n
}

// Label returns the color label, empty when unlabeled.
func (d *Document) Label() string {
	return d.attrs[AttrLabel]
}

// Creator prefers the nested dc:creator list over a flat attribute of
// the same name.
func (d *Document) Creator() string {
	if d.creator != "" {
		return d.creator
	}
	return d.attrs[AttrCreator]
}

// Rights prefers the nested dc:rights list over a flat attribute of
// the same name.
func (d *Document) Rights() string {
	if d.rights != "" {
		return d.rights
	}
	return d.attrs[AttrRights]
}

// ISO prefers the nested ISOSpeedRatings list over a flat attribute.
func (d *Document) ISO() string {
	if d.iso != "" {
		return d.iso
	}
	return d.attrs[AttrISO]
}

func (d *Document) CreateDate() string   { return d.attrs[AttrCreateDate] }
func (d *Document) ModifyDate() string   { return d.attrs[AttrModifyDate] }
func (d *Document) CameraModel() string  { return d.attrs[AttrCameraModel] }
func (d *Document) Lens() string         { return d.attrs[AttrLens] }
func (d *Document) FocalLength() string  { return d.attrs[AttrFocalLength] }
func (d *Document) Aperture() string     { return d.attrs[AttrAperture] }
func (d *Document) ShutterSpeed() string { return d.attrs[AttrShutterSpeed] }
func (d *Document) ExposureBias() string { return d.attrs[AttrExposureBias] }
