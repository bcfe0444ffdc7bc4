package xmp

import "time"

const template = `<x:xmpmeta xmlns:x="adobe:ns:meta/" x:xmptk="Imagin 1.0">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:xmp="http://ns.adobe.com/xap/1.0/"/>
 </rdf:RDF>
</x:xmpmeta>
`

// Create produces sidecar text for a photo that has none yet. The
// document starts from a fixed template and the rating and label go
// through the same mutation path as edits to an existing sidecar, so a
// created document and an edited one come out structurally identical.
func Create(rating int, label string, now time.Time) string {
	d := Parse(template)
	d = d.UpdateRating(rating, now)
	d = d.UpdateLabel(label, now)
	return d.Text()
}
