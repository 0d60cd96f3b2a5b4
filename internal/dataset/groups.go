package dataset

import "strings"

// OtherGroup is assigned when a taxonomy matches none of MajorGroups.
const OtherGroup = "Other"

// MajorGroups is the fixed, ordered list of clade names tested against a
// record's taxonomy. "Massospondyildae" is spelled as in the source list.
var MajorGroups = []string{
	"Herrerasauridae",
	"Guaibasauridae",
	"Plateosauridae",
	"Riojasauridae",
	"Massospondyildae",
	"Vulcanodontidae",
	"Turiasauria",
	"Cetiosauridae",
	"Diplodocoidea",
	"Brachiosauridae",
	"Titanosauria",
	"Coelophysoidea",
	"Ceratosauria",
	"Megalosauroidea",
	"Carnosauria",
	"Megaraptora",
	"Tyrannosauroidea",
	"Compsognathidae",
	"Ornithomimosauria",
	"Alvarezsauroidea",
	"Therizinosauria",
	"Oviraptorosauria",
	"Deinonychosauria",
	"Heterodontosauridae",
	"Stegosauria",
	"Ankylosauria",
	"Pachycephalosauria",
	"Ceratopsia",
	"Ornithopoda",
	"Anchisauria",
	"Dromaeosauridae",
	"Spinosauroidea",
	"Alvarezsauridae",
	"Eusauropoda",
	"Prosauropoda",
	"Therizinosauroidea",
	"Avialae",
	"Troodontidae",
}

// MajorGroupOf assigns the major group for a taxonomy string.
//
// Several names can match one lineage (e.g. "Deinonychosauria" and
// "Dromaeosauridae"). The reference dataset was labelled by assigning every
// matching name in list order, so the last matching entry wins. That
// precedence is reproduced here rather than corrected.
func MajorGroupOf(taxonomy string) string {
	group := OtherGroup
	for _, g := range MajorGroups {
		if strings.Contains(taxonomy, g) {
			group = g
		}
	}
	return group
}

// IsMajorGroup reports whether g is one of MajorGroups or OtherGroup.
func IsMajorGroup(g string) bool {
	if g == OtherGroup {
		return true
	}
	for _, name := range MajorGroups {
		if name == g {
			return true
		}
	}
	return false
}
