package insights

import (
	"fmt"
	"math/rand/v2"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

// AverageHumanHeight is the reference bar drawn next to a dinosaur's length.
const AverageHumanHeight = 1.8

// DinoCard is the display card of one dinosaur.
type DinoCard struct {
	Title       string         `json:"title"`
	Kind        string         `json:"kind"`
	Size        string         `json:"size"`
	Period      string         `json:"period"`
	Discovered  string         `json:"discovered"`
	Link        string         `json:"link"`
	Image       string         `json:"image"`
	HumanHeight float64        `json:"human_height"`
	Record      dataset.Record `json:"record"`
}

// Card renders a record as a display card.
func Card(r dataset.Record) DinoCard {
	title := cases.Title(language.English)
	return DinoCard{
		Title:       title.String(r.Name + " " + r.Species),
		Kind:        title.String(r.Diet + " " + r.Type),
		Size:        dataset.FormatLength(r.Length) + "m",
		Period:      fmt.Sprintf("%s (%d - %d mln years ago)", title.String(r.Period), r.PeriodFrom, r.PeriodTo),
		Discovered:  fmt.Sprintf("%s, %d", r.LivedIn, r.Discovered),
		Link:        r.Link,
		Image:       r.Image,
		HumanHeight: AverageHumanHeight,
		Record:      r,
	}
}

// Random picks one record; intn returns a number in [0, n) and defaults to
// math/rand/v2's IntN. It reports false on an empty table.
func Random(t *dataset.Table, intn func(n int) int) (dataset.Record, bool) {
	if t.Len() == 0 {
		return dataset.Record{}, false
	}
	if intn == nil {
		intn = rand.IntN
	}
	return t.At(intn(t.Len())), true
}
