package insights

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

// Geological eras accepted by Locations.
const (
	EraAll        = ""
	EraTriassic   = "Triassic"
	EraJurassic   = "Jurassic"
	EraCretaceous = "Cretaceous"
)

// ErrUnknownEra is returned for an era outside Triassic, Jurassic and
// Cretaceous.
var ErrUnknownEra = errors.New("unknown era")

// Locations counts species per country, optionally restricted to records
// whose period mentions era. Matching on era ignores case.
func Locations(t *dataset.Table, era string) ([]Count, error) {
	canonical, err := canonicalEra(era)
	if err != nil {
		return nil, err
	}
	if canonical != EraAll {
		t = t.Filter(func(r dataset.Record) bool { return strings.Contains(r.Period, canonical) })
	}
	return countBy(t, func(r dataset.Record) string { return r.LivedIn }), nil
}

func canonicalEra(era string) (string, error) {
	era = strings.TrimSpace(era)
	for _, e := range []string{EraAll, EraTriassic, EraJurassic, EraCretaceous} {
		if strings.EqualFold(era, e) {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEra, era)
}
