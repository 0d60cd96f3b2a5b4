package enrich

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Default selector and attribute of the image element on a dino-directory
// detail page.
const (
	DefaultImageSelector  = "img.dinosaur--image"
	DefaultImageAttribute = "src"
)

// ErrImageNotFound is returned when the page has no usable image element.
var ErrImageNotFound = errors.New("image element not found")

// ImageExtractor pulls the image URL out of a detail page.
type ImageExtractor struct {
	selector  string
	attribute string
}

// NewImageExtractor builds an extractor. Empty arguments fall back to the
// dino-directory defaults.
func NewImageExtractor(selector, attribute string) *ImageExtractor {
	if strings.TrimSpace(selector) == "" {
		selector = DefaultImageSelector
	}
	if strings.TrimSpace(attribute) == "" {
		attribute = DefaultImageAttribute
	}
	return &ImageExtractor{selector: selector, attribute: attribute}
}

// Extract returns the attribute of the first element matching the selector,
// resolved against pageURL when it is relative.
func (x *ImageExtractor) Extract(pageURL string, body io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	sel := doc.Find(x.selector).First()
	if sel.Length() == 0 {
		return "", ErrImageNotFound
	}
	val, ok := sel.Attr(x.attribute)
	val = strings.TrimSpace(val)
	if !ok || val == "" {
		return "", fmt.Errorf("%w: no %s attribute", ErrImageNotFound, x.attribute)
	}
	return resolve(pageURL, val), nil
}

func resolve(pageURL, ref string) string {
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
