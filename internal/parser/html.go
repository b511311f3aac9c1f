package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// uncomment removes HTML comment markers. The reference site ships many
// tables inside comments and reveals them with JavaScript.
func uncomment(html string) string {
	r := strings.NewReplacer("<!--", "", "-->", "")
	return r.Replace(html)
}

// SelectInnerHTML returns the inner HTML of the first element of page that
// matches selector. found is false when nothing matches.
func SelectInnerHTML(page, selector string) (inner string, found bool, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(uncomment(page)))
	if err != nil {
		return "", false, err
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false, nil
	}
	inner, err = sel.Html()
	if err != nil {
		return "", false, err
	}
	return inner, true, nil
}
