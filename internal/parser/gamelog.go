package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ListingSelector selects the part of a game-log page handed to
// GameLogLinks. The schedule table is sometimes commented out, so the whole
// body is taken.
const ListingSelector = "body"

// GameLogSelector returns the CSS selector of box-score links on a team's
// game-log page for season.
func GameLogSelector(season int) string {
	return fmt.Sprintf("#gamelog%d .center a", season)
}

// GameLogLinks extracts the href of every box-score link on a game-log page,
// in document order. Links are returned as written in the page (usually
// site-relative).
func GameLogLinks(page string, season int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(uncomment(page)))
	if err != nil {
		return nil, fmt.Errorf("parse game log: %w", err)
	}

	var hrefs []string
	doc.Find(GameLogSelector(season)).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
			hrefs = append(hrefs, strings.TrimSpace(href))
		}
	})
	return hrefs, nil
}
