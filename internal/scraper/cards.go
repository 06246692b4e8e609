package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rsilvagit/job-searcher/internal/model"
)

// jobLinks matches anchors to job detail pages. Boards with unstable
// markup list it last so a redesign still yields postings.
const jobLinks = `a[href*="/jobs/"]`

// listings returns the matches of the first selector that matches anything.
func listings(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := doc.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return doc.Find("")
}

// firstText returns the trimmed text of the first selector that yields any.
func firstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if text := cleanText(s.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// cardJob reads a posting out of a loosely structured listing card, or
// out of a bare link to a detail page.
func cardJob(s *goquery.Selection, baseURL, adapter string) (model.Job, bool) {
	title := firstText(s, "h2", "h3", "h4", ".title", ".job-title")
	if title == "" && goquery.NodeName(s) == "a" {
		title = cleanText(s.Text())
	}
	if title == "" {
		return model.Job{}, false
	}

	link, ok := s.Attr("href")
	if !ok {
		link, _ = s.Find("a[href]").First().Attr("href")
	}
	if link == "" || strings.HasPrefix(link, "#") {
		return model.Job{}, false
	}

	return model.Job{
		Title:       title,
		Company:     firstText(s, "[class*='company']", ".employer"),
		Location:    locationOrRemote(firstText(s, "[class*='location']", ".place")),
		Salary:      firstText(s, ".salary", ".compensation"),
		Description: truncate(firstText(s, ".description", ".excerpt", ".summary"), 500),
		URL:         absoluteURL(baseURL, link),
		Adapter:     adapter,
	}, true
}
