package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// bingThumbParams requests a larger smart-cropped rendition (~800x450)
// from the Bing thumbnail proxy. Pure string transform, no re-fetch.
const bingThumbParams = "&w=800&h=450&c=7&rs=1"

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Normalize converts one raw feed entry into an Article. Missing fields
// resolve to placeholders or empty strings; it never fails.
func Normalize(item *gofeed.Item, source string) Article {
	a := Article{
		Title:  PlaceholderTitle,
		Link:   PlaceholderLink,
		Source: source,
	}
	if item == nil {
		return a
	}

	if t := strings.TrimSpace(item.Title); t != "" {
		a.Title = t
	}
	if l := strings.TrimSpace(item.Link); l != "" {
		a.Link = l
	} else if len(item.Links) > 0 && strings.TrimSpace(item.Links[0]) != "" {
		a.Link = strings.TrimSpace(item.Links[0])
	}

	rawSummary := item.Description
	if rawSummary == "" {
		rawSummary = item.Content
	}
	a.Summary = StripHTML(rawSummary)

	a.ImageURL = UpgradeImageURL(extractImage(item, rawSummary))

	if item.PublishedParsed != nil {
		a.Published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		a.Published = *item.UpdatedParsed
	}
	a.PublishedRaw = strings.TrimSpace(item.Published)
	if a.PublishedRaw == "" {
		a.PublishedRaw = strings.TrimSpace(item.Updated)
	}

	return a
}

// NormalizeAll maps every raw entry of a feed to an Article.
func NormalizeAll(items []*gofeed.Item, source string) []Article {
	articles := make([]Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, Normalize(item, source))
	}
	return articles
}

// StripHTML removes markup from a fragment, collapses whitespace runs into
// single spaces and trims the result.
func StripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	text := fragment
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment)); err == nil {
		text = doc.Text()
	}
	return strings.Join(strings.Fields(text), " ")
}

// extractImage resolves a thumbnail for the entry. Priority order:
// source-specific news image extension, <img> scraped from the raw summary
// HTML, media:content, media:thumbnail, image enclosure, then the feed's
// own structured item image.
func extractImage(item *gofeed.Item, rawSummary string) string {
	if u := newsImageExtension(item); u != "" {
		return u
	}
	if u := imageFromHTML(rawSummary); u != "" {
		return u
	}
	if u := mediaExtensionURL(item, "content"); u != "" {
		return u
	}
	if u := mediaExtensionURL(item, "thumbnail"); u != "" {
		return u
	}
	for _, enc := range item.Enclosures {
		if enc != nil && isImageEnclosure(enc.Type, enc.URL) {
			return enc.URL
		}
	}
	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}

// newsImageExtension reads the News:Image element some providers (Bing)
// attach to their entries.
func newsImageExtension(item *gofeed.Item) string {
	for prefix, elements := range item.Extensions {
		if !strings.EqualFold(prefix, "news") {
			continue
		}
		for name, exts := range elements {
			if !strings.EqualFold(name, "image") {
				continue
			}
			for _, e := range exts {
				if v := strings.TrimSpace(e.Value); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// mediaExtensionURL returns the url attribute of the first media:<name>
// element (media:content, media:thumbnail).
func mediaExtensionURL(item *gofeed.Item, name string) string {
	for prefix, elements := range item.Extensions {
		if !strings.EqualFold(prefix, "media") {
			continue
		}
		for elemName, exts := range elements {
			if !strings.EqualFold(elemName, name) {
				continue
			}
			for _, e := range exts {
				if u := strings.TrimSpace(e.Attrs["url"]); u != "" {
					return u
				}
			}
		}
	}
	return ""
}

// imageFromHTML scrapes the src of the first <img> tag in a fragment.
func imageFromHTML(fragment string) string {
	if !strings.Contains(fragment, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return strings.TrimSpace(src)
}

func isImageEnclosure(mimeType, rawURL string) bool {
	if strings.HasPrefix(strings.ToLower(mimeType), "image") {
		return true
	}
	lower := strings.ToLower(rawURL)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// UpgradeImageURL rewrites known thumbnail-proxy URLs to request a larger
// rendition. Other URLs pass through untouched.
func UpgradeImageURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if strings.Contains(rawURL, "bing.com/th") && !strings.Contains(rawURL, bingThumbParams) {
		return rawURL + bingThumbParams
	}
	return rawURL
}
