package comps

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"auctionhub/pkg/models"
)

// Each search result is a <tr id="dRow" data-price=... data-currency=...>
// carrying a title link, badge spans and a hidden props-data blob. Every
// field is extracted independently: a missing sub-element leaves that
// field nil and never aborts the row or the document.

var (
	reMoney      = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)`)
	reInt        = regexp.MustCompile(`(\d+)`)
	reDatePrefix = regexp.MustCompile(`(?i)^Date:\s*`)
	reShipPrefix = regexp.MustCompile(`(?i)^Shipping Price:\s*`)
	reBestOffer  = regexp.MustCompile(`(?i)Best Offer Price:\s*([0-9.,]+)`)
	reListPrice  = regexp.MustCompile(`(?i)List Price:\s*([0-9.,]+)`)
	reCurrent    = regexp.MustCompile(`(?i)Current Price:\s*([0-9.,]+)`)
	reBids       = regexp.MustCompile(`(?i)\bBids:\s*(\d+)`)
	reSaleFull   = regexp.MustCompile(`(?i)SalePriceFull:\s*[0-9.,]+\s*([A-Za-z]{3})`)
	reLargeImage = regexp.MustCompile(`getImage\(\s*"(.*?)"\s*,`)
)

// ParseComps parses the backend's HTML into CompRecords in document
// order. Input with no result rows yields an empty slice.
//
// The endpoint usually responds with bare <tr> fragments rather than a
// complete page. A full HTML5 parse dissolves table rows that arrive
// without an enclosing <table>, so when the document parse finds no
// rows the input is reparsed as a tbody fragment before concluding
// there are none.
func ParseComps(rawHTML string) []models.CompRecord {
	out := collectRows(parseDocument(rawHTML))
	if len(out) == 0 {
		out = collectRows(parseRowFragment(rawHTML))
	}
	return out
}

func parseDocument(rawHTML string) []*html.Node {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		// html.Parse is extremely lenient; treat a hard failure as "no rows"
		return nil
	}
	return []*html.Node{doc}
}

func parseRowFragment(rawHTML string) []*html.Node {
	tbody := &html.Node{
		Type:     html.ElementNode,
		Data:     "tbody",
		DataAtom: atom.Tbody,
	}
	nodes, err := html.ParseFragment(strings.NewReader(rawHTML), tbody)
	if err != nil {
		return nil
	}
	return nodes
}

func collectRows(roots []*html.Node) []models.CompRecord {
	out := []models.CompRecord{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" && attrVal(n, "id") == "dRow" {
			out = append(out, parseRow(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range roots {
		walk(root)
	}

	return out
}

func parseRow(row *html.Node) models.CompRecord {
	var comp models.CompRecord

	comp.SalePrice = cleanMoney(attrVal(row, "data-price"))
	if cur := attrVal(row, "data-currency"); cur != "" {
		comp.Currency = &cur
	}

	// Title + link
	if span := findElement(row, "span", "titleText"); span != nil {
		if a := firstTag(span, "a"); a != nil {
			if t := textContent(a); t != "" {
				comp.Title = &t
			}
			if href := attrVal(a, "href"); href != "" {
				comp.Link = &href
			}
		}
	}

	// Sale type, e.g. "Fixed Price", "Best Offer Accepted", "auction"
	if span := findElement(row, "span", "auctionLabel"); span != nil {
		if t := textContent(span); t != "" {
			comp.SaleType = &t
		}
	}

	if span := findElement(row, "span", "dateText"); span != nil {
		if t := reDatePrefix.ReplaceAllString(textContent(span), ""); t != "" {
			comp.DateText = &t
		}
	}

	if span := findElement(row, "span", "shipString"); span != nil {
		if t := reShipPrefix.ReplaceAllString(textContent(span), ""); t != "" {
			comp.Shipping = &t
		}
	}

	// Source: the eBay badge has a stable outer id; fall back to literal
	// marker text anywhere in the row.
	if findElement(row, "", "ebayOuter") != nil {
		src := "eBay"
		comp.Source = &src
	} else if txt := textContent(row); strings.Contains(txt, "eBay") || strings.Contains(txt, "ebay") {
		src := "eBay"
		comp.Source = &src
	}

	// Images live in the first cell; some rows expose the large image via
	// an onclick="getImage('url','id')" handler.
	if td := findElement(row, "td", "imgCol"); td != nil {
		if img := firstTag(td, "img"); img != nil {
			if src := attrVal(img, "src"); src != "" {
				comp.ImageThumb = &src
			}
		}
		if onclick := firstAttrValue(td, "onclick"); onclick != "" {
			if m := reLargeImage.FindStringSubmatch(onclick); m != nil {
				comp.ImageLarge = &m[1]
			}
		}
	}

	// Hidden props-data blob carries the richer fields. All matches are
	// optional and non-exclusive.
	if props := findByClass(row, "props-data"); props != nil {
		text := textContent(props)

		if m := reBestOffer.FindStringSubmatch(text); m != nil {
			comp.BestOfferPrice = cleanMoney(m[1])
		}
		if m := reListPrice.FindStringSubmatch(text); m != nil {
			comp.ListPrice = cleanMoney(m[1])
		}
		if m := reCurrent.FindStringSubmatch(text); m != nil {
			comp.CurrentPrice = cleanMoney(m[1])
		}
		if m := reBids.FindStringSubmatch(text); m != nil {
			comp.Bids = cleanInt(m[1])
		}
		if comp.Currency == nil {
			if m := reSaleFull.FindStringSubmatch(text); m != nil {
				cur := strings.ToUpper(m[1])
				comp.Currency = &cur
			}
		}
	}

	return comp
}

// cleanMoney strips thousands separators and extracts the first numeric
// token. Unparseable input yields nil, never an error.
func cleanMoney(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}
	m := reMoney.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &f
}

func cleanInt(s string) *int {
	m := reInt.FindStringSubmatch(strings.ReplaceAll(s, ",", ""))
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// findElement returns the first descendant with the given tag (any tag if
// empty) and id attribute.
func findElement(n *html.Node, tag, id string) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && (tag == "" || n.Data == tag) && attrVal(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

func findByClass(n *html.Node, class string) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && strings.Contains(attrVal(n, "class"), class) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func firstTag(n *html.Node, tag string) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

// firstAttrValue returns the first non-empty value of the attribute found
// anywhere in the subtree, including on n itself.
func firstAttrValue(n *html.Node, key string) string {
	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode {
			if v := attrVal(n, key); v != "" {
				found = v
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if sb.Len() > 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
