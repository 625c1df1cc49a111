package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// strategyKind tags the closed set of site strategies.
type strategyKind int

const (
	kindGeneric strategyKind = iota
	kindJjwxc
	kindBanxia
	kindCzbooks
	kindBooksRetailer
	kindPopo
	kindFC2
)

// strategy bundles a site's parse function with its request quirks.
type strategy struct {
	kind  strategyKind
	parse func(doc *goquery.Document, pageURL string) RawMetadata

	// enc forces a response encoding instead of auto-detection; only the
	// legacy jjwxc site needs this.
	enc encoding.Encoding
}

// dispatchTable maps URL substrings to strategies. Order matters:
// specific sites first, first match wins. URLs matching nothing fall to
// the generic strategy.
var dispatchTable = []struct {
	marker string
	kind   strategyKind
}{
	{"jjwxc", kindJjwxc},
	{"banxia", kindBanxia},
	{"69shu", kindBanxia},
	{"czbooks", kindCzbooks},
	{"books.com.tw", kindBooksRetailer},
	{"popo.tw", kindPopo},
	{"egg19910707", kindFC2},
	{"blog.fc2.com", kindFC2},
}

// strategyFor selects the parsing strategy for a URL by substring match.
func strategyFor(pageURL string) strategy {
	kind := kindGeneric
	for _, entry := range dispatchTable {
		if strings.Contains(pageURL, entry.marker) {
			kind = entry.kind
			break
		}
	}

	switch kind {
	case kindJjwxc:
		return strategy{kind: kind, parse: parseJjwxc, enc: simplifiedchinese.GB18030}
	case kindBanxia:
		return strategy{kind: kind, parse: parseBanxia}
	case kindCzbooks:
		return strategy{kind: kind, parse: parseCzbooks}
	case kindBooksRetailer:
		return strategy{kind: kind, parse: parseBooksRetailer}
	case kindPopo:
		return strategy{kind: kind, parse: parsePopo}
	case kindFC2:
		return strategy{kind: kind, parse: parseFC2}
	default:
		return strategy{kind: kindGeneric, parse: extractMeta}
	}
}
