package split

import (
	"regexp"
	"slices"
	"strings"
)

// Pair is a (category, subcategory) target of a split keyword.
type Pair struct {
	Category    string
	Subcategory string
}

var (
	electronics = Pair{"Shopping", "Electronics"}
	clothing    = Pair{"Shopping", "Clothing & Apparel"}
	footwear    = Pair{"Shopping", "Footwear"}
	books       = Pair{"Shopping", "Books & Stationery"}
	toys        = Pair{"Shopping", "Gifts & Toys"}
	sports      = Pair{"Shopping", "Sports & Fitness Equipment"}
	groceries   = Pair{"Food & Dining", "Groceries"}
	beauty      = Pair{"Personal Care", "Beauty & Cosmetics"}
	pharmacy    = Pair{"Healthcare", "Pharmacy"}
	furniture   = Pair{"Home & Maintenance", "Furniture & Decor"}
)

// DefaultPair is used for line items and descriptions nothing matches.
var DefaultPair = electronics

var keywordTable = map[string]Pair{
	"mobile":          electronics,
	"laptop":          electronics,
	"tablet":          electronics,
	"earphones":       electronics,
	"headphones":      electronics,
	"charger":         electronics,
	"usb cable":       electronics,
	"keyboard":        electronics,
	"mouse":           electronics,
	"monitor":         electronics,
	"camera":          electronics,
	"smartwatch":      electronics,
	"tv":              electronics,
	"television":      electronics,
	"speaker":         electronics,
	"wifi router":     electronics,
	"mixer grinder":   electronics,
	"microwave":       electronics,
	"air fryer":       electronics,
	"pressure cooker": electronics,
	"water purifier":  electronics,

	"shirt":       clothing,
	"t-shirt":     clothing,
	"tshirt":      clothing,
	"jeans":       clothing,
	"kurta":       clothing,
	"saree":       clothing,
	"dress":       clothing,
	"jacket":      clothing,
	"hoodie":      clothing,
	"leggings":    clothing,
	"innerwear":   clothing,
	"underwear":   clothing,
	"socks":       clothing,
	"ethnic wear": clothing,

	"shoes":    footwear,
	"sandals":  footwear,
	"slippers": footwear,
	"sneakers": footwear,
	"boots":    footwear,
	"chappal":  footwear,

	"book":       books,
	"novel":      books,
	"textbook":   books,
	"notebook":   books,
	"stationery": books,
	"pen":        books,

	"grocery":    groceries,
	"groceries":  groceries,
	"vegetables": groceries,
	"fruits":     groceries,
	"rice":       groceries,
	"dal":        groceries,
	"flour":      groceries,
	"oil":        groceries,
	"spices":     groceries,
	"sugar":      groceries,
	"salt":       groceries,
	"snacks":     groceries,
	"biscuits":   groceries,
	"beverages":  groceries,
	"baby food":  groceries,

	"shampoo":     beauty,
	"conditioner": beauty,
	"face wash":   beauty,
	"moisturizer": beauty,
	"sunscreen":   beauty,
	"lipstick":    beauty,
	"foundation":  beauty,
	"perfume":     beauty,
	"deodorant":   beauty,
	"razor":       beauty,
	"trimmer":     beauty,

	"medicine":       pharmacy,
	"capsule":        pharmacy,
	"syrup":          pharmacy,
	"supplement":     pharmacy,
	"vitamins":       pharmacy,
	"protein powder": pharmacy,
	"first aid":      pharmacy,
	"mask":           pharmacy,

	"furniture": furniture,
	"sofa":      furniture,
	"bed":       furniture,
	"mattress":  furniture,
	"chair":     furniture,
	"table":     furniture,
	"lamp":      furniture,
	"curtains":  furniture,
	"bedsheet":  furniture,
	"pillow":    furniture,
	"storage":   furniture,

	"toys":       toys,
	"board game": toys,
	"kids":       toys,

	"sports":      sports,
	"yoga mat":    sports,
	"dumbbell":    sports,
	"cricket bat": sports,
	"football":    sports,
}

// multiCategoryRetailers sell across enough categories that their orders
// are always worth splitting.
var multiCategoryRetailers = []string{
	"amazon", "flipkart", "meesho", "snapdeal", "jiomart",
	"myntra", "nykaa", "purplle", "firstcry",
}

type keyword struct {
	re   *regexp.Regexp
	term string
	pair Pair
}

// keywords is the table ordered longest term first, then alphabetically.
var keywords = compileKeywords(keywordTable)

func compileKeywords(table map[string]Pair) []keyword {
	out := make([]keyword, 0, len(table))
	for term, pair := range table {
		out = append(out, keyword{
			term: term,
			pair: pair,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `s?\b`),
		})
	}
	slices.SortFunc(out, func(a, b keyword) int {
		if len(a.term) != len(b.term) {
			return len(b.term) - len(a.term)
		}
		return strings.Compare(a.term, b.term)
	})
	return out
}

type match struct {
	term string
	pair Pair
	pos  int
}

// matchPairs returns one match per distinct pair found in text, ordered by
// where the pair first appears. Matched spans are blanked before shorter
// terms run, so "t-shirt" is never also counted as "shirt".
func matchPairs(text string) []match {
	buf := []byte(strings.ToLower(text))
	first := make(map[Pair]match)

	for _, kw := range keywords {
		locs := kw.re.FindAllIndex(buf, -1)
		for _, loc := range locs {
			if m, seen := first[kw.pair]; !seen || loc[0] < m.pos {
				first[kw.pair] = match{term: kw.term, pair: kw.pair, pos: loc[0]}
			}
			for i := loc[0]; i < loc[1]; i++ {
				buf[i] = ' '
			}
		}
	}

	out := make([]match, 0, len(first))
	for _, m := range first {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b match) int { return a.pos - b.pos })
	return out
}

func matchItem(name string) Pair {
	if ms := matchPairs(name); len(ms) > 0 {
		return ms[0].pair
	}
	return DefaultPair
}
