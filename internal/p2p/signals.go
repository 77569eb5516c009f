package p2p

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

// keywordSignal matches any of its keywords as whole words, allowing a
// trailing plural "s".
type keywordSignal struct {
	re *regexp.Regexp
}

func newKeywordSignal(keywords ...string) keywordSignal {
	sorted := append([]string(nil), keywords...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, len(sorted))
	for i, kw := range sorted {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return keywordSignal{re: regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)s?\b`)}
}

// find returns the keyword that matched first in text.
func (s keywordSignal) find(text string) (string, bool) {
	m := s.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// Salary markers are matched as substrings since some carry punctuation.
var salaryKeywords = []string{
	"salary", "sal ", "sal/", "payroll", "stipend", "wages",
	"monthly pay", "pay slip", "hr dept", "accounts dept",
}

var (
	businessSignals = newKeywordSignal(
		"pvt ltd", "private limited", "limited", "llp", "inc", "store", "shop", "mart",
		"enterprises", "traders", "agency", "services", "solutions", "technologies", "tech",
		"digital", "foods", "restaurant", "hotel", "school", "college", "hospital", "clinic",
		"pharmacy", "medical", "petrol", "pump", "motors", "amazon", "flipkart", "swiggy",
		"zomato", "razorpay", "cashfree", "instamojo", "billdesk",
	)

	freelanceSignals = newKeywordSignal(
		"invoice", "payment for", "project", "freelance", "consulting", "client",
		"service charge", "professional fee",
	)

	familySignals = newKeywordSignal(
		"mom", "maa", "mother", "dad", "papa", "father", "bhai", "brother", "didi", "sister",
		"sis", "bro", "wife", "husband", "beta", "beti", "son", "daughter", "chacha", "chachi",
		"mama", "mami", "nana", "nani", "dada", "dadi", "jiju", "family",
	)

	friendSignals = newKeywordSignal("friend", "yaar", "dost", "buddy", "roommate", "flatmate", "colleague")

	rentSignals = newKeywordSignal("rent", "landlord", "owner", "flat", "house rent", "pg rent", "room rent")

	loanSignals = newKeywordSignal(
		"lent", "lend", "borrowed", "borrow", "loan", "loan repay", "settle", "settlement", "split", "owe",
	)

	giftSignals = newKeywordSignal(
		"gift", "birthday", "anniversary", "wedding gift", "shaadi gift", "festival", "diwali",
		"eid", "holi", "navratri", "rakhi", "christmas",
	)
)

var (
	individualHandles = map[string]struct{}{
		"okaxis": {}, "oksbi": {}, "okicici": {}, "okhdfcbank": {}, "ybl": {}, "axl": {}, "ibl": {},
		"apl": {}, "waaxis": {}, "naviaxis": {}, "freecharge": {}, "kotak": {}, "indus": {},
		"rbl": {}, "federal": {}, "aubank": {}, "idfc": {},
	}

	businessHandles = map[string]struct{}{
		"razorpay": {}, "cashfree": {}, "paytmqr": {}, "sbiepay": {}, "hdfcbankltd": {},
	}
)

var (
	upiIDPattern = regexp.MustCompile(`(?i)\b([a-z0-9._+\-]{3,}@(?:okaxis|oksbi|okicici|okhdfcbank|ybl|axl|` +
		`ibl|upi|paytm|apl|waaxis|waicici|wahdfcbank|wasbi|naviaxis|` +
		`freecharge|kotak|indus|rbl|federal|equitas|barodampay|aubank|` +
		`idfc|dbs|citi|hsbc|sc|boi|cub|kvb|tmb|dcb|ucb|uco|pnb|cnrb|` +
		`sib|jkb|kbl|nsdl|idbi|axisbank|hdfcbank|icicibank|sbibank|` +
		`fifederal|airtel|jio|phonepe|gpay|bhim|slice|jupiter|fi|` +
		`postbank|airtelpaymentsbank|jiopay|amazonpay|` +
		`razorpay|cashfree|paytmqr|sbiepay|hdfcbankltd))\b`)

	phonePattern = regexp.MustCompile(`\b([6-9]\d{9})\b`)

	transferNamePattern = regexp.MustCompile(`(?i)(?:NEFT|IMPS|RTGS)[/\-\s]+(?:\d+[/\-\s]+)?([A-Z][A-Z\s]{3,30}?)(?:[/\-]|$)`)

	upiNamePattern = regexp.MustCompile(`(?i)UPI[/\-\s]+([A-Z][A-Z\s]{2,25}?)[/\-@]`)

	bareReferencePattern = regexp.MustCompile(`(?i)^(?:NEFT|IMPS|UPI|RTGS)[/\-\s]+\d+`)

	orgPrefixPattern = regexp.MustCompile(`(?i)^(?:NEFT|IMPS|RTGS|UPI|CR|DR)[/\-\s]+\d*[/\-\s]*`)

	upiSeparators = regexp.MustCompile(`[._\-]`)
)

// appPattern recognizes phrasing used by payment apps for person transfers.
type appPattern struct {
	re *regexp.Regexp
	// namer reports whether the first group holds the counterparty name.
	namer bool
}

var appPatterns = []appPattern{
	{re: regexp.MustCompile(`(?i)(?:phonepe|gpay|google pay|paytm|bhim)\s*(?:p2p|send|transfer|upi)`)},
	{re: regexp.MustCompile(`(?i)pay to\s+([A-Z][a-z]+(?:\s[A-Z][a-z]+)*)`), namer: true},
	{re: regexp.MustCompile(`(?i)(?:sent to|received from|transfer (?:to|from))\s+([A-Z][a-z\s]+)`), namer: true},
}

var modePatterns = []struct {
	re   *regexp.Regexp
	mode model.TransferMode
}{
	{re: regexp.MustCompile(`(?i)\b(?:upi|vpa|gpay|phonepe|bhim|paytm\s*upi)\b`), mode: model.ModeUPI},
	{re: regexp.MustCompile(`(?i)\bneft\b`), mode: model.ModeNEFT},
	{re: regexp.MustCompile(`(?i)\bimps\b`), mode: model.ModeIMPS},
	{re: regexp.MustCompile(`(?i)\brtgs\b`), mode: model.ModeRTGS},
}

type labelKey struct {
	relationship model.Relationship
	detail       string
}

var relationshipLabels = map[labelKey]string{
	{model.RelationshipPersonal, "friend"}:     "Friends & Family",
	{model.RelationshipPersonal, "family"}:     "Friends & Family",
	{model.RelationshipPersonal, "unknown"}:    "Friends & Family",
	{model.RelationshipObligation, "landlord"}: "Rent",
	{model.RelationshipObligation, "loan"}:     "Lending & Settling",
	{model.RelationshipObligation, "settle"}:   "Lending & Settling",
	{model.RelationshipIncome, "employer"}:     "Salary",
	{model.RelationshipIncome, "freelance"}:    "Freelance Income",
	{model.RelationshipIncome, "unknown"}:      "Money Received",
	{model.RelationshipGift, "family"}:         "Gift",
	{model.RelationshipGift, "friend"}:         "Gift",
	{model.RelationshipGift, "unknown"}:        "Gift",
	{model.RelationshipUnknown, "unknown"}:     "P2P Transfer",
}

// Subcategory renders the transfers subcategory, e.g. "UPI Sent – Rent".
func Subcategory(direction model.TransferDirection, mode model.TransferMode,
	relationship model.Relationship, detail string,
) string {
	label, ok := relationshipLabels[labelKey{relationship, detail}]
	if !ok {
		label, ok = relationshipLabels[labelKey{relationship, "unknown"}]
	}
	if !ok {
		label = "P2P Transfer"
	}

	dir := "Sent"
	if direction == model.TransferReceived {
		dir = "Received"
	}
	return strings.ToUpper(string(mode)) + " " + dir + " – " + label
}
