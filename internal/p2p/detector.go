// Package p2p detects transfers between individuals in raw bank descriptions.
package p2p

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

const (
	// Threshold is the confidence at which a transaction counts as P2P.
	Threshold = 0.5

	notP2PConfidence = 0.05
	salaryConfidence = 0.93
	unknownPerson    = "Unknown Person"
)

// MerchantIndex answers whether a word or phrase is a known merchant key.
type MerchantIndex interface {
	HasKey(text string) bool
}

// Detector scores descriptions for person-to-person transfer signals.
type Detector struct {
	merchants MerchantIndex
}

// NewDetector creates a detector. merchants may be nil.
func NewDetector(merchants MerchantIndex) *Detector {
	return &Detector{merchants: merchants}
}

// scan accumulates evidence for one description. Confidence is the maximum
// of every signal that fired.
type scan struct {
	result  model.P2PResult
	reasons []string
}

func (s *scan) raise(confidence float64, reason string) {
	s.result.Confidence = math.Max(s.result.Confidence, confidence)
	if reason != "" {
		s.reasons = append(s.reasons, reason)
	}
}

// Detect decides whether description is a transfer between people.
func (d *Detector) Detect(description string, amount float64, direction model.TransactionDirection) model.P2PResult {
	desc := strings.TrimSpace(description)
	lower := strings.ToLower(desc)
	mode := detectMode(desc, lower)

	if kw, ok := common.FirstContained(lower, salaryKeywords); ok {
		return model.P2PResult{
			IsP2P:              true,
			Confidence:         salaryConfidence,
			Direction:          model.TransferReceived,
			Relationship:       model.RelationshipIncome,
			RelationshipDetail: "employer",
			TransferMode:       mode,
			CounterpartyName:   orgName(desc),
			Subcategory:        Subcategory(model.TransferReceived, mode, model.RelationshipIncome, "employer"),
			Reason:             fmt.Sprintf("salary keyword: '%s'", strings.TrimSpace(kw)),
		}
	}
	if kw, ok := businessSignals.find(lower); ok {
		return notP2P("merchant signal: " + kw)
	}
	if d.knownMerchant(lower) {
		return notP2P("known merchant in directory")
	}

	s := &scan{result: model.P2PResult{
		Direction:          model.TransferSent,
		Relationship:       model.RelationshipUnknown,
		RelationshipDetail: "unknown",
		TransferMode:       mode,
		CounterpartyName:   unknownPerson,
	}}
	if direction == model.DirectionCredit {
		s.result.Direction = model.TransferReceived
	}

	if kw, ok := freelanceSignals.find(lower); ok {
		s.result.Relationship = model.RelationshipIncome
		s.result.RelationshipDetail = "freelance"
		s.raise(0.80, fmt.Sprintf("freelance keyword: '%s'", kw))
	}

	s.upiHandle(desc)
	s.phone(desc)
	s.transferNames(desc)
	s.appPhrasing(desc)
	s.relationship(lower)

	r := &s.result
	if r.Confidence >= Threshold && r.Relationship == model.RelationshipUnknown {
		r.Relationship = model.RelationshipPersonal
		r.RelationshipDetail = "unknown"
	}
	if bareReferencePattern.MatchString(desc) && r.Confidence < 0.40 {
		r.Confidence = 0.45
		r.NeedsReview = true
		s.reasons = append(s.reasons, "bare transfer reference, needs review")
	}
	if r.Relationship == model.RelationshipIncome {
		r.Direction = model.TransferReceived
	}

	reason := strings.Join(s.reasons, " | ")
	common.LogDebug("p2p signals", common.Fields{"amount": amount, "confidence": r.Confidence, "reason": reason})

	if r.Confidence < Threshold {
		if reason == "" {
			reason = "low confidence"
		}
		out := notP2P(reason)
		if r.NeedsReview {
			out.Confidence = r.Confidence
			out.NeedsReview = true
		}
		return out
	}

	r.IsP2P = true
	r.Confidence = math.Round(r.Confidence*1000) / 1000
	r.Subcategory = Subcategory(r.Direction, r.TransferMode, r.Relationship, r.RelationshipDetail)
	r.Reason = reason
	return *r
}

func (d *Detector) knownMerchant(lower string) bool {
	if d.merchants == nil {
		return false
	}
	words := strings.Fields(lower)
	if len(words) == 0 {
		return false
	}
	if d.merchants.HasKey(words[0]) {
		return true
	}
	return len(words) > 1 && d.merchants.HasKey(words[0]+" "+words[1])
}

func (s *scan) upiHandle(desc string) {
	m := upiIDPattern.FindStringSubmatch(desc)
	if m == nil {
		return
	}
	id := strings.ToLower(m[1])
	prefix, handle, _ := strings.Cut(id, "@")
	s.result.CounterpartyUPI = id
	s.result.TransferMode = model.ModeUPI

	_, individual := individualHandles[handle]
	_, business := businessHandles[handle]
	switch {
	case business:
		s.raise(0.15, "")
	case individual:
		s.raise(0.88, "individual UPI handle: "+id)
	default:
		s.raise(0.72, "UPI ID: "+id)
	}

	if !strings.ContainsFunc(prefix, unicode.IsDigit) {
		s.result.CounterpartyName = upiName(prefix)
	}
}

func (s *scan) phone(desc string) {
	m := phonePattern.FindStringSubmatch(desc)
	if m == nil {
		return
	}
	phone := m[1]
	s.result.CounterpartyPhone = phone
	if s.result.CounterpartyName == unknownPerson {
		s.result.CounterpartyName = "Contact " + phone[len(phone)-4:]
	}

	if s.result.CounterpartyUPI != "" && strings.Contains(s.result.CounterpartyUPI, phone) {
		s.result.TransferMode = model.ModeUPI
		s.raise(0.91, "phone-linked UPI: "+phone)
		return
	}
	s.raise(0.70, "phone number: "+phone)
}

func (s *scan) transferNames(desc string) {
	if m := transferNamePattern.FindStringSubmatch(desc); m != nil {
		if name := common.TitleCase(strings.TrimSpace(m[1])); looksLikePerson(name) {
			s.result.CounterpartyName = name
			s.raise(0.80, "NEFT/IMPS name: "+name)
		}
	}
	if m := upiNamePattern.FindStringSubmatch(desc); m != nil {
		if name := common.TitleCase(strings.TrimSpace(m[1])); looksLikePerson(name) {
			s.result.CounterpartyName = name
			s.raise(0.82, "UPI name: "+name)
		}
	}
}

func (s *scan) appPhrasing(desc string) {
	for _, p := range appPatterns {
		m := p.re.FindStringSubmatch(desc)
		if m == nil {
			continue
		}
		s.result.TransferMode = model.ModeUPI
		if p.namer && len(m) > 1 {
			if name := common.TitleCase(strings.TrimSpace(m[1])); looksLikePerson(name) {
				s.result.CounterpartyName = name
			}
		}
		s.raise(0.75, "P2P app pattern")
		return
	}
}

func (s *scan) relationship(lower string) {
	r := &s.result

	family, isFamily := familySignals.find(lower)
	if isFamily {
		r.Relationship = model.RelationshipPersonal
		r.RelationshipDetail = "family"
		if r.CounterpartyName == unknownPerson || r.CounterpartyName == "" {
			r.CounterpartyName = common.TitleCase(family)
		}
		s.raise(0.72, fmt.Sprintf("family keyword: '%s'", family))
	}

	if r.Relationship == model.RelationshipUnknown {
		if kw, ok := friendSignals.find(lower); ok {
			r.Relationship = model.RelationshipPersonal
			r.RelationshipDetail = "friend"
			s.raise(0.68, fmt.Sprintf("friend keyword: '%s'", kw))
		}
	}

	if kw, ok := rentSignals.find(lower); ok {
		r.Relationship = model.RelationshipObligation
		r.RelationshipDetail = "landlord"
		s.raise(0.70, fmt.Sprintf("rent keyword: '%s'", kw))
	}

	if kw, ok := loanSignals.find(lower); ok {
		if r.Relationship != model.RelationshipObligation {
			r.Relationship = model.RelationshipObligation
			r.RelationshipDetail = "loan"
		}
		s.raise(0.68, fmt.Sprintf("loan/settle keyword: '%s'", kw))
	}

	if kw, ok := giftSignals.find(lower); ok {
		r.Relationship = model.RelationshipGift
		r.RelationshipDetail = "friend"
		if isFamily {
			r.RelationshipDetail = "family"
		}
		s.raise(0.70, fmt.Sprintf("gift keyword: '%s'", kw))
	}
}

func detectMode(desc, lower string) model.TransferMode {
	for _, p := range modePatterns {
		if p.re.MatchString(desc) {
			return p.mode
		}
	}
	for _, mode := range []model.TransferMode{model.ModeNEFT, model.ModeIMPS, model.ModeRTGS, model.ModeUPI} {
		if strings.Contains(lower, string(mode)) {
			return mode
		}
	}
	return model.ModeOther
}

func notP2P(reason string) model.P2PResult {
	return model.P2PResult{
		Confidence:         notP2PConfidence,
		Direction:          model.TransferSent,
		Relationship:       model.RelationshipUnknown,
		RelationshipDetail: "unknown",
		TransferMode:       model.ModeOther,
		Reason:             reason,
	}
}
