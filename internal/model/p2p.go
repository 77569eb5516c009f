package model

// TransferDirection is the direction of a peer-to-peer transfer.
type TransferDirection string

// Transfer direction constants.
const (
	TransferSent     TransferDirection = "sent"
	TransferReceived TransferDirection = "received"
)

// Relationship classifies who the counterparty is to the account holder.
type Relationship string

// Relationship constants.
const (
	RelationshipPersonal   Relationship = "personal"
	RelationshipObligation Relationship = "obligation"
	RelationshipIncome     Relationship = "income"
	RelationshipGift       Relationship = "gift"
	RelationshipUnknown    Relationship = "unknown"
)

// TransferMode is the interbank mechanism a transfer used.
type TransferMode string

// Transfer mode constants.
const (
	ModeUPI   TransferMode = "upi"
	ModeNEFT  TransferMode = "neft"
	ModeIMPS  TransferMode = "imps"
	ModeRTGS  TransferMode = "rtgs"
	ModeOther TransferMode = "other"
)

// P2PResult is the outcome of peer-to-peer transfer detection.
type P2PResult struct {
	Direction          TransferDirection `json:"direction"`
	Relationship       Relationship      `json:"relationship"`
	RelationshipDetail string            `json:"relationship_detail"`
	TransferMode       TransferMode      `json:"transfer_mode"`
	CounterpartyName   string            `json:"counterparty_name,omitempty"`
	CounterpartyUPI    string            `json:"counterparty_upi,omitempty"`
	CounterpartyPhone  string            `json:"counterparty_phone,omitempty"`
	Subcategory        string            `json:"subcategory"`
	Reason             string            `json:"reason"`
	Confidence         float64           `json:"confidence"`
	IsP2P              bool              `json:"is_p2p"`
	NeedsReview        bool              `json:"needs_review"`
}
