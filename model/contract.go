package model

import (
	"time"
)

// Contract represents one supplier contract and owns its documents.
type Contract struct {
	ID        string              `json:"id" gorm:"primaryKey"`
	Name      string              `json:"name"`
	Tenant    string              `json:"tenant" gorm:"index"`
	Documents []*ContractDocument `json:"documents,omitempty" gorm:"foreignKey:ContractID"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ContractDocument is one uploaded file belonging to a contract.
type ContractDocument struct {
	ID          string             `json:"id" gorm:"primaryKey"`
	ContractID  string             `json:"contract_id" gorm:"index"`
	Filename    string             `json:"filename"`
	StoragePath string             `json:"storage_path"`
	MimeType    string             `json:"mime_type"`
	Size        int64              `json:"size"`
	Versions    []*DocumentVersion `json:"versions,omitempty" gorm:"foreignKey:DocumentID"`
	CreatedAt   time.Time          `json:"created_at"`
}

// DocumentVersion is one revision of a document. Extraction writes its
// text, derived fields and status; clauses and obligations hang off it.
type DocumentVersion struct {
	ID            string         `json:"id" gorm:"primaryKey"`
	DocumentID    string         `json:"document_id" gorm:"index"`
	VersionNumber int            `json:"version_number"`
	Status        string         `json:"status"` // pending, processing, done, failed
	ExtractedText string         `json:"extracted_text,omitempty"`
	PageCount     int            `json:"page_count,omitempty"`
	Derived       *DerivedFields `json:"derived,omitempty" gorm:"serializer:json"`
	ErrorMsg      string         `json:"error_msg,omitempty"`
	Clauses       []*Clause      `json:"clauses,omitempty" gorm:"foreignKey:VersionID"`
	Obligations   []*Obligation  `json:"obligations,omitempty" gorm:"foreignKey:VersionID"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// DerivedFields holds the best-effort structured guesses pulled from the
// contract text. Every field is optional; absence means no pattern matched.
type DerivedFields struct {
	EffectiveDate         string `json:"effective_date,omitempty"`
	ExpiryDate            string `json:"expiry_date,omitempty"`
	PaymentTerms          string `json:"payment_terms,omitempty"`
	RenewalTerms          string `json:"renewal_terms,omitempty"`
	TerminationNoticeDays int    `json:"termination_notice_days,omitempty"`
}

// Clause is a labeled excerpt of contract text matched to a fixed category.
type Clause struct {
	ID             uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	VersionID      string `json:"version_id" gorm:"index"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	ExtractedText  string `json:"extracted_text"`
	Interpretation string `json:"interpretation"`
	RiskNotes      string `json:"risk_notes"`
	PageRef        string `json:"page_ref"`
	SortOrder      int    `json:"sort_order"`
}

// Obligation is a duty statement attributed to one of the parties.
type Obligation struct {
	ID        uint       `json:"-" gorm:"primaryKey;autoIncrement"`
	VersionID string     `json:"version_id" gorm:"index"`
	Text      string     `json:"obligation"`
	Owner     string     `json:"owner"` // Supplier, Client, Both
	DueDate   *time.Time `json:"due_date,omitempty"`
	Status    string     `json:"status"`
	SortOrder int        `json:"sort_order"`
}

// Version processing status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Obligation owner constants
const (
	OwnerSupplier = "Supplier"
	OwnerClient   = "Client"
	OwnerBoth     = "Both"
)

// ObligationPending is the only status the extraction pipeline ever assigns;
// completed/overdue/at-risk are set later by humans, not by this code.
const ObligationPending = "pending"
