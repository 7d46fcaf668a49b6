package models

import "time"

type SignatureStatus string

const (
	SignaturePending  SignatureStatus = "pending"
	SignatureSigned   SignatureStatus = "signed"
	SignatureDeclined SignatureStatus = "declined"
	SignatureExpired  SignatureStatus = "expired"
)

func (s SignatureStatus) IsValid() bool {
	switch s {
	case SignaturePending, SignatureSigned, SignatureDeclined, SignatureExpired:
		return true
	}
	return false
}

func (s SignatureStatus) Terminal() bool {
	return s != SignaturePending
}

// SignatureRequest asks a digital_creator to sign a document. Pending is
// the only non-terminal state; signed rows are immutable. Expiry is reached
// only through the background deadline sweep.
type SignatureRequest struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	RequesterID uint64          `gorm:"not null;index" json:"requester_id"`
	SignerID    uint64          `gorm:"not null;index" json:"signer_id"`
	Title       string          `gorm:"type:varchar(150);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	DocumentURL string          `gorm:"type:varchar(500);not null" json:"document_url"`
	Status      SignatureStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Deadline    *time.Time      `json:"deadline"`

	SignedLegalName string     `gorm:"type:varchar(150)" json:"signed_legal_name,omitempty"`
	SignedAt        *time.Time `json:"signed_at"`
	SignerIPAddress string     `gorm:"type:varchar(45)" json:"signer_ip_address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Requester *User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Signer    *User `gorm:"foreignKey:SignerID" json:"signer,omitempty"`
}
