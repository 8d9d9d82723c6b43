package models

// Review statuses shared by KYC and withdrawal requests.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// KYCRequest lives at kycRequests/{uid}.
type KYCRequest struct {
	UserID         string    `json:"-"`
	FullName       string    `json:"fullName"`
	DocumentType   string    `json:"documentType,omitempty"`
	DocumentNumber string    `json:"documentNumber,omitempty"`
	DocumentURL    string    `json:"documentUrl,omitempty"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	SubmittedAt    Timestamp `json:"submittedAt"`
	ReviewedAt     Timestamp `json:"reviewedAt"`
}

func (k *KYCRequest) SetID(id string) { k.UserID = id }

// WithdrawalRequest lives at withdrawalRequests/{uid}/{requestId}.
type WithdrawalRequest struct {
	ID          string    `json:"-"`
	Amount      Amount    `json:"amount"`
	Method      string    `json:"method,omitempty"`
	Account     string    `json:"account,omitempty"`
	Status      string    `json:"status"`
	RequestedAt Timestamp `json:"requestedAt"`
	ProcessedAt Timestamp `json:"processedAt"`
}

func (w *WithdrawalRequest) SetID(id string) { w.ID = id }
