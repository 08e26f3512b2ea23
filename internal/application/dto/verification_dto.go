package dto

// VerifyCertificateRequest carries one verification attempt.
// ClientIP and UserAgent are filled by the transport layer, never bound from the body.
type VerifyCertificateRequest struct {
	CertificateID string `json:"certificate_id" form:"certificate_id"`
	ClientIP      string `json:"-" form:"-"`
	UserAgent     string `json:"-" form:"-"`
}

// CertificateDTO is the enriched, public view of a certificate.
type CertificateDTO struct {
	CertificateID   string   `json:"certificateId"`
	HolderName      string   `json:"holderName"`
	StudentID       string   `json:"studentId"`
	Domain          string   `json:"domain"`
	DomainCode      string   `json:"domainCode"`
	Cohort          string   `json:"cohort,omitempty"`
	IssueDate       string   `json:"issueDate"`
	CompletionDate  string   `json:"completionDate"`
	ValidUntil      *string  `json:"validUntil"`
	Skills          []string `json:"skills"`
	Grade           string   `json:"grade"`
	IsExpired       bool     `json:"isExpired"`
	DaysUntilExpiry *int     `json:"daysUntilExpiry"`
}

// VerificationDetailsDTO describes how and when the verification happened.
type VerificationDetailsDTO struct {
	VerifiedAt       string `json:"verifiedAt"`
	VerificationHash string `json:"verificationHash"`
	ClientIP         string `json:"clientIp"`
	Method           string `json:"method"`
	Status           string `json:"status"`
}

// IssuerDTO identifies the issuing organisation.
type IssuerDTO struct {
	Name           string `json:"name"`
	Website        string `json:"website"`
	SupportContact string `json:"supportContact"`
}

// VerifyCertificateResponse is the 200 body.
type VerifyCertificateResponse struct {
	Success             bool                   `json:"success"`
	Certificate         CertificateDTO         `json:"certificate"`
	VerificationDetails VerificationDetailsDTO `json:"verificationDetails"`
	Issuer              IssuerDTO              `json:"issuer"`
	Timestamp           string                 `json:"timestamp"`
}

//Personal.AI order the ending
