package dto

// ProofUploadResponse carries the stored location of a payment-proof image.
// Only the URL is persisted on applications and fees.
type ProofUploadResponse struct {
	URL string `json:"url"`
}
