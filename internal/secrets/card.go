package secrets

// CardDigest is the storable form of a payment card: the first 12 digits only
// as a hash, the last 4 in clear for display, and the CVV only as a hash.
type CardDigest struct {
	NumberHash string
	Last4      string
	CVVHash    string
}

// EncodeCard transforms a raw card number and CVV into a CardDigest. A number
// is only encoded when it is exactly 16 characters; a CVV only when it is
// exactly 3. Anything else leaves the corresponding part empty with no error,
// so callers that want strict rejection must pre-validate the inputs.
// The second return reports whether anything at all was encoded.
func EncodeCard(h Hasher, cardNumber, cvv string) (CardDigest, bool) {
	var digest CardDigest
	encoded := false

	if len(cardNumber) == 16 {
		hash, err := h.Hash(cardNumber[:12])
		if err == nil {
			digest.NumberHash = hash
			digest.Last4 = cardNumber[12:]
			encoded = true
		}
	}

	if len(cvv) == 3 {
		hash, err := h.Hash(cvv)
		if err == nil {
			digest.CVVHash = hash
			encoded = true
		}
	}

	return digest, encoded
}

// MaskCardNumber renders a 16-digit card number with everything but the last 4
// digits obscured. Returns "" for any other length.
func MaskCardNumber(cardNumber string) string {
	if len(cardNumber) != 16 {
		return ""
	}
	return "************" + cardNumber[12:]
}
