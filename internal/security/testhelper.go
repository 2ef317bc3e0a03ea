package security

// testSecret is the HMAC secret for unit tests only. Do not use in production.
const testSecret = "test-secret-for-unit-tests-only-0123456789"

// NewTestTokenCodec returns a TokenCodec using the embedded test secret and the default TTL.
// For unit tests only. Callers must not use in production.
func NewTestTokenCodec() *TokenCodec {
	c, err := NewTokenCodec([]byte(testSecret), DefaultAccessTTL)
	if err != nil {
		panic(err)
	}
	return c
}
