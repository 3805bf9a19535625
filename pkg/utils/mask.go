package utils

// MaskAPIKey keeps the first two and last four characters of key so it can
// be told apart in logs without being leaked.
func MaskAPIKey(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
