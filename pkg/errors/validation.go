package errors

import (
	"regexp"
	"strconv"
	"strings"
)

// screenNameRe matches VK short addresses: latin letters, digits, underscores
// and dots, 2 to 32 characters.
var screenNameRe = regexp.MustCompile(`^[A-Za-z0-9_.]{2,32}$`)

// ValidateSeed validates a crawl seed before any network call is made.
// A seed is either a positive numeric user id or a screen name, optionally
// given as a full profile URL (https://vk.com/durov) or with an "id" prefix
// (id1). The normalized identifier is returned.
func ValidateSeed(seed string) (string, error) {
	s := strings.TrimSpace(seed)
	if s == "" {
		return "", New(ErrCodeInvalidSeed, "seed cannot be empty")
	}

	for _, prefix := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	for _, host := range []string{"m.vk.com/", "vk.com/"} {
		s = strings.TrimPrefix(s, host)
	}
	s = strings.TrimSuffix(s, "/")

	if strings.HasPrefix(s, "-") {
		return "", New(ErrCodeInvalidSeed, "seed must be a person, not a group: %q", seed)
	}

	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		if id <= 0 {
			return "", New(ErrCodeInvalidSeed, "seed id must be positive: %d", id)
		}
		return s, nil
	}

	if !screenNameRe.MatchString(s) {
		return "", New(ErrCodeInvalidSeed, "invalid screen name: %q", seed)
	}
	return s, nil
}
