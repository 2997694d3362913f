package services

import "regexp"

// emailPattern is a pragmatic syntax check: something without whitespace or '@',
// an '@', then a domain that contains at least one dot. Deliverability is not checked.
// RE2's \s is ASCII only, so vertical tab, Unicode spaces and BOM are listed explicitly.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	return emailPattern.MatchString(email)
}
