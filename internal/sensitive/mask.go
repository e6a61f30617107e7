package sensitive

import "strings"

// MaskEmail hides the local part of an address except its first character:
// "jdoe@example.edu" becomes "j***@example.edu".
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return email
	}
	return email[:1] + "***" + email[at:]
}

// MaskContact keeps only the last four digits of a contact number.
func MaskContact(contact string) string {
	digits := 0
	for _, r := range contact {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits <= 4 {
		return contact
	}
	var b strings.Builder
	seen := 0
	for _, r := range contact {
		if r >= '0' && r <= '9' {
			seen++
			if seen <= digits-4 {
				b.WriteRune('*')
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MaskSSN renders a social security number as XXX-XX-NNNN.
func MaskSSN(ssn string) string {
	if len(ssn) < 4 {
		return "XXX-XX-XXXX"
	}
	return "XXX-XX-" + ssn[len(ssn)-4:]
}
