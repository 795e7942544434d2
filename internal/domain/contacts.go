package domain

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// phoneCandidate matches digit runs long enough to be a phone number,
// allowing the separators billboards usually print.
var phoneCandidate = regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`)

// ExtractContacts finds valid phone numbers in OCR text and returns them
// in E.164 format, in order of appearance and without duplicates.
// region is the ISO 3166-1 alpha-2 code used for numbers without country code.
func ExtractContacts(text, region string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if region == "" {
		region = "ZZ"
	}

	seen := make(map[string]bool)
	var contacts []string

	for _, line := range strings.Split(text, "\n") {
		for _, raw := range phoneCandidate.FindAllString(line, -1) {
			num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
			if err != nil {
				continue
			}
			if !phonenumbers.IsValidNumber(num) {
				continue
			}
			e164 := phonenumbers.Format(num, phonenumbers.E164)
			if seen[e164] {
				continue
			}
			seen[e164] = true
			contacts = append(contacts, e164)
		}
	}
	return contacts
}
