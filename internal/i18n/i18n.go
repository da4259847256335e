// Package i18n localizes the handful of user-facing strings on the public
// verification surface. The dashboards are API-only and speak error codes,
// but verify results are read by end customers, so the result messages ship
// in the languages the storefront supports (English and Bangla).
package i18n

import "golang.org/x/text/language"

// supported lists the storefront languages; the first entry is the fallback.
var supported = []language.Tag{
	language.English,
	language.Bengali,
}

var matcher = language.NewMatcher(supported)

// messages maps language → message key → localized string.
var messages = map[language.Tag]map[string]string{
	language.English: {
		"verify.valid":      "Valid / Active",
		"verify.expiring":   "Valid / Expiring Soon",
		"verify.expired":    "Expired / Inactive",
		"verify.unverified": "Self-declared / Unverified",
		"verify.not_found":  "Warranty not found. Please check the code or serial number.",
	},
	language.Bengali: {
		"verify.valid":      "বৈধ / সক্রিয়",
		"verify.expiring":   "বৈধ / শীঘ্রই মেয়াদোত্তীর্ণ",
		"verify.expired":    "মেয়াদোত্তীর্ণ / নিষ্ক্রিয়",
		"verify.unverified": "স্ব-ঘোষিত / অযাচাইকৃত",
		"verify.not_found":  "ওয়ারেন্টি পাওয়া যায়নি। কোড বা সিরিয়াল নম্বর যাচাই করুন।",
	},
}

// Match resolves an Accept-Language header (or explicit lang parameter) to a
// supported language, falling back to English.
func Match(accept string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// T returns the localized message for key in lang, falling back to English,
// then to the key itself so a missing entry is visible rather than silent.
func T(lang language.Tag, key string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := messages[language.English][key]; ok {
		return s
	}
	return key
}
