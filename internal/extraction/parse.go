package extraction

import (
	"regexp"
	"strings"
	"unicode"

	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

// The parsers below are literal ordered rules, not heuristics to be abstracted:
// first non-numeric non-boilerplate line is the name, lines after the address
// marker are the address. Field derivation order and fallbacks are part of the
// contract with existing integrations.

var (
	// rePAN matches the 10-character permanent account number layout:
	// 5 letters, 4 digits, 1 letter.
	rePAN = regexp.MustCompile(`(?i)\b[A-Z]{5}[0-9]{4}[A-Z]\b`)

	// reAadhaar matches a 12-digit number allowing optional internal spacing
	// between the 4-digit groups.
	reAadhaar = regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`)

	// Two date shapes: day-month-year and month-day-year, 1-2 digit day and
	// month, 2- or 4-digit year, '/' or '-' separated. Textually the shapes
	// overlap; both are kept so either ordering is caught first on its line.
	reDateDMY = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/](\d{4}|\d{2})\b`)
	reDateMDY = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/](\d{4}|\d{2})\b`)
)

// boilerplateDenylist disqualifies document-furniture lines from being taken
// as the holder's name.
var boilerplateDenylist = []string{
	"income",
	"tax",
	"department",
	"govt",
	"government",
	"india",
	"permanent account",
	"card",
	"signature",
	"authority",
}

const aadhaarMask = "********"

// ParsePAN extracts PAN card fields from recognized text.
// The PAN number is mandatory; name and date of birth are optional.
func ParsePAN(rawText string) (*Result, error) {
	lines := splitLines(rawText)

	result := &Result{DocumentType: DocumentTypePAN, RawText: rawText}
	for _, line := range lines {
		if m := rePAN.FindString(line); m != "" {
			result.PANNumber = strings.ToUpper(m)
			break
		}
	}
	if result.PANNumber == "" {
		return nil, dErrors.New(dErrors.CodeDataExtractionFailed, "no PAN number found in document text")
	}

	result.Name = nameCandidate(lines)
	result.DateOfBirth = dateCandidate(lines)
	return result, nil
}

// ParseAadhaar extracts national-ID card fields from recognized text.
// The 12-digit number is mandatory and stored only in masked form.
func ParseAadhaar(rawText string) (*Result, error) {
	lines := splitLines(rawText)

	result := &Result{DocumentType: DocumentTypeAadhaar, RawText: rawText}
	for _, line := range lines {
		if m := reAadhaar.FindString(line); m != "" {
			result.AadhaarMasked = MaskAadhaar(m)
			break
		}
	}
	if result.AadhaarMasked == "" {
		return nil, dErrors.New(dErrors.CodeDataExtractionFailed, "no Aadhaar number found in document text")
	}

	result.Name = nameCandidate(lines)
	result.DateOfBirth = dateCandidate(lines)
	result.Address = addressCandidate(lines)
	return result, nil
}

// MaskAadhaar strips internal spacing and replaces the leading 8 digits with a
// fixed mask. Never returns more than the last 4 original digits.
func MaskAadhaar(number string) string {
	digits := strings.NewReplacer(" ", "", "\t", "").Replace(number)
	if len(digits) <= 4 {
		return aadhaarMask + digits
	}
	return aadhaarMask + digits[len(digits)-4:]
}

func splitLines(rawText string) []string {
	var lines []string
	for _, line := range strings.Split(rawText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// nameCandidate returns the first line that contains no digits, is longer than
// 3 characters, and carries no boilerplate term.
func nameCandidate(lines []string) string {
	for _, line := range lines {
		if len(line) <= 3 || containsDigit(line) {
			continue
		}
		if containsBoilerplate(line) {
			continue
		}
		return line
	}
	return ""
}

// dateCandidate scans all lines against both date shapes.
func dateCandidate(lines []string) string {
	for _, line := range lines {
		if m := reDateDMY.FindString(line); m != "" {
			return m
		}
		if m := reDateMDY.FindString(line); m != "" {
			return m
		}
	}
	return ""
}

// addressCandidate concatenates the non-trivial lines following an "address"
// marker line. Without a marker it falls back to the last few lines of the
// document, which is where the address sits on the card's reverse.
func addressCandidate(lines []string) string {
	marker := -1
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), "address") {
			marker = i
			break
		}
	}

	var parts []string
	if marker >= 0 {
		for _, line := range lines[marker+1:] {
			if isAddressLine(line) {
				parts = append(parts, line)
			}
		}
	} else {
		start := len(lines) - 3
		if start < 0 {
			start = 0
		}
		for _, line := range lines[start:] {
			if isAddressLine(line) {
				parts = append(parts, line)
			}
		}
	}
	return strings.Join(parts, ", ")
}

func isAddressLine(line string) bool {
	return len(line) > 3 && containsLetter(line)
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func containsLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func containsBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	for _, term := range boilerplateDenylist {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
