package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// DefaultDOIPages is how many pages ExtractDOIs scans when maxPages is
// not positive. Reference lists cluster at the end, but scanning
// everything is slow on book-length PDFs.
const DefaultDOIPages = 50

// ExtractDOIs scans up to maxPages of a PDF for DOI references and
// returns them deduplicated in first-seen order. Pages that fail text
// extraction are skipped; a PDF with no DOIs returns an empty slice,
// not an error.
func ExtractDOIs(filePath string, maxPages int) ([]string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	if maxPages <= 0 {
		maxPages = DefaultDOIPages
	}
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	seen := make(map[string]bool)
	var dois []string
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		for _, doi := range doisInText(text) {
			if !seen[doi] {
				seen[doi] = true
				dois = append(dois, doi)
			}
		}
	}

	return dois, nil
}

// doisInText finds all valid DOIs in a block of text, in order.
func doisInText(text string) []string {
	matches := doiPattern.FindAllString(text, -1)
	var dois []string
	for _, match := range matches {
		// Remove trailing punctuation
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			dois = append(dois, match)
		}
	}
	return dois
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	// Must start with 10. and have something after the /
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	if slashIdx == -1 || slashIdx >= len(doi)-1 {
		return false
	}
	return true
}
