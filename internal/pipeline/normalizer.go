package pipeline

import (
	"fmt"
	"strings"

	"github.com/fieldops/task_distributor/internal/domain"
)

// Canonical schema of one contact row. Header matching is case-insensitive
// through an explicit, enumerable alias table rather than dynamic property
// access; extending the accepted spellings means extending this map.
var columnAliases = map[string]string{
	"firstname": "FirstName",
	"phone":     "Phone",
	"notes":     "Notes",
}

// RequiredColumns is the canonical column trio every upload must carry.
var RequiredColumns = []string{"FirstName", "Phone", "Notes"}

func canonicalColumn(header string) (string, bool) {
	name, ok := columnAliases[strings.ToLower(strings.TrimSpace(header))]
	return name, ok
}

func missingRequiredColumns(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		if name, ok := canonicalColumn(h); ok {
			present[name] = struct{}{}
		}
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}

	return missing
}

// Normalizer maps parsed rows onto the canonical contact schema and enforces
// per-row data quality. maxNotesLen differs between the interactive preview
// path and the persisted schema.
type Normalizer struct {
	maxNotesLen int
}

func NewNormalizer(maxNotesLen int) *Normalizer {
	return &Normalizer{maxNotesLen: maxNotesLen}
}

// NormalizeRow converts one parsed row at the given 0-based position into a
// contact, or reports every problem of the row referencing its 1-based number.
func (n *Normalizer) NormalizeRow(row domain.ParsedRow, index int) (domain.Contact, []string) {
	var contact domain.Contact

	for header, value := range row {
		name, ok := canonicalColumn(header)
		if !ok {
			continue
		}

		value = strings.TrimSpace(value)
		switch name {
		case "FirstName":
			contact.FirstName = value
		case "Phone":
			contact.Phone = value
		case "Notes":
			contact.Notes = value
		}
	}

	problems := contact.Validate(n.maxNotesLen)
	for i, problem := range problems {
		problems[i] = fmt.Sprintf("Row %d: %s", index+1, problem)
	}

	return contact, problems
}

// NormalizeAll checks every row and accumulates errors across the whole file:
// a single bad row rejects the upload as InvalidData with the complete error
// list, never a partial result with silently dropped rows.
func (n *Normalizer) NormalizeAll(rows []domain.ParsedRow) ([]domain.Contact, error) {
	contacts := make([]domain.Contact, 0, len(rows))

	var rowErrors []string
	for i, row := range rows {
		contact, problems := n.NormalizeRow(row, i)
		if len(problems) > 0 {
			rowErrors = append(rowErrors, problems...)
			continue
		}

		contacts = append(contacts, contact)
	}

	if len(rowErrors) > 0 {
		return nil, domain.NewInvalidDataError(rowErrors, len(contacts), len(rows))
	}

	return contacts, nil
}
