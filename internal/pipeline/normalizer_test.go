package pipeline_test

import (
	"strings"
	"testing"

	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/fieldops/task_distributor/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_NormalizeRow_AliasesAndTrimming(t *testing.T) {
	t.Parallel()

	normalizer := pipeline.NewNormalizer(domain.MaxNotesLenStored)

	tests := []struct {
		name string
		row  domain.ParsedRow
	}{
		{"lowercase headers", domain.ParsedRow{"firstname": "John", "phone": "5551234567", "notes": "hi"}},
		{"uppercase headers", domain.ParsedRow{"FIRSTNAME": "John", "PHONE": "5551234567", "NOTES": "hi"}},
		{"canonical headers", domain.ParsedRow{"FirstName": "John", "Phone": "5551234567", "Notes": "hi"}},
		{"padded headers and values", domain.ParsedRow{" FirstName ": " John ", "Phone ": " 5551234567 ", " notes": " hi "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contact, problems := normalizer.NormalizeRow(tt.row, 0)
			require.Empty(t, problems)
			assert.Equal(t, domain.Contact{FirstName: "John", Phone: "5551234567", Notes: "hi"}, contact)
		})
	}
}

func TestNormalizer_NormalizeRow_UnknownColumnsIgnored(t *testing.T) {
	t.Parallel()

	normalizer := pipeline.NewNormalizer(domain.MaxNotesLenStored)

	contact, problems := normalizer.NormalizeRow(domain.ParsedRow{
		"FirstName": "John",
		"Phone":     "5551234567",
		"Notes":     "",
		"Email":     "john@example.com",
	}, 0)

	require.Empty(t, problems)
	assert.Equal(t, "John", contact.FirstName)
}

func TestNormalizer_NormalizeRow_Validation(t *testing.T) {
	t.Parallel()

	normalizer := pipeline.NewNormalizer(domain.MaxNotesLenStored)

	tests := []struct {
		name        string
		row         domain.ParsedRow
		index       int
		wantProblem string
	}{
		{
			name:        "short phone",
			row:         domain.ParsedRow{"FirstName": "John", "Phone": "123", "Notes": ""},
			index:       0,
			wantProblem: "Row 1: Phone number appears to be invalid",
		},
		{
			name:        "missing first name",
			row:         domain.ParsedRow{"FirstName": "  ", "Phone": "5551234567", "Notes": ""},
			index:       1,
			wantProblem: "Row 2: FirstName is required",
		},
		{
			name:        "missing phone",
			row:         domain.ParsedRow{"FirstName": "John", "Phone": "", "Notes": ""},
			index:       4,
			wantProblem: "Row 5: Phone is required",
		},
		{
			name:        "first name too long",
			row:         domain.ParsedRow{"FirstName": strings.Repeat("a", 101), "Phone": "5551234567", "Notes": ""},
			index:       0,
			wantProblem: "Row 1: FirstName must not exceed 100 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, problems := normalizer.NormalizeRow(tt.row, tt.index)
			assert.Contains(t, problems, tt.wantProblem)
		})
	}
}

func TestNormalizer_NormalizeRow_PhoneFormattingAccepted(t *testing.T) {
	t.Parallel()

	normalizer := pipeline.NewNormalizer(domain.MaxNotesLenStored)

	// Formatting characters do not count; seven digits remain.
	_, problems := normalizer.NormalizeRow(domain.ParsedRow{
		"FirstName": "John",
		"Phone":     "+1 (555) 12-34",
		"Notes":     "",
	}, 0)

	assert.Empty(t, problems)
}

func TestNormalizer_NotesLimitPerCallPath(t *testing.T) {
	t.Parallel()

	row := domain.ParsedRow{
		"FirstName": "John",
		"Phone":     "5551234567",
		"Notes":     strings.Repeat("n", 600),
	}

	_, problems := pipeline.NewNormalizer(domain.MaxNotesLenPreview).NormalizeRow(row, 0)
	assert.Contains(t, problems, "Row 1: Notes must not exceed 500 characters")

	_, problems = pipeline.NewNormalizer(domain.MaxNotesLenStored).NormalizeRow(row, 0)
	assert.Empty(t, problems)
}

func TestNormalizer_NormalizeAll_AccumulatesAcrossFile(t *testing.T) {
	t.Parallel()

	normalizer := pipeline.NewNormalizer(domain.MaxNotesLenStored)

	_, err := normalizer.NormalizeAll([]domain.ParsedRow{
		{"FirstName": "John", "Phone": "5551234567", "Notes": ""},
		{"FirstName": "", "Phone": "123", "Notes": ""},
		{"FirstName": "Jane", "Phone": "5559876543", "Notes": ""},
		{"FirstName": "Bob", "Phone": "12", "Notes": ""},
	})

	perr := pipelineError(t, err)
	assert.Equal(t, domain.CodeInvalidData, perr.Code)
	assert.Equal(t, 2, perr.ValidRows)
	assert.Equal(t, 4, perr.TotalRows)
	assert.Equal(t, []string{
		"Row 2: FirstName is required",
		"Row 2: Phone number appears to be invalid",
		"Row 4: Phone number appears to be invalid",
	}, perr.RowErrors)
}

func TestNormalizer_NormalizeAll_AllValid(t *testing.T) {
	t.Parallel()

	normalizer := pipeline.NewNormalizer(domain.MaxNotesLenStored)

	contacts, err := normalizer.NormalizeAll([]domain.ParsedRow{
		{"firstname": "John", "phone": "5551234567", "notes": "first"},
		{"firstname": "Jane", "phone": "5559876543", "notes": "second"},
	})
	require.NoError(t, err)

	require.Len(t, contacts, 2)
	assert.Equal(t, "first", contacts[0].Notes)
	assert.Equal(t, "Jane", contacts[1].FirstName)
}
