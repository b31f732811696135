package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/google/uuid"
)

const (
	// MaxUploadSize bounds worst-case processing time of one synchronous
	// request; anything larger is rejected before parsing is attempted.
	MaxUploadSize = 5 << 20

	maxFilenameLen = 255
	sniffLen       = 1 << 10
)

var (
	xlsxSignature = []byte{0x50, 0x4B, 0x03, 0x04}
	xlsSignature  = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

var formatsByContentType = map[string]domain.FileFormat{
	"text/csv":        domain.FormatCSV,
	"application/csv": domain.FormatCSV,
	"application/vnd.ms-excel": domain.FormatXLS,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": domain.FormatXLSX,
}

var formatsByExtension = map[string]domain.FileFormat{
	".csv":  domain.FormatCSV,
	".xls":  domain.FormatXLS,
	".xlsx": domain.FormatXLSX,
}

var reservedNames = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// Gate validates an untrusted upload before anything else touches it: size
// bounds, declared-type allow-list, content signature and filename hygiene,
// in that order, short-circuiting on the first failure.
type Gate struct {
	log *slog.Logger
}

func NewGate(log *slog.Logger) *Gate {
	return &Gate{log: log}
}

func (g *Gate) Validate(upload *domain.RawUpload) (*domain.ValidatedUpload, error) {
	if upload.Size == 0 {
		return nil, domain.NewError(domain.CodeEmptyFile, "uploaded file is empty")
	}

	if upload.Size > MaxUploadSize {
		return nil, domain.NewErrorf(domain.CodeTooLarge,
			"uploaded file exceeds the %d MiB limit", MaxUploadSize>>20)
	}

	format, err := resolveFormat(upload.ContentType, upload.Filename)
	if err != nil {
		return nil, err
	}

	if err := checkSignature(format, upload.Content); err != nil {
		return nil, err
	}

	sanitized, err := sanitizeFilename(upload.Filename)
	if err != nil {
		return nil, err
	}

	validated := &domain.ValidatedUpload{
		Content:       upload.Content,
		Format:        format,
		SanitizedName: sanitized,
		StoredName:    taggedName(sanitized),
	}

	g.log.Debug("upload passed ingestion gate",
		slog.String("filename", validated.SanitizedName),
		slog.String("stored_name", validated.StoredName),
		slog.String("format", string(validated.Format)),
		slog.Int64("size", upload.Size),
	)

	return validated, nil
}

func resolveFormat(contentType, filename string) (domain.FileFormat, error) {
	declared := contentType
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = declared[:i]
	}
	declared = strings.ToLower(strings.TrimSpace(declared))

	if format, ok := formatsByContentType[declared]; ok {
		return format, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if format, ok := formatsByExtension[ext]; ok {
		return format, nil
	}

	return "", domain.NewErrorf(domain.CodeUnsupportedType,
		"unsupported file type %q, expected CSV, XLS or XLSX", contentType)
}

func checkSignature(format domain.FileFormat, content []byte) error {
	switch format {
	case domain.FormatXLSX:
		if !bytes.HasPrefix(content, xlsxSignature) {
			return domain.NewError(domain.CodeInvalidSignature,
				"file content does not match the declared XLSX type")
		}

	case domain.FormatXLS:
		if !bytes.HasPrefix(content, xlsSignature) {
			return domain.NewError(domain.CodeInvalidSignature,
				"file content does not match the declared XLS type")
		}

	case domain.FormatCSV:
		head := content
		if len(head) > sniffLen {
			head = head[:sniffLen]
		}
		for _, b := range head {
			if b == '\t' || b == '\r' || b == '\n' {
				continue
			}
			if b < 0x20 || b > 0x7E {
				return domain.NewErrorf(domain.CodeInvalidSignature,
					"file content does not look like text, found byte 0x%02X", b)
			}
		}
	}

	return nil
}

func sanitizeFilename(name string) (string, error) {
	// Strip path components written with either separator.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)

	if name == "" || name == "." {
		return "", domain.NewError(domain.CodeFilenameInvalid, "filename is empty")
	}

	if strings.Contains(name, "..") {
		return "", domain.NewError(domain.CodeFilenameInvalid, "filename contains a path traversal sequence")
	}

	if len(name) > maxFilenameLen {
		return "", domain.NewErrorf(domain.CodeFilenameInvalid,
			"filename exceeds %d characters", maxFilenameLen)
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	if _, ok := reservedNames[strings.ToLower(base)]; ok {
		return "", domain.NewErrorf(domain.CodeFilenameInvalid, "%q is a reserved name", base)
	}

	for _, r := range name {
		if !isAllowedFilenameRune(r) {
			return "", domain.NewErrorf(domain.CodeFilenameInvalid,
				"filename contains disallowed character %q", r)
		}
	}

	return name, nil
}

func isAllowedFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-' || r == '_' || r == ' ' || r == '(' || r == ')':
		return true
	}
	return false
}

// taggedName attaches a collision-proof identifier to the sanitized name so
// persisted artifacts never clash, without touching the validated content.
func taggedName(sanitized string) string {
	ext := filepath.Ext(sanitized)
	base := strings.TrimSuffix(sanitized, ext)

	return fmt.Sprintf("%s-%d-%s%s", base, time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}
