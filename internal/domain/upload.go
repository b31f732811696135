package domain

type FileFormat string

const (
	FormatCSV  FileFormat = "csv"
	FormatXLS  FileFormat = "xls"
	FormatXLSX FileFormat = "xlsx"
)

// RawUpload is the untrusted inbound payload. It exists only for the
// duration of one request and is never persisted as-is.
type RawUpload struct {
	Content     []byte
	ContentType string
	Filename    string
	Size        int64
}

// ValidatedUpload is produced by the ingestion gate once every check passed.
// StoredName carries a collision-proof uniqueness tag and is the only name
// trusted for logging and persisted artifact naming.
type ValidatedUpload struct {
	Content       []byte
	Format        FileFormat
	SanitizedName string
	StoredName    string
}
