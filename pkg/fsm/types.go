package fsm

// ImportRequest is the FSM input
type ImportRequest struct {
	S3Key    string
	S3Bucket string
}

// ImportResponse is the FSM output (accumulated across transitions)
type ImportResponse struct {
	// From Fetch
	DownloadPath string
	DownloadSize int64
	SHA256       string

	// From Validate
	RecipeCount int

	// From Store
	RecipeIDs []int64

	// From Complete/Failed
	Status       string
	ErrorMessage string
}

// State names
const (
	StateFetch    = "fetch"
	StateValidate = "validate"
	StateStore    = "store"
	StateComplete = "complete"
	StateFailed   = "failed"
)

// Import statuses
const (
	StatusImported = "imported"
	StatusFailed   = "failed"
)
