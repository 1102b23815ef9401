package pipeline

// PageTask is the unit of work for one document page. Immutable once
// dispatched to the pool.
type PageTask struct {
	// Page is the 1-based page index.
	Page int
	// DPI is the rendering resolution.
	DPI int
	// Languages is the OCR language spec, e.g. "eng" or "eng+deu".
	Languages string
}

// ResultStatus classifies the outcome of one page task.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultFailed  ResultStatus = "failed"
)

// PageResult is produced exactly once per dispatched PageTask. The durable
// record of completion is the per-page artifact the worker persisted, not
// this value; results exist for progress tracking and the end-of-run summary.
type PageResult struct {
	Page   int
	Status ResultStatus
	// Text is the recognized page text, present only on success.
	Text string
	// Err is the captured failure detail, present only on failure.
	Err string
	// OCRMillis is the recognition latency for the final attempt.
	OCRMillis int64
}
