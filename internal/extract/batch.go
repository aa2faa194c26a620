package extract

import (
	"fmt"
	"sync"

	"scrimtally/internal/model"
	"scrimtally/internal/normalize"
)

// maxAttempts is the per-image extraction retry budget. A failed attempt is
// one that yields zero valid records, whether the call errored or the
// payload failed validation.
const maxAttempts = 2

// DefaultWorkers bounds the extraction fan-out.
const DefaultWorkers = 4

// BatchResult joins the per-image outcomes of one fan-out: records flattened
// in image order, and the error list for images (or records) that were
// excluded from scoring.
type BatchResult struct {
	Records     []model.RawResultRecord
	Errors      []model.ImageError
	ImagesOK    int
	TotalImages int
}

// imageOutcome is what one image's attempt loop produced.
type imageOutcome struct {
	records []model.RawResultRecord
	errs    []model.ImageError
	ok      bool
}

// RunBatch extracts every image concurrently, each with its own retry
// budget, and joins wait-for-all before returning. Per-image failures are
// local: the image lands in Errors and the rest of the batch proceeds.
func RunBatch(ex Extractor, imageRefs []string, workers int) BatchResult {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(imageRefs) {
		workers = len(imageRefs)
	}

	outcomes := make([]imageOutcome, len(imageRefs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = extractOne(ex, i, imageRefs[i])
			}
		}()
	}
	for i := range imageRefs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Re-join in image order so output is deterministic.
	result := BatchResult{TotalImages: len(imageRefs)}
	for _, o := range outcomes {
		result.Records = append(result.Records, o.records...)
		result.Errors = append(result.Errors, o.errs...)
		if o.ok {
			result.ImagesOK++
		}
	}
	return result
}

// extractOne runs the attempt loop for a single image. An attempt succeeds
// once it produces at least one valid record; dropped-record reasons from
// the successful attempt are still reported.
func extractOne(ex Extractor, index int, ref string) imageOutcome {
	var o imageOutcome
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		payload, err := ex.ExtractMatchResult(ref)
		if err != nil {
			lastErr = err
			continue
		}
		outcome, err := normalize.ParsePayload(payload)
		if err != nil {
			lastErr = err
			continue
		}
		if len(outcome.Records) == 0 {
			lastErr = fmt.Errorf("no valid records in payload")
			continue
		}

		o.records = outcome.Records
		o.ok = true
		for _, reason := range outcome.Dropped {
			o.errs = append(o.errs, model.ImageError{ImageIndex: index, Error: reason})
		}
		return o
	}

	o.errs = append(o.errs, model.ImageError{
		ImageIndex: index,
		Error:      fmt.Sprintf("extraction failed after %d attempts: %v", maxAttempts, lastErr),
	})
	return o
}
