package extract

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

// fakeExtractor returns canned payloads per image ref and counts calls.
type fakeExtractor struct {
	mu       sync.Mutex
	payloads map[string]string
	failures map[string]int // remaining failures before success
	calls    map[string]int
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		payloads: make(map[string]string),
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
}

func (f *fakeExtractor) ExtractMatchResult(ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ref]++
	if f.failures[ref] > 0 {
		f.failures[ref]--
		return "", fmt.Errorf("service unavailable")
	}
	return f.payloads[ref], nil
}

func (f *fakeExtractor) ExtractRoster(ref string) (string, error) {
	return f.ExtractMatchResult(ref)
}

func payloadFor(placement int) string {
	return fmt.Sprintf(`[{"placement": %d, "players": ["a", "b", "c", "d"], "kills": 2}]`, placement)
}

func TestRunBatchAllSucceed(t *testing.T) {
	f := newFakeExtractor()
	refs := []string{"img1", "img2", "img3"}
	for i, ref := range refs {
		f.payloads[ref] = payloadFor(i + 1)
	}

	result := RunBatch(f, refs, 2)
	if len(result.Records) != 3 {
		t.Fatalf("want 3 records, got %d", len(result.Records))
	}
	if result.ImagesOK != 3 || result.TotalImages != 3 {
		t.Errorf("counters: ok=%d total=%d", result.ImagesOK, result.TotalImages)
	}
	// Output order follows image order regardless of worker scheduling.
	for i, rec := range result.Records {
		if rec.Placement != i+1 {
			t.Errorf("record %d: want placement %d, got %d", i, i+1, rec.Placement)
		}
	}
}

func TestRunBatchRetriesOnce(t *testing.T) {
	f := newFakeExtractor()
	f.payloads["img1"] = payloadFor(1)
	f.failures["img1"] = 1 // first attempt fails, retry succeeds

	result := RunBatch(f, []string{"img1"}, 1)
	if len(result.Records) != 1 {
		t.Fatalf("want 1 record after retry, got %d", len(result.Records))
	}
	if len(result.Errors) != 0 {
		t.Errorf("successful retry should leave no errors: %v", result.Errors)
	}
	if f.calls["img1"] != 2 {
		t.Errorf("want 2 attempts, got %d", f.calls["img1"])
	}
}

func TestRunBatchGivesUpAfterBudget(t *testing.T) {
	f := newFakeExtractor()
	f.payloads["img1"] = payloadFor(1)
	f.payloads["img2"] = payloadFor(2)
	f.failures["img2"] = 5 // never recovers within budget

	result := RunBatch(f, []string{"img1", "img2"}, 2)
	if len(result.Records) != 1 {
		t.Fatalf("want 1 record, got %d", len(result.Records))
	}
	if result.ImagesOK != 1 {
		t.Errorf("want 1 image ok, got %d", result.ImagesOK)
	}
	if f.calls["img2"] != maxAttempts {
		t.Errorf("want %d attempts for failing image, got %d", maxAttempts, f.calls["img2"])
	}
	if len(result.Errors) != 1 {
		t.Fatalf("want 1 error, got %d", len(result.Errors))
	}
	e := result.Errors[0]
	if e.ImageIndex != 1 {
		t.Errorf("error should carry image index 1, got %d", e.ImageIndex)
	}
	if !strings.Contains(e.Error, "after 2 attempts") {
		t.Errorf("error should mention the attempt budget: %q", e.Error)
	}
}

func TestRunBatchReportsDroppedRecords(t *testing.T) {
	f := newFakeExtractor()
	// One valid record plus one invalid: the image succeeds but the dropped
	// record is still surfaced.
	f.payloads["img1"] = `[
		{"placement": 1, "players": ["a", "b", "c", "d"], "kills": 2},
		{"players": ["x", "y", "z", "w"], "kills": 1}
	]`

	result := RunBatch(f, []string{"img1"}, 1)
	if len(result.Records) != 1 {
		t.Fatalf("want 1 record, got %d", len(result.Records))
	}
	if result.ImagesOK != 1 {
		t.Errorf("image with a valid record counts as ok, got %d", result.ImagesOK)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("want 1 dropped-record error, got %d", len(result.Errors))
	}
	if result.Errors[0].ImageIndex != 0 {
		t.Errorf("dropped record should carry its image index, got %d", result.Errors[0].ImageIndex)
	}
}

func TestRunBatchEmptyPayloadExhaustsRetries(t *testing.T) {
	f := newFakeExtractor()
	f.payloads["img1"] = "no json in this response"

	result := RunBatch(f, []string{"img1"}, 1)
	if len(result.Records) != 0 || result.ImagesOK != 0 {
		t.Fatalf("unusable payload must not produce records: %+v", result)
	}
	if f.calls["img1"] != maxAttempts {
		t.Errorf("unusable payload should burn the full budget, got %d attempts", f.calls["img1"])
	}
}
