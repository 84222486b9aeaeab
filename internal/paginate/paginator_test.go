package paginate

import (
	"net/url"
	"strings"
	"testing"
)

func TestMetaFirstPage(t *testing.T) {
	meta := New(20, 0, 100, "/jobs/", nil).Meta()

	if meta["total_count"] != 100 {
		t.Errorf("total_count = %v", meta["total_count"])
	}
	if meta["limit"] != 20 || meta["offset"] != 0 {
		t.Errorf("limit/offset = %v/%v", meta["limit"], meta["offset"])
	}
	if meta["previous"] != nil {
		t.Errorf("previous = %v, want nil on first page", meta["previous"])
	}
	next, ok := meta["next"].(string)
	if !ok {
		t.Fatalf("next = %v, want link", meta["next"])
	}
	if !strings.Contains(next, "offset=20") || !strings.Contains(next, "limit=20") {
		t.Errorf("next = %s", next)
	}
	if !strings.HasPrefix(next, "/jobs/?") {
		t.Errorf("next should be relative: %s", next)
	}
}

func TestMetaMiddlePage(t *testing.T) {
	meta := New(20, 40, 100, "/jobs/", nil).Meta()

	next := meta["next"].(string)
	if !strings.Contains(next, "offset=60") {
		t.Errorf("next = %s", next)
	}
	previous := meta["previous"].(string)
	if !strings.Contains(previous, "offset=20") {
		t.Errorf("previous = %s", previous)
	}
}

func TestMetaLastPage(t *testing.T) {
	meta := New(20, 80, 100, "/jobs/", nil).Meta()
	if meta["next"] != nil {
		t.Errorf("next = %v, want nil on last page", meta["next"])
	}
	if meta["previous"] == nil {
		t.Error("previous missing on last page")
	}
}

func TestMetaPreviousClampedToZero(t *testing.T) {
	// Offset 10 with limit 20 still has a previous page, starting at 0.
	meta := New(20, 10, 100, "/jobs/", nil).Meta()
	previous := meta["previous"].(string)
	if !strings.Contains(previous, "offset=0") {
		t.Errorf("previous = %s, want clamped to offset=0", previous)
	}
}

func TestMetaZeroLimit(t *testing.T) {
	meta := New(0, 0, 100, "/jobs/", nil).Meta()
	if meta["total_count"] != 0 {
		t.Errorf("total_count = %v, want 0 for a zero limit", meta["total_count"])
	}
	if meta["next"] != nil || meta["previous"] != nil {
		t.Error("zero limit pages have no links")
	}
}

func TestPageLinksPreserveParams(t *testing.T) {
	params := url.Values{}
	params.Set("order_by", "[-start_time]")
	params.Set("organization_id", "7")

	meta := New(20, 20, 100, "/jobs/", params).Meta()
	next := meta["next"].(string)

	parsed, err := url.Parse(next)
	if err != nil {
		t.Fatalf("next does not parse: %v", err)
	}
	q := parsed.Query()
	if q.Get("order_by") != "[-start_time]" {
		t.Errorf("order_by = %s", q.Get("order_by"))
	}
	if q.Get("organization_id") != "7" {
		t.Errorf("organization_id = %s", q.Get("organization_id"))
	}
	if q.Get("offset") != "40" || q.Get("limit") != "20" {
		t.Errorf("offset/limit = %s/%s", q.Get("offset"), q.Get("limit"))
	}
}
