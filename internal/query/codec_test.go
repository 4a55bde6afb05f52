package query

import (
	"net/url"
	"testing"

	"pgregory.net/rapid"

	"scout-cli/internal/model"
)

func TestEncode_AllDefaultsIsEmpty(t *testing.T) {
	d := ConnectionDefaults()
	if got := Encode(d.Query(), d).Encode(); got != "" {
		t.Fatalf("expected empty query string; got %q", got)
	}
}

func TestEncode_OmitsDefaultFields(t *testing.T) {
	d := ConnectionDefaults()
	q := d.Query()
	q.Status = model.StatusActive

	vals := Encode(q, d)
	if got := vals.Get(ParamStatus); got != "active" {
		t.Fatalf("expected status=active; got %q", got)
	}
	for _, p := range []string{ParamSearch, ParamSortBy, ParamSortOrder, ParamPage, ParamLimit} {
		if vals.Has(p) {
			t.Fatalf("expected %s to be omitted; got %q", p, vals.Get(p))
		}
	}
}

func TestDecode_MalformedInputFallsBack(t *testing.T) {
	d := ConnectionDefaults()
	vals := url.Values{}
	vals.Set(ParamStatus, "bogus")
	vals.Set(ParamPage, "first")
	vals.Set(ParamLimit, "-3")
	vals.Set(ParamSortOrder, "sideways")
	vals.Set("utm_source", "newsletter") // unknown keys are ignored

	got := Decode(vals, d)
	want := d.Query()
	if got != want {
		t.Fatalf("expected defaults %+v; got %+v", want, got)
	}
}

func TestDecode_ReadsEveryField(t *testing.T) {
	d := ConnectionDefaults()
	vals, err := url.ParseQuery("status=pending&search=acme&sortBy=companyName&sortOrder=asc&page=4&limit=50")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}

	got := Decode(vals, d)
	want := ListQuery{
		Status:    model.StatusPending,
		Search:    "acme",
		SortBy:    "companyName",
		SortOrder: OrderAsc,
		Page:      4,
		Limit:     50,
	}
	if got != want {
		t.Fatalf("expected %+v; got %+v", want, got)
	}
}

func TestWithPage_Clamps(t *testing.T) {
	d := ConnectionDefaults()
	q := d.Query()

	if got := q.WithPage(7, 3).Page; got != 3 {
		t.Fatalf("expected clamp to 3; got %d", got)
	}
	if got := q.WithPage(0, 3).Page; got != 1 {
		t.Fatalf("expected clamp to 1; got %d", got)
	}
	if got := q.WithPage(5, 0).Page; got != 1 {
		t.Fatalf("expected clamp to 1 when totalPages unknown; got %d", got)
	}
}

// Any query reachable through the controller's mutators survives a
// serialize/parse round trip unchanged.
func TestRoundTrip_Property(t *testing.T) {
	d := ConnectionDefaults()
	statuses := []model.ConnectionStatus{"", model.StatusPending, model.StatusActive, model.StatusDeclined, model.StatusTerminated}
	sortCols := []string{"created_at", "updated_at", "companyName", "roleTitle", "status"}

	rapid.Check(t, func(t *rapid.T) {
		q := ListQuery{
			Status:    rapid.SampledFrom(statuses).Draw(t, "status"),
			Search:    rapid.StringMatching(`[a-zA-Z0-9 @.+-]{0,20}`).Draw(t, "search"),
			SortBy:    rapid.SampledFrom(sortCols).Draw(t, "sortBy"),
			SortOrder: rapid.SampledFrom([]SortOrder{OrderAsc, OrderDesc}).Draw(t, "order"),
			Page:      rapid.IntRange(1, 500).Draw(t, "page"),
			Limit:     rapid.IntRange(1, 200).Draw(t, "limit"),
		}

		encoded := Encode(q, d).Encode()
		parsed, err := url.ParseQuery(encoded)
		if err != nil {
			t.Fatalf("ParseQuery(%q): %v", encoded, err)
		}
		if got := Decode(parsed, d); got != q {
			t.Fatalf("round trip mismatch: %+v -> %q -> %+v", q, encoded, got)
		}
	})
}
