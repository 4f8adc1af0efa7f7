package model

import (
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"
)

func mergeFixtures(t *testing.T) (*Watchlist, *Watchlist) {
	t.Helper()
	a, err := New("SP500", []string{"META", "TSLA"}, "2", "2023-01-15", map[string]string{"index": "S&P500"})
	if err != nil {
		t.Fatalf("New(SP500) failed: %v", err)
	}
	b, err := New("DOW30.toml", []string{"AAPL", "BA"}, "5", "2023-02-20", map[string]string{"index": "DJIA", "region": "US"})
	if err != nil {
		t.Fatalf("New(DOW30) failed: %v", err)
	}
	return a, b
}

func TestMerge_DerivedNameAndTickerOrder(t *testing.T) {
	a, b := mergeFixtures(t)

	merged, err := Merge(a, b, MergeOptions{})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if merged.Filename() != "SP500_DOW30.toml" {
		t.Errorf("Filename = %s, want SP500_DOW30.toml", merged.Filename())
	}
	want := []string{"META", "TSLA", "AAPL", "BA"}
	if !reflect.DeepEqual(merged.Tickers(), want) {
		t.Errorf("Tickers = %v, want %v", merged.Tickers(), want)
	}
}

func TestMerge_CollapsesSharedTickers(t *testing.T) {
	a := mustNew(t, "ONE", "AAPL", "TSLA")
	b := mustNew(t, "TWO", "tsla", "BA")

	merged, err := Merge(a, b, MergeOptions{})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	want := []string{"AAPL", "TSLA", "BA"}
	if !reflect.DeepEqual(merged.Tickers(), want) {
		t.Errorf("Tickers = %v, want %v", merged.Tickers(), want)
	}
}

func TestMerge_TickerSetIsCommutative(t *testing.T) {
	a, b := mergeFixtures(t)

	ab, err := Merge(a, b, MergeOptions{})
	if err != nil {
		t.Fatalf("Merge(a, b) failed: %v", err)
	}
	ba, err := Merge(b, a, MergeOptions{})
	if err != nil {
		t.Fatalf("Merge(b, a) failed: %v", err)
	}

	first := ab.Tickers()
	second := ba.Tickers()
	sort.Strings(first)
	sort.Strings(second)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ticker sets differ: %v vs %v", first, second)
	}
}

func TestMerge_ExplicitName(t *testing.T) {
	a, b := mergeFixtures(t)

	merged, err := Merge(a, b, MergeOptions{Name: "combined"})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if merged.Filename() != "combined.toml" {
		t.Errorf("Filename = %s, want combined.toml", merged.Filename())
	}

	merged, err = Merge(a, b, MergeOptions{Name: "combined.TOML"})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if merged.Filename() != "combined.TOML" {
		t.Errorf("Filename = %s, want combined.TOML (no double extension)", merged.Filename())
	}
}

func TestMerge_MetadataSelection(t *testing.T) {
	a, b := mergeFixtures(t)

	merged, err := Merge(a, b, MergeOptions{MetaSource: MetaNone})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(merged.Record().Metadata) != 0 {
		t.Errorf("MetaNone: metadata = %v, want empty", merged.Record().Metadata)
	}

	merged, err = Merge(a, b, MergeOptions{MetaSource: MetaFromFirst})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !reflect.DeepEqual(merged.Record().Metadata, map[string]string{"index": "S&P500"}) {
		t.Errorf("MetaFromFirst: metadata = %v, want a's metadata", merged.Record().Metadata)
	}

	merged, err = Merge(a, b, MergeOptions{MetaSource: MetaFromSecond})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !reflect.DeepEqual(merged.Record().Metadata, map[string]string{"index": "DJIA", "region": "US"}) {
		t.Errorf("MetaFromSecond: metadata = %v, want b's metadata", merged.Record().Metadata)
	}
}

func TestMerge_MetadataIsIndependentCopy(t *testing.T) {
	a, b := mergeFixtures(t)

	merged, err := Merge(a, b, MergeOptions{MetaSource: MetaFromFirst})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if err := merged.UpdateMetadata("index", "changed"); err != nil {
		t.Fatalf("UpdateMetadata failed: %v", err)
	}
	if value, _ := a.Metadata("index"); value != "S&P500" {
		t.Errorf("merged metadata shares storage with input: %s", value)
	}
}

func TestMerge_InvalidMetaSource(t *testing.T) {
	a, b := mergeFixtures(t)

	for _, src := range []MetaSource{3, -1, 42} {
		merged, err := Merge(a, b, MergeOptions{MetaSource: src})
		if !errors.Is(err, ErrInvalidMergeOption) {
			t.Errorf("MetaSource %d: err = %v, want ErrInvalidMergeOption", src, err)
		}
		if merged != nil {
			t.Errorf("MetaSource %d: got a result despite the error", src)
		}
	}
}

func TestMerge_DateResolution(t *testing.T) {
	a, b := mergeFixtures(t)

	merged, err := Merge(a, b, MergeOptions{})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	today := time.Now().Format(DateLayout)
	if merged.Date() != today {
		t.Errorf("Date = %s, want today %s", merged.Date(), today)
	}

	merged, err = Merge(a, b, MergeOptions{Date: "2022-07-04"})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if merged.Date() != "2022-07-04" {
		t.Errorf("Date = %s, want 2022-07-04", merged.Date())
	}

	if _, err := Merge(a, b, MergeOptions{Date: "07/04/2022"}); !errors.Is(err, ErrInvalidDateFormat) {
		t.Errorf("bad date: err = %v, want ErrInvalidDateFormat", err)
	}
	future := time.Now().AddDate(0, 0, 1).Format(DateLayout)
	if _, err := Merge(a, b, MergeOptions{Date: future}); !errors.Is(err, ErrFutureDate) {
		t.Errorf("future date: err = %v, want ErrFutureDate", err)
	}
}

func TestMerge_VersionResolution(t *testing.T) {
	a, b := mergeFixtures(t)

	merged, err := Merge(a, b, MergeOptions{})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if merged.Version() != "1" {
		t.Errorf("default Version = %s, want 1", merged.Version())
	}

	merged, err = Merge(a, b, MergeOptions{Version: "7-rc1"})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if merged.Version() != "7-rc1" {
		t.Errorf("Version = %s, want 7-rc1", merged.Version())
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	a, b := mergeFixtures(t)
	aBefore := a.Record()
	bBefore := b.Record()

	if _, err := Merge(a, b, MergeOptions{MetaSource: MetaFromSecond}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if !reflect.DeepEqual(a.Record(), aBefore) {
		t.Errorf("first input changed: %+v vs %+v", a.Record(), aBefore)
	}
	if !reflect.DeepEqual(b.Record(), bBefore) {
		t.Errorf("second input changed: %+v vs %+v", b.Record(), bBefore)
	}
}

func TestMerge_NilInput(t *testing.T) {
	a, _ := mergeFixtures(t)
	if _, err := Merge(a, nil, MergeOptions{}); !errors.Is(err, ErrValidation) {
		t.Errorf("nil input: err = %v, want ErrValidation", err)
	}
}
