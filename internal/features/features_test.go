package features

import (
	"reflect"
	"testing"
)

func TestParseClassifiesTags(t *testing.T) {
	set := Parse([]string{
		"region: United States",
		"Platform: Netflix",
		"AGE: 2018",
		"Followers: 10k",
		"Email Verified",
		"Instant Delivery",
	})

	if got := set.Value(KindRegion); got != "United States" {
		t.Fatalf("region = %q", got)
	}
	if got := set.Value(KindPlatform); got != "Netflix" {
		t.Fatalf("platform = %q", got)
	}
	if got := set.Value(KindAge); got != "2018" {
		t.Fatalf("age = %q", got)
	}
	if got := set.Value(KindFollowers); got != "10k" {
		t.Fatalf("followers = %q", got)
	}
	if !reflect.DeepEqual(set.FreeText, []string{"Email Verified", "Instant Delivery"}) {
		t.Fatalf("free text = %v", set.FreeText)
	}
}

func TestParseFirstTagOfKindWins(t *testing.T) {
	set := Parse([]string{"Region: US", "Region: UK"})
	if got := set.Value(KindRegion); got != "US" {
		t.Fatalf("region = %q", got)
	}
	// The duplicate stays visible as free text rather than being dropped.
	if len(set.FreeText) != 1 || set.FreeText[0] != "Region: UK" {
		t.Fatalf("free text = %v", set.FreeText)
	}
}

func TestValueMissingKind(t *testing.T) {
	set := Parse([]string{"Email Verified"})
	if set.Has(KindRegion) {
		t.Fatal("region should be absent")
	}
	if got := set.Value(KindRegion); got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
}

func TestWithTagAndEncode(t *testing.T) {
	set := Parse([]string{"Email Verified"})
	set = set.WithTag(KindRegion, "US")
	set = set.WithTag(KindFollowers, "5k")
	set = set.WithTag(KindFollowers, "10k")

	encoded := set.Encode()
	want := []string{"Region: US", "Followers: 10k", "Email Verified"}
	if !reflect.DeepEqual(encoded, want) {
		t.Fatalf("encoded = %v, want %v", encoded, want)
	}

	// Round trip lands on the same typed view.
	again := Parse(encoded)
	if got := again.Value(KindFollowers); got != "10k" {
		t.Fatalf("followers after round trip = %q", got)
	}
}

func TestWithTagEmptyValueRemoves(t *testing.T) {
	set := Parse([]string{"Age: 2018"})
	set = set.WithTag(KindAge, "")
	if set.Has(KindAge) {
		t.Fatal("age tag should have been removed")
	}
}
