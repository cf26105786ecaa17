package tfidf

import (
	"math"
	"reflect"
	"testing"
)

func TestFit_VocabularyExcludesStopwords(t *testing.T) {
	space, err := NewVectorizer().Fit([]string{
		"Employees get 12 casual leaves per year.",
		"Notice period is 30 days after confirmation.",
	})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	want := []string{"12", "30", "casual", "confirmation", "days", "employees", "leaves", "notice", "period", "year"}
	if got := space.Vocabulary(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected vocabulary:\n got %v\nwant %v", got, want)
	}
	if space.Dimension() != len(want) {
		t.Fatalf("expected dimension %d, got %d", len(want), space.Dimension())
	}
}

func TestFit_EmptyCorpus(t *testing.T) {
	space, err := NewVectorizer().Fit(nil)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if space.Dimension() != 0 {
		t.Fatalf("expected empty vocabulary, got %d terms", space.Dimension())
	}
	if v := space.Transform("anything at all"); v.Len() != 0 {
		t.Fatalf("expected zero vector, got %v", v)
	}
}

func TestFit_IsFromScratch(t *testing.T) {
	vz := NewVectorizer()
	first, _ := vz.Fit([]string{"vacation policy"})
	second, _ := vz.Fit([]string{"notice period"})
	if !reflect.DeepEqual(first.Vocabulary(), []string{"policy", "vacation"}) {
		t.Fatalf("first space changed: %v", first.Vocabulary())
	}
	if !reflect.DeepEqual(second.Vocabulary(), []string{"notice", "period"}) {
		t.Fatalf("second space carries old terms: %v", second.Vocabulary())
	}
}

func TestTransform_NormalisedAndSorted(t *testing.T) {
	space, _ := NewVectorizer().Fit([]string{"leave leave policy", "notice policy"})
	v := space.Transform("leave leave policy")
	if v.Len() != 2 {
		t.Fatalf("expected 2 non-zero terms, got %d", v.Len())
	}
	for i := 1; i < len(v.Indices); i++ {
		if v.Indices[i] <= v.Indices[i-1] {
			t.Fatalf("indices not ascending: %v", v.Indices)
		}
	}
	norm := 0.0
	for _, w := range v.Values {
		norm += w * w
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-9 {
		t.Fatalf("expected unit norm, got %f", math.Sqrt(norm))
	}
}

func TestTransform_OutOfVocabulary(t *testing.T) {
	space, _ := NewVectorizer().Fit([]string{"casual leaves"})
	for _, q := range []string{"", "the and of", "unrelated words"} {
		if v := space.Transform(q); v.Len() != 0 {
			t.Fatalf("query %q: expected zero vector, got %v", q, v)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Don't take 2 WFH-days, a_b!")
	want := []string{"don", "take", "wfh", "days", "a_b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !IsStopword("the") || IsStopword("leave") {
		t.Fatalf("unexpected stop word classification")
	}
}

func TestTransform_SmoothedIdfWeights(t *testing.T) {
	space, err := NewVectorizer().Fit([]string{"apple banana", "apple cherry"})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if want := []string{"apple", "banana", "cherry"}; !reflect.DeepEqual(space.Vocabulary(), want) {
		t.Fatalf("unexpected vocabulary %v", space.Vocabulary())
	}

	// N=2: apple has df=2, banana df=1.
	idfApple := math.Log(3.0/3.0) + 1
	idfBanana := math.Log(3.0/2.0) + 1
	norm := math.Hypot(idfApple, idfBanana)

	v := space.Transform("apple banana")
	if !reflect.DeepEqual(v.Indices, []int{0, 1}) {
		t.Fatalf("unexpected indices %v", v.Indices)
	}
	for i, want := range []float64{idfApple / norm, idfBanana / norm} {
		if math.Abs(v.Values[i]-want) > 1e-9 {
			t.Fatalf("weight %d: got %.10f, want %.10f", i, v.Values[i], want)
		}
	}
	if math.Abs(v.Values[0]-0.5797386) > 1e-6 || math.Abs(v.Values[1]-0.8148024) > 1e-6 {
		t.Fatalf("weights drifted from reference values: %v", v.Values)
	}
}
