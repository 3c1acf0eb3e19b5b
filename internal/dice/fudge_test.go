package dice

import "testing"

func TestFudgeTrace(t *testing.T) {
	testCases := []struct {
		code   string
		picks  []string
		detail string
		result int64
	}{
		{"4DF", []string{"-", "0", "+", "-"}, "4F=[-, 0, +, -]=-1", -1},
		{"F", []string{"+", "+", "0", "-"}, "F=[+, +, 0, -]=1", 1},
		{"dF", []string{"0", "0", "0", "0"}, "F=[0, 0, 0, 0]=0", 0},
		{"2F", []string{"+", "+"}, "2F=[+, +]=2", 2},
		{"2f", []string{"-", "-"}, "2F=[-, -]=-2", -2},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			spec := mustParse(t, tc.code)
			got := spec.Eval(newScript(t, nil, tc.picks...))
			if got.Detail != tc.detail {
				t.Errorf("Expected detail %q, got %q", tc.detail, got.Detail)
			}
			if got.Result != tc.result {
				t.Errorf("Expected result %d, got %d", tc.result, got.Result)
			}
		})
	}
}

func TestFudgeRange(t *testing.T) {
	spec := mustParse(t, "4F")
	src := newRandSource(2)
	for i := 0; i < 500; i++ {
		got := spec.Eval(src)
		if got.Result < -4 || got.Result > 4 {
			t.Fatalf("4F result %d outside [-4, 4]", got.Result)
		}
	}
}

func TestFudgeTruncation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxOutputItems = 2

	spec, err := Parse("2F", cfg)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got := spec.Eval(newScript(t, nil, "+", "-"))
	want := "2F=[{I18N:dice.message.output.too_long,length=2}]=0"
	if got.Detail != want {
		t.Errorf("Expected detail %q, got %q", want, got.Detail)
	}
	if got.Result != 0 {
		t.Errorf("Expected result 0, got %d", got.Result)
	}
}
