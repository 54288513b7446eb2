package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256 of the empty input
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("distinct inputs share a digest")
	}
}

func TestMatches(t *testing.T) {
	data := []byte("# note")
	sum := Sum(data)
	cases := []struct {
		want string
		ok   bool
	}{
		{"", true},
		{sum, true},
		{`"` + sum + `"`, true},
		{" " + sum + " ", true},
		{Sum([]byte("other")), false},
		{"garbage", false},
	}
	for _, c := range cases {
		if got := Matches(data, c.want); got != c.ok {
			t.Errorf("Matches(%q) = %v, want %v", c.want, got, c.ok)
		}
	}
}
