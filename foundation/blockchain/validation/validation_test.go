package validation_test

import (
	"testing"

	"github.com/ardanlabs/protochain/foundation/blockchain/validation"
)

func Test_Validation(t *testing.T) {
	v := validation.New()
	if !v.Success || v.Message != "" {
		t.Fatalf("Should get a successful validation by default: %+v", v)
	}

	if w := v.Wrap("prefix: "); w != v {
		t.Fatalf("Should not change a successful validation when wrapped: %+v", w)
	}

	f := validation.Failf("Invalid block #%d: %s", 2, "No mined.")
	if f.Success {
		t.Fatalf("Should get a failed validation.")
	}

	if exp := "Invalid block #2: No mined."; f.Message != exp {
		t.Logf("got: %s", f.Message)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should get back the right message.")
	}

	w := validation.Fail("Invalid hash.").Wrap("Invalid block: ")
	if exp := "Invalid block: Invalid hash."; w.Message != exp || w.Success {
		t.Logf("got: %s", w.Message)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should get back the wrapped message.")
	}
}
