package validate_test

import (
	"fmt"
	"testing"

	"github.com/ardanlabs/protochain/business/sys/validate"
)

type model struct {
	Hash  string `json:"hash" validate:"required"`
	Other string `json:"-"`
}

func Test_Check(t *testing.T) {
	t.Log("Given the need to validate request models.")
	{
		if err := validate.Check(model{Hash: "0xabc"}); err != nil {
			t.Fatalf("\t✗\tShould accept a complete model: %s", err)
		}
		t.Logf("\t✓\tShould accept a complete model.")

		err := validate.Check(model{})
		if !validate.IsFieldErrors(err) {
			t.Fatalf("\t✗\tShould get back field errors: %v", err)
		}

		fields := validate.GetFieldErrors(fmt.Errorf("wrapped: %w", err)).Fields()
		if fields["hash"] != "hash is a required field" {
			t.Fatalf("\t✗\tShould name the json field in english: %v", fields)
		}
		t.Logf("\t✓\tShould name the json field in english.")

		if validate.GetFieldErrors(fmt.Errorf("plain")) != nil {
			t.Fatalf("\t✗\tShould not find field errors in a plain error.")
		}
		t.Logf("\t✓\tShould not find field errors in a plain error.")
	}
}
