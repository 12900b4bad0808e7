package validate_test

import (
	"testing"

	"github.com/ardanlabs/hashchain/foundation/validate"
)

type newBlock struct {
	Data       string `json:"data" validate:"required"`
	Difficulty uint   `json:"difficulty" validate:"lte=64"`
}

func Test_Check(t *testing.T) {
	if err := validate.Check(newBlock{Data: "payload", Difficulty: 2}); err != nil {
		t.Fatalf("Should accept a valid model: %s", err)
	}

	err := validate.Check(newBlock{Difficulty: 65})
	if !validate.IsFieldErrors(err) {
		t.Fatalf("Should get field errors, got %v.", err)
	}

	fields := validate.GetFieldErrors(err).Fields()
	for _, name := range []string{"data", "difficulty"} {
		if _, exists := fields[name]; !exists {
			t.Fatalf("Should report the %q field using its JSON name, got %v.", name, fields)
		}
	}
}
