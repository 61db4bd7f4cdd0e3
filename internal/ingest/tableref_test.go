package ingest

import (
	"errors"
	"testing"
)

func TestParseTableRef(t *testing.T) {
	testCases := []struct {
		desc    string
		input   string
		want    TableRef
		wantErr bool
	}{
		{
			"fully qualified",
			"proj.ds.events",
			TableRef{Project: "proj", Dataset: "ds", Table: "events"},
			false,
		},
		{"missing table", "proj.ds", TableRef{}, true},
		{"too many parts", "proj.ds.t.extra", TableRef{}, true},
		{"empty component", "proj..events", TableRef{}, true},
		{"empty string", "", TableRef{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := ParseTableRef(tc.input)

			if tc.wantErr {
				if !errors.Is(err, ErrBadTableID) {
					t.Fatalf("ParseTableRef err = %v, want ErrBadTableID", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTableRef: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ParseTableRef = %+v, want %+v", got, tc.want)
			}
			if got.String() != tc.input {
				t.Fatalf("String() = %q, want %q", got.String(), tc.input)
			}
		})
	}
}
