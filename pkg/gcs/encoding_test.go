package gcs

import (
	"bytes"
	"testing"
)

func TestGolombEncoder(t *testing.T) {
	cases := []struct {
		inputs      []uint64
		probability uint64
		want        []uint64
		fail        bool
	}{
		{[]uint64{42, 74, 96, 32}, 4, []uint64{13, 21, 27, 11}, false},
		{[]uint64{0, 1, 1023}, 1024, []uint64{11, 11, 11}, false},
		{[]uint64{420}, 2, nil, true},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		encoder := newEncoder(&buf, tc.probability)

		for i, val := range tc.inputs {
			wr, err := encoder.Encode(val)
			if tc.fail {
				if err == nil {
					t.Errorf("Encode(%d) with p=%d should fail", val, tc.probability)
				}
				continue
			}
			if err != nil {
				t.Errorf("Encode should not fail: %s", err)
			}
			if tc.want[i] != wr {
				t.Errorf("Encode(%d): %d, want: %d", val, wr, tc.want[i])
			}
		}

		if !tc.fail {
			if _, err := encoder.Finalize(); err != nil {
				t.Errorf("Finalize should not fail: %s", err)
			}
		}
	}
}

func TestGolombRoundTrip(t *testing.T) {
	for _, p := range []uint64{2, 3, 100, 1 << 20} {
		inputs := []uint64{0, 1, p - 1, p, p + 1, 5 * p, 17}

		var buf bytes.Buffer
		encoder := newEncoder(&buf, p)
		for _, v := range inputs {
			if _, err := encoder.Encode(v); err != nil {
				t.Fatalf("Encode(%d) with p=%d should not fail: %s", v, p, err)
			}
		}
		if _, err := encoder.Finalize(); err != nil {
			t.Fatalf("Finalize should not fail: %s", err)
		}

		decoder := newDecoder(bytes.NewReader(buf.Bytes()), p)
		for _, want := range inputs {
			got, err := decoder.Decode()
			if err != nil {
				t.Fatalf("Decode should not fail: %s", err)
			}
			if got != want {
				t.Errorf("Decode with p=%d: %d, want: %d", p, got, want)
			}
		}
	}
}
