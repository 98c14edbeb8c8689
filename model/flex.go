package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt is an int that tolerates lenient numeric encoding on the wire:
// bare numbers, quoted numbers, and float-formatted integers ("42", 42, 42.0)
// all decode to the same value.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	n, err := parseLenient(b)
	if err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

func (f FlexInt) Int() int { return int(f) }

// FlexInt64 is the 64-bit counterpart of FlexInt, used for millisecond
// timestamps and durations.
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(b []byte) error {
	n, err := parseLenient(b)
	if err != nil {
		return err
	}
	*f = FlexInt64(n)
	return nil
}

func (f FlexInt64) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(f))
}

func (f FlexInt64) Int64() int64 { return int64(f) }

func parseLenient(b []byte) (int64, error) {
	s := strings.TrimSpace(string(b))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(fl), nil
}
