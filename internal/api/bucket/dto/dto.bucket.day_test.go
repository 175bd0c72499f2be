// Package dto - Test parse path params của domain bucket.
package dto

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"comm_tracker/internal/common"
)

func TestParseUserID_Valid(t *testing.T) {
	userID, err := ParseUserID("12345")
	if err != nil {
		t.Fatalf("ParseUserID trả về lỗi với input hợp lệ: %v", err)
	}
	if userID != 12345 {
		t.Errorf("ParseUserID sai: got %d, want 12345", userID)
	}
}

func TestParseUserID_Invalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"rỗng", "", common.ErrRequiredField},
		{"chữ", "abc", common.ErrInvalidFormat},
		{"âm", "-5", common.ErrInvalidFormat},
		{"zero", "0", common.ErrInvalidFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseUserID(tc.raw)
			if !errors.Is(err, tc.want) {
				t.Errorf("ParseUserID(%q) lỗi sai: got %v, want %v", tc.raw, err, tc.want)
			}
		})
	}
}

func TestParseDay_DateFormat(t *testing.T) {
	day, err := ParseDay("2025-03-15")
	if err != nil {
		t.Fatalf("ParseDay trả về lỗi với dạng YYYY-MM-DD: %v", err)
	}
	want := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	if day != want {
		t.Errorf("ParseDay sai: got %d, want %d", day, want)
	}
}

func TestParseDay_EpochMillis(t *testing.T) {
	// Giữa ngày phải được chuẩn hóa về nửa đêm UTC
	midDay := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC).UnixMilli()
	day, err := ParseDay(strconv.FormatInt(midDay, 10))
	if err != nil {
		t.Fatalf("ParseDay trả về lỗi với epoch millis: %v", err)
	}
	want := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	if day != want {
		t.Errorf("ParseDay phải chuẩn hóa về nửa đêm UTC: got %d, want %d", day, want)
	}
}

func TestParseDay_Invalid(t *testing.T) {
	for _, raw := range []string{"", "15-03-2025", "abc", "-100"} {
		if _, err := ParseDay(raw); err == nil {
			t.Errorf("ParseDay(%q) phải trả về lỗi", raw)
		}
	}
}
