// Package dto - DTO cho domain bucket (day bucket).
package dto

import (
	"strconv"
	"time"

	"comm_tracker/internal/common"
)

// EventInput là một event gửi lên qua API để append vào bucket.
type EventInput struct {
	DispatchTime int64   `json:"dispatchTime" validate:"required,gt=0"` // Epoch millis UTC
	TemplateID   string  `json:"templateId" validate:"required"`
	TrackingID   string  `json:"trackingId" validate:"required"`
	ContentScore float64 `json:"contentScore,omitempty"`
	Status       string  `json:"status" validate:"required,event_status"`
}

// AppendEventsInput dữ liệu append một loạt event vào bucket của một ngày.
type AppendEventsInput struct {
	UserType string       `json:"userType" validate:"required,user_type"`
	Events   []EventInput `json:"events" validate:"required,min=1,dive"`
}

// ReplaceDayInput dữ liệu thay thế toàn bộ event của một ngày.
type ReplaceDayInput struct {
	UserType string       `json:"userType" validate:"required,user_type"`
	Events   []EventInput `json:"events" validate:"dive"`
}

// UpdateEventStatusInput dữ liệu cập nhật status của một event đã gửi.
// Event được định vị bằng (dispatchTime, templateId, trackingId).
type UpdateEventStatusInput struct {
	DispatchTime int64  `json:"dispatchTime" validate:"required,gt=0"`
	TemplateID   string `json:"templateId" validate:"required"`
	TrackingID   string `json:"trackingId" validate:"required"`
	Status       string `json:"status" validate:"required,event_status"`
}

// ParseUserID parse userId từ path param. userId là số nguyên dương.
func ParseUserID(raw string) (int64, error) {
	if raw == "" {
		return 0, common.ErrRequiredField
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, common.ErrInvalidFormat
	}
	return userID, nil
}

// ParseDay parse ngày từ path param dạng "2006-01-02" hoặc epoch millis,
// trả về nửa đêm UTC của ngày đó (epoch millis).
func ParseDay(raw string) (int64, error) {
	if raw == "" {
		return 0, common.ErrRequiredField
	}

	// Ưu tiên dạng YYYY-MM-DD
	if t, err := time.ParseInLocation("2006-01-02", raw, time.UTC); err == nil {
		return t.UnixMilli(), nil
	}

	// Chấp nhận epoch millis, chuẩn hóa về nửa đêm UTC
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ts <= 0 {
		return 0, common.ErrInvalidFormat
	}
	t := time.UnixMilli(ts).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).UnixMilli(), nil
}
