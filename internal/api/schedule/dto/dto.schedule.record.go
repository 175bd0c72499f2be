// Package dto - DTO cho domain schedule.
package dto

// ScheduleUpsertInput dữ liệu tạo/cập nhật một schedule record.
type ScheduleUpsertInput struct {
	UserID          int64   `json:"userId" validate:"required,gt=0"`
	TrackingID      string  `json:"trackingId" validate:"required"`
	TemplateID      string  `json:"templateId" validate:"required"`
	DispatchTimes   []int64 `json:"dispatchTimes" validate:"required,min=1"`
	FinalScore      float64 `json:"finalScore" validate:"gte=0,lte=1"`
	RelevanceScore  float64 `json:"relevanceScore" validate:"gte=0,lte=1"`
	PlannedDateHour int64   `json:"plannedDateHour" validate:"required,gt=0"`
	ContentEndTime  int64   `json:"contentEndTime" validate:"required,gt=0"`
}

// RecordKeyInput bộ ba định danh một record - dùng cho đánh dấu đã gửi
// và hủy lịch.
type RecordKeyInput struct {
	UserID     int64  `json:"userId" validate:"required,gt=0"`
	TrackingID string `json:"trackingId" validate:"required"`
	TemplateID string `json:"templateId" validate:"required"`
}

// SegmentQuery tham số lấy một trang user của một đợt gửi.
type SegmentQuery struct {
	TrackingID      string `json:"trackingId" validate:"required"`
	TemplateID      string `json:"templateId" validate:"required"`
	PlannedDateHour int64  `json:"plannedDateHour" validate:"required,gt=0"`
	PageSize        int64  `json:"pageSize" validate:"gte=0"`
	Cursor          int64  `json:"cursor" validate:"gte=0"`
}

// SegmentResponse một trang userId của đợt gửi.
type SegmentResponse struct {
	UserIDs    []int64 `json:"userIds"`
	NextCursor int64   `json:"nextCursor,omitempty"`
	HasMore    bool    `json:"hasMore"`
}
