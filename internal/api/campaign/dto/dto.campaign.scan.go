// Package dto - DTO cho domain campaign (distinct user scan).
package dto

// DistinctUsersQuery là tham số quét distinct user của một campaign
// trong một khung giờ gửi.
type DistinctUsersQuery struct {
	TrackingID string `json:"trackingId" validate:"required"` // Định danh campaign
	TemplateID string `json:"templateId" validate:"required"` // Định danh template
	Day        int64  `json:"day" validate:"required,gt=0"`   // Nửa đêm UTC của ngày (epoch millis)
	Hour       int    `json:"hour" validate:"gte=0,lte=23"`   // Giờ trong ngày [0..23]
	PageSize   int64  `json:"pageSize" validate:"gte=0"`      // Số user tối đa một trang (0 = mặc định)
	Cursor     int64  `json:"cursor" validate:"gte=0"`        // userId cuối của trang trước (0 = trang đầu)
}

// DistinctUsersResponse là một trang userId cùng cursor cho trang kế.
// Total/TotalPage luôn là -1: đếm tập distinct bị tránh chủ động vì chi phí,
// sentinel báo "không xác định" thay vì tính.
type DistinctUsersResponse struct {
	UserIDs    []int64 `json:"userIds"`
	NextCursor int64   `json:"nextCursor,omitempty"`
	HasMore    bool    `json:"hasMore"`
	Total      int64   `json:"total"`
	TotalPage  int64   `json:"totalPage"`
}
