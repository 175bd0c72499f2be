// Package models - ScheduleRecord thuộc domain schedule (comm_schedules).
// Mô hình phẳng: một document cho mỗi tổ hợp (user, campaign, template).
package models

import (
	"fmt"
	"time"
)

// ScheduleRecord lưu lịch gửi của một user cho một campaign/template
// (comm_schedules). _id là composite key "userId:trackingId:templateId" -
// tính duy nhất của bộ ba được chốt bằng chính primary key, không cần
// unique index riêng.
type ScheduleRecord struct {
	ID string `json:"id" bson:"_id"`

	UserID     int64  `json:"userId" bson:"userId" index:"single:1"` // Định danh user
	TrackingID string `json:"trackingId" bson:"trackingId"`          // Định danh campaign
	TemplateID string `json:"templateId" bson:"templateId"`          // Định danh template

	DispatchTimes   []int64 `json:"dispatchTimes" bson:"dispatchTimes"`     // Các mốc gửi dự kiến, một phần tử mỗi attempt
	FinalScore      float64 `json:"finalScore" bson:"finalScore"`           // Trọng số xếp hạng - chiều duy nhất dùng để rank
	RelevanceScore  float64 `json:"relevanceScore" bson:"relevanceScore"`   // Điểm relevance, độc lập với finalScore
	PlannedDateHour int64   `json:"plannedDateHour" bson:"plannedDateHour"` // Giờ gửi dự kiến, truncate về đầu giờ (epoch millis)
	SentAt          int     `json:"sentAt" bson:"sentAt"`                   // Cờ đã gửi: 0 = chưa, 1 = rồi
	ContentEndTime  int64   `json:"contentEndTime" bson:"contentEndTime"`   // Hạn hiệu lực của nội dung (epoch millis)

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// CompositeKey dựng _id từ bộ ba định danh. Format cố định
// "userId:trackingId:templateId" - mọi nơi đọc/ghi đều đi qua hàm này.
func CompositeKey(userID int64, trackingID, templateID string) string {
	return fmt.Sprintf("%d:%s:%s", userID, trackingID, templateID)
}

// TruncateToHour đưa một mốc thời gian (epoch millis) về đầu giờ UTC chứa nó.
// plannedDateHour luôn được chuẩn hóa qua hàm này trước khi ghi hay so khớp,
// để equality match của quét segment không lệch vì caller gửi mốc lẻ phút.
func TruncateToHour(ts int64) int64 {
	return ts - ts%time.Hour.Milliseconds()
}
