// Package models - DayBucket thuộc domain bucket (comm_daily_buckets).
// Một document gom toàn bộ event liên lạc của một user trong một ngày UTC.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommEvent là một sự kiện liên lạc đã gửi tới user (phần tử của mảng events).
type CommEvent struct {
	DispatchTime int64   `json:"dispatchTime" bson:"dispatchTime"`           // Thời điểm gửi (epoch millis UTC)
	TemplateID   string  `json:"templateId" bson:"templateId"`               // Định danh template nội dung
	TrackingID   string  `json:"trackingId" bson:"trackingId"`               // Định danh campaign
	ContentScore float64 `json:"contentScore,omitempty" bson:"contentScore"` // Điểm relevance của nội dung tại thời điểm gửi
	Status       string  `json:"status" bson:"status"`                       // sent | opened | clicked | failed | replaced
}

// DayBucket lưu toàn bộ event của một user trong một ngày (comm_daily_buckets).
// Bất biến: duy nhất một document cho mỗi cặp (userId, day), được chốt bằng
// unique index. Mọi ghi đều là thao tác atomic trên document này, không cần
// transaction đa document.
type DayBucket struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	UserID     int64       `json:"userId" bson:"userId"`               // Định danh user
	UserType   string      `json:"userType" bson:"userType"`           // premium | standard | trial
	Day        int64       `json:"day" bson:"day"`                     // Nửa đêm UTC của ngày (epoch millis)
	EventCount int         `json:"eventCount" bson:"eventCount"`       // Bộ đếm song song với len(events)
	ExpireAt   time.Time   `json:"expireAt" bson:"expireAt"`           // Mốc TTL = day + RETENTION_DAYS
	Events     []CommEvent `json:"events" bson:"events"`               // Các event trong ngày, thứ tự append

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// TruncateToDay đưa một timestamp epoch millis về nửa đêm UTC của ngày chứa nó.
func TruncateToDay(ts int64) int64 {
	t := time.UnixMilli(ts).UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.UnixMilli()
}
