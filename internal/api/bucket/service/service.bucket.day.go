// Package bucketsvc - Service bucket theo ngày (comm_daily_buckets).
package bucketsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	basesvc "comm_tracker/internal/api/base/service"
	bucketmodels "comm_tracker/internal/api/bucket/models"
	"comm_tracker/internal/common"
	"comm_tracker/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// DayBucketService xử lý đọc/ghi bucket event theo (userId, day).
// Mọi thao tác ghi là atomic trên một document, nên các writer đồng thời
// trên cùng bucket không cần lock ở tầng ứng dụng.
type DayBucketService struct {
	*basesvc.BaseServiceMongoImpl[bucketmodels.DayBucket]
	retentionDays int
}

// NewDayBucketService tạo DayBucketService mới.
func NewDayBucketService() (*DayBucketService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.DailyBuckets)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.DailyBuckets, common.ErrNotFound)
	}
	retention := 30
	if global.MongoDB_ServerConfig != nil && global.MongoDB_ServerConfig.RetentionDays > 0 {
		retention = global.MongoDB_ServerConfig.RetentionDays
	}
	return &DayBucketService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[bucketmodels.DayBucket](coll),
		retentionDays:        retention,
	}, nil
}

// expireAtForDay tính mốc TTL cho một bucket: day + retentionDays.
func (s *DayBucketService) expireAtForDay(day int64) time.Time {
	return time.UnixMilli(day).UTC().AddDate(0, 0, s.retentionDays)
}

// GetDay trả về bucket của (userId, day). Nếu bucket chưa tồn tại, trả về
// bucket rỗng (không phải lỗi): ngày không có event là trạng thái bình thường.
//
// Parameters:
//   - ctx: Context cho việc hủy thao tác
//   - userID: Định danh user
//   - day: Nửa đêm UTC của ngày (epoch millis)
//
// Returns:
//   - *bucketmodels.DayBucket: Bucket của ngày, rỗng nếu chưa có
//   - error: Lỗi I/O nếu có
func (s *DayBucketService) GetDay(ctx context.Context, userID int64, day int64) (*bucketmodels.DayBucket, error) {
	day = bucketmodels.TruncateToDay(day)
	filter := bson.M{"userId": userID, "day": day}

	bucket, err := s.FindOne(ctx, filter, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &bucketmodels.DayBucket{
				UserID: userID,
				Day:    day,
				Events: []bucketmodels.CommEvent{},
			}, nil
		}
		return nil, err
	}

	if bucket.Events == nil {
		bucket.Events = []bucketmodels.CommEvent{}
	}
	return &bucket, nil
}

// AppendEvents thêm một loạt event vào bucket của (userId, day), tạo bucket
// nếu chưa tồn tại. Một lệnh upsert duy nhất: $push $each giữ thứ tự append,
// $inc giữ eventCount đồng bộ với len(events), $setOnInsert chỉ ghi metadata
// khi document được tạo mới. Unique index (userId, day) đảm bảo hai upsert
// đua nhau không tạo ra bucket trùng.
//
// Parameters:
//   - ctx: Context cho việc hủy thao tác
//   - userID: Định danh user
//   - userType: Loại user (premium|standard|trial), chỉ ghi khi tạo bucket
//   - day: Nửa đêm UTC của ngày (epoch millis)
//   - events: Danh sách event cần append, theo thứ tự
//
// Returns:
//   - error: Lỗi I/O nếu có. Caller tự quyết định retry (append không idempotent).
func (s *DayBucketService) AppendEvents(ctx context.Context, userID int64, userType string, day int64, events []bucketmodels.CommEvent) error {
	if len(events) == 0 {
		return nil
	}
	day = bucketmodels.TruncateToDay(day)
	now := time.Now().UnixMilli()

	filter := bson.M{"userId": userID, "day": day}
	update := bson.M{
		"$push": bson.M{"events": bson.M{"$each": events}},
		"$inc":  bson.M{"eventCount": len(events)},
		"$set":  bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"userId":    userID,
			"userType":  userType,
			"day":       day,
			"expireAt":  s.expireAtForDay(day),
			"createdAt": now,
		},
	}
	opts := mongoopts.Update().SetUpsert(true)

	_, err := s.UpdateOne(ctx, filter, update, opts)
	return err
}

// UpdateEventStatus cập nhật status của một event đã có trong bucket. Event
// được định vị bằng (dispatchTime, templateId, trackingId); ngày được suy ra
// từ dispatchTime. Dùng arrayFilters để chỉ ghi đúng phần tử khớp, không
// đọc-sửa-ghi cả document.
//
// Parameters:
//   - ctx: Context cho việc hủy thao tác
//   - userID: Định danh user
//   - dispatchTime: Thời điểm gửi của event cần cập nhật (epoch millis)
//   - templateID, trackingID: Cặp định danh event trong ngày
//   - status: Trạng thái mới (đã validate ở boundary)
//
// Returns:
//   - bool: true nếu tìm thấy event và đã ghi, false nếu không có event khớp
//   - error: Lỗi I/O nếu có
func (s *DayBucketService) UpdateEventStatus(ctx context.Context, userID int64, dispatchTime int64, templateID, trackingID, status string) (bool, error) {
	day := bucketmodels.TruncateToDay(dispatchTime)

	filter := bson.M{
		"userId": userID,
		"day":    day,
		"events": bson.M{"$elemMatch": bson.M{
			"dispatchTime": dispatchTime,
			"templateId":   templateID,
			"trackingId":   trackingID,
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"events.$[ev].status": status,
			"updatedAt":           time.Now().UnixMilli(),
		},
	}
	opts := mongoopts.Update().SetArrayFilters(mongoopts.ArrayFilters{
		Filters: []interface{}{bson.M{
			"ev.dispatchTime": dispatchTime,
			"ev.templateId":   templateID,
			"ev.trackingId":   trackingID,
		}},
	})

	result, err := s.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, err
	}

	// MatchedCount == 0 không phải lỗi: caller (webhook muộn, retry) phân biệt
	// qua giá trị trả về. Thao tác idempotent - set lại cùng status vẫn matched.
	return result.MatchedCount > 0, nil
}

// ReplaceDay thay thế toàn bộ mảng events của (userId, day) bằng danh sách
// mới, tạo bucket nếu chưa tồn tại. Dùng cho re-plan: toàn bộ lịch của ngày
// được ghi đè trong một lệnh atomic, reader không bao giờ thấy trạng thái
// trộn giữa lịch cũ và lịch mới.
//
// Parameters:
//   - ctx: Context cho việc hủy thao tác
//   - userID: Định danh user
//   - userType: Loại user, chỉ ghi khi tạo bucket
//   - day: Nửa đêm UTC của ngày (epoch millis)
//   - events: Danh sách event thay thế (có thể rỗng để xóa sạch ngày)
//
// Returns:
//   - error: Lỗi I/O nếu có
func (s *DayBucketService) ReplaceDay(ctx context.Context, userID int64, userType string, day int64, events []bucketmodels.CommEvent) error {
	day = bucketmodels.TruncateToDay(day)
	now := time.Now().UnixMilli()

	if events == nil {
		events = []bucketmodels.CommEvent{}
	}

	filter := bson.M{"userId": userID, "day": day}
	update := bson.M{
		"$set": bson.M{
			"events":     events,
			"eventCount": len(events),
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"userId":    userID,
			"userType":  userType,
			"day":       day,
			"expireAt":  s.expireAtForDay(day),
			"createdAt": now,
		},
	}
	opts := mongoopts.Update().SetUpsert(true)

	_, err := s.UpdateOne(ctx, filter, update, opts)
	return err
}
