package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"comm_tracker/internal/global"
	"comm_tracker/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// isIndexExistsError kiểm tra lỗi trả về có phải do index đã tồn tại hay không.
// Mongo trả về IndexOptionsConflict (85) hoặc IndexKeySpecsConflict (86)
// khi index cùng tên đã tồn tại với cấu hình khác.
func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	if cmdErr, ok := err.(mongo.CommandError); ok {
		if cmdErr.Code == 85 || cmdErr.Code == 86 {
			return true
		}
	}
	return strings.Contains(err.Error(), "already exists")
}

// createIndexIgnoreExists tạo một index, bỏ qua lỗi nếu index đã tồn tại.
func createIndexIgnoreExists(ctx context.Context, col *mongo.Collection, model mongo.IndexModel) error {
	name := ""
	if model.Options != nil && model.Options.Name != nil {
		name = *model.Options.Name
	}
	if _, err := col.Indexes().CreateOne(ctx, model); err != nil {
		if isIndexExistsError(err) {
			logger.GetAppLogger().Debugf("Index %s đã tồn tại trên collection %s, bỏ qua", name, col.Name())
			return nil
		}
		return fmt.Errorf("không thể tạo index %s trên collection %s: %w", name, col.Name(), err)
	}
	logger.GetAppLogger().Infof("Đã tạo index %s trên collection %s", name, col.Name())
	return nil
}

// CreateCommIndexes tạo các index đặc thù mà cơ chế struct tag không diễn đạt được:
// index trên nested array field (multikey), compound index theo thứ tự ESR,
// và TTL index trên field kiểu Date.
//
// Collection daily buckets:
//   - (userId, day) unique: chốt bất biến một document / user / ngày.
//   - (day, events.dispatchTime, events.templateId, events.trackingId, userId)
//     multikey: phục vụ $match của campaign scan. Dẫn đầu bằng day để trang đầu
//     (chưa có điều kiện userId) vẫn đi qua index thay vì quét cả collection;
//     userId ở cuối cho điều kiện keyset của các trang sau.
//   - expireAt TTL (expireAfterSeconds = 0): Mongo tự xóa bucket khi quá hạn giữ liệu.
//
// Collection schedules:
//   - (trackingId, templateId, plannedDateHour, userId): quét segment theo campaign.
//   - (userId, finalScore desc, plannedDateHour): ESR cho truy vấn ranked theo user.
//
// Tham số:
// - ctx: Context để kiểm soát timeout.
// - db: Database đang sử dụng.
//
// Trả về:
// - error: Lỗi nếu việc tạo bất kỳ index nào thất bại.
func CreateCommIndexes(ctx context.Context, db *mongo.Database) error {
	buckets := db.Collection(global.MongoDB_ColNames.DailyBuckets)
	schedules := db.Collection(global.MongoDB_ColNames.Schedules)

	bucketIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "day", Value: 1},
			},
			Options: options.Index().
				SetName("userId_day_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "day", Value: 1},
				{Key: "events.dispatchTime", Value: 1},
				{Key: "events.templateId", Value: 1},
				{Key: "events.trackingId", Value: 1},
				{Key: "userId", Value: 1},
			},
			Options: options.Index().SetName("day_events_scan"),
		},
		{
			Keys: bson.D{{Key: "expireAt", Value: 1}},
			Options: options.Index().
				SetName("expireAt_ttl").
				SetExpireAfterSeconds(0),
		},
	}

	scheduleIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "trackingId", Value: 1},
				{Key: "templateId", Value: 1},
				{Key: "plannedDateHour", Value: 1},
				{Key: "userId", Value: 1},
			},
			Options: options.Index().SetName("campaign_segment_scan"),
		},
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "finalScore", Value: -1},
				{Key: "plannedDateHour", Value: 1},
			},
			Options: options.Index().SetName("userId_finalScore_plannedDateHour"),
		},
	}

	ctxIdx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	for _, model := range bucketIndexes {
		if err := createIndexIgnoreExists(ctxIdx, buckets, model); err != nil {
			return err
		}
	}
	for _, model := range scheduleIndexes {
		if err := createIndexIgnoreExists(ctxIdx, schedules, model); err != nil {
			return err
		}
	}

	return nil
}
