// Package campaignsvc - Service quét distinct user theo campaign trên
// collection day bucket (comm_daily_buckets).
package campaignsvc

import (
	"context"
	"fmt"
	"time"

	basesvc "comm_tracker/internal/api/base/service"
	bucketmodels "comm_tracker/internal/api/bucket/models"
	"comm_tracker/internal/common"
	"comm_tracker/internal/global"

	"go.mongodb.org/mongo-driver/bson"
)

// CampaignScanService trả lời câu hỏi "những user nào đã nhận campaign X
// (template Y) trong khung giờ Z", phân trang bằng keyset cursor trên userId.
type CampaignScanService struct {
	*basesvc.BaseServiceMongoImpl[bucketmodels.DayBucket]
	defaultPageSize int64
	maxPageSize     int64
}

// NewCampaignScanService tạo CampaignScanService mới.
func NewCampaignScanService() (*CampaignScanService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.DailyBuckets)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.DailyBuckets, common.ErrNotFound)
	}
	defaultPageSize := int64(50)
	maxPageSize := int64(500)
	if global.MongoDB_ServerConfig != nil {
		if global.MongoDB_ServerConfig.DefaultPageSize > 0 {
			defaultPageSize = int64(global.MongoDB_ServerConfig.DefaultPageSize)
		}
		if global.MongoDB_ServerConfig.MaxPageSize > 0 {
			maxPageSize = int64(global.MongoDB_ServerConfig.MaxPageSize)
		}
	}
	return &CampaignScanService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[bucketmodels.DayBucket](coll),
		defaultPageSize:      defaultPageSize,
		maxPageSize:          maxPageSize,
	}, nil
}

// HourWindow tính khung giờ gửi [start, end) từ (day, hour).
// day là nửa đêm UTC (epoch millis), hour thuộc [0..23].
func HourWindow(day int64, hour int) (start, end int64) {
	start = time.UnixMilli(day).UTC().Add(time.Duration(hour) * time.Hour).UnixMilli()
	end = start + time.Hour.Milliseconds()
	return start, end
}

// BuildScanMatch dựng stage $match cho quét distinct user. day dẫn đầu nên
// trang đầu (chưa có điều kiện userId) vẫn chạy trên index day_events_scan;
// điều kiện cursor (userId > cursor) nằm ngay trong $match để các trang sau
// loại bỏ bucket đã duyệt ngay trên index, trước khi tới $group.
func BuildScanMatch(trackingID, templateID string, day int64, hour int, cursor int64) bson.M {
	start, end := HourWindow(day, hour)

	match := bson.M{
		"day": day,
		"events": bson.M{"$elemMatch": bson.M{
			"dispatchTime": bson.M{"$gte": start, "$lt": end},
			"templateId":   templateID,
			"trackingId":   trackingID,
		}},
	}
	if cursor > 0 {
		match["userId"] = bson.M{"$gt": cursor}
	}
	return match
}

// BuildDistinctUsersPipeline dựng aggregation pipeline cho một trang quét:
// $match (day + window + cursor) -> $group theo userId (distinct) ->
// $sort tăng dần -> $limit pageSize+1 (phần tử dư dùng để phát hiện HasMore).
func BuildDistinctUsersPipeline(trackingID, templateID string, day int64, hour int, pageSize, cursor int64) []bson.M {
	return []bson.M{
		{"$match": BuildScanMatch(trackingID, templateID, day, hour, cursor)},
		{"$group": bson.M{"_id": "$userId"}},
		{"$sort": bson.M{"_id": 1}},
		{"$limit": pageSize + 1},
	}
}

// TrimPage cắt kết quả thô (tối đa pageSize+1 phần tử) thành một trang:
// bỏ phần tử dò, đặt HasMore và NextCursor. Pure function, tách riêng để test.
func TrimPage(ids []int64, pageSize int64) (page []int64, nextCursor int64, hasMore bool) {
	if int64(len(ids)) > pageSize {
		page = ids[:pageSize]
		hasMore = true
		nextCursor = page[len(page)-1]
		return page, nextCursor, hasMore
	}
	return ids, 0, false
}

// clampPageSize đưa pageSize về khoảng hợp lệ [1, maxPageSize].
func (s *CampaignScanService) clampPageSize(pageSize int64) int64 {
	if pageSize <= 0 {
		return s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		return s.maxPageSize
	}
	return pageSize
}

// DistinctUsers trả về một trang userId (tăng dần) đã nhận campaign
// (trackingID, templateID) trong khung giờ (day, hour). Cursor là userId
// cuối của trang trước; truyền 0 cho trang đầu.
//
// Keyset trên userId nên trang luôn nhất quán: user chèn thêm sau lần quét
// chỉ xuất hiện ở các trang sau nếu userId > cursor, không gây trùng hay
// lệch trang như skip/limit.
//
// Parameters:
//   - ctx: Context cho việc hủy thao tác
//   - trackingID, templateID: Cặp định danh campaign + template
//   - day: Nửa đêm UTC của ngày (epoch millis)
//   - hour: Giờ gửi trong ngày [0..23]
//   - pageSize: Số user tối đa một trang (0 = mặc định, bị chặn trên bởi cấu hình)
//   - cursor: userId cuối của trang trước (0 = trang đầu)
//
// Returns:
//   - []int64: Danh sách userId tăng dần, tối đa pageSize phần tử
//   - int64: Cursor cho trang kế (0 nếu hết)
//   - bool: Còn trang sau hay không
//   - error: Lỗi I/O nếu có
func (s *CampaignScanService) DistinctUsers(ctx context.Context, trackingID, templateID string, day int64, hour int, pageSize, cursor int64) ([]int64, int64, bool, error) {
	day = bucketmodels.TruncateToDay(day)
	pageSize = s.clampPageSize(pageSize)

	pipeline := BuildDistinctUsersPipeline(trackingID, templateID, day, hour, pageSize, cursor)
	mongoCursor, err := s.Aggregate(ctx, pipeline, nil)
	if err != nil {
		return nil, 0, false, err
	}
	defer mongoCursor.Close(ctx)

	var rows []struct {
		ID int64 `bson:"_id"`
	}
	if err := mongoCursor.All(ctx, &rows); err != nil {
		return nil, 0, false, common.ConvertMongoError(err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	page, nextCursor, hasMore := TrimPage(ids, pageSize)
	return page, nextCursor, hasMore, nil
}
