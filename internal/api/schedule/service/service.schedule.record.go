// Package schedulesvc - Service schedule record phẳng (comm_schedules).
package schedulesvc

import (
	"context"
	"fmt"
	"time"

	basemodels "comm_tracker/internal/api/base/models"
	basesvc "comm_tracker/internal/api/base/service"
	scheduledto "comm_tracker/internal/api/schedule/dto"
	schedulemodels "comm_tracker/internal/api/schedule/models"
	"comm_tracker/internal/common"
	"comm_tracker/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// ScheduleService xử lý ba access pattern trên schedule record phẳng:
// fetch theo user (bounded), quét segment theo campaign (keyset), và
// truy vấn lịch xếp hạng theo khoảng giờ.
type ScheduleService struct {
	*basesvc.BaseServiceMongoImpl[schedulemodels.ScheduleRecord]
	maxUserRecords  int64
	defaultPageSize int64
	maxPageSize     int64
}

// NewScheduleService tạo ScheduleService mới.
func NewScheduleService() (*ScheduleService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Schedules)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Schedules, common.ErrNotFound)
	}
	maxUserRecords := int64(100)
	defaultPageSize := int64(50)
	maxPageSize := int64(500)
	if global.MongoDB_ServerConfig != nil {
		if global.MongoDB_ServerConfig.MaxUserRecords > 0 {
			maxUserRecords = int64(global.MongoDB_ServerConfig.MaxUserRecords)
		}
		if global.MongoDB_ServerConfig.DefaultPageSize > 0 {
			defaultPageSize = int64(global.MongoDB_ServerConfig.DefaultPageSize)
		}
		if global.MongoDB_ServerConfig.MaxPageSize > 0 {
			maxPageSize = int64(global.MongoDB_ServerConfig.MaxPageSize)
		}
	}
	return &ScheduleService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[schedulemodels.ScheduleRecord](coll),
		maxUserRecords:       maxUserRecords,
		defaultPageSize:      defaultPageSize,
		maxPageSize:          maxPageSize,
	}, nil
}

// BuildSegmentFilter dựng filter cho quét segment. Cả hai dạng gọi (trang đầu
// không cursor, trang tiếp có cursor) đi qua cùng một hàm, chỉ khác điều kiện
// userId - đảm bảo hai dạng luôn cùng thứ tự, các trang nối nhau không hở
// không trùng. Filter khớp thứ tự index (trackingId, templateId,
// plannedDateHour, userId): equality trước, khóa keyset cuối.
func BuildSegmentFilter(trackingID, templateID string, plannedDateHour, cursor int64) bson.M {
	filter := bson.M{
		"trackingId":      trackingID,
		"templateId":      templateID,
		"plannedDateHour": plannedDateHour,
	}
	if cursor > 0 {
		filter["userId"] = bson.M{"$gt": cursor}
	}
	return filter
}

// BuildUserScheduleFilter dựng filter cho truy vấn lịch theo khoảng giờ
// [start, end] (inclusive hai đầu).
func BuildUserScheduleFilter(userID int64, start, end int64) bson.M {
	return bson.M{
		"userId":          userID,
		"plannedDateHour": bson.M{"$gte": start, "$lte": end},
	}
}

// TrimSegmentPage cắt kết quả thô (tối đa pageSize+1 record) thành một trang
// userId. Pure function, tách riêng để test.
func TrimSegmentPage(records []schedulemodels.ScheduleRecord, pageSize int64) (userIDs []int64, nextCursor int64, hasMore bool) {
	if int64(len(records)) > pageSize {
		records = records[:pageSize]
		hasMore = true
	}
	userIDs = make([]int64, 0, len(records))
	for _, r := range records {
		userIDs = append(userIDs, r.UserID)
	}
	if hasMore {
		nextCursor = userIDs[len(userIDs)-1]
	}
	return userIDs, nextCursor, hasMore
}

// clampPageSize đưa pageSize về khoảng hợp lệ [1, maxPageSize].
func (s *ScheduleService) clampPageSize(pageSize int64) int64 {
	if pageSize <= 0 {
		return s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		return s.maxPageSize
	}
	return pageSize
}

// UpsertRecord tạo hoặc cập nhật record theo composite key. createdAt chỉ
// ghi khi tạo mới; sentAt không bị đụng tới khi cập nhật lịch (re-plan
// không xóa dấu đã gửi). plannedDateHour được truncate về đầu giờ trước khi
// ghi, bất kể caller gửi mốc nào.
func (s *ScheduleService) UpsertRecord(ctx context.Context, input *scheduledto.ScheduleUpsertInput) (*schedulemodels.ScheduleRecord, error) {
	key := schedulemodels.CompositeKey(input.UserID, input.TrackingID, input.TemplateID)
	now := time.Now().UnixMilli()

	filter := bson.M{"_id": key}
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"dispatchTimes":   input.DispatchTimes,
			"finalScore":      input.FinalScore,
			"relevanceScore":  input.RelevanceScore,
			"plannedDateHour": schedulemodels.TruncateToHour(input.PlannedDateHour),
			"contentEndTime":  input.ContentEndTime,
		},
		SetOnInsert: map[string]interface{}{
			"userId":     input.UserID,
			"trackingId": input.TrackingID,
			"templateId": input.TemplateID,
			"sentAt":     0,
			"createdAt":  now,
		},
	}

	record, err := s.Upsert(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarkSent đánh dấu record đã gửi (sentAt = 1).
//
// Returns:
//   - bool: true nếu record tồn tại và đã ghi, false nếu không có record khớp
//   - error: Lỗi I/O nếu có
func (s *ScheduleService) MarkSent(ctx context.Context, userID int64, trackingID, templateID string) (bool, error) {
	key := schedulemodels.CompositeKey(userID, trackingID, templateID)

	filter := bson.M{"_id": key}
	update := bson.M{"$set": bson.M{
		"sentAt":    1,
		"updatedAt": time.Now().UnixMilli(),
	}}

	result, err := s.UpdateOne(ctx, filter, update, nil)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// GetEligibleRecords trả về các record của một user, chặn trên bởi limit
// để giữ chi phí mỗi request có cận trên bất kể user tham gia bao nhiêu
// campaign. Chỉ cần index đơn trên userId.
//
// Parameters:
//   - ctx: Context cho việc hủy thao tác
//   - userID: Định danh user
//   - limit: Số record tối đa (0 = mặc định, bị chặn trên bởi cấu hình)
//
// Returns:
//   - []schedulemodels.ScheduleRecord: Danh sách record, tối đa limit phần tử
//   - error: Lỗi I/O nếu có
func (s *ScheduleService) GetEligibleRecords(ctx context.Context, userID int64, limit int64) ([]schedulemodels.ScheduleRecord, error) {
	if limit <= 0 || limit > s.maxUserRecords {
		limit = s.maxUserRecords
	}

	filter := bson.M{"userId": userID}
	opts := mongoopts.Find().SetLimit(limit)

	return s.Find(ctx, filter, opts)
}

// GetScheduleSegment trả về một trang userId (tăng dần) của một đợt gửi
// (trackingID, templateID, plannedDateHour), phân trang keyset trên userId.
// Trang đầu gọi với cursor = 0; trang tiếp dùng NextCursor của trang trước.
//
// Parameters:
//   - ctx: Context cho việc hủy thao tác
//   - trackingID, templateID: Cặp định danh đợt gửi
//   - plannedDateHour: Giờ gửi dự kiến (epoch millis, truncate về đầu giờ)
//   - pageSize: Số user tối đa một trang (0 = mặc định)
//   - cursor: userId cuối của trang trước (0 = trang đầu)
//
// Returns:
//   - []int64: Danh sách userId tăng dần, tối đa pageSize phần tử
//   - int64: Cursor cho trang kế (0 nếu hết)
//   - bool: Còn trang sau hay không
//   - error: Lỗi I/O nếu có
func (s *ScheduleService) GetScheduleSegment(ctx context.Context, trackingID, templateID string, plannedDateHour, pageSize, cursor int64) ([]int64, int64, bool, error) {
	pageSize = s.clampPageSize(pageSize)
	plannedDateHour = schedulemodels.TruncateToHour(plannedDateHour)

	filter := BuildSegmentFilter(trackingID, templateID, plannedDateHour, cursor)
	opts := mongoopts.Find().
		SetSort(bson.D{{Key: "userId", Value: 1}}).
		SetLimit(pageSize + 1).
		SetProjection(bson.M{"userId": 1})

	records, err := s.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, false, err
	}

	userIDs, nextCursor, hasMore := TrimSegmentPage(records, pageSize)
	return userIDs, nextCursor, hasMore, nil
}

// DeleteRecord xóa một record theo composite key (hủy lịch đã lên cho một
// tổ hợp user/campaign/template).
//
// Returns:
//   - error: common.ErrNotFound nếu không có record khớp, lỗi I/O nếu có
func (s *ScheduleService) DeleteRecord(ctx context.Context, userID int64, trackingID, templateID string) error {
	key := schedulemodels.CompositeKey(userID, trackingID, templateID)
	return s.DeleteOne(ctx, bson.M{"_id": key})
}

// ListRecords trả về một trang record theo phân trang offset (page/limit),
// sắp theo _id để thứ tự ổn định giữa các lần gọi. Dùng cho rà soát vận hành,
// không nằm trên đường nóng - khác với quét segment, ở đây tổng số record
// được đếm thật để client biết còn bao nhiêu trang.
//
// Parameters:
//   - ctx: Context cho việc hủy thao tác
//   - page: Số trang, bắt đầu từ 1
//   - limit: Số record mỗi trang (bị chặn trên bởi cấu hình maxPageSize)
//
// Returns:
//   - *basemodels.PaginateResult[schedulemodels.ScheduleRecord]: Trang kết quả kèm Total/TotalPage
//   - error: Lỗi I/O nếu có
func (s *ScheduleService) ListRecords(ctx context.Context, page, limit int64) (*basemodels.PaginateResult[schedulemodels.ScheduleRecord], error) {
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	opts := mongoopts.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return s.FindWithPagination(ctx, bson.M{}, page, limit, opts)
}

// GetUserSchedule trả về các record của một user có plannedDateHour nằm trong
// [start, end], xếp theo finalScore giảm dần. Index ESR (userId, finalScore
// desc, plannedDateHour) phục vụ cả sort lẫn range filter, không cần sort
// in-memory.
//
// Parameters:
//   - ctx: Context cho việc hủy thao tác
//   - userID: Định danh user
//   - start, end: Khoảng giờ (epoch millis), inclusive hai đầu
//
// Returns:
//   - []schedulemodels.ScheduleRecord: Danh sách record theo finalScore giảm dần
//   - error: Lỗi I/O nếu có
func (s *ScheduleService) GetUserSchedule(ctx context.Context, userID int64, start, end int64) ([]schedulemodels.ScheduleRecord, error) {
	filter := BuildUserScheduleFilter(userID, start, end)
	opts := mongoopts.Find().SetSort(bson.D{{Key: "finalScore", Value: -1}})

	return s.Find(ctx, filter, opts)
}
