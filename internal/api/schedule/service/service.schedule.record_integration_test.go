// Package schedulesvc - Integration test cho flat schedule store.
// Chạy khi có biến môi trường MONGODB_TEST_URI trỏ tới một MongoDB thật.
package schedulesvc

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	scheduledto "comm_tracker/internal/api/schedule/dto"
	"comm_tracker/internal/common"
	"comm_tracker/internal/global"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupScheduleTest(t *testing.T) (*ScheduleService, context.Context) {
	t.Helper()

	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("Bỏ qua integration test: MONGODB_TEST_URI chưa được set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("Không kết nối được MongoDB test: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	global.MongoDB_ColNames.Schedules = "comm_schedules_test"
	coll := client.Database("comm_tracker_test").Collection(global.MongoDB_ColNames.Schedules)
	if err := coll.Drop(ctx); err != nil {
		t.Fatalf("Không drop được collection test: %v", err)
	}
	if _, err := global.RegistryCollections.Register(global.MongoDB_ColNames.Schedules, coll); err != nil {
		t.Fatalf("Không đăng ký được collection test: %v", err)
	}

	svc, err := NewScheduleService()
	if err != nil {
		t.Fatalf("Không tạo được ScheduleService: %v", err)
	}
	return svc, ctx
}

func upsertTestRecord(t *testing.T, ctx context.Context, svc *ScheduleService, userID int64, trackingID, templateID string, plannedHour int64, finalScore float64) {
	t.Helper()
	_, err := svc.UpsertRecord(ctx, &scheduledto.ScheduleUpsertInput{
		UserID:          userID,
		TrackingID:      trackingID,
		TemplateID:      templateID,
		DispatchTimes:   []int64{plannedHour},
		FinalScore:      finalScore,
		RelevanceScore:  0.5,
		PlannedDateHour: plannedHour,
		ContentEndTime:  plannedHour + 7*24*time.Hour.Milliseconds(),
	})
	if err != nil {
		t.Fatalf("upsert record (user=%d) lỗi: %v", userID, err)
	}
}

func TestIntegration_GetUserSchedule_ScoreRangeCase(t *testing.T) {
	svc, ctx := setupScheduleTest(t)

	// Case cụ thể: user 42 có record lúc 08:00 (0.9), 12:00 (0.6), 20:00 (0.8).
	// Truy vấn [06:00, 14:00] phải trả về 08:00 rồi 12:00 (theo score giảm dần),
	// loại record 20:00.
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	hour08 := day.Add(8 * time.Hour).UnixMilli()
	hour12 := day.Add(12 * time.Hour).UnixMilli()
	hour20 := day.Add(20 * time.Hour).UnixMilli()

	upsertTestRecord(t, ctx, svc, 42, "camp-1", "tpl-a", hour08, 0.9)
	upsertTestRecord(t, ctx, svc, 42, "camp-2", "tpl-b", hour12, 0.6)
	upsertTestRecord(t, ctx, svc, 42, "camp-3", "tpl-c", hour20, 0.8)

	start := day.Add(6 * time.Hour).UnixMilli()
	end := day.Add(14 * time.Hour).UnixMilli()
	records, err := svc.GetUserSchedule(ctx, 42, start, end)
	if err != nil {
		t.Fatalf("GetUserSchedule lỗi: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("phải trả về đúng 2 record trong khoảng giờ: got %d", len(records))
	}
	if records[0].FinalScore != 0.9 || records[0].PlannedDateHour != hour08 {
		t.Errorf("record đầu phải là 08:00/0.9: %+v", records[0])
	}
	if records[1].FinalScore != 0.6 || records[1].PlannedDateHour != hour12 {
		t.Errorf("record thứ hai phải là 12:00/0.6: %+v", records[1])
	}
}

func TestIntegration_GetScheduleSegment_GapFreePages(t *testing.T) {
	svc, ctx := setupScheduleTest(t)

	hour := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC).UnixMilli()
	userIDs := []int64{11, 22, 33, 44, 55}
	for _, userID := range userIDs {
		upsertTestRecord(t, ctx, svc, userID, "camp-1", "tpl-a", hour, 0.5)
	}
	// Record của đợt gửi khác không được lẫn vào
	upsertTestRecord(t, ctx, svc, 66, "camp-khac", "tpl-a", hour, 0.5)

	// Nối các trang: phải ra đủ tập user, không hở, không trùng, tăng dần
	var all []int64
	cursor := int64(0)
	for {
		page, nextCursor, hasMore, err := svc.GetScheduleSegment(ctx, "camp-1", "tpl-a", hour, 2, cursor)
		if err != nil {
			t.Fatalf("lấy trang segment lỗi: %v", err)
		}
		all = append(all, page...)
		if !hasMore {
			break
		}
		cursor = nextCursor
	}

	if len(all) != len(userIDs) {
		t.Fatalf("các trang nối nhau phải ra đủ tập user: got %v, want %v", all, userIDs)
	}
	for i, id := range userIDs {
		if all[i] != id {
			t.Fatalf("thứ tự phải tăng dần không trùng: got %v, want %v", all, userIDs)
		}
	}
}

func TestIntegration_UpsertRecord_CompositeKeyUnique(t *testing.T) {
	svc, ctx := setupScheduleTest(t)

	hour := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC).UnixMilli()

	// Upsert hai lần cùng bộ ba: chỉ một document, score lấy giá trị mới nhất
	upsertTestRecord(t, ctx, svc, 7, "camp-1", "tpl-a", hour, 0.3)
	upsertTestRecord(t, ctx, svc, 7, "camp-1", "tpl-a", hour, 0.7)

	records, err := svc.GetEligibleRecords(ctx, 7, 0)
	if err != nil {
		t.Fatalf("GetEligibleRecords lỗi: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("cùng bộ ba phải chỉ có một document: got %d", len(records))
	}
	if records[0].FinalScore != 0.7 {
		t.Errorf("upsert phải cập nhật score: got %f, want 0.7", records[0].FinalScore)
	}
	if records[0].ID != "7:camp-1:tpl-a" {
		t.Errorf("_id phải là composite key: got %q", records[0].ID)
	}
}

func TestIntegration_MarkSent(t *testing.T) {
	svc, ctx := setupScheduleTest(t)

	hour := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC).UnixMilli()
	upsertTestRecord(t, ctx, svc, 8, "camp-1", "tpl-a", hour, 0.5)

	matched, err := svc.MarkSent(ctx, 8, "camp-1", "tpl-a")
	if err != nil {
		t.Fatalf("MarkSent lỗi: %v", err)
	}
	if !matched {
		t.Error("record tồn tại phải matched=true")
	}

	// Record không tồn tại: matched=false, không phải lỗi
	matched, err = svc.MarkSent(ctx, 8, "camp-khong-co", "tpl-a")
	if err != nil {
		t.Fatalf("not-found phải là kết quả, không phải lỗi: %v", err)
	}
	if matched {
		t.Error("record không tồn tại phải matched=false")
	}

	records, err := svc.GetEligibleRecords(ctx, 8, 0)
	if err != nil {
		t.Fatalf("GetEligibleRecords lỗi: %v", err)
	}
	if len(records) != 1 || records[0].SentAt != 1 {
		t.Errorf("sentAt phải bằng 1 sau MarkSent: %+v", records)
	}
}

func TestIntegration_UpsertRecord_TruncatesPlannedHour(t *testing.T) {
	svc, ctx := setupScheduleTest(t)

	// Caller gửi mốc lẻ phút: record phải lưu đầu giờ, và quét segment với
	// một mốc lẻ khác trong cùng giờ vẫn phải tìm thấy user
	hourExact := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC).UnixMilli()
	at0917 := time.Date(2025, 3, 15, 9, 17, 0, 0, time.UTC).UnixMilli()
	at0944 := time.Date(2025, 3, 15, 9, 44, 0, 0, time.UTC).UnixMilli()

	upsertTestRecord(t, ctx, svc, 31, "camp-1", "tpl-a", at0917, 0.5)

	records, err := svc.GetEligibleRecords(ctx, 31, 0)
	if err != nil {
		t.Fatalf("GetEligibleRecords lỗi: %v", err)
	}
	if len(records) != 1 || records[0].PlannedDateHour != hourExact {
		t.Fatalf("plannedDateHour phải được truncate về đầu giờ: %+v", records)
	}

	for _, queryAt := range []int64{hourExact, at0944} {
		page, _, _, err := svc.GetScheduleSegment(ctx, "camp-1", "tpl-a", queryAt, 10, 0)
		if err != nil {
			t.Fatalf("quét segment lỗi: %v", err)
		}
		if len(page) != 1 || page[0] != 31 {
			t.Errorf("segment tại mốc %d phải thấy user 31: got %v", queryAt, page)
		}
	}
}

func TestIntegration_DeleteRecord(t *testing.T) {
	svc, ctx := setupScheduleTest(t)

	hour := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC).UnixMilli()
	upsertTestRecord(t, ctx, svc, 12, "camp-1", "tpl-a", hour, 0.5)

	if err := svc.DeleteRecord(ctx, 12, "camp-1", "tpl-a"); err != nil {
		t.Fatalf("DeleteRecord lỗi: %v", err)
	}

	records, err := svc.GetEligibleRecords(ctx, 12, 0)
	if err != nil {
		t.Fatalf("GetEligibleRecords lỗi: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("record đã xóa không được còn lại: %+v", records)
	}

	// Xóa record không tồn tại: ErrNotFound
	err = svc.DeleteRecord(ctx, 12, "camp-1", "tpl-a")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("xóa record không tồn tại phải trả về ErrNotFound: %v", err)
	}
}

func TestIntegration_ListRecords_OffsetPagination(t *testing.T) {
	svc, ctx := setupScheduleTest(t)

	hour := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC).UnixMilli()
	for _, userID := range []int64{1, 2, 3, 4, 5} {
		upsertTestRecord(t, ctx, svc, userID, "camp-1", "tpl-a", hour, 0.5)
	}

	result, err := svc.ListRecords(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListRecords lỗi: %v", err)
	}
	if result.Total != 5 || result.TotalPage != 3 {
		t.Errorf("tổng phải được đếm thật: Total=%d TotalPage=%d", result.Total, result.TotalPage)
	}
	if result.ItemCount != 2 || len(result.Items) != 2 {
		t.Errorf("trang 1 với limit 2 phải có 2 record: %+v", result)
	}

	// Trang cuối chỉ còn một record
	last, err := svc.ListRecords(ctx, 3, 2)
	if err != nil {
		t.Fatalf("ListRecords trang cuối lỗi: %v", err)
	}
	if last.ItemCount != 1 {
		t.Errorf("trang cuối phải có đúng 1 record: %+v", last)
	}
}

func TestIntegration_GetEligibleRecords_Bounded(t *testing.T) {
	svc, ctx := setupScheduleTest(t)

	hour := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC).UnixMilli()
	for i := int64(1); i <= 10; i++ {
		upsertTestRecord(t, ctx, svc, 9, "camp-1", "tpl-"+string(rune('a'+i-1)), hour, 0.5)
	}

	records, err := svc.GetEligibleRecords(ctx, 9, 4)
	if err != nil {
		t.Fatalf("GetEligibleRecords lỗi: %v", err)
	}
	if len(records) != 4 {
		t.Errorf("limit phải chặn số record trả về: got %d, want 4", len(records))
	}
}
