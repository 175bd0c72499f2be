// Package schedulesvc - Test các pure function của schedule store:
// filter builders, cắt trang segment.
package schedulesvc

import (
	"testing"
	"time"

	schedulemodels "comm_tracker/internal/api/schedule/models"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildSegmentFilter_FirstPage(t *testing.T) {
	hour := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC).UnixMilli()
	filter := BuildSegmentFilter("camp-1", "tpl-a", hour, 0)

	if _, ok := filter["userId"]; ok {
		t.Error("trang đầu (cursor=0) không được có điều kiện userId")
	}
	if filter["trackingId"] != "camp-1" || filter["templateId"] != "tpl-a" {
		t.Errorf("filter thiếu định danh đợt gửi: %v", filter)
	}
	if filter["plannedDateHour"] != hour {
		t.Errorf("plannedDateHour sai: got %v, want %d", filter["plannedDateHour"], hour)
	}
}

func TestBuildSegmentFilter_Continuation(t *testing.T) {
	hour := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC).UnixMilli()
	first := BuildSegmentFilter("camp-1", "tpl-a", hour, 0)
	cont := BuildSegmentFilter("camp-1", "tpl-a", hour, 42)

	cond, ok := cont["userId"].(bson.M)
	if !ok {
		t.Fatal("trang tiếp phải có điều kiện keyset trên userId")
	}
	if cond["$gt"] != int64(42) {
		t.Errorf("điều kiện cursor sai: got %v, want $gt 42", cond)
	}

	// Hai dạng gọi chỉ được khác nhau đúng điều kiện userId
	for _, key := range []string{"trackingId", "templateId", "plannedDateHour"} {
		if first[key] != cont[key] {
			t.Errorf("hai dạng gọi lệch nhau ở %s: %v vs %v", key, first[key], cont[key])
		}
	}
}

func TestBuildUserScheduleFilter(t *testing.T) {
	start := time.Date(2025, 3, 15, 6, 0, 0, 0, time.UTC).UnixMilli()
	end := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC).UnixMilli()
	filter := BuildUserScheduleFilter(42, start, end)

	if filter["userId"] != int64(42) {
		t.Errorf("userId sai: got %v", filter["userId"])
	}
	window, ok := filter["plannedDateHour"].(bson.M)
	if !ok {
		t.Fatal("filter thiếu khoảng plannedDateHour")
	}
	// Inclusive hai đầu: record đúng tại start hoặc end phải được nhận
	if window["$gte"] != start || window["$lte"] != end {
		t.Errorf("khoảng giờ phải inclusive [$gte, $lte]: got %v", window)
	}
}

func TestTrimSegmentPage_HasMore(t *testing.T) {
	records := []schedulemodels.ScheduleRecord{
		{UserID: 1}, {UserID: 2}, {UserID: 3}, {UserID: 4},
	}
	userIDs, nextCursor, hasMore := TrimSegmentPage(records, 3)

	if !hasMore {
		t.Error("có phần tử dư thì hasMore phải true")
	}
	if len(userIDs) != 3 {
		t.Errorf("trang phải có đúng pageSize phần tử: got %d", len(userIDs))
	}
	if nextCursor != 3 {
		t.Errorf("nextCursor phải là userId cuối của trang: got %d, want 3", nextCursor)
	}
}

func TestTrimSegmentPage_LastPage(t *testing.T) {
	records := []schedulemodels.ScheduleRecord{{UserID: 7}, {UserID: 9}}
	userIDs, nextCursor, hasMore := TrimSegmentPage(records, 5)

	if hasMore || nextCursor != 0 {
		t.Errorf("trang cuối: hasMore=%v cursor=%d, muốn false/0", hasMore, nextCursor)
	}
	if len(userIDs) != 2 || userIDs[0] != 7 || userIDs[1] != 9 {
		t.Errorf("trang cuối phải giữ nguyên thứ tự phần tử: %v", userIDs)
	}
}

func TestTrimSegmentPage_Empty(t *testing.T) {
	userIDs, nextCursor, hasMore := TrimSegmentPage(nil, 5)
	if hasMore || nextCursor != 0 || len(userIDs) != 0 {
		t.Errorf("tập rỗng phải trả về trang rỗng: ids=%v cursor=%d hasMore=%v", userIDs, nextCursor, hasMore)
	}
}
