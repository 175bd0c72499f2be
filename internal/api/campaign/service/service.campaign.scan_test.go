// Package campaignsvc - Test các pure function của campaign scan:
// khung giờ, match stage, pipeline, cắt trang.
package campaignsvc

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestHourWindow(t *testing.T) {
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	start, end := HourWindow(day, 9)

	wantStart := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC).UnixMilli()
	if start != wantStart {
		t.Errorf("start sai: got %d, want %d", start, wantStart)
	}
	if end-start != time.Hour.Milliseconds() {
		t.Errorf("khung giờ phải dài đúng 1 giờ: got %d millis", end-start)
	}
}

func TestHourWindow_Hour0(t *testing.T) {
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	start, _ := HourWindow(day, 0)
	if start != day {
		t.Errorf("giờ 0 phải bắt đầu tại nửa đêm: got %d, want %d", start, day)
	}
}

func TestBuildScanMatch_FirstPage(t *testing.T) {
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	match := BuildScanMatch("camp-1", "tpl-a", day, 9, 0)

	if _, ok := match["userId"]; ok {
		t.Error("trang đầu (cursor=0) không được có điều kiện userId")
	}
	if match["day"] != day {
		t.Errorf("day sai: got %v, want %d", match["day"], day)
	}

	elemMatch, ok := match["events"].(bson.M)["$elemMatch"].(bson.M)
	if !ok {
		t.Fatal("match thiếu events.$elemMatch")
	}
	if elemMatch["templateId"] != "tpl-a" || elemMatch["trackingId"] != "camp-1" {
		t.Errorf("elemMatch thiếu định danh campaign: %v", elemMatch)
	}
	window, ok := elemMatch["dispatchTime"].(bson.M)
	if !ok {
		t.Fatal("elemMatch thiếu khoảng dispatchTime")
	}
	start, end := HourWindow(day, 9)
	if window["$gte"] != start || window["$lt"] != end {
		t.Errorf("khoảng dispatchTime sai: got %v, want [%d, %d)", window, start, end)
	}
}

func TestBuildScanMatch_WithCursor(t *testing.T) {
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	match := BuildScanMatch("camp-1", "tpl-a", day, 9, 777)

	cond, ok := match["userId"].(bson.M)
	if !ok {
		t.Fatal("cursor > 0 phải thêm điều kiện userId vào $match")
	}
	if cond["$gt"] != int64(777) {
		t.Errorf("điều kiện cursor sai: got %v, want $gt 777", cond)
	}
}

func TestBuildDistinctUsersPipeline_Shape(t *testing.T) {
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	pipeline := BuildDistinctUsersPipeline("camp-1", "tpl-a", day, 9, 50, 0)

	if len(pipeline) != 4 {
		t.Fatalf("pipeline phải có 4 stage: got %d", len(pipeline))
	}
	if _, ok := pipeline[0]["$match"]; !ok {
		t.Error("stage 1 phải là $match")
	}
	group, ok := pipeline[1]["$group"].(bson.M)
	if !ok || group["_id"] != "$userId" {
		t.Errorf("stage 2 phải group theo $userId: %v", pipeline[1])
	}
	sort, ok := pipeline[2]["$sort"].(bson.M)
	if !ok || sort["_id"] != 1 {
		t.Errorf("stage 3 phải sort _id tăng dần: %v", pipeline[2])
	}
	if pipeline[3]["$limit"] != int64(51) {
		t.Errorf("stage 4 phải limit pageSize+1 để dò trang sau: got %v", pipeline[3]["$limit"])
	}
}

func TestTrimPage_HasMore(t *testing.T) {
	ids := []int64{1, 2, 3, 4, 5, 6} // pageSize+1 phần tử
	page, nextCursor, hasMore := TrimPage(ids, 5)

	if !hasMore {
		t.Error("có phần tử dư thì hasMore phải true")
	}
	if len(page) != 5 {
		t.Errorf("trang phải có đúng pageSize phần tử: got %d", len(page))
	}
	if nextCursor != 5 {
		t.Errorf("nextCursor phải là userId cuối của trang: got %d, want 5", nextCursor)
	}
}

func TestTrimPage_LastPage(t *testing.T) {
	ids := []int64{10, 20, 30}
	page, nextCursor, hasMore := TrimPage(ids, 5)

	if hasMore {
		t.Error("trang cuối không được có hasMore")
	}
	if nextCursor != 0 {
		t.Errorf("trang cuối nextCursor phải là 0: got %d", nextCursor)
	}
	if len(page) != 3 {
		t.Errorf("trang cuối phải giữ nguyên phần tử: got %d", len(page))
	}
}

func TestTrimPage_ExactPageSize(t *testing.T) {
	// Đúng pageSize phần tử (không có phần tử dò): đây là trang cuối
	ids := []int64{1, 2, 3, 4, 5}
	_, _, hasMore := TrimPage(ids, 5)
	if hasMore {
		t.Error("đúng pageSize phần tử nghĩa là không còn trang sau")
	}
}

func TestTrimPage_Empty(t *testing.T) {
	page, nextCursor, hasMore := TrimPage([]int64{}, 5)
	if hasMore || nextCursor != 0 || len(page) != 0 {
		t.Errorf("tập rỗng phải trả về trang rỗng: page=%v cursor=%d hasMore=%v", page, nextCursor, hasMore)
	}
}
