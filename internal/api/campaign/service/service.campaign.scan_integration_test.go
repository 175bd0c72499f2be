// Package campaignsvc - Integration test cho campaign distinct-user scan.
// Chạy khi có biến môi trường MONGODB_TEST_URI trỏ tới một MongoDB thật.
package campaignsvc

import (
	"context"
	"os"
	"testing"
	"time"

	bucketmodels "comm_tracker/internal/api/bucket/models"
	bucketsvc "comm_tracker/internal/api/bucket/service"
	"comm_tracker/internal/global"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setupScanTest kết nối MongoDB test và trả về cặp service (bucket để seed
// dữ liệu, scan để truy vấn).
func setupScanTest(t *testing.T) (*bucketsvc.DayBucketService, *CampaignScanService, context.Context) {
	t.Helper()

	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("Bỏ qua integration test: MONGODB_TEST_URI chưa được set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("Không kết nối được MongoDB test: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	global.MongoDB_ColNames.DailyBuckets = "comm_daily_buckets_test"
	coll := client.Database("comm_tracker_test").Collection(global.MongoDB_ColNames.DailyBuckets)
	if err := coll.Drop(ctx); err != nil {
		t.Fatalf("Không drop được collection test: %v", err)
	}
	if _, err := global.RegistryCollections.Register(global.MongoDB_ColNames.DailyBuckets, coll); err != nil {
		t.Fatalf("Không đăng ký được collection test: %v", err)
	}

	bucketSvc, err := bucketsvc.NewDayBucketService()
	if err != nil {
		t.Fatalf("Không tạo được DayBucketService: %v", err)
	}
	scanSvc, err := NewCampaignScanService()
	if err != nil {
		t.Fatalf("Không tạo được CampaignScanService: %v", err)
	}
	return bucketSvc, scanSvc, ctx
}

// seedMatchingUser tạo một bucket có event khớp (camp-1, tpl-a) lúc 9h.
func seedMatchingUser(t *testing.T, ctx context.Context, svc *bucketsvc.DayBucketService, userID int64, day int64) {
	t.Helper()
	ev := bucketmodels.CommEvent{
		DispatchTime: time.UnixMilli(day).UTC().Add(9*time.Hour + 15*time.Minute).UnixMilli(),
		TemplateID:   "tpl-a",
		TrackingID:   "camp-1",
		Status:       bucketmodels.StatusSent,
	}
	if err := svc.AppendEvents(ctx, userID, "standard", day, []bucketmodels.CommEvent{ev}); err != nil {
		t.Fatalf("seed user %d lỗi: %v", userID, err)
	}
}

func TestIntegration_DistinctUsers_CompleteNoDuplicates(t *testing.T) {
	bucketSvc, scanSvc, ctx := setupScanTest(t)
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()

	// 7 user khớp; user 50 có hai event khớp trong cùng bucket (chỉ đếm một lần)
	for _, userID := range []int64{10, 20, 30, 40, 50, 60, 70} {
		seedMatchingUser(t, ctx, bucketSvc, userID, day)
	}
	seedMatchingUser(t, ctx, bucketSvc, 50, day)

	// User không khớp: khác giờ, khác template, khác ngày
	otherDay := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC).UnixMilli()
	offWindow := bucketmodels.CommEvent{
		DispatchTime: time.UnixMilli(day).UTC().Add(11 * time.Hour).UnixMilli(),
		TemplateID:   "tpl-a", TrackingID: "camp-1", Status: bucketmodels.StatusSent,
	}
	if err := bucketSvc.AppendEvents(ctx, 80, "standard", day, []bucketmodels.CommEvent{offWindow}); err != nil {
		t.Fatalf("seed user ngoài khung giờ lỗi: %v", err)
	}
	seedMatchingUser(t, ctx, bucketSvc, 90, otherDay)

	// Duyệt hết các trang với pageSize 3: phải ra đủ 7 user, đúng một lần, tăng dần
	var all []int64
	cursor := int64(0)
	for {
		page, nextCursor, hasMore, err := scanSvc.DistinctUsers(ctx, "camp-1", "tpl-a", day, 9, 3, cursor)
		if err != nil {
			t.Fatalf("quét trang lỗi: %v", err)
		}
		all = append(all, page...)
		if !hasMore {
			break
		}
		cursor = nextCursor
	}

	want := []int64{10, 20, 30, 40, 50, 60, 70}
	if len(all) != len(want) {
		t.Fatalf("phải ra đủ distinct set đúng một lần: got %v, want %v", all, want)
	}
	for i, id := range want {
		if all[i] != id {
			t.Fatalf("thứ tự phải tăng dần không trùng: got %v, want %v", all, want)
		}
	}
}

func TestIntegration_DistinctUsers_StableUnderInsert(t *testing.T) {
	bucketSvc, scanSvc, ctx := setupScanTest(t)
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()

	for _, userID := range []int64{100, 200, 300, 400} {
		seedMatchingUser(t, ctx, bucketSvc, userID, day)
	}

	page1, cursor, hasMore, err := scanSvc.DistinctUsers(ctx, "camp-1", "tpl-a", day, 9, 2, 0)
	if err != nil {
		t.Fatalf("trang 1 lỗi: %v", err)
	}
	if !hasMore || len(page1) != 2 {
		t.Fatalf("trang 1 phải có 2 user và hasMore: %v %v", page1, hasMore)
	}

	// Chèn user mới có userId < cursor sau khi đã lấy trang 1:
	// keyset chỉ nhìn về phía trước nên user này không được xuất hiện ở trang 2
	seedMatchingUser(t, ctx, bucketSvc, 150, day)

	page2, _, _, err := scanSvc.DistinctUsers(ctx, "camp-1", "tpl-a", day, 9, 2, cursor)
	if err != nil {
		t.Fatalf("trang 2 lỗi: %v", err)
	}
	for _, id := range page2 {
		if id == 150 {
			t.Errorf("user chèn sau với userId < cursor không được xuất hiện ở trang 2: %v", page2)
		}
		if id <= cursor {
			t.Errorf("trang 2 chỉ được chứa userId > cursor: %v (cursor=%d)", page2, cursor)
		}
	}
}

func TestIntegration_DistinctUsers_EmptySet(t *testing.T) {
	_, scanSvc, ctx := setupScanTest(t)
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()

	page, nextCursor, hasMore, err := scanSvc.DistinctUsers(ctx, "camp-khong-ton-tai", "tpl-a", day, 9, 10, 0)
	if err != nil {
		t.Fatalf("tập rỗng không được là lỗi: %v", err)
	}
	if len(page) != 0 || hasMore || nextCursor != 0 {
		t.Errorf("tập rỗng phải trả về trang rỗng, hasMore=false: page=%v cursor=%d hasMore=%v", page, nextCursor, hasMore)
	}
}
