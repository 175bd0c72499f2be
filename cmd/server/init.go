package main

import (
	"context"

	"comm_tracker/config"
	bucketmodels "comm_tracker/internal/api/bucket/models"
	schedulemodels "comm_tracker/internal/api/schedule/models"
	"comm_tracker/internal/database"
	"comm_tracker/internal/global"

	"github.com/sirupsen/logrus"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.DailyBuckets = "comm_daily_buckets"
	global.MongoDB_ColNames.Schedules = "comm_schedules"

	logrus.Info("Initialized collection names") // Ghi log thông báo đã khởi tạo tên các collection
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: event_status, user_type)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator") // Ghi log thông báo đã khởi tạo validator
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil") // Ghi log lỗi nếu khởi tạo cấu hình thất bại
	}
	logrus.Info("Initialized server config") // Ghi log thông báo đã khởi tạo cấu hình server
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err) // Ghi log lỗi nếu kết nối database thất bại
	}
	logrus.Info("Connected to MongoDB") // Ghi log thông báo đã kết nối database thành công

	// Khởi tạo các db và collections nếu chưa có
	if err := database.EnsureDatabaseAndCollections(global.MongoDB_Session); err != nil {
		logrus.Fatalf("Failed to ensure database and collections: %v", err)
	}
	logrus.Info("Ensured database and collections") // Ghi log thông báo đã đảm bảo database và các collection

	// Khởi tạo các index khai báo qua struct tag
	dbName := global.MongoDB_ServerConfig.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)
	if err := database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.DailyBuckets), bucketmodels.DayBucket{}); err != nil {
		logrus.Fatalf("Failed to create bucket indexes: %v", err)
	}
	if err := database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Schedules), schedulemodels.ScheduleRecord{}); err != nil {
		logrus.Fatalf("Failed to create schedule indexes: %v", err)
	}

	// Các index không diễn đạt được qua tag: unique (userId, day), multikey
	// trên events, TTL expireAt, compound segment scan và ESR ranked
	if err := database.CreateCommIndexes(context.TODO(), db); err != nil {
		logrus.Fatalf("Failed to create communication indexes: %v", err)
	}
	logrus.Info("Created indexes")
}
