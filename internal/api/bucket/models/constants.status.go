package models

// Các trạng thái hợp lệ của một CommEvent.
// Status chỉ được ghi nhận qua boundary validation, tầng dưới tin tưởng giá trị.
const (
	StatusSent     = "sent"     // Đã gửi
	StatusOpened   = "opened"   // User đã mở
	StatusClicked  = "clicked"  // User đã click
	StatusFailed   = "failed"   // Gửi thất bại
	StatusReplaced = "replaced" // Bị thay thế bởi event khác
)
