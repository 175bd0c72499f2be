package global

import (
	"github.com/go-playground/validator/v10"
)

// Các giá trị enum hợp lệ ở boundary validation
var (
	validEventStatuses = map[string]bool{
		"sent":     true,
		"opened":   true,
		"clicked":  true,
		"failed":   true,
		"replaced": true,
	}

	validUserTypes = map[string]bool{
		"premium":  true,
		"standard": true,
		"trial":    true,
	}
)

// InitValidator khởi tạo validator instance và đăng ký các custom validators.
// Gọi một lần khi khởi động server, trước khi đăng ký routes.
func InitValidator() {
	Validate = validator.New()

	// event_status: status của một event (sent|opened|clicked|failed|replaced)
	_ = Validate.RegisterValidation("event_status", func(fl validator.FieldLevel) bool {
		return validEventStatuses[fl.Field().String()]
	})

	// user_type: loại user (premium|standard|trial)
	_ = Validate.RegisterValidation("user_type", func(fl validator.FieldLevel) bool {
		return validUserTypes[fl.Field().String()]
	})
}

// IsValidEventStatus kiểm tra status có nằm trong enum hợp lệ không
func IsValidEventStatus(status string) bool {
	return validEventStatuses[status]
}

// IsValidUserType kiểm tra userType có nằm trong enum hợp lệ không
func IsValidUserType(userType string) bool {
	return validUserTypes[userType]
}
