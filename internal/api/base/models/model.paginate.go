package basemodels

// PaginateResult là cấu trúc kết quả phân trang chung cho mọi collection.
// Với các truy vấn keyset (cursor) không đếm tổng, Total và TotalPage mang
// giá trị -1 để báo "không xác định".
type PaginateResult[T any] struct {
	Items     []T   `json:"items"`     // Danh sách các mục trong trang hiện tại
	Page      int64 `json:"page"`      // Trang hiện tại
	Limit     int64 `json:"limit"`     // Số lượng mục trên mỗi trang
	ItemCount int64 `json:"itemCount"` // Số mục thực tế trong trang này
	Total     int64 `json:"total"`     // Tổng số mục (-1 nếu không đếm)
	TotalPage int64 `json:"totalPage"` // Tổng số trang (-1 nếu không đếm)
}
