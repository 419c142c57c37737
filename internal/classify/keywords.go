package classify

import (
	"strings"

	"github.com/shanehull/stockchat/internal/types"
)

// keywordTable is evaluated top to bottom; the first label with a matching keyword wins.
var keywordTable = []struct {
	label    types.Label
	keywords []string
}{
	{types.LabelComparison, []string{"so sánh", "compare", "so với", "đối thủ cạnh tranh"}},
	{types.LabelNews, []string{
		"tin tức", "news", "tin mới", "thông tin mới", "bài viết", "tin gần đây", "cập nhật",
		"tin gì", "có tin", "tin về",
	}},
	{types.LabelFinancialDetail, []string{
		"báo cáo tài chính", "bctc", "kết quả kinh doanh", "bảng cân đối", "lưu chuyển tiền tệ",
		"tài chính", "doanh thu", "lợi nhuận", "tài sản", "nợ phải trả", "roe", "roa", "eps", "p/e",
	}},
	{types.LabelCompany, []string{
		"thông tin công ty", "công ty", "doanh nghiệp", "tổng quan", "cổ đông", "ban lãnh đạo",
		"công ty con", "sự kiện",
	}},
	{types.LabelMarket, []string{
		"thị trường", "top tăng", "top giảm", "tăng mạnh nhất", "giảm mạnh nhất", "vnindex", "vn-index",
	}},
	{types.LabelPrice, []string{"giá", "price", "lịch sử giá", "biến động giá", "closing price"}},
}

// KeywordLabel classifies by substring match on the lower-cased question.
func KeywordLabel(question string) types.Label {
	q := strings.ToLower(question)
	for _, row := range keywordTable {
		for _, kw := range row.keywords {
			if strings.Contains(q, kw) {
				return row.label
			}
		}
	}
	return types.LabelGeneral
}
