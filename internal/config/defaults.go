package config

import "github.com/sotuphap-angiang/vbtrack/internal/models"

// DefaultSheets returns the sheet layout of the provincial tracking workbook,
// in import order.
func DefaultSheets() []SheetConfig {
	return []SheetConfig{
		{Name: "NQ can xu ly", DocType: models.DocTypeResolution, Status: models.StatusPending},
		{Name: "QD UBND can xu ly", DocType: models.DocTypeProvincialDecision, Status: models.StatusPending},
		{Name: "QD CT.UBND", DocType: models.DocTypeChairmanDecision, Status: models.StatusPending},
		{Name: "NQ HDND da xu ly", DocType: models.DocTypeResolution, Status: models.StatusCompleted},
		{Name: "QD UBND da xu ly", DocType: models.DocTypeProvincialDecision, Status: models.StatusCompleted},
	}
}

// DefaultAreaGroups returns the area tables of the summary sheet: one for
// council resolutions, one for provincial committee decisions.
func DefaultAreaGroups() []AreaGroupConfig {
	return []AreaGroupConfig{
		{
			DocType: models.DocTypeResolution,
			Title:   "Nghị quyết của Hội đồng nhân dân tỉnh",
			Areas: []AreaConfig{
				{Ordinal: 1, Name: "Lĩnh vực an ninh chính trị, trật tự an toàn xã hội", Agencies: []string{"Công an tỉnh", "Bộ Chỉ huy Quân sự tỉnh"}, Handler: "Thảo"},
				{Ordinal: 2, Name: "Lĩnh vực tư pháp", Agencies: []string{"Sở Tư pháp"}, Handler: "Nhung, Trâm"},
				{Ordinal: 3, Name: "Lĩnh vực y tế", Agencies: []string{"Sở Y tế"}, Handler: "Nhung"},
				{Ordinal: 4, Name: "Lĩnh vực xây dựng", Agencies: []string{"Sở Xây dựng"}, Handler: "Đỗ Hằng"},
				{Ordinal: 5, Name: "Lĩnh vực nông nghiệp và môi trường", Agencies: []string{"Sở Nông nghiệp và Môi trường"}, Handler: "Trâm"},
				{Ordinal: 6, Name: "Lĩnh vực tài chính", Agencies: []string{"Sở Tài chính", "Chi nhánh Ngân hàng chính sách xã hội tỉnh An Giang"}, Handler: "Thảo"},
				{Ordinal: 7, Name: "Lĩnh vực nội vụ", Agencies: []string{"Sở Nội vụ"}, Handler: "Nhung"},
				{Ordinal: 8, Name: "Lĩnh vực công thương", Agencies: []string{"Sở Công Thương"}, Handler: "Đỗ Hằng"},
				{Ordinal: 9, Name: "Lĩnh vực dân tộc và tôn giáo", Agencies: []string{"Sở Dân tộc và Tôn giáo"}, Handler: "Loan"},
				{Ordinal: 10, Name: "Lĩnh vực văn hóa, thể thao và du lịch", Agencies: []string{"Sở Văn hóa và Thể thao", "Sở Du lịch"}, Handler: "Loan"},
				{Ordinal: 11, Name: "Lĩnh vực giáo dục và đào tạo", Agencies: []string{"Sở Giáo dục và Đào tạo"}, Handler: "Loan"},
				{Ordinal: 12, Name: "Lĩnh vực pháp chế", Agencies: []string{"Ban của Hội đồng nhân dân tỉnh"}, Handler: "Thảo"},
				{Ordinal: 13, Name: "Lĩnh vực thanh tra", Agencies: []string{"Thanh tra tỉnh"}, Handler: "Nhung"},
				{Ordinal: 14, Name: "Lĩnh vực khoa học và công nghệ", Agencies: []string{"Sở Khoa học và Công nghệ"}, Handler: "Trâm"},
			},
		},
		{
			DocType: models.DocTypeProvincialDecision,
			Title:   "Quyết định của Ủy ban nhân dân tỉnh",
			Areas: []AreaConfig{
				{Ordinal: 1, Name: "Lĩnh vực Văn phòng UBND tỉnh", Agencies: []string{"Văn phòng UBND tỉnh"}, Handler: "Thảo"},
				{Ordinal: 2, Name: "Lĩnh vực nội vụ", Agencies: []string{"Sở Nội vụ"}, Handler: "Nhung"},
				{Ordinal: 3, Name: "Lĩnh vực tư pháp", Agencies: []string{"Sở Tư pháp"}, Handler: "Nhung"},
				{Ordinal: 4, Name: "Lĩnh vực tài chính", Agencies: []string{"Sở Tài chính"}, Handler: "Thảo"},
				{Ordinal: 5, Name: "Lĩnh vực văn hóa, thể thao", Agencies: []string{"Sở Văn hóa và Thể thao"}, Handler: "Loan"},
				{Ordinal: 6, Name: "Lĩnh vực du lịch", Agencies: []string{"Sở Du lịch"}, Handler: "Loan"},
				{Ordinal: 7, Name: "Lĩnh vực y tế", Agencies: []string{"Sở Y tế"}, Handler: "Nhung"},
				{Ordinal: 8, Name: "Lĩnh vực công thương", Agencies: []string{"Sở Công Thương"}, Handler: "Thanh Hằng"},
				{Ordinal: 9, Name: "Lĩnh vực an ninh chính trị, trật tự an toàn xã hội", Agencies: []string{"Công an tỉnh", "Bộ Chỉ huy Quân sự tỉnh"}, Handler: "Thảo"},
				{Ordinal: 10, Name: "Lĩnh vực giáo dục và đào tạo", Agencies: []string{"Sở Giáo dục và Đào tạo"}, Handler: "Loan"},
				{Ordinal: 11, Name: "Lĩnh vực xây dựng", Agencies: []string{"Sở Xây dựng"}, Handler: "Thanh Hằng"},
				{Ordinal: 12, Name: "Lĩnh vực khoa học và công nghệ", Agencies: []string{"Sở Khoa học và Công nghệ"}, Handler: "Trâm"},
				{Ordinal: 13, Name: "Lĩnh vực nông nghiệp và môi trường", Agencies: []string{"Sở Nông nghiệp và Môi trường", "Chưa xác định/Sở NNMT"}, Handler: "Trâm"},
				{Ordinal: 14, Name: "Ban Quản lý Khu kinh tế tỉnh", Agencies: []string{"Ban Quản lý Khu kinh tế"}, Handler: "Thanh Hằng"},
			},
		},
	}
}
