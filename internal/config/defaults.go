package config

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		DataDir:   "data",
		OutputDir: "figures",
		Database:  "data.db",
		LogLevel:  "info",
		Fonts: FontConfig{
			Paths: []string{
				"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
				"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
				"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
			},
			Discover: true,
			DPI:      72,
		},
		Cities: []City{
			{
				Name:          "上海市",
				ID:            "shanghai",
				FileDaily:     "shanghai-daily.csv",
				FileResidents: "shanghai-daily-residents.csv",
				DateRange:     DateRange{From: MustDate("2022-03-06"), To: MustDate("2022-06-01")},
				Districts: []string{
					"浦东新区", "徐汇区", "闵行区", "黄浦区", "嘉定区", "松江区", "虹口区", "长宁区",
					"青浦区", "静安区", "宝山区", "杨浦区", "普陀区", "崇明区", "金山区", "奉贤区",
				},
				Events: []Event{
					{From: MustDate("2022-03-18"), Title: "非重点区分批核算检测"},
					{From: MustDate("2022-03-31"), Title: "上海全域静态管理"},
					{From: MustDate("2022-04-04"), Title: "全员核酸检测"},
					{From: MustDate("2022-04-09"), Title: "全市抗原检测"},
					{From: MustDate("2022-04-22"), Title: "全员核酸检测"},
					{From: MustDate("2022-04-26"), Title: "全员核酸检测"},
				},
			},
			{
				Name:          "北京市",
				ID:            "beijing",
				FileDaily:     "beijing-daily.csv",
				FileResidents: "beijing-daily-residents.csv",
				DateRange:     DateRange{From: MustDate("2022-04-15"), To: MustDate("2022-06-01")},
				Districts: []string{
					"朝阳区", "东城区", "西城区", "海淀区", "房山区", "丰台区", "石景山区", "门头沟区",
					"大兴区", "通州区", "顺义区", "昌平区", "怀柔区", "平谷区", "密云区", "延庆区",
				},
				Events: []Event{
					{From: MustDate("2022-04-26"), Title: "全员核酸检测"},
					{From: MustDate("2022-05-01"), Title: "全员核酸检测"},
				},
			},
		},
	}
}
