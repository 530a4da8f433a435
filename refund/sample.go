package refund

// SampleTrades returns the built-in demo dataset. US records write dates
// month first, European records day first.
func SampleTrades() []TradeRecord {
	return []TradeRecord{
		{Name: "Emma Smith", TimeZone: "US (PST)", SignUpDate: "1/2/2020", Source: SourcePhone,
			InvestmentDate: "1/2/2021", InvestmentTime: "06:00", RefundRequestDate: "1/2/2021", RefundRequestTime: "09:00"},
		{Name: "Benjamin Johnson", TimeZone: "Europe (CET)", SignUpDate: "12/2/2020", Source: SourceWebApp,
			InvestmentDate: "2/1/2021", InvestmentTime: "06:30", RefundRequestDate: "1/2/2021", RefundRequestTime: "23:00"},
		{Name: "Olivia Davis", TimeZone: "Europe (CET)", SignUpDate: "1/2/2020", Source: SourceWebApp,
			InvestmentDate: "2/2/2021", InvestmentTime: "13:00", RefundRequestDate: "2/2/2021", RefundRequestTime: "20:00"},
		{Name: "Ethan Anderson", TimeZone: "US (PST)", SignUpDate: "1/11/2011", Source: SourceWebApp,
			InvestmentDate: "2/1/2021", InvestmentTime: "13:00", RefundRequestDate: "2/2/2021", RefundRequestTime: "16:00"},
		{Name: "Sophia Wilson", TimeZone: "US (PST)", SignUpDate: "2/1/2020", Source: SourcePhone,
			InvestmentDate: "2/1/2021", InvestmentTime: "22:00", RefundRequestDate: "2/2/2021", RefundRequestTime: "05:00"},
		{Name: "Liam Martinez", TimeZone: "Europe (GMT)", SignUpDate: "1/1/2020", Source: SourceWebApp,
			InvestmentDate: "1/1/2021", InvestmentTime: "11:00", RefundRequestDate: "11/1/2021", RefundRequestTime: "12:00"},
		{Name: "Jonathan Giles", TimeZone: "Europe (CET)", SignUpDate: "1/1/2020", Source: SourcePhone,
			InvestmentDate: "1/1/2021", InvestmentTime: "11:00", RefundRequestDate: "12/1/2021", RefundRequestTime: "12:00"},
		{Name: "Priya Sharp", TimeZone: "Europe (CET)", SignUpDate: "10/10/2020", Source: SourcePhone,
			InvestmentDate: "5/5/2021", InvestmentTime: "00:30", RefundRequestDate: "5/5/2021", RefundRequestTime: "21:00"},
		{Name: "Raja Ortiz", TimeZone: "US (EST)", SignUpDate: "10/10/2021", Source: SourcePhone,
			InvestmentDate: "01/15/2022", InvestmentTime: "21:30", RefundRequestDate: "01/16/2022", RefundRequestTime: "07:00"},
		{Name: "Livia Burns", TimeZone: "US (PST)", SignUpDate: "10/10/2021", Source: SourcePhone,
			InvestmentDate: "01/15/2022", InvestmentTime: "21:30", RefundRequestDate: "01/16/2022", RefundRequestTime: "19:00"},
		{Name: "Lacey Gates", TimeZone: "Europe (CET)", SignUpDate: "10/10/2021", Source: SourceWebApp,
			InvestmentDate: "15/01/2022", InvestmentTime: "23:36", RefundRequestDate: "16/01/2022", RefundRequestTime: "13:12"},
	}
}
