package continent

// ISO 3166-1 alpha-2 → 大洲
var byISO2 = map[string]Tag{
	"AF": Asia, "AM": Asia, "AZ": Asia, "BH": Asia, "BD": Asia, "BT": Asia,
	"BN": Asia, "KH": Asia, "CN": Asia, "GE": Asia, "IN": Asia, "ID": Asia,
	"IR": Asia, "IQ": Asia, "IL": Asia, "JP": Asia, "JO": Asia, "KZ": Asia,
	"KW": Asia, "KG": Asia, "LA": Asia, "LB": Asia, "MY": Asia, "MV": Asia,
	"MN": Asia, "MM": Asia, "NP": Asia, "KP": Asia, "OM": Asia, "PK": Asia,
	"PH": Asia, "QA": Asia, "SA": Asia, "SG": Asia, "KR": Asia, "LK": Asia,
	"SY": Asia, "TW": Asia, "TJ": Asia, "TH": Asia, "TL": Asia, "TR": Asia,
	"TM": Asia, "AE": Asia, "UZ": Asia, "VN": Asia, "YE": Asia,
	"AL": Europe, "AD": Europe, "AT": Europe, "BY": Europe, "BE": Europe, "BA": Europe,
	"BG": Europe, "HR": Europe, "CY": Europe, "CZ": Europe, "DK": Europe, "EE": Europe,
	"FI": Europe, "FR": Europe, "DE": Europe, "GR": Europe, "HU": Europe, "IS": Europe,
	"IE": Europe, "IT": Europe, "LV": Europe, "LI": Europe, "LT": Europe, "LU": Europe,
	"MT": Europe, "MD": Europe, "MC": Europe, "ME": Europe, "NL": Europe, "MK": Europe,
	"NO": Europe, "PL": Europe, "PT": Europe, "RO": Europe, "RU": Europe, "SM": Europe,
	"RS": Europe, "SK": Europe, "SI": Europe, "ES": Europe, "SE": Europe, "CH": Europe,
	"UA": Europe, "GB": Europe, "VA": Europe,
	"DZ": Africa, "AO": Africa, "BJ": Africa, "BW": Africa, "BF": Africa, "BI": Africa,
	"CV": Africa, "CM": Africa, "CF": Africa, "TD": Africa, "KM": Africa, "CG": Africa,
	"CD": Africa, "CI": Africa, "DJ": Africa, "EG": Africa, "GQ": Africa, "ER": Africa,
	"SZ": Africa, "ET": Africa, "GA": Africa, "GM": Africa, "GH": Africa, "GN": Africa,
	"GW": Africa, "KE": Africa, "LS": Africa, "LR": Africa, "LY": Africa, "MG": Africa,
	"MW": Africa, "ML": Africa, "MR": Africa, "MU": Africa, "MA": Africa, "MZ": Africa,
	"NA": Africa, "NE": Africa, "NG": Africa, "RW": Africa, "ST": Africa, "SN": Africa,
	"SC": Africa, "SL": Africa, "SO": Africa, "ZA": Africa, "SS": Africa, "SD": Africa,
	"TZ": Africa, "TG": Africa, "TN": Africa, "UG": Africa, "ZM": Africa, "ZW": Africa,
	"CA": NorthAmerica, "MX": NorthAmerica, "US": NorthAmerica, "BZ": NorthAmerica, "CR": NorthAmerica, "SV": NorthAmerica,
	"GT": NorthAmerica, "HN": NorthAmerica, "NI": NorthAmerica, "PA": NorthAmerica, "CU": NorthAmerica, "DO": NorthAmerica,
	"HT": NorthAmerica, "JM": NorthAmerica, "BS": NorthAmerica, "BB": NorthAmerica, "GD": NorthAmerica, "TT": NorthAmerica,
	"AR": SouthAmerica, "BO": SouthAmerica, "BR": SouthAmerica, "CL": SouthAmerica, "CO": SouthAmerica, "EC": SouthAmerica,
	"GY": SouthAmerica, "PY": SouthAmerica, "PE": SouthAmerica, "SR": SouthAmerica, "UY": SouthAmerica, "VE": SouthAmerica,
	"AU": Oceania, "NZ": Oceania, "FJ": Oceania, "PG": Oceania, "SB": Oceania, "VU": Oceania,
	"NC": Oceania, "PF": Oceania, "WS": Oceania, "TO": Oceania, "KI": Oceania, "FM": Oceania,
	"MH": Oceania, "NR": Oceania, "PW": Oceania, "TV": Oceania,
}

// ISO 3166-1 alpha-3 → 大洲（ISO-2 缺失时的补充，仅覆盖主要国家）
var byISO3 = map[string]Tag{
	"AFG": Asia, "CHN": Asia, "IND": Asia, "IDN": Asia, "JPN": Asia, "KOR": Asia,
	"THA": Asia, "VNM": Asia,
	"DEU": Europe, "FRA": Europe, "GBR": Europe, "ITA": Europe, "ESP": Europe, "RUS": Europe,
	"NGA": Africa, "ZAF": Africa, "EGY": Africa, "KEN": Africa,
	"USA": NorthAmerica, "CAN": NorthAmerica, "MEX": NorthAmerica,
	"BRA": SouthAmerica, "ARG": SouthAmerica, "CHL": SouthAmerica,
	"AUS": Oceania, "NZL": Oceania,
}

type nameEntry struct {
	name string
	tag  Tag
}

// 国家名 → 大洲；包含匹配按此顺序进行
var nameTable = []nameEntry{
	{"Afghanistan", Asia},
	{"Armenia", Asia},
	{"Azerbaijan", Asia},
	{"Bahrain", Asia},
	{"Bangladesh", Asia},
	{"Bhutan", Asia},
	{"Brunei", Asia},
	{"Cambodia", Asia},
	{"China", Asia},
	{"Georgia", Asia},
	{"India", Asia},
	{"Indonesia", Asia},
	{"Iran", Asia},
	{"Iraq", Asia},
	{"Israel", Asia},
	{"Japan", Asia},
	{"Jordan", Asia},
	{"Kazakhstan", Asia},
	{"Kuwait", Asia},
	{"Kyrgyzstan", Asia},
	{"Laos", Asia},
	{"Lebanon", Asia},
	{"Malaysia", Asia},
	{"Maldives", Asia},
	{"Mongolia", Asia},
	{"Myanmar", Asia},
	{"Nepal", Asia},
	{"North Korea", Asia},
	{"Oman", Asia},
	{"Pakistan", Asia},
	{"Palestine", Asia},
	{"Philippines", Asia},
	{"Qatar", Asia},
	{"Saudi Arabia", Asia},
	{"Singapore", Asia},
	{"South Korea", Asia},
	{"Sri Lanka", Asia},
	{"Syria", Asia},
	{"Taiwan", Asia},
	{"Tajikistan", Asia},
	{"Thailand", Asia},
	{"Timor-Leste", Asia},
	{"Turkey", Asia},
	{"Turkmenistan", Asia},
	{"United Arab Emirates", Asia},
	{"Uzbekistan", Asia},
	{"Vietnam", Asia},
	{"Yemen", Asia},
	{"Albania", Europe},
	{"Andorra", Europe},
	{"Austria", Europe},
	{"Belarus", Europe},
	{"Belgium", Europe},
	{"Bosnia and Herzegovina", Europe},
	{"Bulgaria", Europe},
	{"Croatia", Europe},
	{"Cyprus", Europe},
	{"Czech Republic", Europe},
	{"Denmark", Europe},
	{"Estonia", Europe},
	{"Finland", Europe},
	{"France", Europe},
	{"Germany", Europe},
	{"Greece", Europe},
	{"Hungary", Europe},
	{"Iceland", Europe},
	{"Ireland", Europe},
	{"Italy", Europe},
	{"Latvia", Europe},
	{"Liechtenstein", Europe},
	{"Lithuania", Europe},
	{"Luxembourg", Europe},
	{"Malta", Europe},
	{"Moldova", Europe},
	{"Monaco", Europe},
	{"Montenegro", Europe},
	{"Netherlands", Europe},
	{"North Macedonia", Europe},
	{"Norway", Europe},
	{"Poland", Europe},
	{"Portugal", Europe},
	{"Romania", Europe},
	{"Russia", Europe},
	{"San Marino", Europe},
	{"Serbia", Europe},
	{"Slovakia", Europe},
	{"Slovenia", Europe},
	{"Spain", Europe},
	{"Sweden", Europe},
	{"Switzerland", Europe},
	{"Ukraine", Europe},
	{"United Kingdom", Europe},
	{"Vatican City", Europe},
	{"Algeria", Africa},
	{"Angola", Africa},
	{"Benin", Africa},
	{"Botswana", Africa},
	{"Burkina Faso", Africa},
	{"Burundi", Africa},
	{"Cape Verde", Africa},
	{"Cameroon", Africa},
	{"Central African Republic", Africa},
	{"Chad", Africa},
	{"Comoros", Africa},
	{"Congo", Africa},
	{"Democratic Republic of the Congo", Africa},
	{"Ivory Coast", Africa},
	{"Djibouti", Africa},
	{"Egypt", Africa},
	{"Equatorial Guinea", Africa},
	{"Eritrea", Africa},
	{"Eswatini", Africa},
	{"Ethiopia", Africa},
	{"Gabon", Africa},
	{"Gambia", Africa},
	{"Ghana", Africa},
	{"Guinea", Africa},
	{"Guinea-Bissau", Africa},
	{"Kenya", Africa},
	{"Lesotho", Africa},
	{"Liberia", Africa},
	{"Libya", Africa},
	{"Madagascar", Africa},
	{"Malawi", Africa},
	{"Mali", Africa},
	{"Mauritania", Africa},
	{"Mauritius", Africa},
	{"Morocco", Africa},
	{"Mozambique", Africa},
	{"Namibia", Africa},
	{"Niger", Africa},
	{"Nigeria", Africa},
	{"Rwanda", Africa},
	{"São Tomé and Príncipe", Africa},
	{"Senegal", Africa},
	{"Seychelles", Africa},
	{"Sierra Leone", Africa},
	{"Somalia", Africa},
	{"South Africa", Africa},
	{"South Sudan", Africa},
	{"Sudan", Africa},
	{"Tanzania", Africa},
	{"Togo", Africa},
	{"Tunisia", Africa},
	{"Uganda", Africa},
	{"Zambia", Africa},
	{"Zimbabwe", Africa},
	{"Canada", NorthAmerica},
	{"Mexico", NorthAmerica},
	{"United States of America", NorthAmerica},
	{"Belize", NorthAmerica},
	{"Costa Rica", NorthAmerica},
	{"El Salvador", NorthAmerica},
	{"Guatemala", NorthAmerica},
	{"Honduras", NorthAmerica},
	{"Nicaragua", NorthAmerica},
	{"Panama", NorthAmerica},
	{"Cuba", NorthAmerica},
	{"Dominican Republic", NorthAmerica},
	{"Haiti", NorthAmerica},
	{"Jamaica", NorthAmerica},
	{"Bahamas", NorthAmerica},
	{"Barbados", NorthAmerica},
	{"Grenada", NorthAmerica},
	{"Trinidad and Tobago", NorthAmerica},
	{"Argentina", SouthAmerica},
	{"Bolivia", SouthAmerica},
	{"Brazil", SouthAmerica},
	{"Chile", SouthAmerica},
	{"Colombia", SouthAmerica},
	{"Ecuador", SouthAmerica},
	{"Guyana", SouthAmerica},
	{"Paraguay", SouthAmerica},
	{"Peru", SouthAmerica},
	{"Suriname", SouthAmerica},
	{"Uruguay", SouthAmerica},
	{"Venezuela", SouthAmerica},
	{"Australia", Oceania},
	{"New Zealand", Oceania},
	{"Fiji", Oceania},
	{"Papua New Guinea", Oceania},
	{"Solomon Islands", Oceania},
	{"Vanuatu", Oceania},
	{"New Caledonia", Oceania},
	{"French Polynesia", Oceania},
	{"Samoa", Oceania},
	{"Tonga", Oceania},
	{"Kiribati", Oceania},
	{"Micronesia", Oceania},
	{"Marshall Islands", Oceania},
	{"Nauru", Oceania},
	{"Palau", Oceania},
	{"Tuvalu", Oceania},
	{"American Samoa", Oceania},
	{"Cook Islands", Oceania},
	{"Guam", Oceania},
	{"Niue", Oceania},
	{"Northern Mariana Islands", Oceania},
	{"Pitcairn Islands", Oceania},
	{"Tokelau", Oceania},
	{"Wallis and Futuna", Oceania},
}

var byName = func() map[string]Tag {
	m := make(map[string]Tag, len(nameTable))
	for _, e := range nameTable {
		m[e.name] = e.tag
	}
	return m
}()
