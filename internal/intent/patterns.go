package intent

// pattern is one weighted keyword or phrase for an intent. Multi-word
// phrases carry more weight than single keywords.
type pattern struct {
	text   string
	weight int
}

// minScore is the classification floor: below it the matcher returns Unknown.
const minScore = 2

// Static pattern table over the standard (post-normalization) vocabulary,
// with English and Russian variants for mixed-language queries.
var patternTable = map[Intent][]pattern{
	Irrigation: {
		{"suvarma", 2}, {"suvarmaq", 2}, {"su verim", 3}, {"nə vaxt suvarım", 4},
		{"irrigation", 2}, {"water my field", 3}, {"полив", 2}, {"quraqlıq", 2},
	},
	Fertilization: {
		{"gübrə", 2}, {"gübrələmə", 2}, {"azot", 2}, {"fosfor", 2}, {"kalium", 2},
		{"npk", 2}, {"fertilizer", 2}, {"удобрение", 2}, {"gübrə norması", 4},
	},
	PestControl: {
		{"zərərverici", 2}, {"pestisid", 2}, {"pestisid tətbiqi", 4}, {"mənənə", 2},
		{"xəstəlik", 2}, {"pest", 2}, {"aphid", 2}, {"вредитель", 2}, {"fungisid", 2},
	},
	Harvest: {
		{"biçin", 2}, {"məhsul yığımı", 4}, {"yığım vaxtı", 3}, {"harvest", 2},
		{"урожай", 2}, {"nə vaxt yığım", 4},
	},
	Livestock: {
		{"iribuynuzlu heyvan", 4}, {"heyvandarlıq", 2}, {"yem bitkisi", 3},
		{"inək", 2}, {"qoyun", 2}, {"livestock", 2}, {"скот", 2},
	},
	Soil: {
		{"torpaq", 2}, {"şoran torpaq", 4}, {"torpaq hazırlığı", 4}, {"ph", 2},
		{"turşuluq", 2}, {"soil", 2}, {"почва", 2},
	},
	Subsidy: {
		{"subsidiya", 3}, {"dövlət dəstəyi", 4}, {"ektis", 2}, {"subsidy", 3},
		{"субсидия", 3}, {"kredit", 2},
	},
	Weather: {
		{"hava proqnozu", 4}, {"yağış gözlənilir", 4}, {"yağış", 2}, {"şaxta", 2},
		{"weather", 2}, {"дождь", 2},
	},
}
