// Package services implements the scoring pipeline: rejection filtering,
// relevance scoring, dual-axis threat scoring and per-cycle reporting.
package services

// The term tables below are treated as static configuration data. Weights
// live next to the code that applies them; the lists themselves are plain
// data and deliberately kept apart from the scoring logic.

// rejectCategory groups terms that identify a non-wildlife item outright.
type rejectCategory struct {
	name       string
	confidence float64
	terms      []string
}

var rejectCategories = []rejectCategory{
	{"decorative art", 0.9, []string{
		"painting", "wall art", "framed print", "print of", "poster",
		"sculpture of", "figurine", "statue of", "artwork", "canvas art",
		"illustration", "drawing of", "sketch of", "wall hanging",
	}},
	{"vintage decor", 0.85, []string{
		"vintage style", "retro style", "antique finish", "reproduction",
		"decorative", "ornament", "home accent", "shabby chic",
		"mid century", "collectible plate",
	}},
	{"fake or imitation", 0.9, []string{
		"faux", "fake", "imitation", "synthetic", "artificial",
		"man made", "man-made", "simulated", "resin replica", "acrylic",
	}},
	{"toy", 0.9, []string{
		"plush", "stuffed animal", "stuffed toy", "beanie baby", "lego",
		"playmobil", "action figure", "doll", "squishmallow", "toy set",
	}},
	{"clothing", 0.85, []string{
		"t-shirt", "tshirt", "hoodie", "sweater", "sweatshirt", "leggings",
		"pajama", "onesie", "socks", "slippers", "beanie hat",
	}},
	{"media", 0.85, []string{
		"dvd", "blu-ray", "vinyl record", "book about", "paperback",
		"hardcover", "magazine", "documentary", "audiobook",
	}},
	{"digital or virtual", 0.9, []string{
		"digital download", "clipart", "svg file", "printable", "wallpaper",
		"screensaver", "nft", "ebook", "pdf download", "zoom background",
	}},
}

// rejectLanguageOrder fixes the scan order over rejectLanguages. A map
// range would randomize which language wins when several match, making
// reasons and exclusion trails differ between identical calls.
var rejectLanguageOrder = []string{
	"spanish", "portuguese", "dutch", "german", "french", "russian",
	"italian", "chinese", "vietnamese",
}

// rejectLanguages mirrors rejectCategories for the non-English text the
// monitored marketplaces carry. One flat list per language; any hit rejects.
var rejectLanguages = map[string][]string{
	"spanish": {
		"juguete", "peluche", "cuadro", "pintura de", "camiseta", "disfraz",
		"réplica", "falso", "decoración", "estatua de", "figura decorativa",
	},
	"portuguese": {
		"brinquedo", "pelúcia", "pintura de", "camiseta", "fantasia",
		"réplica", "falso", "decoração", "estátua de", "enfeite",
	},
	"dutch": {
		"speelgoed", "knuffel", "schilderij", "nep", "namaak",
		"decoratie", "beeldje", "verkleedkleding",
	},
	"german": {
		"spielzeug", "plüschtier", "gemälde", "kunstdruck", "fälschung",
		"nachbildung", "kostüm", "dekoration", "stofftier",
	},
	"french": {
		"jouet", "peluche", "peinture de", "tableau de", "imitation",
		"déguisement", "décoration", "figurine de", "reproduction de",
	},
	"russian": {
		"игрушка", "плюшевый", "картина", "постер", "подделка",
		"копия", "костюм", "декор", "статуэтка",
	},
	"italian": {
		"giocattolo", "peluche", "dipinto", "quadro di", "imitazione",
		"finto", "costume", "decorazione", "statuetta",
	},
	"chinese": {
		"玩具", "毛绒", "油画", "海报", "仿制", "假的", "装饰品", "摆件",
	},
	"vietnamese": {
		"đồ chơi", "thú nhồi bông", "tranh vẽ", "áp phích", "hàng giả",
		"đồ trang trí",
	},
}

// Wildlife term categories used by the relevance scorer. Weights are the
// per-match bonuses applied on top of the base score.
var (
	liveAnimalTerms = []string{
		"live animal", "live bird", "live reptile", "live tortoise",
		"live monkey", "live parrot", "live snake", "baby animal",
		"hand raised", "hand reared", "tame",
	}
	animalPartTerms = []string{
		"ivory", "horn", "tusk", "bone", "skin", "hide", "fur", "feather",
		"claw", "tooth", "teeth", "shell", "scale", "skull", "taxidermy",
		"pelt", "mounted",
	}
	traffickingLanguageTerms = []string{
		"rare", "exotic", "endangered", "protected", "illegal", "smuggled",
		"poached", "wild caught", "wild-caught", "private collection",
		"discrete shipping", "no paperwork",
	}
	generalWildlifeTerms = []string{
		"wildlife", "wild animal", "safari", "hunting trophy", "specimen",
		"carving", "tribal", "shamanic", "curio",
	}

	// criticalSpecies is the fixed most-trafficked species list. Shared by
	// the relevance scorer (+0.18 each) and the threat scorer (+45 each).
	criticalSpecies = []string{
		"elephant", "rhino", "rhinoceros", "tiger", "pangolin", "leopard",
		"snow leopard", "bear", "lion", "cheetah", "jaguar", "gorilla",
		"chimpanzee", "orangutan", "sea turtle", "tortoise", "shark fin",
		"sturgeon", "macaw", "falcon", "vaquita",
	}

	// highPrioritySpecies get a lower weight in the threat scorer.
	highPrioritySpecies = []string{
		"python", "cobra", "monitor lizard", "iguana", "chameleon",
		"hawksbill", "hornbill", "otter", "sloth", "lemur", "saiga",
		"seahorse", "coral", "giant clam", "cockatoo", "grey parrot",
	}

	// scientificNames are Latin binomials that almost never appear in
	// innocent listings.
	scientificNames = []string{
		"panthera tigris", "panthera pardus", "panthera leo",
		"panthera uncia", "loxodonta africana", "elephas maximus",
		"diceros bicornis", "ceratotherium simum", "manis javanica",
		"manis pentadactyla", "gorilla gorilla", "pongo pygmaeus",
		"python reticulatus", "chelonia mydas", "eretmochelys imbricata",
		"falco peregrinus",
	}
)

// highRiskRegions trigger the geographic bonus in the relevance scorer.
var highRiskRegions = []string{
	"africa", "kenya", "tanzania", "nigeria", "south africa", "zimbabwe",
	"botswana", "cameroon", "congo", "uganda", "ethiopia", "mozambique",
	"zambia", "namibia", "madagascar",
	"southeast asia", "vietnam", "thailand", "laos", "cambodia", "myanmar",
	"indonesia", "malaysia", "philippines", "china", "hong kong",
	"south america", "brazil", "peru", "colombia", "ecuador", "bolivia",
	"venezuela", "guyana",
}

// suspiciousSaleTerms each apply a small penalty in the relevance scorer —
// urgency and secrecy phrasing correlates with scams as much as trafficking.
var suspiciousSaleTerms = []string{
	"quick sale", "fast sale", "cash only", "no questions", "discrete",
	"discreet", "must go", "urgent", "serious buyers only", "no paperwork",
	"off the books", "pickup only tonight",
}

// Tier-mapping indicator lists for the relevance scorer.
var (
	criticalIndicatorTerms = []string{
		"live", "ivory", "rhino horn", "tiger bone", "pangolin scale",
		"bear bile", "elephant tusk", "endangered", "protected species",
	}
	highIndicatorTerms = []string{
		"traditional medicine", "authentic", "rare specimen", "wild caught",
		"illegal", "black market", "no permit",
	}
)

// platformQualityNudge is the relevance scorer's small per-platform
// adjustment: eBay listings historically convert to confirmed detections at
// a higher rate; Craigslist produces more noise.
var platformQualityNudge = map[string]float64{
	"ebay":       0.03,
	"craigslist": -0.02,
}

// platformRiskMultiplier scales the threat scorer's final score. Anonymous
// cash marketplaces run hotter than platforms with buyer protection.
var platformRiskMultiplier = map[string]float64{
	"craigslist":   1.2,
	"facebook":     1.15,
	"olx":          1.15,
	"avito":        1.15,
	"gumtree":      1.1,
	"marktplaats":  1.1,
	"mercadolibre": 1.1,
	"aliexpress":   1.05,
	"taobao":       1.05,
	"ebay":         1.0,
}

// exclusionCategory groups false-positive patterns for the threat scorer,
// each with a negative weight.
type exclusionCategory struct {
	name   string
	weight int
	terms  []string
}

var exclusionCategories = []exclusionCategory{
	{"color or pattern", -15, []string{
		"ivory colored", "ivory color", "ivory white", "tiger print",
		"tiger stripe", "tiger striped", "leopard print", "leopard spot",
		"zebra print", "animal print", "snake print", "snakeskin pattern",
		"bone china", "bone white", "bone colored",
	}},
	{"brand name", -25, []string{
		"tiger balm", "jaguar xf", "jaguar f-type", "ford mustang",
		"puma shoes", "reebok", "panda express", "tiger beer",
		"elephant gin", "lacoste",
	}},
	{"metaphorical usage", -20, []string{
		"paper tiger", "tiger mom", "cash cow", "bear market",
		"bull market", "eager beaver", "night owl", "lone wolf",
		"early bird", "elephant in the room",
	}},
	{"legitimate service", -35, []string{
		"licensed massage therapist", "certified massage", "physical therapy",
		"physiotherapy", "veterinary clinic", "animal hospital",
		"wildlife rehabilitation", "animal sanctuary", "zoo exhibit",
		"museum exhibit",
	}},
	{"replica or toy", -15, []string{
		"stuffed", "plush", "toy", "figurine", "statue", "poster",
		"costume", "halloween",
	}},
}

// unambiguousExclusions are phrases that by themselves settle the question.
var unambiguousExclusions = []string{
	"ivory soap", "ivory dish soap", "tiger lily", "tiger shrimp",
	"elephant ear plant", "bear claw pastry", "turtleneck", "turtle neck",
	"dragon fruit", "fox news", "bird bath", "catfish",
}

// lowPriceToyTerms combined with a price under 20 currency units earns an
// extra exclusion penalty — real contraband is never that cheap.
var lowPriceToyTerms = []string{"toy", "replica", "costume", "plush", "figurine"}

// Wildlife trafficking language for the threat scorer: one bonus per
// category that matches, not per term.
type threatLanguageCategory struct {
	name  string
	terms []string
}

var wildlifeLanguageCategories = []threatLanguageCategory{
	{"missing documentation", []string{
		"no permit", "no papers", "no cites", "without permit",
		"no documentation", "no license needed",
	}},
	{"secrecy", []string{
		"discrete", "discreet", "private sale", "no questions asked",
		"confidential", "serious buyers only",
	}},
	{"urgency", []string{
		"quick sale", "must sell", "leaving country", "urgent sale",
		"moving sale",
	}},
	{"authenticity claim", []string{
		"genuine", "authentic", "real", "certificate of authenticity",
		"wild caught", "wild sourced", "pre-ban",
	}},
}

// Human-trafficking term categories. Age red flags carry the single highest
// weight in the system.
var (
	ageConcernTerms = []string{
		"18 years old", "19 years old", "just turned 18", "barely legal",
		"young girl", "young boy", "school girl", "schoolgirl", "teen",
		"very young", "new in town", "fresh face",
	}
	controlPatternTerms = []string{
		"no id required", "passport held", "cannot leave",
		"always available", "lives on premises", "no days off",
		"owes debt", "work off debt", "supervised at all times",
	}
	escortServiceTerms = []string{
		"escort", "outcall", "incall", "full service", "gfe",
		"companionship", "private show", "happy ending", "body rub",
		"sensual massage",
	}
	financialExploitationTerms = []string{
		"no bank account", "untraceable", "western union", "gift cards",
		"prepaid cards", "payment upfront", "debt bondage",
		"keeps the money",
	}
	codedLanguageTerms = []string{
		"full body", "stress relief", "relaxation services", "open minded",
		"no restrictions", "anything goes", "discrete encounters",
		"generous gentlemen", "roses", "donations",
	}
	suspiciousEmploymentTerms = []string{
		"no experience necessary", "housing provided", "visa assistance",
		"travel provided", "modeling opportunity", "hostess wanted",
		"dancers wanted", "immediate start", "high earnings guaranteed",
	}
	availabilityTerms = []string{
		"24/7", "24 7", "available 24", "day or night", "any time day",
	}
	cashOnlyTerms = []string{
		"cash only", "cash app only", "cash in hand",
	}
)
