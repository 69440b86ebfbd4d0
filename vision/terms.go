package vision

// Term tables matched against the combined label + object + text blob
// returned by the image-analysis service. Static configuration data.
var (
	visionAnimalTerms = []string{
		"animal", "wildlife", "elephant", "tiger", "leopard", "rhinoceros",
		"pangolin", "bear", "reptile", "snake", "turtle", "bird", "primate",
		"big cat",
	}
	visionAnimalPartTerms = []string{
		"ivory", "tusk", "horn", "bone", "skin", "fur", "feather", "shell",
		"skull", "taxidermy",
	}
	visionProductTerms = []string{
		"carving", "jewelry", "ornament", "powder", "medicine", "trophy",
		"antique",
	}
	visionRareMaterialTerms = []string{
		"rhino horn", "elephant ivory", "tortoiseshell", "tortoise shell",
		"pangolin scale", "bear bile", "tiger bone", "red coral",
	}
	visionHumanPresenceTerms = []string{
		"person", "woman", "girl", "face", "bedroom", "hotel room",
		"massage", "lingerie",
	}
	visionExclusionTerms = []string{"toy", "plush", "cartoon", "plastic"}
	visionSafeLabels     = []string{"toy", "plush", "cartoon", "drawing", "plastic"}
	visionSuspiciousText = []string{
		"ivory", "horn", "traditional", "medicine", "massage", "escort",
		"private", "discrete", "cash only",
	}
)
