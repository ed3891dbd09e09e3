package analyzer

// defaultMissionKeywords describe the kind of organizations and causes
// the finder serves. Pages matching more of these score higher.
var defaultMissionKeywords = []string{
	"nonprofit",
	"non-profit",
	"charity",
	"charitable",
	"social good",
	"social impact",
	"community",
	"tech for good",
	"technology for good",
	"civic technology",
	"digital inclusion",
	"underserved",
	"humanitarian",
	"volunteer",
	"ngo",
	"501(c)(3)",
}

// defaultGrantSignals are words strongly associated with an actual
// funding opportunity rather than general grant writing advice.
var defaultGrantSignals = []string{
	"grant",
	"funding",
	"funding opportunity",
	"apply",
	"application",
	"deadline",
	"award",
	"awards",
	"rfp",
	"request for proposals",
	"letter of intent",
	"eligibility",
	"eligible",
	"fellowship",
	"prize",
	"sponsorship",
	"philanthropy",
	"foundation",
}

// techSkillKeywords identify the technical focus areas a grant may fund.
var techSkillKeywords = []string{
	"software development",
	"web development",
	"mobile app",
	"data science",
	"data analytics",
	"artificial intelligence",
	"machine learning",
	"cloud computing",
	"cybersecurity",
	"open source",
	"digital transformation",
	"technology capacity",
	"api",
	"automation",
}

// sectorKeywords maps a nonprofit sector label to the phrases that
// indicate it. Labels are lowercase; report writers title-case them.
var sectorKeywords = map[string][]string{
	"education":        {"education", "school", "student", "literacy", "stem"},
	"health":           {"health", "healthcare", "medical", "mental health", "wellness"},
	"environment":      {"environment", "climate", "sustainability", "conservation"},
	"housing":          {"housing", "homeless", "shelter", "affordable housing"},
	"food security":    {"food bank", "food security", "hunger", "nutrition"},
	"economic justice": {"poverty", "economic opportunity", "workforce", "financial inclusion"},
	"human rights":     {"human rights", "civil rights", "equity", "justice", "refugee"},
	"arts and culture": {"arts", "culture", "museum", "creative"},
	"youth":            {"youth", "children", "mentoring", "after-school"},
	"seniors":          {"senior", "elderly", "aging"},
	"veterans":         {"veteran", "military families"},
	"disability":       {"disability", "accessibility", "assistive"},
	"animal welfare":   {"animal welfare", "animal rescue", "wildlife"},
}

// sectorOrder fixes the iteration order over sectorKeywords so matched
// sectors come out deterministic.
var sectorOrder = []string{
	"education", "health", "environment", "housing", "food security",
	"economic justice", "human rights", "arts and culture", "youth",
	"seniors", "veterans", "disability", "animal welfare",
}

// volunteerKeywords indicate the program has a volunteer component.
var volunteerKeywords = []string{
	"volunteer", "pro bono", "skills-based volunteering", "mentorship",
}

// hackathonKeywords indicate hackathon projects could qualify.
var hackathonKeywords = []string{
	"hackathon", "hack for good", "codeathon", "civic hacking", "prototype",
}

// remoteKeywords indicate remote or virtual participation.
var remoteKeywords = []string{
	"remote", "virtual", "online participation", "anywhere in the world",
}

// excludeSignals mark pages that mention grants but are not funding
// opportunities themselves: directories, consultants, and course sellers.
var excludeSignals = []string{
	"grant writing services",
	"grant writing course",
	"hire a grant writer",
	"grant writing certification",
	"find grants with our database",
}
