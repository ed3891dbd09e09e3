package config

// DefaultSeeds are the built-in starting URLs, used when the config file
// does not provide its own seed list. They cover tech-for-good funders,
// corporate grant programs, hackathon sponsors, social-impact funds,
// government portals, and foundation directories.
var DefaultSeeds = []string{
	// Tech-for-good specific
	"https://www.techsoup.org/community/grant-opportunities",
	"https://www.ffwd.org/tech-nonprofit-funding-opportunities/",
	"https://www.nten.org/funding/",
	"https://digitalimpactalliance.org/funding-opportunities/",
	"https://www.nethope.org/what-we-do/grants-and-funding-opportunities/",

	// Corporate technology grant programs
	"https://www.google.org/impactchallenge/",
	"https://nonprofit.microsoft.com/en-us/grants",
	"https://www.okta.com/okta-for-good/",
	"https://www.twilio.org/impact-fund/",
	"https://www.salesforce.org/grants/",
	"https://aws.amazon.com/government-education/nonprofits/",

	// Hackathon and innovation funding
	"https://mlh.io/grants",
	"https://devpost.com/hackathons",
	"https://www.knightfoundation.org/grants",
	"https://solve.mit.edu/challenges",
	"https://www.globalinnovation.fund/apply/",

	// Social impact funders
	"https://skoll.org/about/apply/",
	"https://www.drkfoundation.org/apply-for-funding/",
	"https://mulagofoundation.org/how-we-fund",
	"https://echoinggreen.org/fellowship/",

	// Government and public sector
	"https://beta.nsf.gov/funding/opportunities",
	"https://www.challenge.gov/",
	"https://www.grants.gov/web/grants/search-grants.html",

	// Foundation directories
	"https://candid.org/find-funding",
	"https://grantspace.org/resources/knowledge-base/finding-grants/",
}

// DefaultQueries feed the search-based seed discovery when the config file
// does not provide its own.
var DefaultQueries = []string{
	"technology for social good grants",
	"hackathon funding nonprofit application",
	"tech volunteer grants nonprofit",
	"tech for good funding opportunity",
	"digital nonprofit grants application",
	"grant application nonprofit technology",
	"grant application civic tech",
	"grant application digital inclusion",
	"nonprofit technology grant application",
	"coding for good funding opportunity",
	"open source social impact funding",
	"hackathon social good grant",
}

// DefaultFeeds are the built-in RSS/Atom sources for announced funding
// opportunities.
var DefaultFeeds = []string{
	"https://www.grants.gov/rss/GG_NewOppByCategory.xml",
	"https://philanthropynewsdigest.org/feeds/rfps",
	"https://www.insidephilanthropy.com/home/feed",
	"https://www.grantcraft.org/feed/",
	"https://ssir.org/rss/",
}
