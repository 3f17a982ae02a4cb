package scoring

// Versioned phrase and keyword tables used by the feature extractors.
// Tests pin profiles against these exact tables, so additions belong in a
// new version, not in-place edits.

// hookPhrasesV1 are openers that reliably stop the scroll when they
// appear inside the first 100 characters of a post.
var hookPhrasesV1 = []string{
	"i made a mistake",
	"i was wrong",
	"unpopular opinion",
	"here's what i learned",
	"here's how",
	"nobody talks about",
	"the truth about",
	"i quit",
	"i failed",
	"stop doing",
	"you're doing it wrong",
	"after 10 years",
	"this changed everything",
	"what if i told you",
	"let me tell you",
	"confession:",
	"hot take",
}

// storytellingPhrasesV1 signal narrative framing.
var storytellingPhrasesV1 = []string{
	"when i started",
	"a few years ago",
	"last week",
	"last month",
	"last year",
	"yesterday",
	"this morning",
	"i remember",
	"my first",
	"my journey",
	"true story",
	"it all started",
	"back then",
	"fast forward",
	"at that moment",
	"i'll never forget",
	"one day",
	"turns out",
}

// valuePhrasesV1 signal practical takeaways the reader can bookmark.
var valuePhrasesV1 = []string{
	"here are",
	"how to",
	"tips for",
	"lessons learned",
	"lessons i learned",
	"step by step",
	"framework",
	"checklist",
	"template",
	"guide to",
	"strategies",
	"mistakes to avoid",
	"what worked",
	"key takeaway",
	"pro tip",
	"cheat sheet",
}

// engagementTriggerPhrasesV1 provoke replies and reshares.
var engagementTriggerPhrasesV1 = []string{
	"what do you think",
	"agree or disagree",
	"let me know",
	"share your",
	"comment below",
	"tag someone",
	"thoughts?",
	"am i the only one",
	"who else",
	"have you ever",
	"what's your take",
	"drop a comment",
	"curious to hear",
	"would you",
	"do you agree",
}

// ctaPhrasesV1 are explicit calls to action.
var ctaPhrasesV1 = []string{
	"follow me",
	"follow for more",
	"repost this",
	"share this",
	"save this",
	"link in comments",
	"link in bio",
	"subscribe",
	"sign up",
	"join us",
	"dm me",
	"reach out",
	"check out",
	"learn more",
	"ring the bell",
}

// firstPersonOpenersV1 qualify as personal hooks when they lead the post.
var firstPersonOpenersV1 = []string{"i ", "i'", "my ", "we ", "our "}

// positiveWordsV1 and negativeWordsV1 back the lexicon sentiment score.
var positiveWordsV1 = makeWordSet([]string{
	"good", "great", "excellent", "amazing", "wonderful", "fantastic", "best", "love", "loved", "loving",
	"beautiful", "perfect", "awesome", "brilliant", "outstanding", "superb", "exceptional", "incredible",
	"proud", "grateful", "thrilled", "delighted", "happy", "glad", "pleased", "inspiring", "inspired",
	"satisfied", "terrific", "impressive", "remarkable", "positive", "advantage", "growth", "milestone",
	"benefit", "success", "successful", "win", "winning", "winner", "better", "improvement", "improved",
	"exciting", "excited", "enthusiasm", "enthusiastic", "optimistic", "hopeful", "promising", "favorable",
})

var negativeWordsV1 = makeWordSet([]string{
	"bad", "terrible", "awful", "horrible", "poor", "worst", "hate", "hated", "hating", "disgusting",
	"disappointing", "disappointed", "disappointment", "fail", "failed", "failure", "wrong", "problem",
	"problems", "issue", "issues", "error", "errors", "difficult", "difficulty", "impossible",
	"negative", "unfortunate", "sad", "unhappy", "angry", "frustrated", "frustrating", "annoying", "annoyed",
	"concern", "concerned", "worried", "worry", "fear", "afraid", "scary", "dangerous", "risk", "threat",
	"damage", "damaged", "harm", "harmful", "worse", "loss", "lost", "losing", "decline", "declined",
})

// industryKeywordsV1 maps an industry name to the vocabulary used for the
// keyword-relevance multiplier. Unknown industries fall back to a neutral
// multiplier.
var industryKeywordsV1 = map[string][]string{
	"technology": {"software", "engineering", "code", "developer", "cloud", "data", "api", "product", "startup", "tech"},
	"marketing":  {"brand", "campaign", "audience", "content", "funnel", "conversion", "seo", "growth", "engagement", "creative"},
	"finance":    {"investment", "portfolio", "market", "revenue", "capital", "equity", "valuation", "risk", "returns", "fintech"},
	"healthcare": {"patient", "clinical", "care", "health", "medical", "treatment", "wellness", "hospital", "research", "therapy"},
	"education":  {"student", "learning", "course", "teaching", "curriculum", "classroom", "training", "skills", "knowledge", "mentor"},
	"sales":      {"pipeline", "prospect", "quota", "deal", "outreach", "closing", "crm", "negotiation", "discovery", "leads"},
	"hr":         {"hiring", "talent", "culture", "recruiting", "onboarding", "retention", "benefits", "workplace", "team", "candidates"},
}

// industryMultipliersV1 is the fixed per-industry scale applied on top of
// keyword relevance.
var industryMultipliersV1 = map[string]float64{
	"technology": 1.20,
	"marketing":  1.15,
	"finance":    1.10,
	"sales":      1.05,
	"healthcare": 1.00,
	"hr":         1.00,
	"education":  0.95,
}

// genericTipsV1 backfill the suggestion list when too few rules fire.
// Order is load-bearing: tips are appended front to back.
var genericTipsV1 = []struct {
	ID          string
	Title       string
	Description string
}{
	{"tip-post-timing", "Post when your audience is online", "Tuesday to Thursday mornings consistently outperform weekends for professional content."},
	{"tip-first-hour", "Reply to early comments", "Engagement in the first hour heavily influences how far the feed distributes your post."},
	{"tip-one-idea", "Stick to one idea per post", "Posts built around a single clear takeaway are easier to react to and reshare."},
	{"tip-white-space", "Use white space generously", "Short lines and blank lines keep mobile readers moving through the post."},
}

func makeWordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
