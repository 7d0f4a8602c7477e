package cleaner

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule names, in default cascade order.
const (
	RuleTooShort          = "too_short"
	RuleMostlyPunctuation = "mostly_punctuation"
	RuleAdvertisement     = "advertisement"
	RuleUIElement         = "ui_element"
	RuleNavigation        = "navigation"
	RuleBoilerplate       = "boilerplate"
	RuleSocialMedia       = "social_media"
	RuleTechnical         = "technical"
	RuleBareToken         = "bare_token"
	RuleLowWordDensity    = "low_word_density"
)

const (
	minLineChars     = 10
	minWordChars     = 5
	minWordCharRatio = 0.3
)

// FuncRule adapts a predicate into a Rule.
type FuncRule struct {
	RuleName     string
	RulePriority int
	Predicate    func(line string) bool
}

func (r FuncRule) Name() string             { return r.RuleName }
func (r FuncRule) Priority() int            { return r.RulePriority }
func (r FuncRule) Matches(line string) bool { return r.Predicate(line) }

// PatternRule matches when any of its expressions is found in the line.
type PatternRule struct {
	RuleName     string
	RulePriority int
	Patterns     []*regexp.Regexp
}

// NewPatternRule compiles exprs. It panics on an invalid expression, so it is
// meant for package-level lexicons.
func NewPatternRule(name string, priority int, exprs ...string) PatternRule {
	patterns := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		patterns[i] = regexp.MustCompile(expr)
	}
	return PatternRule{RuleName: name, RulePriority: priority, Patterns: patterns}
}

func (r PatternRule) Name() string  { return r.RuleName }
func (r PatternRule) Priority() int { return r.RulePriority }

func (r PatternRule) Matches(line string) bool {
	for _, p := range r.Patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// WordRule matches when any of its terms appears as a whole word. Word runes
// are Unicode letters, numbers and underscore, so "posté" does not contain the
// word "post". A term edge that is itself a symbol, such as "©" or "c#", needs
// a word/non-word transition there like any other term edge.
type WordRule struct {
	RuleName     string
	RulePriority int
	Terms        []*regexp.Regexp
}

func (r WordRule) Name() string  { return r.RuleName }
func (r WordRule) Priority() int { return r.RulePriority }

func (r WordRule) Matches(line string) bool {
	for _, term := range r.Terms {
		if containsWord(line, term) {
			return true
		}
	}
	return false
}

// containsWord reports whether term matches line at some start offset with a
// word boundary on both edges of the match.
func containsWord(line string, term *regexp.Regexp) bool {
	for offset := 0; offset < len(line); {
		loc := term.FindStringIndex(line[offset:])
		if loc == nil {
			return false
		}
		start, end := offset+loc[0], offset+loc[1]
		if end > start && atBoundary(line, start) && atBoundary(line, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(line[start:])
		offset = start + max(size, 1)
	}
	return false
}

func atBoundary(line string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(line[:i])
		before = isWordRune(r)
	}
	if i < len(line) {
		r, _ := utf8.DecodeRuneInString(line[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}

// lexicon builds a case-insensitive WordRule with one term per alternative.
func lexicon(name string, priority int, alternations ...string) WordRule {
	var terms []*regexp.Regexp
	for _, alt := range alternations {
		for _, term := range strings.Split(alt, "|") {
			terms = append(terms, regexp.MustCompile(`(?i)`+term))
		}
	}
	return WordRule{RuleName: name, RulePriority: priority, Terms: terms}
}

// anchored wraps each alternation so that it must match the whole line.
func anchored(name string, priority int, alternations ...string) PatternRule {
	exprs := make([]string, len(alternations))
	for i, alt := range alternations {
		exprs[i] = `(?i)^(` + alt + `)$`
	}
	return NewPatternRule(name, priority, exprs...)
}

var (
	advertisementRule = lexicon(RuleAdvertisement, 30,
		`advertisement|ad|sponsored|promoted|partner content|brand content|paid content|native ad`,
		`subscribe|join|newsletter|email updates|daily digest|weekly digest|get premium|upgrade to|try premium`,
		`limited time|special offer|deal|discount|sale|buy now|shop now|order now|click here|learn more`,
		`affiliate|commission|earn money|make money|monetize|revenue`,
		`click to|tap to|swipe to|download|install|get started|sign up now`,
		`free trial|premium access|unlock|exclusive|bonus|gift`,
		`popup|modal|overlay|banner|promo|offer|deal`,
		`act now|don't miss|hurry|expires|ends soon|while supplies last`,
		`guaranteed|risk-free|money back|satisfaction guaranteed`,
	)

	uiElementRule = lexicon(RuleUIElement, 40,
		`sign up|sign in|login|register|follow|share|like|comment|subscribe`,
		`open in app|download app|get the app|listen|watch|play|view|read more`,
		`sitemap|privacy policy|terms of service|cookie policy|contact us|help|support`,
		`about us|about|home|menu|navigation|skip to|jump to|back to top`,
		`previous|next|more|less|show more|show less|back to|return to|continue`,
		`search|filter|sort|category|tag|archive|rss|feed`,
		`facebook|twitter|instagram|linkedin|youtube|tiktok|pinterest|reddit|snapchat`,
		`tweet|retweet|pin|bookmark|save|favorite|react|emoji`,
		`share on|follow us|connect with|join us|stay connected`,
		`cookie consent|accept cookies|cookie settings|gdpr|privacy settings`,
		`writing is for everyone|medium|wordpress|blogger|tumblr|substack`,
		`recommended|trending|popular|featured|latest|breaking|news`,
	)

	navigationRule = anchored(RuleNavigation, 50,
		`home|about|contact|services|products|blog|news|support|help|faq|login|register|sign up|sign in`,
		`previous|next|back|forward|up|down|left|right|top|bottom`,
		`page \d+|page \d+ of \d+|showing \d+ of \d+|results \d+-\d+ of \d+`,
		`sort by|filter by|search|browse|explore|discover`,
		`categories|tags|topics|sections|chapters|parts`,
	)

	boilerplateRule = lexicon(RuleBoilerplate, 60,
		`copyright|all rights reserved|©|®|™`,
		`privacy policy|terms of service|terms and conditions|disclaimer`,
		`cookie policy|gdpr|data protection|legal notice`,
		`accessibility|accessibility statement|wcag|ada`,
		`sitemap|rss|atom|feed|syndication`,
		`last updated|last modified|published|created|posted`,
		`version \d+\.\d+|v\d+\.\d+|build \d+`,
	)

	socialMediaRule = lexicon(RuleSocialMedia, 70,
		`facebook|twitter|instagram|linkedin|youtube|tiktok|pinterest|reddit|snapchat|discord|telegram`,
		`tweet|retweet|like|share|comment|follow|unfollow|subscribe|unsubscribe`,
		`hashtag|mention|@|#|dm|direct message|story|post|reel|video`,
		`profile|bio|handle|username|display name|avatar|cover photo`,
		`engagement|reach|impressions|views|likes|shares|comments|followers|following`,
	)

	technicalRule = lexicon(RuleTechnical, 80,
		`api|endpoint|request|response|status|code|error|exception|debug|log`,
		`database|table|query|sql|nosql|mongodb|mysql|postgresql`,
		`server|client|host|domain|subdomain|ip|address|port|protocol`,
		`html|css|javascript|js|php|python|java|c\+\+|c#|ruby|go|rust`,
		`framework|library|package|module|dependency|import|export`,
		`git|github|gitlab|bitbucket|repository|commit|branch|merge|pull request`,
		`docker|kubernetes|container|microservice|deployment|ci/cd|pipeline`,
	)

	bareTokenRule = NewPatternRule(RuleBareToken, 90,
		`^https?://\S+$`,
		`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`,
		`^\+?[1-9]\d{0,15}$`, // phone-shaped
		`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`,
		`^\d{1,2}:\d{2}(:\d{2})?(\s?[AP]M)?$`,
		`^\d+$`,
	)
)

// DefaultRules returns the ten rules of the standard cascade.
func DefaultRules() []Rule {
	return []Rule{
		FuncRule{RuleName: RuleTooShort, RulePriority: 10, Predicate: func(line string) bool {
			return utf8.RuneCountInString(line) < minLineChars
		}},
		FuncRule{RuleName: RuleMostlyPunctuation, RulePriority: 20, Predicate: func(line string) bool {
			return wordChars(line) < minWordChars
		}},
		advertisementRule,
		uiElementRule,
		navigationRule,
		boilerplateRule,
		socialMediaRule,
		technicalRule,
		bareTokenRule,
		FuncRule{RuleName: RuleLowWordDensity, RulePriority: 100, Predicate: func(line string) bool {
			return float64(wordChars(line)) < float64(utf8.RuneCountInString(line))*minWordCharRatio
		}},
	}
}

// wordChars counts the characters left after stripping punctuation and symbols:
// letters, digits, underscore and whitespace.
func wordChars(line string) int {
	n := 0
	for _, r := range line {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
