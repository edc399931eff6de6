package config

const (
	// MaxIssueTitleLength caps issue and workspace titles. Limited to
	// 255 to fit in VARCHAR(255) and keep titles short and descriptive.
	MaxIssueTitleLength = 255

	// MaxSlugLength caps issue slugs.
	MaxSlugLength = 100

	// MaxContextChars is the character budget for packed LLM grounding
	// context. Entries are dropped from the end until the packed JSON
	// fits this budget.
	MaxContextChars = 12000

	// MaxProtocolChars is the per-entry protocol truncation applied
	// during context packing.
	MaxProtocolChars = 280

	// MaxPackedSignals is how many signals each packed entry keeps.
	MaxPackedSignals = 3

	// MaxUploadBytes caps resource file uploads (10MB).
	MaxUploadBytes = 10 << 20

	// MaxSearchSuggestions caps name suggestions per query.
	MaxSearchSuggestions = 10

	// MinSuggestQueryLength is the minimum query length before name
	// suggestions are computed.
	MinSuggestQueryLength = 2
)
