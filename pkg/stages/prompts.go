package stages

// maxPromptChars bounds the transcript text sent to the reasoning provider
// so long videos stay inside the model's token limit.
const maxPromptChars = 5000

const sentimentSystemPrompt = `You are an expert sentiment and tone analyst for audiovisual content.
Your task is to analyze texts and determine:
1. The overall sentiment (positive, negative, or neutral)
2. A numerical sentiment score (0.0 = very negative, 0.5 = neutral, 1.0 = very positive)
3. The predominant tone of the speaker (e.g., formal, informal, technical, sarcastic, motivational, educational)`

const sentimentUserPrompt = `Analyze the following text extracted from a video:
%s`

const structuringSystemPrompt = `You are an expert in summarizing content and extracting key ideas.
Your task is to identify the 3 most important points from a text.
Rules:
- YOU CANNOT invent information or add details that are not present in the text; if the text is too short, extract what is possible
- If the text holds fewer than 3 points worth of information, extract as many as possible and fill the rest with "N/A"
- Exactly 3 points
- Each point must be clear, concise, and self-contained
- Prioritize key information, insights, or main conclusions
- Write in complete sentences`

const structuringUserPrompt = `Extract the 3 most important points from the following text:
%s`

// Output schemas the reasoning provider must conform to. The provider
// validates its response against these before the stage trusts it.
var sentimentSchema = []byte(`{
	"type": "object",
	"properties": {
		"sentiment": {
			"type": "string",
			"enum": ["positive", "negative", "neutral"],
			"description": "General sentiment of the content"
		},
		"sentiment_score": {
			"type": "number",
			"minimum": 0,
			"maximum": 1,
			"description": "Sentiment score from 0.0 (very negative) to 1.0 (very positive)"
		},
		"tone": {
			"type": "string",
			"description": "Speaker's predominant tone"
		}
	},
	"required": ["sentiment", "sentiment_score", "tone"],
	"additionalProperties": false
}`)

var keyPointsSchema = []byte(`{
	"type": "object",
	"properties": {
		"key_points": {
			"type": "array",
			"items": {"type": "string"},
			"minItems": 3,
			"maxItems": 3,
			"description": "Exactly 3 key points, each a complete sentence"
		}
	},
	"required": ["key_points"],
	"additionalProperties": false
}`)
