package mentor

// Messages used when a provider reply cannot be turned into a response.
const (
	ChatUnavailableMessage = "I'm having trouble processing your request right now. Could you try asking me again? " +
		"If this problem persists, you might want to try switching to a different AI model."
	ChatUnparseableMessage = "I had trouble processing the response. Could you try again with a different question?"
	ChatEmptyMessage       = "I received an unexpected response structure. Please try again."
)

func ChatFallback(message string) ChatbotResponse {
	return ChatbotResponse{Message: message}
}

// FeedbackUnavailable is returned by the OpenAI adapter when a review cannot be produced.
func FeedbackUnavailable() CodeFeedback {
	return CodeFeedback{
		Feedback:      "Unable to analyze your code at this moment. Please try again later.",
		Suggestions:   []string{"Check for syntax errors in your code."},
		BestPractices: []string{"Ensure your code follows standard conventions."},
	}
}

// FeedbackUnparseable is returned when a free-text provider reply holds no usable JSON.
func FeedbackUnparseable() CodeFeedback {
	return CodeFeedback{
		Feedback:      "I couldn't properly analyze the code due to a technical issue. Please try again.",
		Suggestions:   []string{"Try breaking down your code into smaller functions"},
		BestPractices: []string{"Add comments to your code to explain complex logic"},
	}
}

// Defaults for fields missing from a reply that failed schema validation.
const (
	PartialFeedbackMessage      = "I analyzed your code but couldn't format the response properly."
	PartialSuggestionDefault    = "Review your code for potential improvements"
	PartialBestPracticesDefault = "Follow language-specific best practices"
)
