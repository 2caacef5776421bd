package conversation

const (
	// WelcomeID is the sentinel ID of the greeting message. Messages with this
	// ID never reach the generation API.
	WelcomeID = "welcome"

	WelcomeText = "Hello! I'm SchoolAssist, your AI learning companion. I'm here to help with your studies, homework, and answer any academic questions. What would you like to learn today?"

	// ApologyText replaces the assistant turn when generation fails.
	ApologyText = "I'm sorry, I encountered an error processing your request. Please check your API key configuration or try again later."

	// NoReplyText is sent back by the chat proxy when the model answers
	// without any text.
	NoReplyText = "Sorry, I couldn't generate a response."

	SystemPrompt = "You are SchoolAssist, an educational AI assistant focused on helping students. When providing step-by-step instructions or explanations, place each step on a separate line. Format numbered steps as '1. Step one', '2. Step two', etc. For multi-part answers, use headers with # or ## for main sections. Use line breaks between sections. Use bold formatting with ** for important points. For math problems, explain each step clearly on a new line."
)
