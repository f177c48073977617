package driven

// PromptStore provides access to prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error unless a default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// PromptMemory frames retrieved passages injected into a conversation turn.
// The template expects one %s placeholder for the passages.
const PromptMemory = "memory"

// DefaultMemoryPrompt is the built-in PromptMemory template.
const DefaultMemoryPrompt = "Relevant information from your memory:\n\n%s\n\n" +
	"Use this information naturally in your response when relevant, " +
	"but don't explicitly mention that you're referencing your memory."

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses its built-in defaults.
	SetPromptStore(store PromptStore)
}
