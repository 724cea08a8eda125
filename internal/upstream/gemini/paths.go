package gemini

// API path constants for the Generative Language API.
// These constants define the contract with the upstream endpoints.

const (
	// APIVersion is the REST surface the service targets.
	APIVersion = "v1beta"

	// ActionGenerate is the non-streaming generation action.
	ActionGenerate = "generateContent"

	// ActionStreamGenerate is the streaming generation action.
	ActionStreamGenerate = "streamGenerateContent"
)

// BuildModelActionPath constructs the path for a model action.
// Example: BuildModelActionPath("gemini-2.0-flash-exp", ActionStreamGenerate)
// -> "/v1beta/models/gemini-2.0-flash-exp:streamGenerateContent"
func BuildModelActionPath(model, action string) string {
	return "/" + APIVersion + "/models/" + model + ":" + action
}
