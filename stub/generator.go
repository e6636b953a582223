package stub

// Generator defines the interface for target-language stub emitters.
// One target is selected per run.
type Generator interface {
	// GenerateFile serializes the model, prepending prelude verbatim.
	// classes must already be in dependency order.
	GenerateFile(model *Model, prelude string) string

	// FileExtension returns the file extension for this language (e.g. "pyi")
	FileExtension() string

	// Language returns the language name (e.g. "python")
	Language() string
}
