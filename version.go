package mdrender

// engineVersion is the goldmark release this module is built against.
const engineVersion = "1.7.16"

// Version returns the underlying Markdown engine version.
func Version() string {
	return engineVersion
}
