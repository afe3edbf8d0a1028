package semindex

// Entry is one indexed chunk: its text, arbitrary metadata (source path,
// chunk offsets), and its embedding vector.
type Entry struct {
	PageContent string         `json:"pageContent"`
	Metadata    map[string]any `json:"metadata"`
	Vector      []float32      `json:"vector"`
}

// knownTextExtensions is the set of file extensions walked into the index;
// anything else is skipped as non-text.
var knownTextExtensions = map[string]bool{
	".go": true, ".md": true, ".txt": true, ".json": true, ".yaml": true,
	".yml": true, ".py": true, ".js": true, ".ts": true, ".java": true,
	".rs": true, ".c": true, ".h": true, ".cpp": true, ".sh": true,
	".toml": true, ".sql": true,
}
