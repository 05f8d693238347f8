package transcode

import (
	"context"
	"fmt"
	"log/slog"

	"subenc/internal/charset"
	"subenc/internal/logging"
	"subenc/internal/manifest"
)

// Engine decides and performs the rewrite for single manifest entries.
type Engine struct {
	root   string
	fs     FileSystem
	logger *slog.Logger
}

// NewEngine constructs an Engine. Relative entry paths resolve against root.
func NewEngine(root string, fs FileSystem, logger *slog.Logger) *Engine {
	if fs == nil {
		fs = OSFileSystem(true)
	}
	return &Engine{root: root, fs: fs, logger: logging.NewComponentLogger(logger, "transcode")}
}

// Transcode handles one entry. It performs at most one read and one write.
// Results carry the entry path as written in the manifest.
func (e *Engine) Transcode(ctx context.Context, entry manifest.Entry) Result {
	if charset.IsTarget(entry.Encoding) {
		return Skipped{Path: entry.Path}
	}

	path := manifest.Resolve(e.root, entry.Path)
	data, err := e.fs.ReadFile(path)
	if err != nil {
		return Failed{Path: entry.Path, Err: fmt.Errorf("read file: %w", err)}
	}

	text, replaced, err := charset.Decode(entry.Encoding, data)
	if err != nil {
		return Failed{Path: entry.Path, Err: err}
	}
	if replaced {
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "decoded with replacement characters", "decode_replacement",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldEncoding, entry.Encoding),
			logging.String(logging.FieldImpact, "undecodable bytes were replaced with U+FFFD"),
			logging.String(logging.FieldErrorHint, "correct the label in the manifest and restore the file if the text looks wrong"),
		)
	}

	if err := e.fs.WriteFile(path, text); err != nil {
		return Failed{Path: entry.Path, Err: fmt.Errorf("write file: %w", err)}
	}
	return Transcoded{
		Path:     entry.Path,
		From:     entry.Encoding,
		BytesIn:  len(data),
		BytesOut: len(text),
		Replaced: replaced,
	}
}
