package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Paranoid-AF/codelet"
	"github.com/Paranoid-AF/codelet/lang"
)

// requestFlags are the cursor and editor settings shared by the one-shot
// commands.
type requestFlags struct {
	line        int
	character   int
	language    string
	tabSize     int
	spaces      bool
	projectRoot string
	prompt      string
	mode        string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVarP(&f.line, "line", "l", 0, "zero-based cursor line")
	fl.IntVarP(&f.character, "character", "c", 0, "zero-based cursor character")
	fl.StringVar(&f.language, "language", "", "language id (detected from the file when empty)")
	fl.IntVar(&f.tabSize, "tab-size", 4, "editor tab size")
	fl.BoolVar(&f.spaces, "spaces", true, "indent with spaces")
	fl.StringVar(&f.projectRoot, "project-root", "", "project root (discovered from the file when empty)")
	fl.StringVar(&f.prompt, "prompt", "", "extra instruction for the model")
	fl.StringVar(&f.mode, "mode", "", "completion mode: line or snippet (default from config)")
}

// request reads path ("-" for stdin) and builds the request for the cursor.
func (f *requestFlags) request(cmd *cobra.Command, path string) (*codelet.Request, error) {
	switch f.mode {
	case "", codelet.ModeLine, codelet.ModeSnippet:
	default:
		return nil, fmt.Errorf("invalid mode %q: want %s or %s", f.mode, codelet.ModeLine, codelet.ModeSnippet)
	}

	var data []byte
	var err error
	fileName := path
	if path == "-" {
		fileName = ""
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	text := string(data)

	languageID := f.language
	if languageID == "" {
		languageID = lang.Detect(fileName, text)
	}

	req := &codelet.Request{
		RequestID:   1,
		SessionID:   "cli",
		FileName:    fileName,
		LanguageID:  languageID,
		Text:        text,
		Line:        f.line,
		Character:   f.character,
		Prompt:      f.prompt,
		Mode:        f.mode,
		ProjectRoot: f.projectRoot,
		TabSize:     f.tabSize,
	}
	if cmd.Flags().Changed("spaces") {
		spaces := f.spaces
		req.InsertSpaces = &spaces
	}
	return req, nil
}
