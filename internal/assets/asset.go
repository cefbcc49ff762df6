package assets

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Asset identifies an uploaded video and the deterministic names of every
// artifact derived from it. Artifact existence on disk is the source of
// truth for stage completion; Asset only computes where each one lives.
type Asset struct {
	root string
	name string
}

// New builds an Asset for the named upload inside the asset root. The name is
// reduced to its base so callers may pass full paths.
func New(root, name string) Asset {
	return Asset{root: root, name: filepath.Base(strings.TrimSpace(name))}
}

// Name returns the original upload file name.
func (a Asset) Name() string { return a.name }

// Stem returns the base name without extension, the key every derived
// artifact is named from.
func (a Asset) Stem() string {
	return strings.TrimSuffix(a.name, filepath.Ext(a.name))
}

// SourcePath returns the uploaded video location.
func (a Asset) SourcePath() string {
	return filepath.Join(a.root, a.name)
}

// AudioPath returns the extracted audio location (<stem>.mp3).
func (a Asset) AudioPath() string {
	return filepath.Join(a.root, a.Stem()+".mp3")
}

// VocalsPath returns the separated vocal stem location.
func (a Asset) VocalsPath() string {
	return filepath.Join(a.root, separatedDirName, a.Stem()+"_vocals.wav")
}

// InstrumentalPath returns the separated accompaniment location.
func (a Asset) InstrumentalPath() string {
	return filepath.Join(a.root, separatedDirName, a.Stem()+"_no_vocals.wav")
}

// AICoverPath returns the converted vocal location.
func (a Asset) AICoverPath() string {
	return filepath.Join(a.root, "ai_cover_"+a.Stem()+".wav")
}

// MixedExportPath returns the mixed audio bed written at export time.
func (a Asset) MixedExportPath() string {
	return filepath.Join(a.root, "mixed_export_"+a.Stem()+".mp3")
}

// SubtitlePath returns the SRT location (<stem>.srt).
func (a Asset) SubtitlePath() string {
	return filepath.Join(a.root, a.Stem()+".srt")
}

// ExportedName returns the burned output file name (exported_<name>).
func (a Asset) ExportedName() string {
	return "exported_" + a.name
}

// ExportedPath returns the burned output video location.
func (a Asset) ExportedPath() string {
	return filepath.Join(a.root, a.ExportedName())
}

// DisplayTitle derives a human-readable title from the upload name for CLI
// and status output.
func (a Asset) DisplayTitle() string {
	stem := a.Stem()
	if stem == "" {
		return "Unknown Asset"
	}
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range stem {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Unknown Asset"
	}
	return cases.Title(language.Und).String(title)
}

const separatedDirName = "separated"
