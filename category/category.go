package category

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is a high-level file classification bucket. The declaration
// order is significant: it is the tie-break order wherever categories
// are sorted by size.
type Category int

const (
	Documents Category = iota
	Images
	Audio
	Video
	Archives
	Code
	Binaries
	Other
)

// Count is the number of categories, usable as an array length.
const Count = int(Other) + 1

// All lists every category in declaration order.
var All = [Count]Category{Documents, Images, Audio, Video, Archives, Code, Binaries, Other}

// Name returns the display name for a category.
func (c Category) Name() string {
	switch c {
	case Documents:
		return "Documents"
	case Images:
		return "Images"
	case Audio:
		return "Audio"
	case Video:
		return "Video"
	case Archives:
		return "Archives"
	case Code:
		return "Code"
	case Binaries:
		return "Binaries"
	default:
		return "Other"
	}
}

// Color returns the theme color for a category.
func (c Category) Color() string {
	switch c {
	case Documents:
		return "#98C379" // Green
	case Images:
		return "#E06C75" // Red
	case Audio:
		return "#C678DD" // Purple
	case Video:
		return "#E5C07B" // Yellow
	case Archives:
		return "#D19A66" // Orange
	case Code:
		return "#61AFEF" // Blue
	case Binaries:
		return "#56B6C2" // Cyan
	default:
		return "#ABB2BF" // Gray
	}
}

func (c Category) String() string { return c.Name() }

// MarshalJSON emits the category name so serialized results keep stable,
// readable field values across processes.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Name())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := Parse(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse maps a category name back to its value.
func Parse(name string) (Category, error) {
	for _, c := range All {
		if c.Name() == name {
			return c, nil
		}
	}
	return Other, fmt.Errorf("unknown category %q", name)
}

// extMap maps lowercase file extensions to categories.
var extMap = map[string]Category{
	// Documents
	".pdf": Documents, ".doc": Documents, ".docx": Documents,
	".xls": Documents, ".xlsx": Documents, ".ppt": Documents,
	".pptx": Documents, ".odt": Documents, ".ods": Documents,
	".odp": Documents, ".rtf": Documents, ".txt": Documents,
	".md": Documents, ".rst": Documents, ".tex": Documents,
	".csv": Documents, ".tsv": Documents, ".epub": Documents,
	".mobi": Documents, ".djvu": Documents, ".pages": Documents,
	".numbers": Documents, ".key": Documents, ".log": Documents,

	// Images
	".jpg": Images, ".jpeg": Images, ".png": Images, ".gif": Images,
	".bmp": Images, ".svg": Images, ".webp": Images, ".ico": Images,
	".tiff": Images, ".tif": Images, ".psd": Images, ".xcf": Images,
	".cr2": Images, ".nef": Images, ".heic": Images, ".heif": Images,
	".avif": Images, ".jxl": Images,

	// Audio
	".mp3": Audio, ".flac": Audio, ".wav": Audio, ".aac": Audio,
	".ogg": Audio, ".wma": Audio, ".m4a": Audio, ".opus": Audio,
	".aiff": Audio, ".mid": Audio, ".midi": Audio,

	// Video
	".mp4": Video, ".mkv": Video, ".avi": Video, ".mov": Video,
	".wmv": Video, ".flv": Video, ".webm": Video, ".m4v": Video,
	".mpg": Video, ".mpeg": Video, ".3gp": Video, ".mts": Video,

	// Archives
	".zip": Archives, ".tar": Archives, ".gz": Archives, ".bz2": Archives,
	".xz": Archives, ".zst": Archives, ".lz4": Archives, ".lzma": Archives,
	".rar": Archives, ".7z": Archives, ".cab": Archives, ".iso": Archives,
	".dmg": Archives, ".pkg": Archives, ".deb": Archives, ".rpm": Archives,
	".snap": Archives, ".flatpak": Archives, ".appimage": Archives,
	".tgz": Archives, ".tbz2": Archives, ".txz": Archives,
	".jar": Archives, ".war": Archives, ".ear": Archives, ".squashfs": Archives,

	// Code
	".go": Code, ".py": Code, ".js": Code, ".jsx": Code,
	".ts": Code, ".tsx": Code, ".rs": Code, ".c": Code,
	".cpp": Code, ".cc": Code, ".h": Code, ".hpp": Code,
	".java": Code, ".kt": Code, ".swift": Code, ".rb": Code,
	".php": Code, ".cs": Code, ".scala": Code, ".clj": Code,
	".ex": Code, ".exs": Code, ".erl": Code, ".hs": Code,
	".ml": Code, ".lua": Code, ".r": Code, ".dart": Code,
	".vue": Code, ".svelte": Code, ".html": Code, ".htm": Code,
	".css": Code, ".scss": Code, ".sass": Code, ".less": Code,
	".sql": Code, ".sh": Code, ".bash": Code, ".zsh": Code,
	".fish": Code, ".ps1": Code, ".bat": Code, ".cmd": Code,
	".zig": Code, ".nim": Code, ".asm": Code, ".pl": Code,
	".pm": Code, ".tcl": Code, ".groovy": Code, ".gradle": Code,
	".json": Code, ".yaml": Code, ".yml": Code, ".toml": Code,
	".xml": Code, ".proto": Code, ".graphql": Code, ".gql": Code,
	".ron": Code, ".vala": Code,

	// Binaries
	".exe": Binaries, ".msi": Binaries, ".bin": Binaries,
	".elf": Binaries, ".out": Binaries, ".wasm": Binaries,
	".pyc": Binaries, ".pyo": Binaries, ".class": Binaries,
	".o": Binaries, ".a": Binaries, ".so": Binaries,
	".dll": Binaries, ".dylib": Binaries, ".sys": Binaries,
	".ko": Binaries, ".efi": Binaries,
}

// Classify returns the category for a file name. Lookup is
// case-insensitive on the extension; files without a matching
// extension fall back to Other. Content is never inspected.
func Classify(name string) Category {
	if cat, ok := extMap[Extension(name)]; ok {
		return cat
	}
	return Other
}

// Extension returns the lowercase extension of a file name, including
// the leading dot, or "" when the name has none.
func Extension(name string) string {
	return strings.ToLower(getExt(name))
}

func getExt(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i:]
		}
		if name[i] == '/' {
			break
		}
	}
	return ""
}
