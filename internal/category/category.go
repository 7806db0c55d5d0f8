// Package category maps file extensions to the human-readable labels used
// to facet search results.
package category

import "strings"

// Other is returned for any extension that is not in the table.
const Other = "Other"

// extensions maps a lowercase extension (with leading dot) to its label.
var extensions = map[string]string{
	// Images
	".jpg":  "Image (JPEG)",
	".jpeg": "Image (JPEG)",
	".png":  "Image (PNG)",
	".tif":  "Image (TIFF)",
	".tiff": "Image (TIFF)",
	".gif":  "Image (GIF)",
	".webp": "Image (WebP)",
	".bmp":  "Image (BMP)",
	".svg":  "Vector (SVG)",
	".cr2":  "Image (RAW)",
	".cr3":  "Image (RAW)",
	".nef":  "Image (RAW)",
	".arw":  "Image (RAW)",
	".dng":  "Image (RAW)",
	".raf":  "Image (RAW)",
	".orf":  "Image (RAW)",
	".rw2":  "Image (RAW)",

	// Video
	".mp4":  "Video (MP4)",
	".mov":  "Video (MOV)",
	".avi":  "Video (AVI)",
	".mkv":  "Video (MKV)",
	".m4v":  "Video (M4V)",
	".mxf":  "Video (Professional)",
	".r3d":  "Video (Professional)",
	".braw": "Video (Professional)",
	".ari":  "Video (Professional)",

	// Adobe Creative
	".aep":    "After Effects Project",
	".aet":    "After Effects Project",
	".prproj": "Premiere Pro Project",
	".psd":    "Photoshop",
	".psb":    "Photoshop",
	".ai":     "Illustrator",
	".abr":    "Photoshop Brush",
	".atn":    "Photoshop Action",
	".acv":    "Photoshop Curve",
	".aco":    "Adobe Swatch",
	".ase":    "Adobe Swatch",

	// Audio
	".wav":  "Audio (WAV)",
	".mp3":  "Audio (MP3)",
	".aif":  "Audio (AIFF)",
	".aiff": "Audio (AIFF)",
	".flac": "Audio (FLAC)",
	".aac":  "Audio (AAC)",
	".m4a":  "Audio (M4A)",

	// 3D Models
	".blend": "3D Model (Blender)",
	".fbx":   "3D Model (FBX)",
	".obj":   "3D Model (OBJ)",
	".c4d":   "3D Model (Cinema 4D)",
	".ma":    "3D Model (Maya)",
	".mb":    "3D Model (Maya)",
	".gltf":  "3D Model (glTF)",
	".glb":   "3D Model (glTF)",
	".stl":   "3D Model (STL)",
	".3ds":   "3D Model (3DS)",

	// Archives
	".zip": "Archive (ZIP)",
	".rar": "Archive (RAR)",
	".7z":  "Archive (7-Zip)",
	".tar": "Archive (TAR)",
	".gz":  "Archive (GZIP)",
	".tgz": "Archive (GZIP)",

	// Documents
	".pdf":  "Document (PDF)",
	".doc":  "Document (Word)",
	".docx": "Document (Word)",
	".xls":  "Document (Excel)",
	".xlsx": "Document (Excel)",
	".txt":  "Document (Text)",
	".rtf":  "Document (Text)",
	".md":   "Document (Text)",

	// Fonts
	".ttf": "Font (TrueType)",
	".otf": "Font (OpenType)",
}

// Group is a facet heading and the labels listed under it.
type Group struct {
	Name   string
	Labels []string
}

var groups = []Group{
	{Name: "Images", Labels: []string{"Image (JPEG)", "Image (PNG)", "Image (TIFF)", "Image (GIF)", "Image (WebP)", "Image (BMP)", "Vector (SVG)", "Image (RAW)"}},
	{Name: "Video", Labels: []string{"Video (MP4)", "Video (MOV)", "Video (AVI)", "Video (MKV)", "Video (M4V)", "Video (Professional)"}},
	{Name: "Adobe Creative", Labels: []string{"After Effects Project", "Premiere Pro Project", "Photoshop", "Illustrator", "Photoshop Brush", "Photoshop Action", "Photoshop Curve", "Adobe Swatch"}},
	{Name: "Audio", Labels: []string{"Audio (WAV)", "Audio (MP3)", "Audio (AIFF)", "Audio (FLAC)", "Audio (AAC)", "Audio (M4A)"}},
	{Name: "3D Models", Labels: []string{"3D Model (Blender)", "3D Model (FBX)", "3D Model (OBJ)", "3D Model (Cinema 4D)", "3D Model (Maya)", "3D Model (glTF)", "3D Model (STL)", "3D Model (3DS)"}},
	{Name: "Archives", Labels: []string{"Archive (ZIP)", "Archive (RAR)", "Archive (7-Zip)", "Archive (TAR)", "Archive (GZIP)"}},
	{Name: "Documents", Labels: []string{"Document (PDF)", "Document (Word)", "Document (Excel)", "Document (Text)"}},
	{Name: "Fonts", Labels: []string{"Font (TrueType)", "Font (OpenType)"}},
}

// Classify returns the category label for a file extension.
// The extension may be given with or without its leading dot and in any case.
// Returns Other for empty or unrecognized extensions.
func Classify(ext string) string {
	if ext == "" {
		return Other
	}
	ext = strings.ToLower(ext)
	if ext[0] != '.' {
		ext = "." + ext
	}
	if label, ok := extensions[ext]; ok {
		return label
	}
	return Other
}

// Groups returns the facet hierarchy in display order.
// The returned slice is a copy and may be modified by the caller.
func Groups() []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{Name: g.Name, Labels: append([]string(nil), g.Labels...)}
	}
	return out
}

// IsKnown reports whether label is one of the labels Classify can return.
func IsKnown(label string) bool {
	if label == Other {
		return true
	}
	for _, g := range groups {
		for _, l := range g.Labels {
			if l == label {
				return true
			}
		}
	}
	return false
}
