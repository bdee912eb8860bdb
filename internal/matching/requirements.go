// internal/matching/requirements.go
package matching

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cast"
)

const (
	CapabilityDigitalPrinting    = "Digital Printing"
	CapabilityLargeFormat        = "Large Format"
	CapabilityOffsetPrinting     = "Offset Printing"
	CapabilityBinding            = "Binding"
	CapabilityVectorProcessing   = "Vector Processing"
	CapabilityImageProcessing    = "Image Processing"
	DefaultProductType           = "General Print"
	DefaultPreferredDistanceKm   = 25.0
	largeFormatThresholdPixels   = 1000
	manyFilesThreshold           = 3
	manyFilesComplexityFactor    = 1.2
	nonCompliantComplexityFactor = 1.1
)

// capabilitySet keeps insertion order while deduplicating.
type capabilitySet struct {
	seen  map[string]struct{}
	items []string
}

func newCapabilitySet() *capabilitySet {
	return &capabilitySet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *capabilitySet) add(c string) {
	if _, ok := s.seen[c]; ok {
		return
	}
	s.seen[c] = struct{}{}
	s.items = append(s.items, c)
}

// ExtractProjectRequirements derives what a project needs from its uploaded
// files and the options the user picked. No files means no known requirements:
// only an empty capability list is returned.
func ExtractProjectRequirements(files []FileInfo, inputs UserInputs) Requirements {
	if len(files) == 0 {
		return Requirements{Capabilities: []string{}}
	}

	caps := newCapabilitySet()
	for _, f := range files {
		fileCapabilities(f, caps)
	}
	for _, c := range inputs.Capabilities {
		caps.add(c)
	}

	productType := inputs.ProductType
	if productType == "" {
		productType = DefaultProductType
	}

	complexity := 1.0
	if len(files) > manyFilesThreshold {
		complexity *= manyFilesComplexityFactor
	}
	for _, f := range files {
		if f.Metadata == nil || !f.Metadata.StandardCompliance {
			complexity *= nonCompliantComplexityFactor
			break
		}
	}

	preferred := inputs.PreferredDistance
	if preferred <= 0 {
		preferred = DefaultPreferredDistanceKm
	}

	return Requirements{
		Capabilities:      caps.items,
		ProductType:       productType,
		Complexity:        complexity,
		Urgent:            inputs.Urgent,
		Location:          inputs.Location,
		PreferredDistance: preferred,
	}
}

func fileCapabilities(f FileInfo, caps *capabilitySet) {
	fileType := strings.ToLower(f.Type)
	meta := f.Metadata

	if strings.Contains(fileType, "image") {
		caps.add(CapabilityDigitalPrinting)
		if meta != nil && isLargeFormat(meta.Dimensions) {
			caps.add(CapabilityLargeFormat)
		}
		if meta != nil && meta.ColorMode == "CMYK" {
			caps.add(CapabilityOffsetPrinting)
		}
	}

	if strings.Contains(fileType, "pdf") {
		caps.add(CapabilityDigitalPrinting)
		if meta != nil {
			if pages, ok := leadingInt(cast.ToString(meta.Pages)); ok && pages > 1 {
				caps.add(CapabilityBinding)
			}
		}
	}

	if strings.Contains(fileType, "ai") || strings.Contains(fileType, "eps") {
		caps.add(CapabilityVectorProcessing)
	}

	if strings.Contains(fileType, "psd") {
		caps.add(CapabilityImageProcessing)
	}
}

// isLargeFormat reads "WIDTHxHEIGHT"; unparseable components never qualify.
func isLargeFormat(dimensions string) bool {
	if !strings.Contains(dimensions, "x") {
		return false
	}
	parts := strings.Split(dimensions, "x")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts[:2] {
		if n, ok := leadingInt(p); ok && n > largeFormatThresholdPixels {
			return true
		}
	}
	return false
}

// leadingInt parses the integer prefix of s after leading whitespace, so
// "12 pages" reads as 12 and "3.9" as 3.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c == '-' || c == '+') && end == 0 {
			end++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
