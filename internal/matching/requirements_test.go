// internal/matching/requirements_test.go
package matching

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compliant(meta FileMetadata) *FileMetadata {
	meta.StandardCompliance = true
	return &meta
}

func TestExtractProjectRequirements_EmptyFiles(t *testing.T) {
	reqs := ExtractProjectRequirements(nil, UserInputs{Capabilities: []string{"Embroidery"}, Urgent: true})
	assert.Equal(t, Requirements{Capabilities: []string{}}, reqs)

	raw, err := json.Marshal(ExtractProjectRequirements([]FileInfo{}, UserInputs{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"capabilities":[]}`, string(raw))
}

func TestExtractProjectRequirements_Capabilities(t *testing.T) {
	tests := []struct {
		name     string
		files    []FileInfo
		inputs   UserInputs
		expected []string
	}{
		{
			name:     "large CMYK image",
			files:    []FileInfo{{Type: "image/tiff", Metadata: compliant(FileMetadata{Dimensions: "2400x1800", ColorMode: "CMYK"})}},
			expected: []string{CapabilityDigitalPrinting, CapabilityLargeFormat, CapabilityOffsetPrinting},
		},
		{
			name:     "small RGB image",
			files:    []FileInfo{{Type: "image/png", Metadata: compliant(FileMetadata{Dimensions: "800x600", ColorMode: "RGB"})}},
			expected: []string{CapabilityDigitalPrinting},
		},
		{
			name:     "tall image counts on height",
			files:    []FileInfo{{Type: "IMAGE/JPEG", Metadata: compliant(FileMetadata{Dimensions: "600x1200"})}},
			expected: []string{CapabilityDigitalPrinting, CapabilityLargeFormat},
		},
		{
			name:     "lowercase cmyk is not offset",
			files:    []FileInfo{{Type: "image/jpeg", Metadata: compliant(FileMetadata{ColorMode: "cmyk"})}},
			expected: []string{CapabilityDigitalPrinting},
		},
		{
			name:     "multi page pdf from string",
			files:    []FileInfo{{Type: "application/pdf", Metadata: compliant(FileMetadata{Pages: "12"})}},
			expected: []string{CapabilityDigitalPrinting, CapabilityBinding},
		},
		{
			name:     "multi page pdf from number",
			files:    []FileInfo{{Type: "application/pdf", Metadata: compliant(FileMetadata{Pages: float64(3)})}},
			expected: []string{CapabilityDigitalPrinting, CapabilityBinding},
		},
		{
			name:     "single page pdf",
			files:    []FileInfo{{Type: "application/pdf", Metadata: compliant(FileMetadata{Pages: 1})}},
			expected: []string{CapabilityDigitalPrinting},
		},
		{
			name:     "unparseable pages",
			files:    []FileInfo{{Type: "application/pdf", Metadata: compliant(FileMetadata{Pages: "many"})}},
			expected: []string{CapabilityDigitalPrinting},
		},
		{
			name:     "vector and layered files",
			files:    []FileInfo{{Type: "ai"}, {Type: "application/eps"}, {Type: "application/x-psd"}},
			expected: []string{CapabilityVectorProcessing, CapabilityImageProcessing},
		},
		{
			name:     "deduplicated across files",
			files:    []FileInfo{{Type: "image/png"}, {Type: "application/pdf"}},
			expected: []string{CapabilityDigitalPrinting},
		},
		{
			name:     "user capabilities unioned",
			files:    []FileInfo{{Type: "image/png"}},
			inputs:   UserInputs{Capabilities: []string{"Digital Printing", "Embroidery"}},
			expected: []string{CapabilityDigitalPrinting, "Embroidery"},
		},
		{
			name:     "unknown type",
			files:    []FileInfo{{Type: "text/csv"}},
			expected: []string{},
		},
		{
			name:     "ai substring in text/plain",
			files:    []FileInfo{{Type: "text/plain"}},
			expected: []string{CapabilityVectorProcessing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs := ExtractProjectRequirements(tt.files, tt.inputs)
			assert.Equal(t, tt.expected, reqs.Capabilities)
		})
	}
}

func TestExtractProjectRequirements_Complexity(t *testing.T) {
	ok := compliant(FileMetadata{})
	tests := []struct {
		name     string
		files    []FileInfo
		expected float64
	}{
		{name: "one compliant file", files: []FileInfo{{Type: "image/png", Metadata: ok}}, expected: 1.0},
		{name: "non compliant file", files: []FileInfo{{Type: "image/png"}}, expected: 1.1},
		{
			name: "many compliant files",
			files: []FileInfo{
				{Type: "image/png", Metadata: ok}, {Type: "image/png", Metadata: ok},
				{Type: "image/png", Metadata: ok}, {Type: "image/png", Metadata: ok},
			},
			expected: 1.2,
		},
		{
			name: "many files with one issue",
			files: []FileInfo{
				{Type: "image/png", Metadata: ok}, {Type: "image/png", Metadata: ok},
				{Type: "image/png", Metadata: ok}, {Type: "image/png", Metadata: &FileMetadata{}},
			},
			expected: 1.32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs := ExtractProjectRequirements(tt.files, UserInputs{})
			assert.InDelta(t, tt.expected, reqs.Complexity, 1e-9)
		})
	}
}

func TestExtractProjectRequirements_Defaults(t *testing.T) {
	files := []FileInfo{{Type: "image/png"}}

	reqs := ExtractProjectRequirements(files, UserInputs{})
	assert.Equal(t, DefaultProductType, reqs.ProductType)
	assert.False(t, reqs.Urgent)
	assert.Nil(t, reqs.Location)
	assert.Equal(t, DefaultPreferredDistanceKm, reqs.PreferredDistance)

	loc := &GeoPoint{Lat: 41.88, Lng: -87.63}
	reqs = ExtractProjectRequirements(files, UserInputs{
		ProductType:       "Banners",
		Urgent:            true,
		Location:          loc,
		PreferredDistance: 10,
	})
	assert.Equal(t, "Banners", reqs.ProductType)
	assert.True(t, reqs.Urgent)
	assert.Equal(t, loc, reqs.Location)
	assert.Equal(t, 10.0, reqs.PreferredDistance)
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in       string
		expected int
		ok       bool
	}{
		{in: "12", expected: 12, ok: true},
		{in: "12 pages", expected: 12, ok: true},
		{in: "  3", expected: 3, ok: true},
		{in: "3.9", expected: 3, ok: true},
		{in: "-2", expected: -2, ok: true},
		{in: "many", ok: false},
		{in: "", ok: false},
		{in: "-", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, ok := leadingInt(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, n)
		})
	}
}
