package domain

import "time"

// DetectionSource identifies which vision feature produced a detection.
type DetectionSource string

const (
	SourceLogo   DetectionSource = "logo"
	SourceOCR    DetectionSource = "ocr"
	SourceLabel  DetectionSource = "label"
	SourceObject DetectionSource = "object"
)

// Vertex is a single corner of a detection bounding polygon.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is the polygon a detection was localized to.
type BoundingBox struct {
	Vertices           []Vertex `json:"vertices,omitempty"`
	NormalizedVertices []Vertex `json:"normalizedVertices,omitempty"`
}

// RawDetection is a single candidate detection for one frame. It is
// ephemeral: the scan session merges raw detections into DetectedItems.
type RawDetection struct {
	Label       string          `json:"label"`
	Confidence  float64         `json:"confidence"`
	Source      DetectionSource `json:"source"`
	BoundingBox *BoundingBox    `json:"boundingBox,omitempty"`
	IsPending   bool            `json:"isPending,omitempty"`
	Category    string          `json:"category,omitempty"`
}

// DetectedItem is a deduplicated item accumulated over a scan session.
type DetectedItem struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Confidence  float64         `json:"confidence"`
	Source      DetectionSource `json:"source"`
	Count       int             `json:"count"`
	FirstSeenAt time.Time       `json:"firstSeenAt"`
	LastSeenAt  time.Time       `json:"lastSeenAt"`
	BoundingBox *BoundingBox    `json:"boundingBox,omitempty"`
	IsPending   bool            `json:"isPending"`
	Category    string          `json:"category,omitempty"`
}

// VisionResponse is the multi-modal detection bundle produced by the
// vision backend for one captured frame. The vision call itself happens
// outside this module; only the parsed structure enters the pipeline.
type VisionResponse struct {
	Responses []VisionAnnotations `json:"responses"`
}

// VisionAnnotations groups all per-frame annotation types.
type VisionAnnotations struct {
	LabelAnnotations           []VisionLabel  `json:"labelAnnotations,omitempty"`
	LocalizedObjectAnnotations []VisionObject `json:"localizedObjectAnnotations,omitempty"`
	LogoAnnotations            []VisionLogo   `json:"logoAnnotations,omitempty"`
	TextAnnotations            []VisionText   `json:"textAnnotations,omitempty"`
}

// VisionLabel is a whole-image label annotation.
type VisionLabel struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// VisionObject is a localized object annotation.
type VisionObject struct {
	Name         string       `json:"name"`
	Score        float64      `json:"score"`
	BoundingPoly *BoundingBox `json:"boundingPoly,omitempty"`
}

// VisionLogo is a detected logo. Logos never become detections but their
// text is forwarded to OCR correction as a brand hint.
type VisionLogo struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// VisionText is an OCR text annotation. The first annotation holds the
// full text block; subsequent entries are per-word fragments.
type VisionText struct {
	Description  string       `json:"description"`
	BoundingPoly *BoundingBox `json:"boundingPoly,omitempty"`
}
